// Package analytics derives profit statistics from the sales of a run.
package analytics

import (
	"math"
	"sort"

	"capitalGainsTracker/internal/domain"
)

// PerformanceMetrics holds profit statistics over a sequence of sales.
type PerformanceMetrics struct {
	// Basic Metrics
	TotalSales    int
	WinningSales  int
	LosingSales   int // Sales with zero or negative profit
	WinRate       float64
	TotalProfit   float64
	TotalRevenue  float64
	TotalCost     float64
	AverageWin    float64
	AverageLoss   float64
	ProfitFactor  float64
	ReturnOnCost  float64 // TotalProfit / TotalCost
	MaxDrawdown   float64 // Largest fall of cumulative profit from a previous peak, in dollars
	LargestWin    float64
	LargestLoss   float64
	SharesSold    int
	AverageMargin float64 // Profit per share sold

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	Expectancy           float64
	ProfitCurve          []float64 // Cumulative profit, starting at 0
	SymbolProfits        map[string]float64
}

// AnalyzePerformance calculates metrics over sales in fill order.
func AnalyzePerformance(sales []*domain.SaleOrder) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		ProfitCurve:   []float64{0},
		SymbolProfits: make(map[string]float64),
	}

	if len(sales) == 0 {
		return metrics
	}

	var cumulative, peak float64
	var consecutiveWins, consecutiveLosses int
	var grossWin, grossLoss float64

	for _, sale := range sales {
		profit := sale.Profit()
		metrics.TotalSales++
		metrics.SharesSold += sale.Filled()
		metrics.TotalRevenue += sale.Revenue()
		metrics.TotalCost += sale.TotalCost()
		metrics.SymbolProfits[sale.Symbol] += profit

		if profit > 0 {
			metrics.WinningSales++
			consecutiveWins++
			consecutiveLosses = 0
			grossWin += profit
			metrics.LargestWin = math.Max(metrics.LargestWin, profit)
		} else {
			metrics.LosingSales++
			consecutiveLosses++
			consecutiveWins = 0
			grossLoss += profit
			metrics.LargestLoss = math.Min(metrics.LargestLoss, profit)
		}
		metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, consecutiveWins)
		metrics.MaxConsecutiveLosses = max(metrics.MaxConsecutiveLosses, consecutiveLosses)

		cumulative += profit
		metrics.ProfitCurve = append(metrics.ProfitCurve, cumulative)
		if cumulative > peak {
			peak = cumulative
		} else if peak-cumulative > metrics.MaxDrawdown {
			metrics.MaxDrawdown = peak - cumulative
		}
	}

	metrics.TotalProfit = cumulative
	metrics.WinRate = float64(metrics.WinningSales) / float64(metrics.TotalSales)
	if metrics.WinningSales > 0 {
		metrics.AverageWin = grossWin / float64(metrics.WinningSales)
	}
	if metrics.LosingSales > 0 {
		metrics.AverageLoss = grossLoss / float64(metrics.LosingSales)
	}
	if grossLoss != 0 {
		metrics.ProfitFactor = grossWin / -grossLoss
	}
	if metrics.TotalCost != 0 {
		metrics.ReturnOnCost = metrics.TotalProfit / metrics.TotalCost
	}
	if metrics.SharesSold > 0 {
		metrics.AverageMargin = metrics.TotalProfit / float64(metrics.SharesSold)
	}
	metrics.Expectancy = (metrics.WinRate * metrics.AverageWin) + ((1 - metrics.WinRate) * metrics.AverageLoss)

	return metrics
}

// SymbolProfit is the realized profit of one symbol.
type SymbolProfit struct {
	Symbol string
	Profit float64
}

// GetSymbolProfits returns per-symbol profit, most profitable first.
func (m *PerformanceMetrics) GetSymbolProfits() []SymbolProfit {
	profits := make([]SymbolProfit, 0, len(m.SymbolProfits))
	for sym, p := range m.SymbolProfits {
		profits = append(profits, SymbolProfit{Symbol: sym, Profit: p})
	}
	sort.Slice(profits, func(i, j int) bool {
		if profits[i].Profit != profits[j].Profit {
			return profits[i].Profit > profits[j].Profit
		}
		return profits[i].Symbol < profits[j].Symbol
	})
	return profits
}

// RankRuns orders runs by profit, best first. Ties keep (buy, sell) order.
func RankRuns(results []domain.RunResult) []domain.RunResult {
	ranked := append([]domain.RunResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Profit > ranked[j].Profit
	})
	return ranked
}
