package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"capitalGainsTracker/config"
	"capitalGainsTracker/internal/adapters/logger"
	"capitalGainsTracker/internal/adapters/sqlite"
	"capitalGainsTracker/internal/analytics"
	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/simulator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// The archive path comes from the first argument, else DB_PATH
	dbPath := cfg.DBPath
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}
	if dbPath == "" {
		log.Fatalf("No archive to analyze: pass a database path or set DB_PATH")
	}
	if _, err := os.Stat(dbPath); err != nil {
		log.Fatalf("Error opening archive: %v", err)
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: dbPath, Logger: logger.NewStdLogger(cfg.LogLevel)})
	if err != nil {
		log.Fatalf("Error opening archive: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	stats, err := repo.ProfitByStrategy(ctx)
	if err != nil {
		log.Fatalf("Error aggregating runs: %v", err)
	}
	if len(stats) == 0 {
		log.Println("No archived runs found. Run `capgains compare` with DB_PATH set first.")
		return
	}

	// Create a tabwriter for formatted output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Buy\tSell\tRuns\tTotal\tAverage\tBest\tWorst\t")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			s.BuyStrategy, s.SellStrategy, s.Runs, s.TotalProfit, s.AverageProfit, s.BestProfit, s.WorstProfit)
	}
	w.Flush()

	runs, err := repo.FindRuns(ctx)
	if err != nil {
		log.Fatalf("Error loading runs: %v", err)
	}
	results := make([]domain.RunResult, len(runs))
	for i, r := range runs {
		results[i] = *r
	}
	best := analytics.RankRuns(results)[0]

	sales, err := repo.FindSalesByRun(ctx, best.ID)
	if err != nil {
		log.Fatalf("Error loading sales of run %s: %v", best.ID, err)
	}
	printRunAnalysis(best, analytics.AnalyzePerformance(sales))
}

func printRunAnalysis(run domain.RunResult, m *analytics.PerformanceMetrics) {
	fmt.Printf("\n## Most profitable run: %s (%s)\n", simulator.SettingsString(run.BuyStrategy, run.SellStrategy), run.ID)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Sales:\t%d (%d shares)\n", m.TotalSales, m.SharesSold)
	fmt.Fprintf(w, "Profit:\t%.2f on cost %.2f (%.2f%%)\n", m.TotalProfit, m.TotalCost, m.ReturnOnCost*100)
	fmt.Fprintf(w, "Win rate:\t%.1f%%\n", m.WinRate*100)
	fmt.Fprintf(w, "Average win / loss:\t%.2f / %.2f\n", m.AverageWin, m.AverageLoss)
	fmt.Fprintf(w, "Profit factor:\t%.2f\n", m.ProfitFactor)
	fmt.Fprintf(w, "Max drawdown:\t%.2f\n", m.MaxDrawdown)
	fmt.Fprintf(w, "Streaks:\t%d wins, %d losses\n", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
	for _, sp := range m.GetSymbolProfits() {
		fmt.Fprintf(w, "  %s:\t%.2f\n", sp.Symbol, sp.Profit)
	}
	w.Flush()
}
