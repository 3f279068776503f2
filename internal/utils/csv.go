package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"capitalGainsTracker/internal/domain"
)

var runResultHeader = []string{
	"run_id", "buy_strategy", "sell_strategy", "transactions", "sales", "rejected",
	"profit", "revenue", "initial_balance", "final_balance",
	"buy_time_ns", "sell_time_ns", "started_at", "shares",
}

// WriteRunResultsToCSV writes one row per run. Sales are not exported.
func WriteRunResultsToCSV(results []domain.RunResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(runResultHeader); err != nil {
		return err
	}
	for _, r := range results {
		if err := writer.Write([]string{
			r.ID,
			r.BuyStrategy.String(),
			r.SellStrategy.String(),
			strconv.Itoa(r.Transactions),
			strconv.Itoa(r.SaleCount),
			strconv.Itoa(r.RejectedSales),
			strconv.FormatFloat(r.Profit, 'f', -1, 64),
			strconv.FormatFloat(r.Revenue, 'f', -1, 64),
			strconv.FormatFloat(r.InitialBalance, 'f', -1, 64),
			strconv.FormatFloat(r.FinalBalance, 'f', -1, 64),
			strconv.FormatInt(r.BuyTime.Nanoseconds(), 10),
			strconv.FormatInt(r.SellTime.Nanoseconds(), 10),
			r.StartedAt.Format(time.RFC3339Nano),
			formatShares(r.Shares),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadRunResultsFromCSV reads rows written by WriteRunResultsToCSV.
func ReadRunResultsFromCSV(filename string) ([]domain.RunResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(runResultHeader)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", filename)
	}

	results := make([]domain.RunResult, 0, len(records)-1)
	for i, rec := range records[1:] {
		r, err := parseRunResult(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filename, i+2, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func parseRunResult(rec []string) (domain.RunResult, error) {
	var (
		r   domain.RunResult
		err error
		ok  bool
	)
	r.ID = rec[0]
	if r.BuyStrategy, ok = domain.ParseBuyStrategy(rec[1]); !ok {
		return r, fmt.Errorf("unknown buy strategy %q", rec[1])
	}
	if r.SellStrategy, ok = domain.ParseSellStrategy(rec[2]); !ok {
		return r, fmt.Errorf("unknown sell strategy %q", rec[2])
	}
	ints := []*int{&r.Transactions, &r.SaleCount, &r.RejectedSales}
	for j, dst := range ints {
		if *dst, err = strconv.Atoi(rec[3+j]); err != nil {
			return r, fmt.Errorf("column %s: %w", runResultHeader[3+j], err)
		}
	}
	floats := []*float64{&r.Profit, &r.Revenue, &r.InitialBalance, &r.FinalBalance}
	for j, dst := range floats {
		if *dst, err = strconv.ParseFloat(rec[6+j], 64); err != nil {
			return r, fmt.Errorf("column %s: %w", runResultHeader[6+j], err)
		}
	}
	buyNs, err := strconv.ParseInt(rec[10], 10, 64)
	if err != nil {
		return r, fmt.Errorf("column buy_time_ns: %w", err)
	}
	sellNs, err := strconv.ParseInt(rec[11], 10, 64)
	if err != nil {
		return r, fmt.Errorf("column sell_time_ns: %w", err)
	}
	r.BuyTime, r.SellTime = time.Duration(buyNs), time.Duration(sellNs)
	if r.StartedAt, err = time.Parse(time.RFC3339Nano, rec[12]); err != nil {
		return r, fmt.Errorf("column started_at: %w", err)
	}
	if r.Shares, err = parseShares(rec[13]); err != nil {
		return r, fmt.Errorf("column shares: %w", err)
	}
	return r, nil
}

// formatShares renders holdings as "AAPL=3;MSFT=0", sorted by symbol.
func formatShares(shares map[string]int) string {
	symbols := make([]string, 0, len(shares))
	for sym := range shares {
		symbols = append(symbols, sym)
	}
	slices.Sort(symbols)
	parts := make([]string, len(symbols))
	for i, sym := range symbols {
		parts[i] = sym + "=" + strconv.Itoa(shares[sym])
	}
	return strings.Join(parts, ";")
}

func parseShares(s string) (map[string]int, error) {
	shares := make(map[string]int)
	if s == "" {
		return shares, nil
	}
	for _, part := range strings.Split(s, ";") {
		sym, n, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("malformed entry %q", part)
		}
		count, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", part, err)
		}
		shares[sym] = count
	}
	return shares, nil
}
