package domain

import "time"

// RunResult summarises one replay of a transaction log under a single
// buy/sell strategy pair.
type RunResult struct {
	ID             string         // Unique identifier for the run
	BuyStrategy    BuyStrategy    // Strategy used for buys
	SellStrategy   SellStrategy   // Strategy used for sells
	Transactions   int            // Number of transactions replayed
	SaleCount      int            // Number of sales that filled
	RejectedSales  int            // Number of transactions the ledger refused
	Profit         float64        // Realized profit across all sales
	Revenue        float64        // Sum of quantity * price over sales
	InitialBalance float64        // Balance before the first transaction
	FinalBalance   float64        // Balance after the last transaction
	Shares         map[string]int // Remaining shares per symbol
	BuyTime        time.Duration  // Time spent inside buy strategies
	SellTime       time.Duration  // Time spent inside sell strategies
	StartedAt      time.Time      // When the run started
	Sales          []*SaleOrder   // Filled sales in order
}

// TotalShares sums the remaining shares across symbols.
func (r *RunResult) TotalShares() int {
	total := 0
	for _, n := range r.Shares {
		total += n
	}
	return total
}
