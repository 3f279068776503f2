package domain

import "fmt"

// Lot represents one purchased share held at a specific cost basis.
type Lot struct {
	Symbol string  // Ticker symbol (e.g., "AAPL")
	Cost   float64 // Purchase price of the share
}

// String renders the lot as "AAPL: $45".
func (l Lot) String() string {
	return fmt.Sprintf("%s: $%v", l.Symbol, l.Cost)
}
