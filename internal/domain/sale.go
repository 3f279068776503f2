package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SaleOrder is a sale being filled from held lots. It reports cost and
// profit once filled.
type SaleOrder struct {
	ID       string  // Unique identifier for the sale
	Symbol   string  // Ticker symbol being sold
	Quantity int     // Number of shares requested
	Price    float64 // Sale price per share
	Lots     []Lot   // Lots consumed so far, in fill order
}

// NewSaleOrder creates an unfilled sale.
func NewSaleOrder(symbol string, quantity int, price float64) *SaleOrder {
	return &SaleOrder{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Lots:     make([]Lot, 0, max(quantity, 0)),
	}
}

// AddFilledLot appends a consumed lot. A filled sale accepts no more lots.
func (s *SaleOrder) AddFilledLot(lot Lot) {
	if s.IsFilled() {
		return
	}
	s.Lots = append(s.Lots, lot)
}

// Filled returns the number of lots consumed so far.
func (s *SaleOrder) Filled() int {
	return len(s.Lots)
}

// Remaining returns the number of lots still needed.
func (s *SaleOrder) Remaining() int {
	return s.Quantity - len(s.Lots)
}

// IsFilled checks if the sale holds exactly the requested quantity.
func (s *SaleOrder) IsFilled() bool {
	return len(s.Lots) >= s.Quantity
}

// TotalCost sums the cost basis of the filled lots.
func (s *SaleOrder) TotalCost() float64 {
	var total float64
	for _, lot := range s.Lots {
		total += lot.Cost
	}
	return total
}

// Revenue is the requested quantity times the sale price.
func (s *SaleOrder) Revenue() float64 {
	return float64(s.Quantity) * s.Price
}

// Profit is revenue minus the cost basis of the filled lots.
func (s *SaleOrder) Profit() float64 {
	return s.Revenue() - s.TotalCost()
}

// String renders a receipt of the sale.
func (s *SaleOrder) String() string {
	lines := []string{
		fmt.Sprintf("---- Stock Sale: %s ----", s.Symbol),
		"Cost        Price",
	}
	for _, lot := range s.Lots {
		lines = append(lines, fmt.Sprintf("$%v         $%v", lot.Cost, s.Price))
	}
	lines = append(lines, "- - - - - Total - - - - -", fmt.Sprintf("$%v", s.Profit()))
	return strings.Join(lines, "\n")
}
