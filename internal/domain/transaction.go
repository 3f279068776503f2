package domain

// Transaction represents one line of a transaction log.
type Transaction struct {
	Side     Side    // BUY, SELL or DISPLAY
	Symbol   string  // Ticker symbol (empty for DISPLAY)
	Quantity int     // Number of shares
	Price    float64 // Price per share
}
