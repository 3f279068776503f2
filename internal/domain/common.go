package domain

import (
	"strconv"
	"strings"
)

// Side represents the side of a transaction (BUY or SELL).
type Side string

const (
	Buy     Side = "BUY"
	Sell    Side = "SELL"
	Display Side = "DISPLAY" // Ledger dump request, carries no trade
)

// BuyStrategy selects where newly bought lots land in a symbol's queue.
type BuyStrategy int

const (
	BuyFifo            BuyStrategy = iota + 1 // Always append to the back
	BuyRandomized                             // Random rotation, random end
	BuyAscendingInsert                        // Keep the queue in ascending cost order
	BuyMedianSplit                            // Back if cost >= exact median, else front
	BuyEndpointCompare                        // Back if cost >= current back cost, else front
)

// SellStrategy selects which lots fill a sale.
type SellStrategy int

const (
	SellFifo            SellStrategy = iota + 1 // Pop the front
	SellRandomized                              // Random rotation, then pop the front
	SellLowestCostFirst                         // Drain the cheapest lots first
	SellMedianSplit                             // Drain lots at or below the range midpoint
	SellEndpointCompare                         // Pop the cheaper of front and back
)

var buyStrategyNames = map[BuyStrategy]string{
	BuyFifo:            "fifo",
	BuyRandomized:      "randomized",
	BuyAscendingInsert: "ascending",
	BuyMedianSplit:     "median",
	BuyEndpointCompare: "endpoint",
}

var sellStrategyNames = map[SellStrategy]string{
	SellFifo:            "fifo",
	SellRandomized:      "randomized",
	SellLowestCostFirst: "lowest",
	SellMedianSplit:     "median",
	SellEndpointCompare: "endpoint",
}

// String returns the short name of the strategy.
func (s BuyStrategy) String() string {
	if name, ok := buyStrategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five buy strategies.
func (s BuyStrategy) Valid() bool {
	_, ok := buyStrategyNames[s]
	return ok
}

// String returns the short name of the strategy.
func (s SellStrategy) String() string {
	if name, ok := sellStrategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the five sell strategies.
func (s SellStrategy) Valid() bool {
	_, ok := sellStrategyNames[s]
	return ok
}

// ParseBuyStrategy accepts a strategy name or its setting number (1..5).
func ParseBuyStrategy(str string) (BuyStrategy, bool) {
	str = strings.ToLower(strings.TrimSpace(str))
	if n, err := strconv.Atoi(str); err == nil {
		s := BuyStrategy(n)
		return s, s.Valid()
	}
	for s, name := range buyStrategyNames {
		if name == str {
			return s, true
		}
	}
	return 0, false
}

// ParseSellStrategy accepts a strategy name or its setting number (1..5).
func ParseSellStrategy(str string) (SellStrategy, bool) {
	str = strings.ToLower(strings.TrimSpace(str))
	if n, err := strconv.Atoi(str); err == nil {
		s := SellStrategy(n)
		return s, s.Valid()
	}
	for s, name := range sellStrategyNames {
		if name == str {
			return s, true
		}
	}
	return 0, false
}

// AllBuyStrategies returns the buy strategies in setting order.
func AllBuyStrategies() []BuyStrategy {
	return []BuyStrategy{BuyFifo, BuyRandomized, BuyAscendingInsert, BuyMedianSplit, BuyEndpointCompare}
}

// AllSellStrategies returns the sell strategies in setting order.
func AllSellStrategies() []SellStrategy {
	return []SellStrategy{SellFifo, SellRandomized, SellLowestCostFirst, SellMedianSplit, SellEndpointCompare}
}
