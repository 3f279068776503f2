// Package simulator replays transaction logs against cost basis ledgers,
// generates synthetic logs and compares strategy pairs.
package simulator

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// ParseLine parses one transaction line:
//
//	Buy 20 shares of AAPL at $45.
//	Sell 5 shares of AAPL at $60.25.
//	Display
//
// Any line with a Display token is a display request.
func ParseLine(line string) (domain.Transaction, error) {
	fields := strings.Fields(line)
	if slices.Contains(fields, "Display") {
		return domain.Transaction{Side: domain.Display}, nil
	}
	if len(fields) != 7 || fields[2] != "shares" || fields[3] != "of" || fields[5] != "at" {
		return domain.Transaction{}, fmt.Errorf("%q: %w", line, ports.ErrMalformedLine)
	}

	var side domain.Side
	switch fields[0] {
	case "Buy":
		side = domain.Buy
	case "Sell":
		side = domain.Sell
	default:
		return domain.Transaction{}, fmt.Errorf("%q: unknown action %q: %w", line, fields[0], ports.ErrMalformedLine)
	}

	quantity, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%q: quantity: %w", line, ports.ErrMalformedLine)
	}

	price, err := decimal.NewFromString(strings.Trim(fields[6], ".$"))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%q: price: %w", line, ports.ErrMalformedLine)
	}
	value, _ := price.Float64()
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return domain.Transaction{}, fmt.Errorf("%q: price out of range: %w", line, ports.ErrMalformedLine)
	}

	return domain.Transaction{
		Side:     side,
		Symbol:   fields[4],
		Quantity: quantity,
		Price:    value,
	}, nil
}

// FormatLine renders tx in the form ParseLine accepts.
func FormatLine(tx domain.Transaction) string {
	switch tx.Side {
	case domain.Buy:
		return fmt.Sprintf("Buy %d shares of %s at $%s.", tx.Quantity, tx.Symbol, formatPrice(tx.Price))
	case domain.Sell:
		return fmt.Sprintf("Sell %d shares of %s at $%s.", tx.Quantity, tx.Symbol, formatPrice(tx.Price))
	default:
		return "Display"
	}
}

func formatPrice(p float64) string {
	return decimal.NewFromFloat(p).String()
}

// ParseTransactions reads one transaction per line, skipping blank lines.
// Errors carry the 1-based line number.
func ParseTransactions(r io.Reader) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tx, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txs, nil
}
