package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"
)

// TraderConfig holds the collaborators and settings of a Trader.
type TraderConfig struct {
	Ledger         ports.Ledger
	BuyStrategy    domain.BuyStrategy
	SellStrategy   domain.SellStrategy
	InitialBalance float64
	Logger         ports.Logger
}

// Trader replays transactions against a ledger under one buy/sell strategy
// pair and keeps the cash balance and profit reports.
type Trader struct {
	ledger *timedLedger
	buy    domain.BuyStrategy
	sell   domain.SellStrategy
	logger ports.Logger

	initialBalance float64
	balance        float64
	balanceHistory []float64
	sales          []*domain.SaleOrder
	profitPerSale  []float64
	transactions   int
	rejected       int
}

// NewTrader creates a Trader.
func NewTrader(cfg TraderConfig) (*Trader, error) {
	if cfg.Ledger == nil {
		return nil, fmt.Errorf("ledger is required: %w", ports.ErrConfigurationError)
	}
	if !cfg.BuyStrategy.Valid() {
		return nil, fmt.Errorf("buy strategy %d: %w", int(cfg.BuyStrategy), ports.ErrInvalidStrategy)
	}
	if !cfg.SellStrategy.Valid() {
		return nil, fmt.Errorf("sell strategy %d: %w", int(cfg.SellStrategy), ports.ErrInvalidStrategy)
	}
	if cfg.Logger == nil {
		cfg.Logger = ports.NopLogger{}
	}
	return &Trader{
		ledger:         &timedLedger{ledger: cfg.Ledger},
		buy:            cfg.BuyStrategy,
		sell:           cfg.SellStrategy,
		logger:         cfg.Logger,
		initialBalance: cfg.InitialBalance,
		balance:        cfg.InitialBalance,
		balanceHistory: []float64{cfg.InitialBalance},
	}, nil
}

// IsRejection reports whether err is a sale or buy the ledger refused
// without changing state.
func IsRejection(err error) bool {
	return errors.Is(err, ports.ErrUnknownSymbol) ||
		errors.Is(err, ports.ErrInsufficientShares) ||
		errors.Is(err, ports.ErrInvalidQuantity) ||
		errors.Is(err, ports.ErrInvalidPrice)
}

// Buy records a purchase and debits the balance.
func (t *Trader) Buy(ctx context.Context, symbol string, quantity int, price float64) error {
	if err := t.ledger.Buy(ctx, t.buy, symbol, quantity, price); err != nil {
		return err
	}
	t.balance -= float64(quantity) * price
	t.balanceHistory = append(t.balanceHistory, t.balance)
	return nil
}

// Sell fills a sale and credits the balance. A rejected sale leaves the
// trader unchanged.
func (t *Trader) Sell(ctx context.Context, symbol string, quantity int, price float64) (*domain.SaleOrder, error) {
	sale, err := t.ledger.Sell(ctx, t.sell, symbol, quantity, price)
	if err != nil {
		return nil, err
	}
	t.sales = append(t.sales, sale)
	t.balance += sale.Revenue()
	t.profitPerSale = append(t.profitPerSale, sale.Profit())
	return sale, nil
}

// Execute applies one transaction. Display transactions dump the ledger to
// display when it is not nil.
func (t *Trader) Execute(ctx context.Context, tx domain.Transaction, display io.Writer) error {
	switch tx.Side {
	case domain.Buy:
		t.transactions++
		return t.Buy(ctx, tx.Symbol, tx.Quantity, tx.Price)
	case domain.Sell:
		t.transactions++
		_, err := t.Sell(ctx, tx.Symbol, tx.Quantity, tx.Price)
		return err
	case domain.Display:
		if display == nil {
			return nil
		}
		return t.ledger.ledger.Display(display)
	default:
		return fmt.Errorf("transaction side %q: %w", tx.Side, ports.ErrInvalidRequest)
	}
}

// Run applies txs in order. Rejected transactions are counted and skipped;
// any other error stops the run.
func (t *Trader) Run(ctx context.Context, txs []domain.Transaction, display io.Writer) error {
	for i, tx := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := t.Execute(ctx, tx, display)
		if err == nil {
			continue
		}
		if IsRejection(err) {
			t.rejected++
			t.logger.Debug(ctx, "Transaction skipped", map[string]interface{}{
				"index": i, "side": string(tx.Side), "symbol": tx.Symbol, "error": err.Error(),
			})
			continue
		}
		return fmt.Errorf("transaction %d: %w", i+1, err)
	}
	return nil
}

// Profit sums the profit of every recorded sale.
func (t *Trader) Profit() float64 {
	var total float64
	for _, p := range t.profitPerSale {
		total += p
	}
	return total
}

// LastProfit returns the profit of the latest sale, 0 before any sale.
func (t *Trader) LastProfit() float64 {
	if len(t.sales) == 0 {
		return 0
	}
	return t.sales[len(t.sales)-1].Profit()
}

// AccumulatedProfit returns the running profit total, starting at 0 and
// growing by one entry per sale.
func (t *Trader) AccumulatedProfit() []float64 {
	acc := make([]float64, 0, len(t.profitPerSale)+1)
	acc = append(acc, 0)
	var running float64
	for _, p := range t.profitPerSale {
		running += p
		acc = append(acc, running)
	}
	return acc
}

// Revenue sums quantity times price over recorded sales.
func (t *Trader) Revenue() float64 {
	var total float64
	for _, s := range t.sales {
		total += s.Revenue()
	}
	return total
}

// LastRevenue returns the revenue of the latest sale, 0 before any sale.
func (t *Trader) LastRevenue() float64 {
	if len(t.sales) == 0 {
		return 0
	}
	return t.sales[len(t.sales)-1].Revenue()
}

func (t *Trader) Balance() float64 {
	return t.balance
}

// BalanceHistory returns the balance before the first transaction and after
// every buy. Sales credit the balance without adding an entry.
func (t *Trader) BalanceHistory() []float64 {
	return append([]float64(nil), t.balanceHistory...)
}

func (t *Trader) Sales() []*domain.SaleOrder {
	return append([]*domain.SaleOrder(nil), t.sales...)
}

func (t *Trader) Rejected() int {
	return t.rejected
}

// TotalTimes returns the time spent in buy and sell strategies.
func (t *Trader) TotalTimes() (buy, sell time.Duration) {
	return t.ledger.buyTime, t.ledger.sellTime
}

// Settings names the strategy pair, e.g. "fifo, lowest".
func (t *Trader) Settings() string {
	return SettingsString(t.buy, t.sell)
}

// SettingsString names a strategy pair.
func SettingsString(buy domain.BuyStrategy, sell domain.SellStrategy) string {
	return fmt.Sprintf("%s, %s", buy, sell)
}

func (t *Trader) String() string {
	return "Trader: " + t.Settings()
}

// Result summarises the replay so far.
func (t *Trader) Result() domain.RunResult {
	shares := make(map[string]int)
	for _, sym := range t.ledger.ledger.Symbols() {
		shares[sym] = t.ledger.ledger.NumberOfShares(sym)
	}
	buyTime, sellTime := t.TotalTimes()
	return domain.RunResult{
		BuyStrategy:    t.buy,
		SellStrategy:   t.sell,
		Transactions:   t.transactions,
		SaleCount:      len(t.sales),
		RejectedSales:  t.rejected,
		Profit:         t.Profit(),
		Revenue:        t.Revenue(),
		InitialBalance: t.initialBalance,
		FinalBalance:   t.balance,
		Shares:         shares,
		BuyTime:        buyTime,
		SellTime:       sellTime,
		Sales:          t.Sales(),
	}
}
