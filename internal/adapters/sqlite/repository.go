package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"capitalGainsTracker/internal/domain"
	"capitalGainsTracker/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.RunRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

var _ ports.RunRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/capgains.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection serialises writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		buy_strategy INTEGER NOT NULL,
		sell_strategy INTEGER NOT NULL,
		transactions INTEGER NOT NULL,
		sale_count INTEGER NOT NULL,
		rejected_sales INTEGER NOT NULL,
		profit REAL NOT NULL,
		revenue REAL NOT NULL,
		initial_balance REAL NOT NULL,
		final_balance REAL NOT NULL,
		buy_time_ns INTEGER NOT NULL,
		sell_time_ns INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_shares (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		symbol TEXT NOT NULL,
		shares INTEGER NOT NULL,
		PRIMARY KEY (run_id, symbol)
	);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		price REAL NOT NULL,
		profit REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sale_lots (
		sale_id TEXT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		cost REAL NOT NULL,
		PRIMARY KEY (sale_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_runs_strategies ON runs (buy_strategy, sell_strategy);
	CREATE INDEX IF NOT EXISTS idx_sales_run_seq ON sales (run_id, seq);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveRun stores a run with its remaining shares and its sales in one
// transaction.
func (r *Repository) SaveRun(ctx context.Context, run *domain.RunResult) (err error) {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run must have an ID: %w", ports.ErrInvalidRequest)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for run %s: %w", run.ID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const runQuery = `
	INSERT INTO runs (id, buy_strategy, sell_strategy, transactions, sale_count, rejected_sales,
	                  profit, revenue, initial_balance, final_balance, buy_time_ns, sell_time_ns, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, runQuery,
		run.ID, int(run.BuyStrategy), int(run.SellStrategy), run.Transactions, run.SaleCount, run.RejectedSales,
		run.Profit, run.Revenue, run.InitialBalance, run.FinalBalance,
		run.BuyTime.Nanoseconds(), run.SellTime.Nanoseconds(), run.StartedAt); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, errors.Join(ports.ErrUpdateFailed, err))
	}

	for symbol, shares := range run.Shares {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO run_shares (run_id, symbol, shares) VALUES (?, ?, ?)`,
			run.ID, symbol, shares); err != nil {
			return fmt.Errorf("failed to insert shares of %s for run %s: %w", symbol, run.ID, err)
		}
	}

	for i, sale := range run.Sales {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO sales (id, run_id, seq, symbol, quantity, price, profit) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sale.ID, run.ID, i, sale.Symbol, sale.Quantity, sale.Price, sale.Profit()); err != nil {
			return fmt.Errorf("failed to insert sale %s for run %s: %w", sale.ID, run.ID, err)
		}
		for j, lot := range sale.Lots {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO sale_lots (sale_id, seq, cost) VALUES (?, ?, ?)`,
				sale.ID, j, lot.Cost); err != nil {
				return fmt.Errorf("failed to insert lot %d of sale %s: %w", j, sale.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	r.logger.Debug(ctx, "Run archived", map[string]interface{}{
		"runID": run.ID, "buy": run.BuyStrategy.String(), "sell": run.SellStrategy.String(), "sales": len(run.Sales),
	})
	return nil
}

const runColumns = `id, buy_strategy, sell_strategy, transactions, sale_count, rejected_sales,
	       profit, revenue, initial_balance, final_balance, buy_time_ns, sell_time_ns, started_at`

// FindRuns retrieves all runs, newest first. Shares and sales are not loaded.
func (r *Repository) FindRuns(ctx context.Context) ([]*domain.RunResult, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, buy_strategy, sell_strategy`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", errors.Join(ports.ErrQueryFailed, err))
	}
	defer rows.Close()

	runs := make([]*domain.RunResult, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run during FindRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// FindRunByID retrieves a run with its remaining shares. Returns nil, nil
// if not found.
func (r *Repository) FindRunByID(ctx context.Context, id string) (*domain.RunResult, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Run not found by ID", map[string]interface{}{"runID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query run %s: %w", id, errors.Join(ports.ErrQueryFailed, err))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT symbol, shares FROM run_shares WHERE run_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares for run %s: %w", id, err)
	}
	defer rows.Close()
	run.Shares = make(map[string]int)
	for rows.Next() {
		var symbol string
		var shares int
		if err := rows.Scan(&symbol, &shares); err != nil {
			return nil, fmt.Errorf("failed to scan shares for run %s: %w", id, err)
		}
		run.Shares[symbol] = shares
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating share rows: %w", err)
	}
	return run, nil
}

// FindSalesByRun retrieves the sales of a run in fill order, lots included.
func (r *Repository) FindSalesByRun(ctx context.Context, runID string) ([]*domain.SaleOrder, error) {
	const query = `
	SELECT s.id, s.symbol, s.quantity, s.price, l.cost
	FROM sales s
	LEFT JOIN sale_lots l ON l.sale_id = s.id
	WHERE s.run_id = ?
	ORDER BY s.seq, l.seq`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales for run %s: %w", runID, errors.Join(ports.ErrQueryFailed, err))
	}
	defer rows.Close()

	sales := make([]*domain.SaleOrder, 0)
	var current *domain.SaleOrder
	for rows.Next() {
		var (
			id, symbol string
			quantity   int
			price      float64
			cost       sql.NullFloat64
		)
		if err := rows.Scan(&id, &symbol, &quantity, &price, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan sale during FindSalesByRun: %w", err)
		}
		if current == nil || current.ID != id {
			current = &domain.SaleOrder{ID: id, Symbol: symbol, Quantity: quantity, Price: price, Lots: make([]domain.Lot, 0, quantity)}
			sales = append(sales, current)
		}
		if cost.Valid {
			current.AddFilledLot(domain.Lot{Symbol: symbol, Cost: cost.Float64})
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	return sales, nil
}

// ProfitByStrategy aggregates archived profit per strategy pair, ordered by
// (buy, sell).
func (r *Repository) ProfitByStrategy(ctx context.Context) ([]ports.StrategyProfit, error) {
	const query = `
	SELECT buy_strategy, sell_strategy, COUNT(*), SUM(profit), AVG(profit), MAX(profit), MIN(profit)
	FROM runs
	GROUP BY buy_strategy, sell_strategy
	ORDER BY buy_strategy, sell_strategy`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate profit: %w", errors.Join(ports.ErrQueryFailed, err))
	}
	defer rows.Close()

	stats := make([]ports.StrategyProfit, 0)
	for rows.Next() {
		var sp ports.StrategyProfit
		var buy, sell int
		if err := rows.Scan(&buy, &sell, &sp.Runs, &sp.TotalProfit, &sp.AverageProfit, &sp.BestProfit, &sp.WorstProfit); err != nil {
			return nil, fmt.Errorf("failed to scan strategy profit: %w", err)
		}
		sp.BuyStrategy = domain.BuyStrategy(buy)
		sp.SellStrategy = domain.SellStrategy(sell)
		stats = append(stats, sp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy profit rows: %w", err)
	}
	return stats, nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a row into a domain.RunResult struct.
func scanRun(s scanner) (*domain.RunResult, error) {
	run := &domain.RunResult{}
	var buy, sell int
	var buyNs, sellNs int64
	err := s.Scan(
		&run.ID, &buy, &sell, &run.Transactions, &run.SaleCount, &run.RejectedSales,
		&run.Profit, &run.Revenue, &run.InitialBalance, &run.FinalBalance, &buyNs, &sellNs, &run.StartedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	run.BuyStrategy = domain.BuyStrategy(buy)
	run.SellStrategy = domain.SellStrategy(sell)
	run.BuyTime = time.Duration(buyNs)
	run.SellTime = time.Duration(sellNs)
	return run, nil
}
