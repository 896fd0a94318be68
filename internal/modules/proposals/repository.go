package proposals

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/aristath/optionpilot/internal/database"
	"github.com/aristath/optionpilot/internal/domain"
	"github.com/aristath/optionpilot/pkg/dates"
)

// Repository persists allocation runs and their proposals.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository on the proposals database.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Run is a persisted allocation run header.
type Run struct {
	ID            string  `json:"id"`
	CreatedAt     string  `json:"created_at"`
	Mode          string  `json:"mode"`
	Allocation    string  `json:"allocation"`
	CashUSD       float64 `json:"cash_usd"`
	BudgetEquity  float64 `json:"budget_equity_usd"`
	BudgetOptions float64 `json:"budget_options_usd"`
	NBullish      int     `json:"n_bullish"`
	NBearish      int     `json:"n_bearish"`
	Note          string  `json:"note"`
}

// SaveRun stores a run header plus its proposals in one transaction
// and returns the generated run ID.
func (r *Repository) SaveRun(ctx context.Context, mode, allocation string, cash float64, plan domain.BudgetPlan, result domain.AllocationResult) (string, error) {
	runID := uuid.New().String()
	createdAt := dates.UTCNowISO()

	err := database.WithTransaction(r.db.Conn(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, created_at, mode, allocation, cash_usd,
				budget_equity_usd, budget_options_usd, n_bullish, n_bearish, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, createdAt, mode, allocation, cash,
			plan.BudgetEquity, plan.BudgetOptions,
			result.NBullish, result.NBearish, plan.Note)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for seq, p := range result.Proposals {
			var optSymbol, optType *string
			var optPrice, optDelta *float64
			if p.Leg != nil {
				optSymbol = &p.Leg.Symbol
				legType := string(p.Leg.Type)
				optType = &legType
				optPrice = &p.Leg.Price
				optDelta = p.Leg.Delta
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO proposals (run_id, seq, kind, ticker, direction, sleeve,
					score, est_cost_usd, contracts, qty, limit_price,
					option_symbol, option_type, option_price, option_delta, notes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, seq, p.Kind, p.Ticker, p.Idea.Direction, p.Idea.Sleeve,
				p.Idea.Score, p.EstCostUSD, p.Contracts, p.Qty, p.Limit,
				optSymbol, optType, optPrice, optDelta, p.Notes)
			if err != nil {
				return fmt.Errorf("failed to insert proposal %d: %w", seq, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// GetRun loads a run header by ID.
func (r *Repository) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, mode, allocation, cash_usd,
			budget_equity_usd, budget_options_usd, n_bullish, n_bearish, COALESCE(note, '')
		FROM runs WHERE id = ?`, runID)

	var run Run
	err := row.Scan(&run.ID, &run.CreatedAt, &run.Mode, &run.Allocation, &run.CashUSD,
		&run.BudgetEquity, &run.BudgetOptions, &run.NBullish, &run.NBearish, &run.Note)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	return &run, nil
}

// ListRuns returns the most recent run headers, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, mode, allocation, cash_usd,
			budget_equity_usd, budget_options_usd, n_bullish, n_bearish, COALESCE(note, '')
		FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CreatedAt, &run.Mode, &run.Allocation, &run.CashUSD,
			&run.BudgetEquity, &run.BudgetOptions, &run.NBullish, &run.NBearish, &run.Note); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StoredProposal is one persisted proposal row.
type StoredProposal struct {
	Seq          int      `json:"seq"`
	Kind         string   `json:"kind"`
	Ticker       string   `json:"ticker"`
	Direction    string   `json:"direction"`
	Sleeve       string   `json:"sleeve"`
	Score        float64  `json:"score"`
	EstCostUSD   float64  `json:"est_cost_usd"`
	Contracts    int      `json:"contracts"`
	Qty          int      `json:"qty"`
	LimitPrice   *float64 `json:"limit_price,omitempty"`
	OptionSymbol *string  `json:"option_symbol,omitempty"`
	OptionType   *string  `json:"option_type,omitempty"`
	OptionPrice  *float64 `json:"option_price,omitempty"`
	OptionDelta  *float64 `json:"option_delta,omitempty"`
	Notes        string   `json:"notes"`
}

// GetProposals loads the proposals of one run in sequence order.
func (r *Repository) GetProposals(ctx context.Context, runID string) ([]StoredProposal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, kind, ticker, COALESCE(direction, ''), COALESCE(sleeve, ''),
			COALESCE(score, 0), est_cost_usd, COALESCE(contracts, 0), COALESCE(qty, 0),
			limit_price, option_symbol, option_type, option_price, option_delta,
			COALESCE(notes, '')
		FROM proposals WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load proposals for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []StoredProposal
	for rows.Next() {
		var p StoredProposal
		if err := rows.Scan(&p.Seq, &p.Kind, &p.Ticker, &p.Direction, &p.Sleeve,
			&p.Score, &p.EstCostUSD, &p.Contracts, &p.Qty,
			&p.LimitPrice, &p.OptionSymbol, &p.OptionType, &p.OptionPrice, &p.OptionDelta,
			&p.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
