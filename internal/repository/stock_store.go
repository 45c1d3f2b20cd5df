package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/apperrors"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/ledger"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/model"
	"github.com/ndewijer/Equity-Portfolio-Tracker/internal/portfolio"
)

const dayLayout = "2006-01-02"

// StockStore reads and writes a portfolio in the stock, stock_metrics,
// stock_aggregate and ledger_transaction tables.
type StockStore struct {
	db *sql.DB
	tx *sql.Tx
}

// NewStockStore creates a StockStore on a migrated database.
func NewStockStore(db *sql.DB) *StockStore {
	return &StockStore{db: db}
}

// WithTx returns a StockStore scoped to the provided transaction.
func (s *StockStore) WithTx(tx *sql.Tx) *StockStore {
	return &StockStore{
		db: s.db,
		tx: tx,
	}
}

func (s *StockStore) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Save replaces all stored data with p in a single transaction.
func (s *StockStore) Save(ctx context.Context, p *portfolio.Portfolio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	store := s.WithTx(tx)
	if err := store.clear(ctx); err != nil {
		return err
	}
	for _, h := range p.Holdings() {
		if err := store.insertHolding(ctx, h); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return nil
}

func (s *StockStore) clear(ctx context.Context) error {
	for _, table := range []string{"ledger_transaction", "stock_aggregate", "stock_metrics", "stock"} {
		if _, err := s.getQuerier().ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}
	return nil
}

func (s *StockStore) insertHolding(ctx context.Context, h *portfolio.Holding) error {
	q := s.getQuerier()

	_, err := q.ExecContext(ctx, `
		INSERT INTO stock (symbol, name, sector, current_price, last_dividend)
		VALUES (?, ?, ?, ?, ?)
	`, h.Symbol, h.Name, h.Sector, h.CurrentPrice, h.LastDividend)
	if err != nil {
		return fmt.Errorf("failed to insert stock %s: %w", h.Symbol, err)
	}

	for _, m := range h.YearData {
		_, err := q.ExecContext(ctx, `
			INSERT INTO stock_metrics (symbol, year, market_capitalization, earnings_per_share,
				closing_price, book_value_per_share, dividend_per_share)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, h.Symbol, m.Year, nullable(m.MarketCapitalization), m.EarningsPerShare,
			m.ClosingPrice, nullable(m.BookValuePerShare), m.DividendPerShare)
		if err != nil {
			return fmt.Errorf("failed to insert %s metrics %d: %w", h.Symbol, m.Year, err)
		}
	}

	for _, a := range h.AggregateData {
		_, err := q.ExecContext(ctx, `
			INSERT INTO stock_aggregate (symbol, year, earnings_per_share, pe_ratio, growth,
				price_per_book_value, dividends_yield)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, h.Symbol, a.Year, a.EarningsPerShare, nullable(a.PERatio), nullable(a.Growth),
			nullable(a.PricePerBookValue), nullable(a.DividendYield))
		if err != nil {
			return fmt.Errorf("failed to insert %s aggregate %d: %w", h.Symbol, a.Year, err)
		}
	}

	for seq, tx := range h.Ledger.Transactions() {
		r := toRow(tx)
		_, err := q.ExecContext(ctx, `
			INSERT INTO ledger_transaction (id, symbol, seq, type, day, shares, price, fee, tax, amount, buy_price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, tx.TransactionID(), h.Symbol, seq, string(tx.Kind()), tx.TransactionDay().Format(dayLayout),
			r.shares, r.price.String(), r.fee.String(), r.tax.String(), r.amount.String(), r.buyPrice.String())
		if err != nil {
			return fmt.Errorf("failed to insert %s transaction %s: %w", h.Symbol, tx.TransactionID(), err)
		}
	}
	return nil
}

// Load reads the stored portfolio. Ledgers are replayed to rebuild positions.
func (s *StockStore) Load(ctx context.Context, opts ...portfolio.Option) (*portfolio.Portfolio, error) {
	holdings, order, err := s.loadStocks(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadMetrics(ctx, holdings); err != nil {
		return nil, err
	}
	if err := s.loadAggregates(ctx, holdings); err != nil {
		return nil, err
	}
	if err := s.loadLedgers(ctx, holdings); err != nil {
		return nil, err
	}

	p := portfolio.New(opts...)
	for _, symbol := range order {
		if err := p.RestoreHolding(holdings[symbol]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *StockStore) loadStocks(ctx context.Context) (map[string]*portfolio.Holding, []string, error) {
	rows, err := s.getQuerier().QueryContext(ctx, `
		SELECT symbol, name, sector, current_price, last_dividend
		FROM stock
		ORDER BY symbol
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query stock table: %w", err)
	}
	defer rows.Close()

	holdings := make(map[string]*portfolio.Holding)
	var order []string
	for rows.Next() {
		var symbol, name, sector string
		var price, dividend float64
		if err := rows.Scan(&symbol, &name, &sector, &price, &dividend); err != nil {
			return nil, nil, fmt.Errorf("failed to scan stock table results: %w", err)
		}
		h := portfolio.NewHolding(symbol, name, sector, price)
		h.LastDividend = dividend
		holdings[symbol] = h
		order = append(order, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating stock table: %w", err)
	}
	return holdings, order, nil
}

func (s *StockStore) loadMetrics(ctx context.Context, holdings map[string]*portfolio.Holding) error {
	rows, err := s.getQuerier().QueryContext(ctx, `
		SELECT symbol, year, market_capitalization, earnings_per_share,
			closing_price, book_value_per_share, dividend_per_share
		FROM stock_metrics
	`)
	if err != nil {
		return fmt.Errorf("failed to query stock_metrics table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var m model.StockMetrics
		var marketCap, bookValue sql.NullFloat64
		if err := rows.Scan(&symbol, &m.Year, &marketCap, &m.EarningsPerShare,
			&m.ClosingPrice, &bookValue, &m.DividendPerShare); err != nil {
			return fmt.Errorf("failed to scan stock_metrics table results: %w", err)
		}
		m.MarketCapitalization = nullFloat(marketCap)
		m.BookValuePerShare = nullFloat(bookValue)

		h, ok := holdings[symbol]
		if !ok {
			return fmt.Errorf("%w: metrics for unknown stock %s", apperrors.ErrDataInconsistency, symbol)
		}
		h.YearData[m.Year] = m
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating stock_metrics table: %w", err)
	}
	return nil
}

func (s *StockStore) loadAggregates(ctx context.Context, holdings map[string]*portfolio.Holding) error {
	rows, err := s.getQuerier().QueryContext(ctx, `
		SELECT symbol, year, earnings_per_share, pe_ratio, growth,
			price_per_book_value, dividends_yield
		FROM stock_aggregate
	`)
	if err != nil {
		return fmt.Errorf("failed to query stock_aggregate table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var symbol string
		var a model.StockAggregate
		var pe, growth, pbv, yield sql.NullFloat64
		if err := rows.Scan(&symbol, &a.Year, &a.EarningsPerShare, &pe, &growth, &pbv, &yield); err != nil {
			return fmt.Errorf("failed to scan stock_aggregate table results: %w", err)
		}
		a.PERatio = nullFloat(pe)
		a.Growth = nullFloat(growth)
		a.PricePerBookValue = nullFloat(pbv)
		a.DividendYield = nullFloat(yield)

		h, ok := holdings[symbol]
		if !ok {
			return fmt.Errorf("%w: aggregate for unknown stock %s", apperrors.ErrDataInconsistency, symbol)
		}
		h.AggregateData[a.Year] = a
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating stock_aggregate table: %w", err)
	}
	return nil
}

func (s *StockStore) loadLedgers(ctx context.Context, holdings map[string]*portfolio.Holding) error {
	rows, err := s.getQuerier().QueryContext(ctx, `
		SELECT id, symbol, type, day, shares, price, fee, tax, amount, buy_price
		FROM ledger_transaction
		ORDER BY symbol, seq
	`)
	if err != nil {
		return fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	bySymbol := make(map[string][]ledger.Transaction)
	for rows.Next() {
		var id, symbol, kind, day string
		var shares int64
		var price, fee, tax, amount, buyPrice string
		if err := rows.Scan(&id, &symbol, &kind, &day, &shares, &price, &fee, &tax, &amount, &buyPrice); err != nil {
			return fmt.Errorf("failed to scan ledger_transaction table results: %w", err)
		}
		tx, err := fromRow(id, ledger.Kind(kind), day, shares, price, fee, tax, amount, buyPrice)
		if err != nil {
			return err
		}
		bySymbol[symbol] = append(bySymbol[symbol], tx)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	for symbol, txs := range bySymbol {
		h, ok := holdings[symbol]
		if !ok {
			return fmt.Errorf("%w: transactions for unknown stock %s", apperrors.ErrDataInconsistency, symbol)
		}
		l, err := ledger.Replay(txs)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", apperrors.ErrDataInconsistency, symbol, err)
		}
		h.Ledger = l
	}
	return nil
}

type row struct {
	shares   int64
	price    decimal.Decimal
	fee      decimal.Decimal
	tax      decimal.Decimal
	amount   decimal.Decimal
	buyPrice decimal.Decimal
}

func toRow(tx ledger.Transaction) row {
	switch t := tx.(type) {
	case ledger.Buy:
		return row{shares: t.Shares, price: t.Price, fee: t.Fee}
	case ledger.Sell:
		return row{shares: t.Shares, price: t.Price, fee: t.Fee, tax: t.Tax, buyPrice: t.BuyPrice}
	case ledger.Dividend:
		return row{shares: t.Shares, amount: t.AmountPerShare, tax: t.Tax}
	case ledger.Tax:
		return row{amount: t.Amount}
	}
	return row{}
}

func fromRow(id string, kind ledger.Kind, day string, shares int64, price, fee, tax, amount, buyPrice string) (ledger.Transaction, error) {
	d, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil, fmt.Errorf("%w: transaction %s day: %w", apperrors.ErrDataInconsistency, id, err)
	}

	var values [5]decimal.Decimal
	for i, s := range []string{price, fee, tax, amount, buyPrice} {
		if values[i], err = decimal.NewFromString(s); err != nil {
			return nil, fmt.Errorf("%w: transaction %s amount %q: %w", apperrors.ErrDataInconsistency, id, s, err)
		}
	}
	p, f, t, a, bp := values[0], values[1], values[2], values[3], values[4]

	switch kind {
	case ledger.KindBuy:
		return ledger.Buy{ID: id, Day: d, Shares: shares, Price: p, Fee: f}, nil
	case ledger.KindSell:
		return ledger.Sell{ID: id, Day: d, Shares: shares, Price: p, Fee: f, Tax: t, BuyPrice: bp}, nil
	case ledger.KindDividend:
		return ledger.Dividend{ID: id, Day: d, AmountPerShare: a, Shares: shares, Tax: t}, nil
	case ledger.KindTax:
		return ledger.Tax{ID: id, Day: d, Amount: a}, nil
	}
	return nil, fmt.Errorf("%w: transaction %s has unknown type %q", apperrors.ErrDataInconsistency, id, kind)
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return model.Float(n.Float64)
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
