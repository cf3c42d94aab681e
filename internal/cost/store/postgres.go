package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"spoolman/internal/cost/models"
	filament "spoolman/internal/filament/models"
	"spoolman/internal/platform/postgres"
	printer "spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

// writable lists the stored columns after id and created, in the order
// writeArgs produces their values.
var writable = append(append([]string{"printer_id", "filament_id"}, models.FigureNames...), "currency", "item_names", "notes")

var (
	selectColumns = "cost_calculation.id, cost_calculation.created, cost_calculation." +
		strings.Join(writable, ", cost_calculation.") + ", " +
		postgres.RelationJSON("printer") + ", " +
		"CASE WHEN filament.id IS NULL THEN NULL ELSE to_jsonb(filament.*) || jsonb_build_object('vendor', " +
		postgres.RelationJSON("vendor") + ") END"

	from = `cost_calculation
	LEFT JOIN printer ON printer.id = cost_calculation.printer_id
	LEFT JOIN filament ON filament.id = cost_calculation.filament_id
	LEFT JOIN vendor ON vendor.id = filament.vendor_id`
)

// PostgresStore persists cost calculations in PostgreSQL and joins their
// printer, filament and filament vendor on reads.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCost(row rowScanner) (*models.CostCalculation, error) {
	var (
		c            models.CostCalculation
		printerID    sql.NullInt64
		filamentID   sql.NullInt64
		currency     sql.NullString
		itemNames    sql.NullString
		notes        sql.NullString
		printerJSON  []byte
		filamentJSON []byte
		figures      = make([]sql.NullFloat64, len(models.FigureNames))
	)
	dest := []any{&c.ID, &c.Created, &printerID, &filamentID}
	for i := range figures {
		dest = append(dest, &figures[i])
	}
	dest = append(dest, &currency, &itemNames, &notes, &printerJSON, &filamentJSON)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	c.Created = c.Created.UTC()
	if printerID.Valid {
		c.PrinterID = &printerID.Int64
	}
	if filamentID.Valid {
		c.FilamentID = &filamentID.Int64
	}
	for i, p := range c.Figures() {
		if figures[i].Valid {
			v := figures[i].Float64
			*p = &v
		}
	}
	c.Currency = nullString(currency)
	c.ItemNames = nullString(itemNames)
	c.Notes = nullString(notes)

	p, err := postgres.DecodeRelation[printer.Printer](printerJSON)
	if err != nil {
		return nil, err
	}
	if p != nil {
		p.Registered = p.Registered.UTC()
	}
	c.Printer = p

	f, err := postgres.DecodeRelation[filament.Filament](filamentJSON)
	if err != nil {
		return nil, err
	}
	if f != nil {
		f.Registered = f.Registered.UTC()
		if f.Vendor != nil {
			f.Vendor.Registered = f.Vendor.Registered.UTC()
		}
	}
	c.Filament = f
	return &c, nil
}

func writeArgs(c *models.CostCalculation) []any {
	args := []any{c.PrinterID, c.FilamentID}
	for _, p := range c.Figures() {
		args = append(args, *p)
	}
	return append(args, c.Currency, c.ItemNames, c.Notes)
}

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(ph, ", ")
}

func (s *PostgresStore) Create(ctx context.Context, c *models.CostCalculation) error {
	stmt := `INSERT INTO cost_calculation (created, ` + strings.Join(writable, ", ") + `)
		VALUES ($1, ` + placeholders(2, len(writable)) + `) RETURNING id`
	args := append([]any{c.Created}, writeArgs(c)...)
	if err := tx.Execer(ctx, s.db).QueryRowContext(ctx, stmt, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("insert cost calculation: %w", postgres.Translate(err))
	}
	return s.reload(ctx, c)
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.CostCalculation, error) {
	row := tx.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM `+from+` WHERE cost_calculation.id = $1`, id)
	c, err := scanCost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cost calculation %d: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) Find(ctx context.Context, q *query.Query[models.CostCalculation]) (query.Result[models.CostCalculation], error) {
	stmt, err := q.SQL(selectColumns, from)
	if err != nil {
		return query.Result[models.CostCalculation]{}, err
	}
	db := tx.Execer(ctx, s.db)
	rows, err := db.QueryContext(ctx, stmt.Select, stmt.Args...)
	if err != nil {
		return query.Result[models.CostCalculation]{}, fmt.Errorf("find cost calculations: %w", err)
	}
	defer rows.Close()

	var items []models.CostCalculation
	for rows.Next() {
		c, err := scanCost(rows)
		if err != nil {
			return query.Result[models.CostCalculation]{}, fmt.Errorf("scan cost calculation: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return query.Result[models.CostCalculation]{}, fmt.Errorf("find cost calculations: %w", err)
	}

	total := len(items)
	if stmt.Paged {
		if err := db.QueryRowContext(ctx, stmt.Count, stmt.Args...).Scan(&total); err != nil {
			return query.Result[models.CostCalculation]{}, fmt.Errorf("count cost calculations: %w", err)
		}
	}
	return query.Result[models.CostCalculation]{Items: items, TotalCount: total}, nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.CostCalculation) error {
	set := make([]string, len(writable))
	for i, col := range writable {
		set[i] = col + " = $" + strconv.Itoa(i+2)
	}
	stmt := `UPDATE cost_calculation SET ` + strings.Join(set, ", ") + ` WHERE id = $1`
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, stmt, append([]any{c.ID}, writeArgs(c)...)...)
	if err != nil {
		return fmt.Errorf("update cost calculation %d: %w", c.ID, postgres.Translate(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return s.reload(ctx, c)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `DELETE FROM cost_calculation WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cost calculation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) reload(ctx context.Context, c *models.CostCalculation) error {
	fresh, err := s.FindByID(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
