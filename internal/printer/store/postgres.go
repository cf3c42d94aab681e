package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spoolman/internal/printer/models"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

const columns = `printer.id, printer.registered, printer.name, printer.power_watts,
	printer.depreciation_cost_per_hour, printer.comment`

// PostgresStore persists printers in PostgreSQL. Calls join the transaction
// carried by the context when there is one.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrinter(row rowScanner) (*models.Printer, error) {
	var (
		p            models.Printer
		power        sql.NullFloat64
		depreciation sql.NullFloat64
		comment      sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Registered, &p.Name, &power, &depreciation, &comment); err != nil {
		return nil, err
	}
	p.Registered = p.Registered.UTC()
	if power.Valid {
		p.PowerWatts = &power.Float64
	}
	if depreciation.Valid {
		p.DepreciationCostPerHour = &depreciation.Float64
	}
	if comment.Valid {
		p.Comment = &comment.String
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Printer) error {
	err := tx.Execer(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO printer (registered, name, power_watts, depreciation_cost_per_hour, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.Registered, p.Name, p.PowerWatts, p.DepreciationCostPerHour, p.Comment,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert printer: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*models.Printer, error) {
	row := tx.Execer(ctx, s.db).QueryRowContext(ctx, `SELECT `+columns+` FROM printer WHERE printer.id = $1`, id)
	p, err := scanPrinter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find printer %d: %w", id, err)
	}
	return p, nil
}

func (s *PostgresStore) Find(ctx context.Context, q *query.Query[models.Printer]) (query.Result[models.Printer], error) {
	stmt, err := q.SQL(columns, "printer")
	if err != nil {
		return query.Result[models.Printer]{}, err
	}
	db := tx.Execer(ctx, s.db)
	rows, err := db.QueryContext(ctx, stmt.Select, stmt.Args...)
	if err != nil {
		return query.Result[models.Printer]{}, fmt.Errorf("find printers: %w", err)
	}
	defer rows.Close()

	var items []models.Printer
	for rows.Next() {
		p, err := scanPrinter(rows)
		if err != nil {
			return query.Result[models.Printer]{}, fmt.Errorf("scan printer: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return query.Result[models.Printer]{}, fmt.Errorf("find printers: %w", err)
	}

	total := len(items)
	if stmt.Paged {
		if err := db.QueryRowContext(ctx, stmt.Count, stmt.Args...).Scan(&total); err != nil {
			return query.Result[models.Printer]{}, fmt.Errorf("count printers: %w", err)
		}
	}
	return query.Result[models.Printer]{Items: items, TotalCount: total}, nil
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Printer) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE printer
		SET name = $2, power_watts = $3, depreciation_cost_per_hour = $4, comment = $5
		WHERE id = $1`,
		p.ID, p.Name, p.PowerWatts, p.DepreciationCostPerHour, p.Comment,
	)
	if err != nil {
		return fmt.Errorf("update printer %d: %w", p.ID, err)
	}
	return expectOne(res)
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `DELETE FROM printer WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete printer %d: %w", id, err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
