package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spoolman/internal/filament/models"
	"spoolman/internal/platform/postgres"
	"spoolman/internal/query"
	"spoolman/pkg/platform/sentinel"
	"spoolman/pkg/platform/tx"
)

const vendorColumns = `vendor.id, vendor.registered, vendor.name, vendor.comment`

// PostgresVendorStore persists vendors in PostgreSQL.
type PostgresVendorStore struct {
	db *sql.DB
}

func NewPostgresVendors(db *sql.DB) *PostgresVendorStore {
	return &PostgresVendorStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVendor(row rowScanner) (*models.Vendor, error) {
	var (
		v       models.Vendor
		comment sql.NullString
	)
	if err := row.Scan(&v.ID, &v.Registered, &v.Name, &comment); err != nil {
		return nil, err
	}
	v.Registered = v.Registered.UTC()
	if comment.Valid {
		v.Comment = &comment.String
	}
	return &v, nil
}

func (s *PostgresVendorStore) Create(ctx context.Context, v *models.Vendor) error {
	err := tx.Execer(ctx, s.db).QueryRowContext(ctx,
		`INSERT INTO vendor (registered, name, comment) VALUES ($1, $2, $3) RETURNING id`,
		v.Registered, v.Name, v.Comment,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

func (s *PostgresVendorStore) FindByID(ctx context.Context, id int64) (*models.Vendor, error) {
	row := tx.Execer(ctx, s.db).QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendor WHERE vendor.id = $1`, id)
	v, err := scanVendor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor %d: %w", id, err)
	}
	return v, nil
}

func (s *PostgresVendorStore) Find(ctx context.Context, q *query.Query[models.Vendor]) (query.Result[models.Vendor], error) {
	return findAll(ctx, tx.Execer(ctx, s.db), q, vendorColumns, "vendor", scanVendor)
}

func (s *PostgresVendorStore) Update(ctx context.Context, v *models.Vendor) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx,
		`UPDATE vendor SET name = $2, comment = $3 WHERE id = $1`,
		v.ID, v.Name, v.Comment,
	)
	if err != nil {
		return fmt.Errorf("update vendor %d: %w", v.ID, err)
	}
	return expectOne(res)
}

func (s *PostgresVendorStore) Delete(ctx context.Context, id int64) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `DELETE FROM vendor WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete vendor %d: %w", id, err)
	}
	return expectOne(res)
}

var (
	filamentColumns = `filament.id, filament.registered, filament.name, filament.vendor_id, filament.material,
	filament.price, filament.weight, filament.density, filament.diameter, filament.comment, ` +
		postgres.RelationJSON("vendor")
	filamentFrom = `filament LEFT JOIN vendor ON vendor.id = filament.vendor_id`
)

// PostgresFilamentStore persists filaments in PostgreSQL and joins their
// vendor on reads.
type PostgresFilamentStore struct {
	db *sql.DB
}

func NewPostgresFilaments(db *sql.DB) *PostgresFilamentStore {
	return &PostgresFilamentStore{db: db}
}

func scanFilament(row rowScanner) (*models.Filament, error) {
	var (
		f                       models.Filament
		name, material, comment sql.NullString
		vendorID                sql.NullInt64
		price, weight           sql.NullFloat64
		vendor                  []byte
	)
	if err := row.Scan(&f.ID, &f.Registered, &name, &vendorID, &material,
		&price, &weight, &f.Density, &f.Diameter, &comment, &vendor); err != nil {
		return nil, err
	}
	f.Registered = f.Registered.UTC()
	f.Name = nullString(name)
	f.Material = nullString(material)
	f.Comment = nullString(comment)
	f.Price = nullFloat(price)
	f.Weight = nullFloat(weight)
	if vendorID.Valid {
		f.VendorID = &vendorID.Int64
	}
	v, err := postgres.DecodeRelation[models.Vendor](vendor)
	if err != nil {
		return nil, err
	}
	if v != nil {
		v.Registered = v.Registered.UTC()
	}
	f.Vendor = v
	return &f, nil
}

func (s *PostgresFilamentStore) Create(ctx context.Context, f *models.Filament) error {
	err := tx.Execer(ctx, s.db).QueryRowContext(ctx, `
		INSERT INTO filament (registered, name, vendor_id, material, price, weight, density, diameter, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		f.Registered, f.Name, f.VendorID, f.Material, f.Price, f.Weight, f.Density, f.Diameter, f.Comment,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert filament: %w", postgres.Translate(err))
	}
	return s.reload(ctx, f)
}

func (s *PostgresFilamentStore) FindByID(ctx context.Context, id int64) (*models.Filament, error) {
	row := tx.Execer(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+filamentColumns+` FROM `+filamentFrom+` WHERE filament.id = $1`, id)
	f, err := scanFilament(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find filament %d: %w", id, err)
	}
	return f, nil
}

func (s *PostgresFilamentStore) Find(ctx context.Context, q *query.Query[models.Filament]) (query.Result[models.Filament], error) {
	return findAll(ctx, tx.Execer(ctx, s.db), q, filamentColumns, filamentFrom, scanFilament)
}

func (s *PostgresFilamentStore) Update(ctx context.Context, f *models.Filament) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `
		UPDATE filament
		SET name = $2, vendor_id = $3, material = $4, price = $5, weight = $6,
			density = $7, diameter = $8, comment = $9
		WHERE id = $1`,
		f.ID, f.Name, f.VendorID, f.Material, f.Price, f.Weight, f.Density, f.Diameter, f.Comment,
	)
	if err != nil {
		return fmt.Errorf("update filament %d: %w", f.ID, postgres.Translate(err))
	}
	if err := expectOne(res); err != nil {
		return err
	}
	return s.reload(ctx, f)
}

func (s *PostgresFilamentStore) Delete(ctx context.Context, id int64) error {
	res, err := tx.Execer(ctx, s.db).ExecContext(ctx, `DELETE FROM filament WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete filament %d: %w", id, err)
	}
	return expectOne(res)
}

// reload refreshes f's vendor after a write.
func (s *PostgresFilamentStore) reload(ctx context.Context, f *models.Filament) error {
	fresh, err := s.FindByID(ctx, f.ID)
	if err != nil {
		return err
	}
	*f = *fresh
	return nil
}

func findAll[T any](ctx context.Context, db tx.DBTX, q *query.Query[T], columns, from string, scan func(rowScanner) (*T, error)) (query.Result[T], error) {
	stmt, err := q.SQL(columns, from)
	if err != nil {
		return query.Result[T]{}, err
	}
	rows, err := db.QueryContext(ctx, stmt.Select, stmt.Args...)
	if err != nil {
		return query.Result[T]{}, fmt.Errorf("find: %w", err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return query.Result[T]{}, fmt.Errorf("scan: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return query.Result[T]{}, fmt.Errorf("find: %w", err)
	}

	total := len(items)
	if stmt.Paged {
		if err := db.QueryRowContext(ctx, stmt.Count, stmt.Args...).Scan(&total); err != nil {
			return query.Result[T]{}, fmt.Errorf("count: %w", err)
		}
	}
	return query.Result[T]{Items: items, TotalCount: total}, nil
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

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return &f.Float64
}
