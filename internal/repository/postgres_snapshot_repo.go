package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const snapshotTable = "catalog_products"

const createSnapshotTable = `
        CREATE TABLE IF NOT EXISTS catalog_products (
            position INTEGER NOT NULL,
            name     TEXT    PRIMARY KEY,
            price    NUMERIC NOT NULL CHECK (price >= 0),
            quantity INTEGER NOT NULL CHECK (quantity >= 0)
        )`

// Tables created with a fixed-scale price column are widened in place.
const widenPriceColumn = `ALTER TABLE catalog_products ALTER COLUMN price TYPE NUMERIC`

type PostgresSnapshotRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresSnapshotRepository(db *sql.DB, logger *logrus.Logger) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{
		db:  db,
		log: logger,
	}
}

func (r *PostgresSnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSnapshotTable); err != nil {
		r.log.Errorf("Repository: Failed to create %s table: %v", snapshotTable, err)
		return fmt.Errorf("could not create snapshot table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, widenPriceColumn); err != nil {
		r.log.Errorf("Repository: Failed to widen %s.price: %v", snapshotTable, err)
		return fmt.Errorf("could not migrate snapshot table: %w", err)
	}
	return nil
}

// Save replaces the stored snapshot with products in one transaction.
func (r *PostgresSnapshotRepository) Save(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		r.log.Warn("Repository: Refusing to store empty catalog snapshot")
		return domain.NewEmptyCatalogError("no products to save")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
		r.log.Errorf("Repository: Failed to clear snapshot: %v", err)
		return fmt.Errorf("could not clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(snapshotTable, "position", "name", "price", "quantity"))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	for i, p := range products {
		if _, err := stmt.ExecContext(ctx, i, p.Name, p.Price.String(), p.Quantity); err != nil {
			_ = stmt.Close()
			return r.mapWriteError(err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return r.mapWriteError(err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	r.log.Infof("Repository: Stored snapshot of %d products", len(products))
	return nil
}

func (r *PostgresSnapshotRepository) Load(ctx context.Context) ([]domain.Product, error) {
	query := `
        SELECT name, price, quantity
        FROM catalog_products
        ORDER BY position ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Repository: Failed to query snapshot: %v", err)
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.Name, &p.Price, &p.Quantity); err != nil {
			r.log.Errorf("Repository: Failed to scan snapshot row: %v", err)
			return nil, domain.WrapError(domain.KindParse, err, "could not decode snapshot row")
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during snapshot iteration: %v", err)
		return nil, fmt.Errorf("error iterating snapshot: %w", err)
	}

	if len(products) == 0 {
		r.log.Warn("Repository: No catalog snapshot stored")
		return nil, domain.NewNotFoundError("no catalog snapshot stored")
	}
	r.log.Infof("Repository: Loaded snapshot of %d products", len(products))
	return products, nil
}

func (r *PostgresSnapshotRepository) mapWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23514":
			r.log.Warnf("Repository: Check constraint violation in snapshot: %s", pqErr.Message)
			return domain.WrapError(domain.KindValidation, err, "snapshot data constraint violation")
		case "23505":
			r.log.Warnf("Repository: Duplicate product in snapshot: %s", pqErr.Detail)
			return domain.WrapError(domain.KindValidation, err, "duplicate product in snapshot")
		}
	}
	r.log.Errorf("Repository: Failed to write snapshot: %v", err)
	return fmt.Errorf("could not write snapshot: %w", err)
}
