// domain/product.go
package domain

import "context"

// CatalogFileRepository reads and writes the flat-file form of the catalog.
type CatalogFileRepository interface {
	Export(path string, products []Product) error
	Import(path string) ([]Product, error)
}

// SnapshotRepository keeps a copy of the catalog in an external store.
type SnapshotRepository interface {
	Save(ctx context.Context, products []Product) error
	Load(ctx context.Context) ([]Product, error)
}
