package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrSnapshotDisabled is returned by snapshot operations when no backend is
// configured.
var ErrSnapshotDisabled = errors.New("snapshot backend is not configured")

type CatalogUseCase interface {
	AddProduct(name string, price decimal.Decimal, quantity int) (*domain.Product, error)
	GetProduct(name string) (*domain.Product, error)
	ListProducts() []domain.Product
	PurchaseProduct(name string) (*domain.Product, error)
	ApplyDiscount(percent decimal.Decimal) ([]domain.Product, error)
	TotalValue() decimal.Decimal
	OutOfStock() []string
	ExportCSV(name string) (string, int, error)
	ImportCSV(name string) ([]domain.Product, error)
	SaveSnapshot(ctx context.Context) (int, error)
	RestoreSnapshot(ctx context.Context) ([]domain.Product, error)
	DefaultFile() string
}

type catalogUseCase struct {
	mu          sync.RWMutex
	catalog     *domain.Catalog
	files       domain.CatalogFileRepository
	snapshots   domain.SnapshotRepository
	dir         string
	defaultFile string
	log         *logrus.Logger
}

// NewCatalogUseCase starts with an empty catalog. snapshots may be nil.
// Caller-supplied file names are resolved inside dir; defaultFile is used as is.
func NewCatalogUseCase(files domain.CatalogFileRepository, snapshots domain.SnapshotRepository, dir, defaultFile string, logger *logrus.Logger) CatalogUseCase {
	return &catalogUseCase{
		catalog:     domain.NewCatalog(),
		files:       files,
		snapshots:   snapshots,
		dir:         dir,
		defaultFile: defaultFile,
		log:         logger,
	}
}

func (uc *catalogUseCase) DefaultFile() string {
	return uc.defaultFile
}

func (uc *catalogUseCase) AddProduct(name string, price decimal.Decimal, quantity int) (*domain.Product, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	_, replacing := uc.catalog.Get(name)
	product, err := uc.catalog.Add(name, price, quantity)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected product '%s': %v", name, err)
		return nil, err
	}

	if replacing {
		uc.log.Infof("Use Case: Product '%s' replaced (price %s, quantity %d)", name, product.Price, product.Quantity)
	} else {
		uc.log.Infof("Use Case: Product '%s' added (price %s, quantity %d)", name, product.Price, product.Quantity)
	}
	return &product, nil
}

func (uc *catalogUseCase) GetProduct(name string) (*domain.Product, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	product, ok := uc.catalog.Get(name)
	if !ok {
		uc.log.Warnf("Use Case: Product '%s' not found", name)
		return nil, domain.NewNotFoundError("product %q not found", name)
	}
	return &product, nil
}

func (uc *catalogUseCase) ListProducts() []domain.Product {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.catalog.Products()
}

func (uc *catalogUseCase) PurchaseProduct(name string) (*domain.Product, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	product, err := uc.catalog.Purchase(name)
	if err != nil {
		uc.log.Warnf("Use Case: Purchase of '%s' failed: %v", name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Purchased one '%s', %d left", name, product.Quantity)
	return &product, nil
}

func (uc *catalogUseCase) ApplyDiscount(percent decimal.Decimal) ([]domain.Product, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.catalog.ApplyDiscount(percent); err != nil {
		uc.log.Warnf("Use Case: Discount of %s%% rejected: %v", percent, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Discount of %s%% applied to %d products", percent, uc.catalog.Len())
	return uc.catalog.Products(), nil
}

func (uc *catalogUseCase) TotalValue() decimal.Decimal {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.catalog.TotalValue()
}

func (uc *catalogUseCase) OutOfStock() []string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	return uc.catalog.OutOfStock()
}

// ExportCSV writes the catalog to the named file in the catalog directory, or
// to the default file when name is blank, and reports which file was written
// and how many rows.
func (uc *catalogUseCase) ExportCSV(name string) (string, int, error) {
	path, err := uc.resolvePath(name)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected export file %q: %v", name, err)
		return "", 0, err
	}
	products := uc.ListProducts()

	uc.log.Infof("Use Case: Attempting to export %d products to %s", len(products), path)
	if err := uc.files.Export(path, products); err != nil {
		uc.log.Errorf("Use Case: Export to %s failed: %v", path, err)
		return path, 0, err
	}
	return path, len(products), nil
}

// ImportCSV replaces the whole catalog with the contents of the named file,
// resolved like ExportCSV. On any error the current catalog is left untouched.
func (uc *catalogUseCase) ImportCSV(name string) ([]domain.Product, error) {
	path, err := uc.resolvePath(name)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected import file %q: %v", name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to import catalog from %s", path)
	products, err := uc.files.Import(path)
	if err != nil {
		uc.log.Warnf("Use Case: Import from %s failed: %v", path, err)
		return nil, err
	}

	catalog, err := domain.NewCatalogFrom(products)
	if err != nil {
		uc.log.Warnf("Use Case: Imported catalog from %s is inconsistent: %v", path, err)
		return nil, domain.WrapError(domain.KindParse, err, "catalog file %q", path)
	}
	return uc.swap(catalog), nil
}

func (uc *catalogUseCase) SaveSnapshot(ctx context.Context) (int, error) {
	if uc.snapshots == nil {
		return 0, ErrSnapshotDisabled
	}
	products := uc.ListProducts()

	uc.log.Infof("Use Case: Attempting to store snapshot of %d products", len(products))
	if err := uc.snapshots.Save(ctx, products); err != nil {
		uc.log.Errorf("Use Case: Snapshot save failed: %v", err)
		return 0, err
	}
	return len(products), nil
}

func (uc *catalogUseCase) RestoreSnapshot(ctx context.Context) ([]domain.Product, error) {
	if uc.snapshots == nil {
		return nil, ErrSnapshotDisabled
	}

	uc.log.Info("Use Case: Attempting to restore catalog snapshot")
	products, err := uc.snapshots.Load(ctx)
	if err != nil {
		uc.log.Warnf("Use Case: Snapshot restore failed: %v", err)
		return nil, err
	}

	catalog, err := domain.NewCatalogFrom(products)
	if err != nil {
		// %v rather than %w: a bad stored snapshot must not map to a client error
		uc.log.Errorf("Use Case: Stored snapshot is inconsistent: %v", err)
		return nil, fmt.Errorf("could not restore snapshot: stored catalog is inconsistent: %v", err)
	}
	return uc.swap(catalog), nil
}

func (uc *catalogUseCase) swap(catalog *domain.Catalog) []domain.Product {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.catalog = catalog
	uc.log.Infof("Use Case: Catalog replaced with %d products", catalog.Len())
	return catalog.Products()
}

// resolvePath only accepts a bare file name so clients cannot reach outside
// the catalog directory.
func (uc *catalogUseCase) resolvePath(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return uc.defaultFile, nil
	}
	if name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return "", domain.NewValidationError("catalog file %q must be a plain file name", name)
	}
	return filepath.Join(uc.dir, name), nil
}
