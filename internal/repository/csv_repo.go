package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// header matches the layout of a name-indexed table: blank first cell, then the
// record columns.
var header = []string{"", "price", "quantity"}

type csvCatalogRepository struct {
	log *logrus.Logger
}

func NewCSVCatalogRepository(logger *logrus.Logger) domain.CatalogFileRepository {
	return &csvCatalogRepository{log: logger}
}

func (r *csvCatalogRepository) Export(path string, products []domain.Product) error {
	if len(products) == 0 {
		r.log.Warnf("Repository: Refusing to export empty catalog to %s", path)
		return domain.NewEmptyCatalogError("no products to save")
	}

	f, err := os.Create(path)
	if err != nil {
		r.log.Errorf("Repository: Failed to create catalog file %s: %v", path, err)
		return fmt.Errorf("could not create catalog file: %w", err)
	}

	if err := writeCatalog(f, products); err != nil {
		_ = f.Close()
		r.log.Errorf("Repository: Failed to write catalog file %s: %v", path, err)
		return fmt.Errorf("could not write catalog file: %w", err)
	}
	if err := f.Close(); err != nil {
		r.log.Errorf("Repository: Failed to close catalog file %s: %v", path, err)
		return fmt.Errorf("could not write catalog file: %w", err)
	}

	r.log.Infof("Repository: Exported %d products to %s", len(products), path)
	return nil
}

func (r *csvCatalogRepository) Import(path string) ([]domain.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.log.Warnf("Repository: Catalog file %s not found", path)
			return nil, domain.WrapError(domain.KindNotFound, err, "catalog file %q not found", path)
		}
		r.log.Errorf("Repository: Failed to open catalog file %s: %v", path, err)
		return nil, fmt.Errorf("could not open catalog file: %w", err)
	}
	defer f.Close()

	products, err := readCatalog(f)
	if err != nil {
		r.log.Warnf("Repository: Rejected catalog file %s: %v", path, err)
		return nil, err
	}

	r.log.Infof("Repository: Imported %d products from %s", len(products), path)
	return products, nil
}

func writeCatalog(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{p.Name, p.Price.String(), strconv.Itoa(p.Quantity)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readCatalog parses the whole table before returning anything, so a single bad
// row rejects the import.
func readCatalog(r io.Reader) ([]domain.Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewParseError("catalog file is empty")
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindParse, err, "could not read header")
	}
	if len(head) != len(header) || strings.TrimSpace(head[1]) != header[1] || strings.TrimSpace(head[2]) != header[2] {
		return nil, domain.NewParseError("line 1: expected header %q, got %q", strings.Join(header, ","), strings.Join(head, ","))
	}

	products := []domain.Product{}
	seen := make(map[string]struct{})
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.KindParse, err, "malformed row")
		}
		line, _ := cr.FieldPos(0)
		p, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name]; dup {
			return nil, domain.NewParseError("line %d: duplicate product name %q", line, p.Name)
		}
		seen[p.Name] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

func parseRow(row []string, line int) (domain.Product, error) {
	if len(row) != len(header) {
		return domain.Product{}, domain.NewParseError("line %d: expected %d columns, got %d", line, len(header), len(row))
	}
	name := row[0]
	if strings.TrimSpace(name) == "" {
		return domain.Product{}, domain.NewParseError("line %d: product name cannot be empty", line)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row[1]))
	if err != nil {
		return domain.Product{}, domain.WrapError(domain.KindParse, err, "line %d: invalid price %q", line, row[1])
	}
	if price.IsNegative() {
		return domain.Product{}, domain.NewParseError("line %d: price cannot be negative", line)
	}

	quantity, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return domain.Product{}, domain.WrapError(domain.KindParse, err, "line %d: invalid quantity %q", line, row[2])
	}
	if quantity < 0 {
		return domain.Product{}, domain.NewParseError("line %d: quantity cannot be negative", line)
	}

	return domain.Product{Name: name, Price: price, Quantity: quantity}, nil
}
