package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Catalog is the in-memory collection of products keyed by name. Iteration
// follows insertion order; overwriting a name keeps its position.
//
// Catalog is not safe for concurrent use.
type Catalog struct {
	order    []string
	products map[string]Product
}

func NewCatalog() *Catalog {
	return &Catalog{products: make(map[string]Product)}
}

// NewCatalogFrom builds a catalog from persisted records. It rejects blank
// names, duplicates and negative values so a loaded catalog always satisfies
// the same invariants as one built through Add.
func NewCatalogFrom(products []Product) (*Catalog, error) {
	c := &Catalog{
		order:    make([]string, 0, len(products)),
		products: make(map[string]Product, len(products)),
	}
	for i, p := range products {
		if err := validateName(p.Name); err != nil {
			return nil, NewValidationError("record %d: %s", i+1, err.Message)
		}
		if _, dup := c.products[p.Name]; dup {
			return nil, NewValidationError("record %d: duplicate product name %q", i+1, p.Name)
		}
		if p.Price.IsNegative() {
			return nil, NewValidationError("record %d: product %q price cannot be negative", i+1, p.Name)
		}
		if p.Quantity < 0 {
			return nil, NewValidationError("record %d: product %q quantity cannot be negative", i+1, p.Name)
		}
		c.order = append(c.order, p.Name)
		c.products[p.Name] = p
	}
	return c, nil
}

// Add inserts the product or replaces an existing one with the same name.
func (c *Catalog) Add(name string, price decimal.Decimal, quantity int) (Product, error) {
	if err := validateName(name); err != nil {
		return Product{}, err
	}
	if !price.IsPositive() {
		return Product{}, NewValidationError("product price must be positive, got %s", price)
	}
	if quantity <= 0 {
		return Product{}, NewValidationError("product quantity must be positive, got %d", quantity)
	}

	if _, exists := c.products[name]; !exists {
		c.order = append(c.order, name)
	}
	p := Product{Name: name, Price: price, Quantity: quantity}
	c.products[name] = p
	return p, nil
}

// validateName rejects blank names and names holding a carriage return, which
// the CSV reader folds into a plain newline.
func validateName(name string) *CatalogError {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("product name cannot be empty")
	}
	if strings.ContainsRune(name, '\r') {
		return NewValidationError("product name cannot contain a carriage return")
	}
	return nil
}

func (c *Catalog) Get(name string) (Product, bool) {
	p, ok := c.products[name]
	return p, ok
}

// Purchase takes one unit of the named product out of stock.
func (c *Catalog) Purchase(name string) (Product, error) {
	if name == "" {
		return Product{}, NewValidationError("no product selected")
	}
	p, ok := c.products[name]
	if !ok {
		return Product{}, NewNotFoundError("product %q not found", name)
	}
	if !p.InStock() {
		return Product{}, WrapError(KindNotFound, ErrOutOfStock, "product %q", name)
	}
	p.Quantity--
	c.products[name] = p
	return p, nil
}

// ApplyDiscount rescales every price by (1 - percent/100), rounded to cents
// with ties going to the even cent. Repeated calls compound.
func (c *Catalog) ApplyDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return NewValidationError("discount percentage must be between 0 and 100, got %s", percent)
	}
	factor := one.Sub(percent.Shift(-2))
	for name, p := range c.products {
		p.Price = p.Price.Mul(factor).RoundBank(2)
		c.products[name] = p
	}
	return nil
}

func (c *Catalog) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, p := range c.products {
		total = total.Add(p.Value())
	}
	return total
}

// OutOfStock lists the names of products with zero quantity in display order.
func (c *Catalog) OutOfStock() []string {
	names := []string{}
	for _, name := range c.order {
		if c.products[name].Quantity == 0 {
			names = append(names, name)
		}
	}
	return names
}

// Products returns a copy of all records in display order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.products[name])
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.order)
}
