package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type envelope struct {
	Status  string          `json:"Status"`
	Message string          `json:"Message"`
	Data    json.RawMessage `json:"Data"`
}

type CatalogClient interface {
	AddProduct(ctx context.Context, name string, price decimal.Decimal, quantity int) (*domain.Product, error)
	GetProduct(ctx context.Context, name string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	Purchase(ctx context.Context, name string) (*domain.Product, error)
	ApplyDiscount(ctx context.Context, percent decimal.Decimal) ([]domain.Product, error)
	TotalValue(ctx context.Context) (decimal.Decimal, error)
	OutOfStock(ctx context.Context) ([]string, error)
	ExportCSV(ctx context.Context, name string) (string, int, error)
	ImportCSV(ctx context.Context, name string) ([]domain.Product, error)
}

type catalogHTTPClient struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

func NewCatalogHTTPClient(baseURL string, timeout time.Duration, logger *logrus.Logger) CatalogClient {
	return &catalogHTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		log: logger,
	}
}

func (c *catalogHTTPClient) AddProduct(ctx context.Context, name string, price decimal.Decimal, quantity int) (*domain.Product, error) {
	body := map[string]interface{}{"name": name, "price": price, "quantity": quantity}
	var product domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, &product); err != nil {
		return nil, err
	}
	c.log.Infof("CatalogClient: Added product '%s'", product.Name)
	return &product, nil
}

func (c *catalogHTTPClient) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(name), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *catalogHTTPClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *catalogHTTPClient) Purchase(ctx context.Context, name string) (*domain.Product, error) {
	var product domain.Product
	err := c.do(ctx, http.MethodPost, "/products/"+url.PathEscape(name)+"/purchase", nil, &product)
	if err != nil {
		return nil, err
	}
	c.log.Infof("CatalogClient: Purchased '%s', %d left", product.Name, product.Quantity)
	return &product, nil
}

func (c *catalogHTTPClient) ApplyDiscount(ctx context.Context, percent decimal.Decimal) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodPost, "/discount", map[string]interface{}{"percent": percent}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *catalogHTTPClient) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	var data struct {
		TotalValue decimal.Decimal `json:"total_value"`
	}
	if err := c.do(ctx, http.MethodGet, "/reports/total-value", nil, &data); err != nil {
		return decimal.Zero, err
	}
	return data.TotalValue, nil
}

func (c *catalogHTTPClient) OutOfStock(ctx context.Context) ([]string, error) {
	var data struct {
		Products []string `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/reports/out-of-stock", nil, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// ExportCSV asks the service to write its catalog to name inside its catalog
// directory. An empty name means the configured default file.
func (c *catalogHTTPClient) ExportCSV(ctx context.Context, name string) (string, int, error) {
	var data struct {
		Path  string `json:"path"`
		Count int    `json:"count"`
	}
	if err := c.do(ctx, http.MethodPost, "/catalog/export", fileBody(name), &data); err != nil {
		return "", 0, err
	}
	c.log.Infof("CatalogClient: Exported %d products to %s", data.Count, data.Path)
	return data.Path, data.Count, nil
}

func (c *catalogHTTPClient) ImportCSV(ctx context.Context, name string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodPost, "/catalog/import", fileBody(name), &products); err != nil {
		return nil, err
	}
	c.log.Infof("CatalogClient: Imported %d products", len(products))
	return products, nil
}

func fileBody(name string) interface{} {
	if name == "" {
		return nil
	}
	return map[string]string{"path": name}
}

// do sends one request and decodes the Data field of the response envelope
// into out. Non-2xx responses become catalog errors of the matching kind.
func (c *catalogHTTPClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			c.log.Errorf("CatalogClient: Failed to marshal %s %s body: %v", method, path, err)
			return fmt.Errorf("failed to prepare catalog request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to create %s %s request: %v", method, path, err)
		return fmt.Errorf("failed to create catalog request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("CatalogClient: Failed to execute %s %s: %v", method, path, err)
		return fmt.Errorf("failed to communicate with catalog service: %w", err)
	}
	defer resp.Body.Close()

	var response envelope
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.log.Warnf("CatalogClient: %s %s failed with status %d", method, path, resp.StatusCode)
			return statusError(path, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		c.log.Errorf("CatalogClient: Failed to decode %s %s response (status %d): %v", method, path, resp.StatusCode, err)
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warnf("CatalogClient: %s %s failed with status %d: %s", method, path, resp.StatusCode, response.Message)
		return statusError(path, resp.StatusCode, response.Message)
	}

	if out == nil || len(response.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(response.Data, out); err != nil {
		c.log.Errorf("CatalogClient: Failed to decode %s %s data: %v", method, path, err)
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

func statusError(path string, code int, message string) error {
	switch code {
	case http.StatusBadRequest:
		return domain.NewValidationError("%s", message)
	case http.StatusNotFound:
		return domain.NewNotFoundError("%s", message)
	case http.StatusConflict:
		// catalog routes answer 409 for an empty catalog, purchase for no stock
		if strings.HasPrefix(path, "/catalog/") {
			return domain.NewEmptyCatalogError(message)
		}
		return domain.WrapError(domain.KindNotFound, domain.ErrOutOfStock, "%s", message)
	default:
		return fmt.Errorf("catalog service returned status %d: %s", code, message)
	}
}
