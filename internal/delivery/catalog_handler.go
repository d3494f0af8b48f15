package delivery

import (
	"errors"
	"io"
	"net/http"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	useCase usecase.CatalogUseCase
	log     *logrus.Logger
}

func NewCatalogHandler(uc usecase.CatalogUseCase, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		useCase: uc,
		log:     logger,
	}
}

// price and percent accept either a JSON number or a decimal string.
type addProductRequest struct {
	Name     string           `json:"name"`
	Price    *decimal.Decimal `json:"price"`
	Quantity *int             `json:"quantity"`
}

type discountRequest struct {
	Percent *decimal.Decimal `json:"percent"`
}

type fileRequest struct {
	Path string `json:"path"`
}

type exportResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (h *CatalogHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("", h.AddProduct)
		products.GET("", h.ListProducts)
		products.GET("/:name", h.GetProduct)
		products.POST("/:name/purchase", h.PurchaseProduct)
	}

	router.POST("/discount", h.ApplyDiscount)

	reports := router.Group("/reports")
	{
		reports.GET("/total-value", h.TotalValue)
		reports.GET("/out-of-stock", h.OutOfStock)
	}

	catalog := router.Group("/catalog")
	{
		catalog.POST("/export", h.ExportCSV)
		catalog.POST("/import", h.ImportCSV)
		catalog.POST("/snapshot", h.SaveSnapshot)
		catalog.POST("/restore", h.RestoreSnapshot)
	}
}

func (h *CatalogHandler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for add product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Price == nil || req.Quantity == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: price and quantity are required")
		return
	}

	product, err := h.useCase.AddProduct(req.Name, *req.Price, *req.Quantity)
	if err != nil {
		h.log.Warnf("Failed to add product '%s': %v", req.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to add product: "+err.Error())
		return
	}

	h.log.Infof("Product added successfully: Name %s", product.Name)
	SuccessResponse(c, http.StatusCreated, "Product added successfully", product)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	name := c.Param("name")

	product, err := h.useCase.GetProduct(name)
	if err != nil {
		h.log.Warnf("Failed to get product '%s': %v", name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve product: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products := h.useCase.ListProducts()
	if len(products) == 0 {
		SuccessResponse(c, http.StatusOK, "No products found", []domain.Product{})
		return
	}

	h.log.Infof("Listed %d products", len(products))
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *CatalogHandler) PurchaseProduct(c *gin.Context) {
	name := c.Param("name")

	product, err := h.useCase.PurchaseProduct(name)
	if err != nil {
		h.log.Warnf("Failed to purchase product '%s': %v", name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to purchase product: "+err.Error())
		return
	}

	h.log.Infof("Product purchased successfully: Name %s, remaining %d", product.Name, product.Quantity)
	SuccessResponse(c, http.StatusOK, "Product purchased successfully", product)
}

func (h *CatalogHandler) ApplyDiscount(c *gin.Context) {
	var req discountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for discount: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Percent == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: percent is required")
		return
	}

	products, err := h.useCase.ApplyDiscount(*req.Percent)
	if err != nil {
		h.log.Warnf("Failed to apply discount %s: %v", req.Percent, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to apply discount: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Discount applied successfully", products)
}

func (h *CatalogHandler) TotalValue(c *gin.Context) {
	total := h.useCase.TotalValue()
	SuccessResponse(c, http.StatusOK, "Total inventory value calculated", gin.H{
		"total_value": total.StringFixed(2),
	})
}

func (h *CatalogHandler) OutOfStock(c *gin.Context) {
	names := h.useCase.OutOfStock()
	message := "Out of stock products retrieved"
	if len(names) == 0 {
		message = "All products are in stock."
	}
	SuccessResponse(c, http.StatusOK, message, gin.H{"products": names})
}

func (h *CatalogHandler) ExportCSV(c *gin.Context) {
	req, ok := h.bindFileRequest(c)
	if !ok {
		return
	}

	path, count, err := h.useCase.ExportCSV(req.Path)
	if err != nil {
		h.log.Errorf("Failed to export catalog to %s: %v", path, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to export catalog: "+err.Error())
		return
	}

	h.log.Infof("Catalog exported: %d products to %s", count, path)
	SuccessResponse(c, http.StatusOK, "Catalog exported successfully", exportResult{Path: path, Count: count})
}

func (h *CatalogHandler) ImportCSV(c *gin.Context) {
	req, ok := h.bindFileRequest(c)
	if !ok {
		return
	}

	products, err := h.useCase.ImportCSV(req.Path)
	if err != nil {
		h.log.Errorf("Failed to import catalog: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to import catalog: "+err.Error())
		return
	}

	h.log.Infof("Catalog imported: %d products", len(products))
	SuccessResponse(c, http.StatusOK, "Catalog imported successfully", products)
}

func (h *CatalogHandler) SaveSnapshot(c *gin.Context) {
	count, err := h.useCase.SaveSnapshot(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to save snapshot: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to save snapshot: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Snapshot saved successfully", gin.H{"count": count})
}

func (h *CatalogHandler) RestoreSnapshot(c *gin.Context) {
	products, err := h.useCase.RestoreSnapshot(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to restore snapshot: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to restore snapshot: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Snapshot restored successfully", products)
}

// bindFileRequest accepts an empty body as "use the default file".
func (h *CatalogHandler) bindFileRequest(c *gin.Context) (fileRequest, bool) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log.Errorf("Failed to bind JSON for catalog file request: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}
