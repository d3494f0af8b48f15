package delivery

import (
	"errors"
	"net/http"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status  string      `json:"Status"`
	Message string      `json:"Message"`
	Data    interface{} `json:"Data,omitempty"`
}

func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Status:  "Success",
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  "Fail",
		Message: message,
	})
}

func mapErrorToStatus(err error) int {
	// out of stock is reported as not found by the catalog but is a state conflict for clients
	if errors.Is(err, domain.ErrOutOfStock) {
		return http.StatusConflict
	}
	if errors.Is(err, usecase.ErrSnapshotDisabled) {
		return http.StatusNotImplemented
	}

	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindParse:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindEmptyCatalog:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
