package delivery

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("bad"), http.StatusBadRequest},
		{"parse", domain.NewParseError("line 2"), http.StatusBadRequest},
		{"not found", domain.NewNotFoundError("gone"), http.StatusNotFound},
		{"out of stock", domain.WrapError(domain.KindNotFound, domain.ErrOutOfStock, "A"), http.StatusConflict},
		{"empty catalog", domain.NewEmptyCatalogError("none"), http.StatusConflict},
		{"snapshot disabled", usecase.ErrSnapshotDisabled, http.StatusNotImplemented},
		{"wrapped kind", fmt.Errorf("outer: %w", domain.NewNotFoundError("gone")), http.StatusNotFound},
		{"inconsistent stored snapshot", fmt.Errorf("could not restore snapshot: stored catalog is inconsistent: %v", domain.NewValidationError("dup")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatus(tt.err))
		})
	}
}
