package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"catalog_service/internal/delivery"
	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	dir := t.TempDir()
	uc := usecase.NewCatalogUseCase(repository.NewCSVCatalogRepository(logger), nil, dir, filepath.Join(dir, "products.csv"), logger)
	router := gin.New()
	delivery.NewCatalogHandler(uc, logger).RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server.URL
}

func runCmd(t *testing.T, url string, args ...string) (string, string, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"-url", url}, args...), &stdout, &stderr, logger)
	return stdout.String(), stderr.String(), err
}

func TestRun_Commands(t *testing.T) {
	url := startService(t)

	out, _, err := runCmd(t, url, "list")
	require.NoError(t, err)
	assert.Equal(t, "No products found\n", out)

	out, _, err = runCmd(t, url, "add", "Widget", "9.99", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Widget")
	assert.Contains(t, out, "9.99")

	_, _, err = runCmd(t, url, "add", "Gadget", "5", "1")
	require.NoError(t, err)

	out, _, err = runCmd(t, url, "get", "Gadget")
	require.NoError(t, err)
	assert.Contains(t, out, "5.00")

	out, _, err = runCmd(t, url, "total")
	require.NoError(t, err)
	assert.Equal(t, "34.97\n", out)

	_, _, err = runCmd(t, url, "purchase", "Gadget")
	require.NoError(t, err)

	out, _, err = runCmd(t, url, "out-of-stock")
	require.NoError(t, err)
	assert.Equal(t, "Gadget\n", out)

	out, _, err = runCmd(t, url, "discount", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "5.00")
	assert.Contains(t, out, "2.50")

	out, _, err = runCmd(t, url, "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "Widget"))
	assert.True(t, strings.HasPrefix(lines[2], "Gadget"))

	out, _, err = runCmd(t, url, "export", "backup.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 2 products")

	out, _, err = runCmd(t, url, "import", "backup.csv")
	require.NoError(t, err)
	assert.Equal(t, "imported 2 products\n", out)
}

func TestRun_Errors(t *testing.T) {
	url := startService(t)

	_, _, err := runCmd(t, url, "get", "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 1, exitCode(err))

	_, _, err = runCmd(t, url, "add", "A", "abc", "1")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, _, err = runCmd(t, url, "export", "../escape.csv")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, _, err = runCmd(t, url, "export")
	assert.True(t, errors.Is(err, domain.ErrEmptyCatalog))

	_, stderr, err := runCmd(t, url, "frobnicate")
	assert.ErrorIs(t, err, errUsage)
	assert.Equal(t, 2, exitCode(err))
	assert.Contains(t, stderr, "unknown command")

	_, stderr, err = runCmd(t, url, "get")
	assert.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr, "get takes 1 argument(s)")

	_, _, err = runCmd(t, url)
	assert.ErrorIs(t, err, errUsage)
}
