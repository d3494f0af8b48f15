package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"catalog_service/internal/domain"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Name: "Widget", Price: decimal.RequireFromString("9.99"), Quantity: 3},
		{Name: "Gadget", Price: decimal.RequireFromString("120.5"), Quantity: 0},
		{Name: "Bolt", Price: decimal.RequireFromString("0.1234567891"), Quantity: 5},
	}
}

func assertSameProducts(t *testing.T, want, got []domain.Product) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Name, got[i].Name)
		assert.True(t, want[i].Price.Equal(got[i].Price), "price of %s: %s", want[i].Name, got[i].Price)
		assert.Equal(t, want[i].Quantity, got[i].Quantity)
	}
}

func getPostgresDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	return db
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestPostgresSnapshot_SaveLoad(t *testing.T) {
	db := getPostgresDB(t)
	defer db.Close()

	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	repo := NewPostgresSnapshotRepository(db, logger)
	require.NoError(t, repo.EnsureSchema(ctx))
	_, err := db.ExecContext(ctx, `DELETE FROM catalog_products`)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Save(ctx, sampleProducts()))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assertSameProducts(t, sampleProducts(), got)

	// a second save replaces rather than appends
	replacement := sampleProducts()[:1]
	require.NoError(t, repo.Save(ctx, replacement))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assertSameProducts(t, replacement, got)

	db.ExecContext(ctx, `DELETE FROM catalog_products`)
}

func TestPostgresSnapshot_PriceScaleNotCapped(t *testing.T) {
	assert.Contains(t, createSnapshotTable, "price    NUMERIC NOT NULL")
	assert.NotContains(t, createSnapshotTable, "NUMERIC(")
	assert.Equal(t, `ALTER TABLE catalog_products ALTER COLUMN price TYPE NUMERIC`, widenPriceColumn)
}

func TestPostgresSnapshot_SaveEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := NewPostgresSnapshotRepository(nil, logger)

	err := repo.Save(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyCatalog))
}

func TestRedisSnapshot_SaveLoad(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	repo := NewRedisSnapshotRepository(client, "catalog-test", logger)
	client.Del(ctx, "catalog-test:order", "catalog-test:products")

	_, err := repo.Load(ctx)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Save(ctx, sampleProducts()))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assertSameProducts(t, sampleProducts(), got)

	replacement := sampleProducts()[1:]
	require.NoError(t, repo.Save(ctx, replacement))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assertSameProducts(t, replacement, got)

	client.Del(ctx, "catalog-test:order", "catalog-test:products")
}

func TestRedisSnapshot_SaveEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	repo := NewRedisSnapshotRepository(nil, "", logger)

	err := repo.Save(context.Background(), []domain.Product{})
	assert.True(t, errors.Is(err, domain.ErrEmptyCatalog))
}

func TestDecodeRecord(t *testing.T) {
	p, err := decodeRecord("A", "1.25|7")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1.25")))
	assert.Equal(t, 7, p.Quantity)

	for _, raw := range []string{"1.25", "x|7", "1.25|seven"} {
		_, err := decodeRecord("A", raw)
		assert.True(t, errors.Is(err, domain.ErrParse), raw)
	}

	assert.Equal(t, "1.25|7", encodeRecord(p))
}
