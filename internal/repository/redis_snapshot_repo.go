package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"catalog_service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Snapshot layout: <prefix>:order is a list of names in display order and
// <prefix>:products a hash of name -> "price|quantity".
const (
	orderKeySuffix    = ":order"
	productsKeySuffix = ":products"
	fieldSeparator    = "|"
)

type RedisSnapshotRepository struct {
	client      *redis.Client
	orderKey    string
	productsKey string
	log         *logrus.Logger
}

func NewRedisSnapshotRepository(client *redis.Client, prefix string, logger *logrus.Logger) *RedisSnapshotRepository {
	if prefix == "" {
		prefix = "catalog"
	}
	return &RedisSnapshotRepository{
		client:      client,
		orderKey:    prefix + orderKeySuffix,
		productsKey: prefix + productsKeySuffix,
		log:         logger,
	}
}

func (r *RedisSnapshotRepository) Save(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		r.log.Warn("Repository: Refusing to store empty catalog snapshot")
		return domain.NewEmptyCatalogError("no products to save")
	}

	names := make([]interface{}, 0, len(products))
	fields := make([]interface{}, 0, 2*len(products))
	for _, p := range products {
		names = append(names, p.Name)
		fields = append(fields, p.Name, encodeRecord(p))
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.orderKey, r.productsKey)
		pipe.RPush(ctx, r.orderKey, names...)
		pipe.HSet(ctx, r.productsKey, fields...)
		return nil
	})
	if err != nil {
		r.log.Errorf("Repository: Failed to store snapshot in redis: %v", err)
		return fmt.Errorf("could not write snapshot: %w", err)
	}

	r.log.Infof("Repository: Stored snapshot of %d products under %s", len(products), r.orderKey)
	return nil
}

func (r *RedisSnapshotRepository) Load(ctx context.Context) ([]domain.Product, error) {
	names, err := r.client.LRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		r.log.Errorf("Repository: Failed to read snapshot order: %v", err)
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}
	if len(names) == 0 {
		r.log.Warn("Repository: No catalog snapshot stored")
		return nil, domain.NewNotFoundError("no catalog snapshot stored")
	}

	values, err := r.client.HMGet(ctx, r.productsKey, names...).Result()
	if err != nil {
		r.log.Errorf("Repository: Failed to read snapshot records: %v", err)
		return nil, fmt.Errorf("could not load snapshot: %w", err)
	}

	products := make([]domain.Product, 0, len(names))
	for i, name := range names {
		raw, ok := values[i].(string)
		if !ok {
			return nil, domain.NewParseError("snapshot record for %q is missing", name)
		}
		p, err := decodeRecord(name, raw)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	r.log.Infof("Repository: Loaded snapshot of %d products", len(products))
	return products, nil
}

func encodeRecord(p domain.Product) string {
	return p.Price.String() + fieldSeparator + strconv.Itoa(p.Quantity)
}

func decodeRecord(name, raw string) (domain.Product, error) {
	priceStr, qtyStr, found := strings.Cut(raw, fieldSeparator)
	if !found {
		return domain.Product{}, domain.NewParseError("snapshot record for %q is malformed: %q", name, raw)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return domain.Product{}, domain.WrapError(domain.KindParse, err, "snapshot record for %q has invalid price", name)
	}
	quantity, err := strconv.Atoi(qtyStr)
	if err != nil {
		return domain.Product{}, domain.WrapError(domain.KindParse, err, "snapshot record for %q has invalid quantity", name)
	}
	return domain.Product{Name: name, Price: price, Quantity: quantity}, nil
}
