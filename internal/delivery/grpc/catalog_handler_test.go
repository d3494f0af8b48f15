package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startServer(t *testing.T) (CatalogServiceClient, *test.Hook, string) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	dir := t.TempDir()
	file := filepath.Join(dir, "products.csv")
	uc := usecase.NewCatalogUseCase(repository.NewCSVCatalogRepository(logger), nil, dir, file, logger)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	RegisterCatalogServiceServer(server, NewCatalogHandler(uc, logger))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCatalogServiceClient(conn), hook, file
}

func addRequest(t *testing.T, name string, price interface{}, quantity float64) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(map[string]interface{}{
		"name":     name,
		"price":    price,
		"quantity": quantity,
	})
	require.NoError(t, err)
	return s
}

func TestCatalogService_AddGetPurchase(t *testing.T) {
	client, hook, _ := startServer(t)
	ctx := context.Background()

	p, err := client.AddProduct(ctx, addRequest(t, "Widget", "9.99", 1))
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Fields["name"].GetStringValue())
	assert.Equal(t, "9.99", p.Fields["price"].GetStringValue())
	assert.Equal(t, float64(1), p.Fields["quantity"].GetNumberValue())

	_, err = client.AddProduct(ctx, addRequest(t, "Gadget", 2.5, 4))
	require.NoError(t, err)

	got, err := client.GetProduct(ctx, wrapperspb.String("Gadget"))
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.Fields["price"].GetStringValue())

	_, err = client.GetProduct(ctx, wrapperspb.String("Nope"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	p, err = client.Purchase(ctx, wrapperspb.String("Widget"))
	require.NoError(t, err)
	assert.Equal(t, float64(0), p.Fields["quantity"].GetNumberValue())

	_, err = client.Purchase(ctx, wrapperspb.String("Widget"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.Purchase(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out, err := client.OutOfStock(ctx, &empty.Empty{})
	require.NoError(t, err)
	require.Len(t, out.Values, 1)
	assert.Equal(t, "Widget", out.Values[0].GetStringValue())

	assert.NotEmpty(t, hook.AllEntries())
}

func TestCatalogService_AddInvalid(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	cases := map[string]*structpb.Struct{
		"fractional quantity": addRequest(t, "A", "1", 1.5),
		"zero quantity":       addRequest(t, "A", "1", 0),
		"bad price":           addRequest(t, "A", "abc", 1),
		"zero price":          addRequest(t, "A", "0", 1),
		"empty name":          addRequest(t, "", "1", 1),
		"missing fields":      {},
	}
	for name, req := range cases {
		_, err := client.AddProduct(ctx, req)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), name)
	}
}

func TestCatalogService_DiscountAndTotal(t *testing.T) {
	client, _, _ := startServer(t)
	ctx := context.Background()

	_, err := client.AddProduct(ctx, addRequest(t, "A", "10", 2))
	require.NoError(t, err)
	_, err = client.AddProduct(ctx, addRequest(t, "B", "5", 1))
	require.NoError(t, err)

	total, err := client.TotalValue(ctx, &empty.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "25.00", total.GetValue())

	list, err := client.ApplyDiscount(ctx, wrapperspb.Double(50))
	require.NoError(t, err)
	require.Len(t, list.Values, 2)
	assert.Equal(t, "5", list.Values[0].GetStructValue().Fields["price"].GetStringValue())

	_, err = client.ApplyDiscount(ctx, wrapperspb.Double(-1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	all, err := client.ListProducts(ctx, &empty.Empty{})
	require.NoError(t, err)
	assert.Len(t, all.Values, 2)
}

func TestCatalogService_ExportImport(t *testing.T) {
	client, _, file := startServer(t)
	ctx := context.Background()

	_, err := client.ExportCSV(ctx, wrapperspb.String(""))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.AddProduct(ctx, addRequest(t, "A", "1.25", 3))
	require.NoError(t, err)

	_, err = client.ExportCSV(ctx, wrapperspb.String(filepath.Base(file)))
	require.NoError(t, err)

	_, err = client.Purchase(ctx, wrapperspb.String("A"))
	require.NoError(t, err)

	list, err := client.ImportCSV(ctx, wrapperspb.String(""))
	require.NoError(t, err)
	require.Len(t, list.Values, 1)
	assert.Equal(t, float64(3), list.Values[0].GetStructValue().Fields["quantity"].GetNumberValue())

	_, err = client.ImportCSV(ctx, wrapperspb.String("missing.csv"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	for _, name := range []string{"../x.csv", "/etc/cron.d/x", "a/b.csv"} {
		_, err = client.ExportCSV(ctx, wrapperspb.String(name))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), name)
		_, err = client.ImportCSV(ctx, wrapperspb.String(name))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), name)
	}
}
