package grpc

import (
	"context"
	"errors"
	"math"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/golang/protobuf/ptypes/empty"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
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

func mapDomainProductToProto(p *domain.Product) *structpb.Struct {
	if p == nil {
		return nil
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":     structpb.NewStringValue(p.Name),
		"price":    structpb.NewStringValue(p.Price.String()),
		"quantity": structpb.NewNumberValue(float64(p.Quantity)),
	}}
}

func mapDomainProductsToProto(products []domain.Product) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(products))
	for i := range products {
		values = append(values, structpb.NewStructValue(mapDomainProductToProto(&products[i])))
	}
	return &structpb.ListValue{Values: values}
}

// parseAddRequest reads name, price (string or number) and an integral
// quantity out of the request struct.
func parseAddRequest(req *structpb.Struct) (string, decimal.Decimal, int, error) {
	fields := req.GetFields()

	nameVal, ok := fields["name"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", decimal.Zero, 0, status.Error(codes.InvalidArgument, "name must be a string")
	}

	var price decimal.Decimal
	switch v := fields["price"].GetKind().(type) {
	case *structpb.Value_StringValue:
		parsed, err := decimal.NewFromString(v.StringValue)
		if err != nil {
			return "", decimal.Zero, 0, status.Errorf(codes.InvalidArgument, "invalid price %q", v.StringValue)
		}
		price = parsed
	case *structpb.Value_NumberValue:
		if math.IsNaN(v.NumberValue) || math.IsInf(v.NumberValue, 0) {
			return "", decimal.Zero, 0, status.Error(codes.InvalidArgument, "invalid price")
		}
		price = decimal.NewFromFloat(v.NumberValue)
	default:
		return "", decimal.Zero, 0, status.Error(codes.InvalidArgument, "price is required")
	}

	qtyVal, ok := fields["quantity"].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return "", decimal.Zero, 0, status.Error(codes.InvalidArgument, "quantity must be a number")
	}
	q := qtyVal.NumberValue
	if q != math.Trunc(q) || q > math.MaxInt32 || q < math.MinInt32 {
		return "", decimal.Zero, 0, status.Errorf(codes.InvalidArgument, "quantity must be a whole number, got %v", q)
	}

	return nameVal.StringValue, price, int(q), nil
}

func (h *CatalogHandler) AddProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, price, quantity, err := parseAddRequest(req)
	if err != nil {
		h.log.Warnf("gRPC Handler: Invalid AddProduct request: %v", err)
		return nil, err
	}
	h.log.Infof("gRPC Handler: Received AddProduct request: Name=%s", name)

	product, err := h.useCase.AddProduct(name, price, quantity)
	if err != nil {
		h.log.Errorf("gRPC Handler: AddProduct use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return mapDomainProductToProto(product), nil
}

func (h *CatalogHandler) GetProduct(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received GetProduct request: Name=%s", req.GetValue())

	product, err := h.useCase.GetProduct(req.GetValue())
	if err != nil {
		h.log.Warnf("gRPC Handler: GetProduct use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return mapDomainProductToProto(product), nil
}

func (h *CatalogHandler) ListProducts(ctx context.Context, _ *empty.Empty) (*structpb.ListValue, error) {
	h.log.Info("gRPC Handler: Received ListProducts request")
	return mapDomainProductsToProto(h.useCase.ListProducts()), nil
}

func (h *CatalogHandler) Purchase(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received Purchase request: Name=%s", req.GetValue())

	product, err := h.useCase.PurchaseProduct(req.GetValue())
	if err != nil {
		h.log.Warnf("gRPC Handler: Purchase use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return mapDomainProductToProto(product), nil
}

func (h *CatalogHandler) ApplyDiscount(ctx context.Context, req *wrapperspb.DoubleValue) (*structpb.ListValue, error) {
	h.log.Infof("gRPC Handler: Received ApplyDiscount request: Percent=%v", req.GetValue())
	if math.IsNaN(req.GetValue()) || math.IsInf(req.GetValue(), 0) {
		return nil, status.Error(codes.InvalidArgument, "invalid discount percentage")
	}

	products, err := h.useCase.ApplyDiscount(decimal.NewFromFloat(req.GetValue()))
	if err != nil {
		h.log.Warnf("gRPC Handler: ApplyDiscount use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return mapDomainProductsToProto(products), nil
}

func (h *CatalogHandler) TotalValue(ctx context.Context, _ *empty.Empty) (*wrapperspb.StringValue, error) {
	total := h.useCase.TotalValue()
	h.log.Infof("gRPC Handler: Total value %s", total.StringFixed(2))
	return wrapperspb.String(total.StringFixed(2)), nil
}

func (h *CatalogHandler) OutOfStock(ctx context.Context, _ *empty.Empty) (*structpb.ListValue, error) {
	names := h.useCase.OutOfStock()
	values := make([]*structpb.Value, 0, len(names))
	for _, name := range names {
		values = append(values, structpb.NewStringValue(name))
	}
	return &structpb.ListValue{Values: values}, nil
}

func (h *CatalogHandler) ExportCSV(ctx context.Context, req *wrapperspb.StringValue) (*empty.Empty, error) {
	path, count, err := h.useCase.ExportCSV(req.GetValue())
	if err != nil {
		h.log.Errorf("gRPC Handler: ExportCSV use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Exported %d products to %s", count, path)
	return &empty.Empty{}, nil
}

func (h *CatalogHandler) ImportCSV(ctx context.Context, req *wrapperspb.StringValue) (*structpb.ListValue, error) {
	products, err := h.useCase.ImportCSV(req.GetValue())
	if err != nil {
		h.log.Errorf("gRPC Handler: ImportCSV use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Imported %d products", len(products))
	return mapDomainProductsToProto(products), nil
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrOutOfStock) {
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	if errors.Is(err, usecase.ErrSnapshotDisabled) {
		return status.Error(codes.Unimplemented, err.Error())
	}

	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindParse:
		return status.Error(codes.InvalidArgument, err.Error())
	case domain.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case domain.KindEmptyCatalog:
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Errorf(codes.Internal, "Internal server error: %v", err)
	}
}
