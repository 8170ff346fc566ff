package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/rl1809/ticket-inventory/internal/core/domain"
	"github.com/rl1809/ticket-inventory/internal/core/service"
)

const inventoryServiceName = "ticketinventory.v1.Inventory"

type ListVisibleRequest struct{}

type ListVisibleResponse struct {
	Rows        []service.Row `json:"rows"`
	AllSelected bool          `json:"allSelected"`
}

type EditCellRequest struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

type CloneRequest struct {
	ID string `json:"id"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

type DeleteResponse struct {
	ID string `json:"id"`
}

type ToggleFilterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type ListingResponse struct {
	Listing domain.InventoryItem `json:"listing"`
}

// InventoryServer is the gRPC surface of the table manager.
type InventoryServer interface {
	ListVisible(context.Context, *ListVisibleRequest) (*ListVisibleResponse, error)
	EditCell(context.Context, *EditCellRequest) (*ListingResponse, error)
	Clone(context.Context, *CloneRequest) (*ListingResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
	ToggleFilter(context.Context, *ToggleFilterRequest) (*ListVisibleResponse, error)
}

type GRPCHandler struct {
	manager *service.TableManager
	logger  *zap.Logger
}

func NewGRPCHandler(manager *service.TableManager, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{manager: manager, logger: logger}
}

// Register adds the inventory, health and reflection services to s.
func (h *GRPCHandler) Register(s *grpc.Server) {
	s.RegisterService(&InventoryServiceDesc, h)

	hs := health.NewServer()
	hs.SetServingStatus(inventoryServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)

	reflection.Register(s)
}

func (h *GRPCHandler) ListVisible(ctx context.Context, req *ListVisibleRequest) (*ListVisibleResponse, error) {
	return h.visible(), nil
}

func (h *GRPCHandler) EditCell(ctx context.Context, req *EditCellRequest) (*ListingResponse, error) {
	updated, err := h.manager.EditCell(ctx, req.ID, req.Field, req.Value)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListingResponse{Listing: updated}, nil
}

func (h *GRPCHandler) Clone(ctx context.Context, req *CloneRequest) (*ListingResponse, error) {
	clone, err := h.manager.Clone(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(err)
	}
	return &ListingResponse{Listing: clone}, nil
}

func (h *GRPCHandler) Delete(ctx context.Context, req *DeleteRequest) (*DeleteResponse, error) {
	if err := h.manager.Delete(ctx, req.ID); err != nil {
		return nil, h.toStatus(err)
	}
	return &DeleteResponse{ID: req.ID}, nil
}

func (h *GRPCHandler) ToggleFilter(ctx context.Context, req *ToggleFilterRequest) (*ListVisibleResponse, error) {
	field, err := domain.ParseField(req.Field)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	h.manager.SetFilter(field, req.Value)
	return h.visible(), nil
}

func (h *GRPCHandler) visible() *ListVisibleResponse {
	return &ListVisibleResponse{Rows: h.manager.Rows(), AllSelected: h.manager.AllSelected()}
}

func (h *GRPCHandler) toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidField), errors.Is(err, service.ErrInvalidValue):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrClosed):
		return status.Error(codes.Unavailable, err.Error())
	}
	h.logger.Error("grpc call failed", zap.Error(err))
	return status.Error(codes.Unavailable, "store unavailable")
}

func unaryHandler[Req any, Resp any](call func(InventoryServer, context.Context, *Req) (*Resp, error), method string) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + inventoryServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(InventoryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: inventoryServiceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListVisible", Handler: unaryHandler(InventoryServer.ListVisible, "ListVisible")},
		{MethodName: "EditCell", Handler: unaryHandler(InventoryServer.EditCell, "EditCell")},
		{MethodName: "Clone", Handler: unaryHandler(InventoryServer.Clone, "Clone")},
		{MethodName: "Delete", Handler: unaryHandler(InventoryServer.Delete, "Delete")},
		{MethodName: "ToggleFilter", Handler: unaryHandler(InventoryServer.ToggleFilter, "ToggleFilter")},
	},
	Streams: []grpc.StreamDesc{},
}

// InventoryClient calls the inventory service over the JSON codec.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func (c *InventoryClient) invoke(ctx context.Context, method string, in, out interface{}) error {
	return c.cc.Invoke(ctx, "/"+inventoryServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
}

func (c *InventoryClient) ListVisible(ctx context.Context, in *ListVisibleRequest) (*ListVisibleResponse, error) {
	out := new(ListVisibleResponse)
	if err := c.invoke(ctx, "ListVisible", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) EditCell(ctx context.Context, in *EditCellRequest) (*ListingResponse, error) {
	out := new(ListingResponse)
	if err := c.invoke(ctx, "EditCell", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) Clone(ctx context.Context, in *CloneRequest) (*ListingResponse, error) {
	out := new(ListingResponse)
	if err := c.invoke(ctx, "Clone", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) Delete(ctx context.Context, in *DeleteRequest) (*DeleteResponse, error) {
	out := new(DeleteResponse)
	if err := c.invoke(ctx, "Delete", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *InventoryClient) ToggleFilter(ctx context.Context, in *ToggleFilterRequest) (*ListVisibleResponse, error) {
	out := new(ListVisibleResponse)
	if err := c.invoke(ctx, "ToggleFilter", in, out); err != nil {
		return nil, err
	}
	return out, nil
}
