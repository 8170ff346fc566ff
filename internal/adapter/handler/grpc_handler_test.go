package handler

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/ticket-inventory/internal/adapter/storage"
	"github.com/rl1809/ticket-inventory/internal/core/service"
)

func startGRPC(t *testing.T) (*grpc.ClientConn, *service.TableManager) {
	t.Helper()
	store := storage.NewMemoryAdapter(storage.SeedListings())
	manager := service.NewTableManager(store, zap.NewNop())
	t.Cleanup(manager.Close)
	require.NoError(t, manager.Load(context.Background()))

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	NewGRPCHandler(manager, zap.NewNop()).Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, manager
}

func TestGRPC_ListVisibleAndToggleFilter(t *testing.T) {
	conn, _ := startGRPC(t)
	client := NewInventoryClient(conn)
	ctx := context.Background()

	resp, err := client.ListVisible(ctx, &ListVisibleRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 3)

	resp, err = client.ToggleFilter(ctx, &ToggleFilterRequest{Field: "matchEvent", Value: "Barcelona vs Real Madrid - La Liga"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "3", resp.Rows[0].ID)

	_, err = client.ToggleFilter(ctx, &ToggleFilterRequest{Field: "nope", Value: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_EditCloneDelete(t *testing.T) {
	conn, manager := startGRPC(t)
	client := NewInventoryClient(conn)
	ctx := context.Background()

	edited, err := client.EditCell(ctx, &EditCellRequest{ID: "2", Field: "row", Value: "C"})
	require.NoError(t, err)
	assert.Equal(t, "C", edited.Listing.Row)

	cloned, err := client.Clone(ctx, &CloneRequest{ID: "2"})
	require.NoError(t, err)
	assert.NotEqual(t, "2", cloned.Listing.ID)
	assert.Equal(t, "C", cloned.Listing.Row)
	require.NoError(t, manager.Flush(ctx))

	deleted, err := client.Delete(ctx, &DeleteRequest{ID: cloned.Listing.ID})
	require.NoError(t, err)
	assert.Equal(t, cloned.Listing.ID, deleted.ID)
	assert.Len(t, manager.Items(), 3)

	_, err = client.Clone(ctx, &CloneRequest{ID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.EditCell(ctx, &EditCellRequest{ID: "1", Field: "quantity", Value: "-3"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_HealthService(t *testing.T) {
	conn, _ := startGRPC(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: inventoryServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
