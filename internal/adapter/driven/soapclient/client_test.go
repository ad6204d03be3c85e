package soapclient_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/soapmock/internal/adapter/driven/memory"
	"github.com/ericfisherdev/soapmock/internal/adapter/driven/soapclient"
	httphandler "github.com/ericfisherdev/soapmock/internal/adapter/driving/http"
	"github.com/ericfisherdev/soapmock/internal/application"
	"github.com/ericfisherdev/soapmock/internal/soap"
)

type mockCredentialStore struct {
	users map[string]string
}

func (m *mockCredentialStore) AddUser(_ context.Context, username, password string) error {
	m.users[username] = password
	return nil
}

func (m *mockCredentialStore) Verify(_ context.Context, username, password string) (bool, error) {
	stored, ok := m.users[username]
	return ok && stored == password, nil
}

func (m *mockCredentialStore) Count(_ context.Context) (int, error) { return len(m.users), nil }

// startServer runs the real service mux behind httptest and counts WSDL hits.
func startServer(t *testing.T, mode httphandler.QueryMode) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	creds := &mockCredentialStore{users: map[string]string{"test_user": "test_password"}}
	auth := application.NewAuthService(creds, slog.Default())
	orders := application.NewOrderService(memory.NewOrderRegistry(memory.DemoOrders()...), slog.Default())
	dispatcher := httphandler.NewDispatcher(orders, mode, slog.Default())

	svc := soap.Service{
		Name:      "OrderService",
		Namespace: soapclient.DefaultNamespace,
		Prefix:    "ord",
		Location:  "http://127.0.0.1:8000/",
	}
	h, err := httphandler.NewHandler(auth, dispatcher, svc, 1<<16, slog.Default())
	require.NoError(t, err)
	mux := httphandler.NewServeMux(h, 0, slog.Default())

	var wsdlHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "wsdl") {
			wsdlHits.Add(1)
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &wsdlHits
}

func newClient(srv *httptest.Server, user, pass string) *soapclient.Client {
	return soapclient.NewClientWithHTTPClient(srv.Client(), srv.URL+"/", user, pass, slog.Default())
}

func TestClient_FetchWSDL(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "test_password")

	desc, err := c.FetchWSDL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "OrderService", desc.Name)
	assert.Equal(t, soapclient.DefaultNamespace, desc.Namespace)
	assert.ElementsMatch(t, []string{"createOrder", "queryStatus", "cancelOrder", "listOrders"}, desc.Operations)
}

func TestClient_FetchWSDLIsCached(t *testing.T) {
	srv, hits := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "test_password")

	for range 3 {
		_, err := c.FetchWSDL(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_Workflow(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "test_password")
	ctx := context.Background()

	id, err := c.CreateOrder(ctx, "Test order")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	status, err := c.QueryStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Processing", status)

	ok, err := c.CancelOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	status, err = c.QueryStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", status)

	listing, err := c.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ID=1, Description=Initial order\nID=2, Description=Shipped order\nID=3, Description=Test order", listing)
}

func TestClient_CancelUnknownOrder(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "test_password")

	ok, err := c.CancelOrder(context.Background(), 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_QueryOrderDetailMode(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeDetail)
	c := newClient(srv, "test_user", "test_password")

	detail, err := c.QueryOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, soapclient.OrderDetail{ID: 1, Description: "Initial order"}, detail)
}

func TestClient_FaultIsReturnedAsError(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "test_password")

	_, err := c.QueryStatus(context.Background(), 99)
	require.Error(t, err)

	var fault *soap.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, soap.FaultClient, fault.Code)
	assert.Equal(t, "order 99 not found", fault.String)
}

func TestClient_Unauthorized(t *testing.T) {
	srv, _ := startServer(t, httphandler.QueryModeStatus)
	c := newClient(srv, "test_user", "wrong")

	_, err := c.FetchWSDL(context.Background())
	require.ErrorIs(t, err, soapclient.ErrUnauthorized)

	_, err = c.ListOrders(context.Background())
	require.ErrorIs(t, err, soapclient.ErrUnauthorized)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newClient(srv, "u", "p")

	_, err := c.ListOrders(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}
