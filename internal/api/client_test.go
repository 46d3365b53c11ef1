package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/types"
)

func TestClient_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode([]types.Product{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithTokenProvider(func() string { return "tok-123" }))
	_, err := c.ListProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotReqID)
}

func TestClient_NoTokenMeansNoAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(types.Order{OrderNumber: "ORD-1", TrackingNumber: "TRK-9"})
	}))
	defer srv.Close()

	// Tracking lookups are callable without a session.
	c := NewClient(srv.URL, WithTokenProvider(func() string { return "" }))
	order, err := c.TrackOrder(context.Background(), "TRK-9")
	require.NoError(t, err)

	assert.Empty(t, gotAuth)
	assert.Equal(t, "ORD-1", order.OrderNumber)
}

func TestClient_ExtractsBackendErrorMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"order style", `{"error": "Order cannot be cancelled"}`, "Order cannot be cancelled"},
		{"auth style", `{"message": "Invalid username or password"}`, "Invalid username or password"},
		{"unparseable", `<html>bad gateway</html>`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL)
			_, err := c.GetOrder(context.Background(), "o1")
			require.Error(t, err)

			apiErr, ok := err.(*Error)
			require.True(t, ok, "expected *api.Error, got %T", err)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestClient_UnauthorizedHookFiresOnAnyRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Token expired"}`))
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := NewClient(srv.URL, WithUnauthorizedHook(func() { fired.Add(1) }))

	_, err := c.MyOrders(context.Background(), DefaultOrderQuery(0))
	require.Error(t, err)
	assert.Equal(t, int32(1), fired.Load())

	_, err = c.GetProduct(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, int32(2), fired.Load())
}

func TestClient_MyOrdersQueryParams(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = map[string]string{
			"page":    r.URL.Query().Get("page"),
			"size":    r.URL.Query().Get("size"),
			"sortBy":  r.URL.Query().Get("sortBy"),
			"sortDir": r.URL.Query().Get("sortDir"),
		}
		_ = json.NewEncoder(w).Encode(types.OrderPage{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.MyOrders(context.Background(), DefaultOrderQuery(2))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"page": "2", "size": "10", "sortBy": "orderDate", "sortDir": "desc",
	}, got)
}

func TestClient_CoalescesIdenticalInflightGets(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(150 * time.Millisecond)
		_ = json.NewEncoder(w).Encode([]types.Product{{ID: "p1", Name: "Widget"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := c.ListProducts(context.Background())
			assert.NoError(t, err)
			assert.Len(t, products, 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent identical GETs should share one wire call")
}

func TestClient_DistinctResourcesAreNotCoalesced(t *testing.T) {
	var paths sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths.Store(r.URL.Path, true)
		time.Sleep(50 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(types.Order{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	var wg sync.WaitGroup
	for _, id := range []string{"o1", "o2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = c.GetOrder(context.Background(), id)
		}(id)
	}
	wg.Wait()

	n := 0
	paths.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 2, n)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&Error{StatusCode: 404}))
	assert.False(t, IsNotFound(&Error{StatusCode: 400}))
	assert.False(t, IsNotFound(context.DeadlineExceeded))
}

func TestMessage_Fallback(t *testing.T) {
	assert.Equal(t, "Order cancelled", Message(&Error{StatusCode: 400, Message: "Order cancelled"}, "generic"))
	assert.Equal(t, "generic", Message(&Error{StatusCode: 500}, "generic"))
	assert.Equal(t, "generic", Message(context.DeadlineExceeded, "generic"))
}
