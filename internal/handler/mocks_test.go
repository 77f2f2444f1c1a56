package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"phonestore/internal/guard"
	"phonestore/internal/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) EnsureOpenCart(ctx context.Context, userID string) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartService) AddOrIncrement(ctx context.Context, userID, phoneID string, quantity int) (*model.CartLine, error) {
	args := m.Called(ctx, userID, phoneID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartService) SetQuantity(ctx context.Context, userID, lineID string, quantity int) (*model.CartLine, error) {
	args := m.Called(ctx, userID, lineID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartLine), args.Error(1)
}

func (m *MockCartService) RemoveLine(ctx context.Context, userID, lineID string) error {
	args := m.Called(ctx, userID, lineID)
	return args.Error(0)
}

func (m *MockCartService) View(ctx context.Context, userID string) (*model.CartView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, userID, paymentMethod string) (*model.CheckoutResult, error) {
	args := m.Called(ctx, userID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

// MockPurchaseOrderService is a mock implementation of PurchaseOrderService.
type MockPurchaseOrderService struct {
	mock.Mock
}

func (m *MockPurchaseOrderService) CreateOrder(ctx context.Context, userID string, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderService) Confirm(ctx context.Context, orderID string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderService) Cancel(ctx context.Context, orderID string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderService) ListPending(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderService) ListRegistered(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.PurchaseOrder]), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.Phone]), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id string) (*model.Phone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockCatalogService) Kardex(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error) {
	args := m.Called(ctx, phoneID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.StockMovement]), args.Error(1)
}

// MockAccountService is a mock implementation of AccountService.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetProfile(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockAccountService) SaveProfile(ctx context.Context, userID string, req *model.ProfileRequest) (*model.CustomerProfile, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockAccountService) Invoices(ctx context.Context, userID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.InvoiceWithLines]), args.Error(1)
}

// customer is the identity used by authenticated requests in these tests.
var customer = &guard.Identity{UserID: "user-1", Email: "ana@example.com", Role: "cliente", Token: "token"}

// serve routes one request through a router holding only pattern, so path
// variables resolve like they do in production. body may be nil, a raw
// string or a value encoded as JSON.
func serve(t *testing.T, h http.HandlerFunc, method, pattern, target string, body any, id *guard.Identity) *httptest.ResponseRecorder {
	t.Helper()

	r := mux.NewRouter()
	r.HandleFunc(pattern, h).Methods(method)

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id != nil {
		req = req.WithContext(guard.WithIdentity(req.Context(), id))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
