package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/middleware"
	"marketplace/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSessionID = "5f0e9a52-7c43-4a7e-9d55-2b7f1f6d7c01"

// serve mounts fn on pattern and issues one request as principal.
func serve(t *testing.T, pattern string, fn http.HandlerFunc, method, target string, body interface{}, principal model.Principal) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(pattern, fn)

	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithPrincipal(req.Context(), principal)
	ctx = middleware.WithSessionID(ctx, testSessionID)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req.WithContext(ctx))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, principal model.Principal, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, principal model.Principal, id string, input *model.ProductInput) (*model.Product, error) {
	args := m.Called(ctx, principal, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, principal model.Principal, id string) error {
	args := m.Called(ctx, principal, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) quote(args mock.Arguments) (*model.Quote, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockCartService) View(ctx context.Context, principal model.Principal, sessionID string) (*model.Quote, error) {
	return m.quote(m.Called(ctx, principal, sessionID))
}

func (m *MockCartService) AddItem(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error) {
	return m.quote(m.Called(ctx, principal, sessionID, req))
}

func (m *MockCartService) SetQuantity(ctx context.Context, principal model.Principal, sessionID, productID string, quantity int) (*model.Quote, error) {
	return m.quote(m.Called(ctx, principal, sessionID, productID, quantity))
}

func (m *MockCartService) RemoveItem(ctx context.Context, principal model.Principal, sessionID, productID string) (*model.Quote, error) {
	return m.quote(m.Called(ctx, principal, sessionID, productID))
}

func (m *MockCartService) BuyNow(ctx context.Context, principal model.Principal, sessionID string, req *model.LineRequest) (*model.Quote, error) {
	return m.quote(m.Called(ctx, principal, sessionID, req))
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Preview(ctx context.Context, principal model.Principal, sessionID string, dest *model.Point) (*model.Quote, error) {
	args := m.Called(ctx, principal, sessionID, dest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *MockCheckoutService) Checkout(ctx context.Context, principal model.Principal, sessionID string, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, principal, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetByID(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, status string) (*model.OrderResponse, error) {
	args := m.Called(ctx, principal, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

// MockDashboardService is a mock implementation of DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Buyer(ctx context.Context, principal model.Principal) (*model.BuyerDashboard, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BuyerDashboard), args.Error(1)
}

func (m *MockDashboardService) Seller(ctx context.Context, principal model.Principal) (*model.SellerDashboard, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SellerDashboard), args.Error(1)
}

func (m *MockDashboardService) Admin(ctx context.Context, principal model.Principal) (*model.AdminDashboard, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminDashboard), args.Error(1)
}

func (m *MockDashboardService) Sidebar(ctx context.Context, principal model.Principal) model.Sidebar {
	args := m.Called(ctx, principal)
	return args.Get(0).(model.Sidebar)
}

// MockProfileService is a mock implementation of ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, principal model.Principal) (*model.User, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, principal model.Principal, req *model.ProfileRequest) (*model.User, error) {
	args := m.Called(ctx, principal, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
