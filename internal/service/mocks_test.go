package service

import (
	"context"

	"phonestore/internal/model"
	"phonestore/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockProfileRepository is a mock implementation of ProfileRepository.
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByOwner(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id string) (*model.CustomerProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerProfile), args.Error(1)
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *model.CustomerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *model.CustomerProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockPhoneRepository is a mock implementation of PhoneRepository.
type MockPhoneRepository struct {
	mock.Mock
}

func (m *MockPhoneRepository) List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.Phone]), args.Error(1)
}

func (m *MockPhoneRepository) GetByID(ctx context.Context, id string) (*model.Phone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Phone), args.Error(1)
}

func (m *MockPhoneRepository) AdjustStock(ctx context.Context, adj model.StockAdjustment) (*model.StockMovement, error) {
	args := m.Called(ctx, adj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StockMovement), args.Error(1)
}

func (m *MockPhoneRepository) Upsert(ctx context.Context, phone *model.Phone) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

// MockCartRepository is a mock implementation of CartRepository.
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ListByCustomer(ctx context.Context, profileID string) ([]model.Cart, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Cart), args.Error(1)
}

func (m *MockCartRepository) Create(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	args := m.Called(ctx, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Cart), args.Error(1)
}

func (m *MockCartRepository) UpdateState(ctx context.Context, cartID string, state model.CartState) error {
	args := m.Called(ctx, cartID, state)
	return args.Error(0)
}

// MockCartLineRepository is a mock implementation of CartLineRepository.
type MockCartLineRepository struct {
	mock.Mock
}

func (m *MockCartLineRepository) ListByCart(ctx context.Context, cartID string) ([]model.CartLine, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CartLine), args.Error(1)
}

func (m *MockCartLineRepository) Create(ctx context.Context, line *model.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartLineRepository) Update(ctx context.Context, line *model.CartLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockCartLineRepository) Delete(ctx context.Context, lineID string) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, invoiceID string) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CreateLine(ctx context.Context, line *model.InvoiceLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteLine(ctx context.Context, lineID string) error {
	args := m.Called(ctx, lineID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ListByCustomer(ctx context.Context, profileID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error) {
	args := m.Called(ctx, profileID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.InvoiceWithLines]), args.Error(1)
}

// MockPurchaseOrderRepository is a mock implementation of PurchaseOrderRepository.
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ListByState(ctx context.Context, state model.PurchaseOrderState, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	args := m.Called(ctx, state, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.PurchaseOrder]), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Confirm(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Cancel(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PurchaseOrder), args.Error(1)
}

// MockSupplierRepository is a mock implementation of SupplierRepository.
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

// MockKardexRepository is a mock implementation of KardexRepository.
type MockKardexRepository struct {
	mock.Mock
}

func (m *MockKardexRepository) ListByPhone(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error) {
	args := m.Called(ctx, phoneID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Page[model.StockMovement]), args.Error(1)
}

// MockJournalRepository is a mock implementation of JournalRepository.
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) Append(ctx context.Context, entry model.SagaEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// mockStore bundles one mock per repository.
type mockStore struct {
	profiles  *MockProfileRepository
	phones    *MockPhoneRepository
	carts     *MockCartRepository
	lines     *MockCartLineRepository
	invoices  *MockInvoiceRepository
	orders    *MockPurchaseOrderRepository
	suppliers *MockSupplierRepository
	kardex    *MockKardexRepository
	journal   *MockJournalRepository
}

func newMockStore() *mockStore {
	return &mockStore{
		profiles:  new(MockProfileRepository),
		phones:    new(MockPhoneRepository),
		carts:     new(MockCartRepository),
		lines:     new(MockCartLineRepository),
		invoices:  new(MockInvoiceRepository),
		orders:    new(MockPurchaseOrderRepository),
		suppliers: new(MockSupplierRepository),
		kardex:    new(MockKardexRepository),
		journal:   new(MockJournalRepository),
	}
}

func (m *mockStore) store() *repository.Store {
	return &repository.Store{
		Profiles:       m.profiles,
		Phones:         m.phones,
		Carts:          m.carts,
		CartLines:      m.lines,
		Invoices:       m.invoices,
		PurchaseOrders: m.orders,
		Suppliers:      m.suppliers,
		Kardex:         m.kardex,
		Journal:        m.journal,
	}
}
