package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"phonestore/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func byCode(code string) interface{} {
	return mock.MatchedBy(func(p *model.Phone) bool { return p.Code == code })
}

func TestImporter_Import(t *testing.T) {
	repo := new(MockPhoneRepository)
	repo.On("Upsert", mock.Anything, byCode("A")).Return(true, nil)
	repo.On("Upsert", mock.Anything, byCode("B")).Return(false, nil)
	repo.On("Upsert", mock.Anything, byCode("C")).Return(true, nil)

	importer := NewImporter(repo, 2, zerolog.Nop())
	cat := &Catalog{
		Phones:   []model.Phone{{Code: "A"}, {Code: "B"}, {Code: "C"}},
		Rejected: []RowError{{Row: 5, Err: errors.New("invalid sale_price")}},
	}

	result, err := importer.Import(context.Background(), cat)

	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2, Updated: 1, Rejected: 1}, result)
	repo.AssertNumberOfCalls(t, "Upsert", 3)
}

func TestImporter_Import_StopsOnFailure(t *testing.T) {
	repo := new(MockPhoneRepository)
	repo.On("Upsert", mock.Anything, byCode("A")).Return(false, errors.New("connection refused"))

	importer := NewImporter(repo, 1, zerolog.Nop())
	cat := &Catalog{Phones: []model.Phone{{Code: "A"}, {Code: "B"}, {Code: "C"}}}

	_, err := importer.Import(context.Background(), cat)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to import phone A")
	repo.AssertNumberOfCalls(t, "Upsert", 1)
}

// countingRepository records the highest number of concurrent upserts.
type countingRepository struct {
	MockPhoneRepository
	mu      sync.Mutex
	active  int
	peak    int
	release chan struct{}
}

func (r *countingRepository) Upsert(_ context.Context, _ *model.Phone) (bool, error) {
	r.mu.Lock()
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	r.mu.Unlock()

	<-r.release

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return true, nil
}

func TestImporter_Import_BoundedConcurrency(t *testing.T) {
	repo := &countingRepository{release: make(chan struct{})}
	importer := NewImporter(repo, 3, zerolog.Nop())

	phones := make([]model.Phone, 10)
	for i := range phones {
		phones[i] = model.Phone{Code: string(rune('A' + i))}
	}

	done := make(chan Result)
	go func() {
		result, _ := importer.Import(context.Background(), &Catalog{Phones: phones})
		done <- result
	}()

	for range phones {
		repo.release <- struct{}{}
	}
	result := <-done

	assert.Equal(t, 10, result.Created)
	assert.LessOrEqual(t, repo.peak, 3)
}

func TestSeed(t *testing.T) {
	repo := new(MockPhoneRepository)
	repo.On("Upsert", mock.Anything, byCode("FROM-DISK")).Return(true, nil)
	loader := &mockLoader{catalog: &Catalog{Phones: []model.Phone{{Code: "FROM-DISK"}}}}

	result, err := Seed(context.Background(), loader, NewImporter(repo, 4, zerolog.Nop()), "data/catalog.csv.gz")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}

func TestSeed_LoadFailure(t *testing.T) {
	loader := &mockLoader{err: errors.New("no such file")}

	_, err := Seed(context.Background(), loader, NewImporter(new(MockPhoneRepository), 4, zerolog.Nop()), "missing.csv.gz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load catalogue")
}
