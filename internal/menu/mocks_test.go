package menu

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// MockMenuItemRepo is a test mock for MenuItemRepo
type MockMenuItemRepo struct {
	items          map[uuid.UUID]MenuItem
	CreateFunc     func(ctx context.Context, item *MenuItem) error
	ListActiveFunc func(ctx context.Context) ([]MenuItem, error)
}

func NewMockMenuItemRepo(items ...MenuItem) *MockMenuItemRepo {
	m := &MockMenuItemRepo{items: make(map[uuid.UUID]MenuItem)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *MockMenuItemRepo) Create(ctx context.Context, item *MenuItem) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, item)
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MockMenuItemRepo) Get(ctx context.Context, id uuid.UUID) (*MenuItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, errors.New("menu item not found")
	}
	return &it, nil
}

func (m *MockMenuItemRepo) ListActive(ctx context.Context) ([]MenuItem, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	result := make([]MenuItem, 0, len(m.items))
	for _, it := range m.items {
		if it.Active {
			result = append(result, it)
		}
	}
	return result, nil
}

// MockStaffRepo is a test mock for StaffRepo
type MockStaffRepo struct {
	staff          []Staff
	CreateFunc     func(ctx context.Context, s *Staff) error
	ListActiveFunc func(ctx context.Context) ([]Staff, error)
}

func (m *MockStaffRepo) Create(ctx context.Context, s *Staff) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	m.staff = append(m.staff, *s)
	return nil
}

func (m *MockStaffRepo) ListActive(ctx context.Context) ([]Staff, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	var result []Staff
	for _, s := range m.staff {
		if s.Active {
			result = append(result, s)
		}
	}
	return result, nil
}

type staticLoads map[string]int

func (l staticLoads) ChefLoads() map[string]int {
	return l
}
