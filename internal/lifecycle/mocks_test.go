package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MockCatalog is a test mock for MenuCatalog
type MockCatalog struct {
	stations  map[MenuItemID]string
	prepTimes map[MenuItemID]int
	allergens map[MenuItemID][]string
	Err       error
}

func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		stations:  make(map[MenuItemID]string),
		prepTimes: make(map[MenuItemID]int),
		allergens: make(map[MenuItemID][]string),
	}
}

// AddItem is a helper to seed the mock catalog
func (m *MockCatalog) AddItem(id MenuItemID, station string, prep int, allergens ...string) {
	m.stations[id] = station
	m.prepTimes[id] = prep
	m.allergens[id] = allergens
}

func (m *MockCatalog) LookupStation(id MenuItemID) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	s, ok := m.stations[id]
	if !ok {
		return "", errors.New("menu item not found")
	}
	return s, nil
}

func (m *MockCatalog) LookupPrepTime(id MenuItemID) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	p, ok := m.prepTimes[id]
	if !ok {
		return 0, errors.New("menu item not found")
	}
	return p, nil
}

func (m *MockCatalog) LookupAllergens(id MenuItemID) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.allergens[id]
	if !ok {
		return nil, errors.New("menu item not found")
	}
	return a, nil
}

// MockRoster is a test mock for StaffRoster
type MockRoster struct {
	Staff []StaffMember
	Err   error
}

func (m *MockRoster) ActiveKitchenStaff() ([]StaffMember, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Staff, nil
}

var fixedNow = time.Date(2025, 3, 14, 19, 30, 15, 500_000_000, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func lineItem(menuItemID MenuItemID, qty int) LineItem {
	return LineItem{ID: uuid.New(), MenuItemID: menuItemID, Quantity: qty}
}
