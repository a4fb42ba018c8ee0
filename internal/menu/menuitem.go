package menu

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is the kitchen-relevant view of a dish or drink.
type MenuItem struct {
	ID          uuid.UUID       `json:"id"`
	ShortCode   string          `json:"short_code"`
	Name        string          `json:"name"`
	Station     string          `json:"station"`
	PrepMinutes int             `json:"prep_minutes"`
	Allergens   []string        `json:"allergens,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const (
	RoleChef     = "chef"
	RoleSousChef = "sous_chef"
	RoleLineCook = "line_cook"
	RoleServer   = "server"
)

// Staff is a restaurant staff member.
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// IsKitchen reports whether the staff member can be assigned ticket items.
func (s Staff) IsKitchen() bool {
	switch s.Role {
	case RoleChef, RoleSousChef, RoleLineCook:
		return true
	default:
		return false
	}
}

// Key is the value stored as the assigned chef on ticket items.
func (s Staff) Key() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
