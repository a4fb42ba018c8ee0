package reservationstatus

import (
	"strings"
)

type Status struct {
	Name string
}

func (s Status) Code() string {
	return s.Name
}

func (s Status) Label() string {
	parts := strings.Split(s.Name, "-")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, " ")
}

type Enum struct {
	Pending   Status
	Confirmed Status
	Seated    Status
	Completed Status
	Cancelled Status
	NoShow    Status
}

var Statuses = Enum{
	Pending:   Status{Name: "pending"},
	Confirmed: Status{Name: "confirmed"},
	Seated:    Status{Name: "seated"},
	Completed: Status{Name: "completed"},
	Cancelled: Status{Name: "cancelled"},
	NoShow:    Status{Name: "no-show"},
}

var All = []Status{
	Statuses.Pending,
	Statuses.Confirmed,
	Statuses.Seated,
	Statuses.Completed,
	Statuses.Cancelled,
	Statuses.NoShow,
}

// ByName returns the status for a given name, or nil if not found
func ByName(name string) *Status {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
