package priority

import "strings"

type Priority struct {
	Name string
}

func (p Priority) Code() string {
	return p.Name
}

func (p Priority) Label() string {
	if len(p.Name) == 0 {
		return ""
	}
	return strings.ToUpper(p.Name[:1]) + p.Name[1:]
}

type Enum struct {
	Normal Priority
	High   Priority
	Rush   Priority
}

var Priorities = Enum{
	Normal: Priority{Name: "normal"},
	High:   Priority{Name: "high"},
	Rush:   Priority{Name: "rush"},
}

var All = []Priority{
	Priorities.Normal,
	Priorities.High,
	Priorities.Rush,
}

// ByName returns the priority for a given name, or nil if not found
func ByName(name string) *Priority {
	for _, p := range All {
		if p.Name == name {
			return &p
		}
	}
	return nil
}
