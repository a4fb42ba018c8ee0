package station

import "strings"

type Station struct {
	Name string
}

func (s Station) Code() string {
	return s.Name
}

func (s Station) Label() string {
	if len(s.Name) == 0 {
		return ""
	}
	return strings.ToUpper(s.Name[:1]) + s.Name[1:]
}

type Enum struct {
	Grill    Station
	Fry      Station
	Salad    Station
	Dessert  Station
	Beverage Station
	Hot      Station
	Cold     Station
}

var Stations = Enum{
	Grill:    Station{Name: "grill"},
	Fry:      Station{Name: "fry"},
	Salad:    Station{Name: "salad"},
	Dessert:  Station{Name: "dessert"},
	Beverage: Station{Name: "beverage"},
	Hot:      Station{Name: "hot"},
	Cold:     Station{Name: "cold"},
}

var All = []Station{
	Stations.Grill,
	Stations.Fry,
	Stations.Salad,
	Stations.Dessert,
	Stations.Beverage,
	Stations.Hot,
	Stations.Cold,
}

// Default is used when the menu catalog cannot resolve a station.
var Default = Stations.Grill

// ByName returns the station for a given name, or nil if not found
func ByName(name string) *Station {
	for _, s := range All {
		if s.Name == name {
			return &s
		}
	}
	return nil
}
