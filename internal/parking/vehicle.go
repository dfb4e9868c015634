package parking

import (
	"fmt"
	"strings"
)

type Category int

const (
	TwoWheeler Category = iota + 1
	FourWheeler
	// ThreeWheeler is accepted in layouts but not used by the default setup.
	ThreeWheeler
)

var categoryNames = map[Category]string{
	TwoWheeler:   "two-wheeler",
	FourWheeler:  "four-wheeler",
	ThreeWheeler: "three-wheeler",
}

// Categories lists every known category in declaration order.
func Categories() []Category {
	return []Category{TwoWheeler, FourWheeler, ThreeWheeler}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

type Vehicle struct {
	LicenseID string
	Category  Category
}

func NewVehicle(licenseID string, category Category) *Vehicle {
	return &Vehicle{
		LicenseID: licenseID,
		Category:  category,
	}
}
