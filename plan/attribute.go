package plan

import (
	"fmt"

	"github.com/guileen/nativeplan/types"
)

// Attribute identifies a named, typed output column produced somewhere in
// the plan. Which physical slot it occupies is not part of its identity.
type Attribute struct {
	Name string           `json:"name"`
	Type types.ColumnType `json:"type"`
}

// Compatible reports whether two attributes match in both name and type
func (a Attribute) Compatible(b Attribute) bool {
	return a.Name == b.Name && a.Type == b.Type
}

func (a Attribute) String() string {
	return fmt.Sprintf("%s:%s", a.Name, a.Type)
}

// AttributesEqual reports whether two attribute sequences match pairwise
// in name, type and order
func AttributesEqual(a, b []Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Compatible(b[i]) {
			return false
		}
	}
	return true
}
