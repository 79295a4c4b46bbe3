package filter

import (
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	NoDirection Direction = ""
	Ascending   Direction = "ASC"
	Descending  Direction = "DESC"
)

// Reverse returns the opposite direction. NoDirection stays unchanged.
func (d Direction) Reverse() Direction {
	switch d {
	case Ascending:
		return Descending
	case Descending:
		return Ascending
	}
	return NoDirection
}

// ParseDirection parses "asc", "ascending", "desc", "descending" or ""
// case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return NoDirection, nil
	case "ASC", "ASCENDING":
		return Ascending, nil
	case "DESC", "DESCENDING":
		return Descending, nil
	}
	return NoDirection, fmt.Errorf("invalid sort direction %q", s)
}

// SortColumn names the property a result set is ordered by.
type SortColumn struct {
	Property  string
	Direction Direction
}

// NewSortColumn creates a sort column.
func NewSortColumn(property string, dir Direction) SortColumn {
	return SortColumn{Property: property, Direction: dir}
}

func (s SortColumn) String() string {
	if s.Direction == NoDirection {
		return s.Property
	}
	return s.Property + " " + string(s.Direction)
}
