package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrEmptyHash        = errors.New("hash is required")
	ErrEmptyPath        = errors.New("path is required")
)

// Visibility selects items by their hidden flag.
type Visibility int

const (
	VisibilityShown Visibility = iota
	VisibilityHidden
	VisibilityAny
)

func (v Visibility) String() string {
	switch v {
	case VisibilityShown:
		return "shown"
	case VisibilityHidden:
		return "hidden"
	case VisibilityAny:
		return "any"
	default:
		return fmt.Sprintf("visibility(%d)", int(v))
	}
}

// ParseVisibility converts a flag value into a Visibility.
func ParseVisibility(value string) (Visibility, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "shown", "visible":
		return VisibilityShown, nil
	case "hidden":
		return VisibilityHidden, nil
	case "any", "all":
		return VisibilityAny, nil
	default:
		return VisibilityShown, fmt.Errorf("unknown visibility %q", value)
	}
}

// Attribute names the Media column projected by grouping queries.
type Attribute string

const (
	AttributePath Attribute = "path"
	AttributeHash Attribute = "hash"
)

func (a Attribute) column() (string, error) {
	switch a {
	case "", AttributePath:
		return "m.path", nil
	case AttributeHash:
		return "m.hash", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAttribute, string(a))
	}
}
