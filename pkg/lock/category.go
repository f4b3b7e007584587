package lock

import (
	"fmt"
	"strings"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// Category partitions the lock namespace. The set is closed.
type Category int

const (
	Database Category = iota + 1
	Actions
)

var categories = map[Category]string{
	Database: "Database",
	Actions:  "Actions",
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	return []Category{Database, Actions}
}

func (c Category) String() string {
	if s, ok := categories[c]; ok {
		return s
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// ParseCategory parses a category name, ignoring case.
func ParseCategory(s string) (Category, error) {
	for c, name := range categories {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return 0, apperrors.InvalidArgument("unknown lock category %q", s)
}
