package valueobjects

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Category is the prefix that marks which kind of entity an ID names
type Category string

const (
	CategoryUser     Category = "u"
	CategoryQuestion Category = "q"
	CategoryAnswer   Category = "a"
	CategoryTicket   Category = "t"
)

// IDFunc produces a new identifier for a category
type IDFunc func(Category) string

// NewID returns category + "_" + a base36 rendering of 128 random bits
func NewID(category Category) string {
	u := uuid.New()
	return string(category) + "_" + new(big.Int).SetBytes(u[:]).Text(36)
}

// HasCategory reports whether id carries the category prefix
func HasCategory(id string, category Category) bool {
	return strings.HasPrefix(id, string(category)+"_")
}
