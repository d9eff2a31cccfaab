// model/entity.go
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Entity is a row that can be cached. Fields is the single representation
// used for change detection, predicates and external views.
type Entity interface {
	// PrimaryKey is the cache discriminator of the row. Composite keys are
	// joined with KeySeparator.
	PrimaryKey() string
	// KeyConditions identifies the row in the store, column -> value.
	KeyConditions() map[string]any
	Fields() map[string]any
}

// Association is an Entity linking an owner (usually a user) to a subject.
type Association interface {
	Entity
	OwnerKey() string
	SubjectKey() string
}

const KeySeparator = "-"

var keyPartEscaper = strings.NewReplacer("%", "%25", KeySeparator, "%2D", "$", "%24", ":", "%3A")

// EscapeKeyPart percent-encodes the characters that delimit key parts, so
// distinct part lists never render to the same string.
func EscapeKeyPart(s string) string {
	return keyPartEscaper.Replace(s)
}

// CompositeKey joins the escaped parts of a composite primary key.
func CompositeKey(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = EscapeKeyPart(part)
	}
	return strings.Join(escaped, KeySeparator)
}

// Schema describes how an entity kind is stored and cached.
type Schema struct {
	Kind       string
	PrimaryKey string
	// Version is part of every cache key; bumping it orphans old entries.
	Version int
	// UniqueKeys lists the unique column combinations FilterFirst accepts.
	UniqueKeys [][]string
	// OwnerColumn and SubjectColumn are set for association kinds.
	OwnerColumn   string
	SubjectColumn string
	// Sealed entries are encrypted before they reach the cache backend.
	Sealed bool
}

// IsUnique reports whether columns exactly match one declared unique key.
func (s Schema) IsUnique(columns []string) bool {
	want := sortedCopy(columns)
	for _, key := range s.UniqueKeys {
		if equalStrings(sortedCopy(key), want) {
			return true
		}
	}
	return false
}

// UniqueKeysTouching returns the unique keys containing any changed column.
func (s Schema) UniqueKeysTouching(changed []string) [][]string {
	set := make(map[string]struct{}, len(changed))
	for _, c := range changed {
		set[c] = struct{}{}
	}
	var touched [][]string
	for _, key := range s.UniqueKeys {
		for _, col := range key {
			if _, ok := set[col]; ok {
				touched = append(touched, key)
				break
			}
		}
	}
	return touched
}

// Predicate is an equality filter, column -> value.
type Predicate map[string]any

// Columns returns the predicate columns in sorted order.
func (p Predicate) Columns() []string {
	cols := make([]string, 0, len(p))
	for k := range p {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Discriminator renders sorted column$value pairs with both sides escaped;
// equal predicates always produce equal strings regardless of map order.
func (p Predicate) Discriminator() string {
	cols := p.Columns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = EscapeKeyPart(c) + "$" + EscapeKeyPart(fmt.Sprint(p[c]))
	}
	return strings.Join(parts, KeySeparator)
}

// PredicateFor builds the predicate of columns using an entity's values.
func PredicateFor(e Entity, columns []string) Predicate {
	fields := e.Fields()
	p := make(Predicate, len(columns))
	for _, c := range columns {
		p[c] = fields[c]
	}
	return p
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
