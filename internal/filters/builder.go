package filters

import (
	"fmt"
	"strings"
)

// Clause is a compiled WHERE fragment plus its positional parameters. The Nth
// `$N` placeholder in SQL always pairs with Args[N-1].
type Clause struct {
	SQL  string
	Args []any
}

type predicate struct {
	template string
	args     []any
}

// Builder accumulates predicates and renders placeholder numbering in one
// pass, so inserting a predicate can never desync downstream indices.
// Templates carry one `$%d` verb per bound argument.
type Builder struct {
	predicates []predicate
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends a predicate template with its bound values.
func (b *Builder) Add(template string, args ...any) {
	b.predicates = append(b.predicates, predicate{template: template, args: args})
}

// Len reports how many predicates have been added.
func (b *Builder) Len() int {
	return len(b.predicates)
}

// Where renders the accumulated predicates as a WHERE clause body. With no
// predicates it returns an empty clause (no WHERE keyword), which callers
// interpolate as-is.
func (b *Builder) Where() Clause {
	if len(b.predicates) == 0 {
		return Clause{}
	}
	parts := make([]string, 0, len(b.predicates))
	var args []any
	next := 1
	for _, p := range b.predicates {
		if len(p.args) == 0 {
			parts = append(parts, p.template)
			continue
		}
		indices := make([]any, len(p.args))
		for i := range p.args {
			indices[i] = next
			next++
		}
		parts = append(parts, fmt.Sprintf(p.template, indices...))
		args = append(args, p.args...)
	}
	return Clause{SQL: "WHERE " + strings.Join(parts, " AND "), Args: args}
}

// NextPlaceholder returns the `$N` index a parameter appended after this
// clause would occupy. Used for trailing LIMIT parameters.
func (c Clause) NextPlaceholder() int {
	return len(c.Args) + 1
}
