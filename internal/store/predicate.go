package store

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Op tags the variant held by a Predicate.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpIn
	OpNotIn
	OpLike
	OpAnd
	OpOr
)

// Predicate is a filter expression tree. Leaves compare a column with a
// value, inner nodes combine children. Repositories build predicates and
// Apply turns them into gorm clauses, so query logic never depends on the
// query builder's syntax.
type Predicate struct {
	Op       Op
	Column   string
	Value    interface{}
	Values   []interface{}
	Children []Predicate
}

func Eq(column string, value interface{}) Predicate {
	return Predicate{Op: OpEq, Column: column, Value: value}
}

func Ne(column string, value interface{}) Predicate {
	return Predicate{Op: OpNe, Column: column, Value: value}
}

func Gt(column string, value interface{}) Predicate {
	return Predicate{Op: OpGt, Column: column, Value: value}
}

func Gte(column string, value interface{}) Predicate {
	return Predicate{Op: OpGte, Column: column, Value: value}
}

func Lt(column string, value interface{}) Predicate {
	return Predicate{Op: OpLt, Column: column, Value: value}
}

func Like(column string, pattern string) Predicate {
	return Predicate{Op: OpLike, Column: column, Value: pattern}
}

// In matches rows whose column is one of values. Values are passed as a
// slice of any type.
func In[T any](column string, values []T) Predicate {
	return Predicate{Op: OpIn, Column: column, Values: toAny(values)}
}

func NotIn[T any](column string, values []T) Predicate {
	return Predicate{Op: OpNotIn, Column: column, Values: toAny(values)}
}

func And(children ...Predicate) Predicate {
	return Predicate{Op: OpAnd, Children: children}
}

func Or(children ...Predicate) Predicate {
	return Predicate{Op: OpOr, Children: children}
}

// Empty reports whether the predicate filters nothing (an And/Or without
// children).
func (p Predicate) Empty() bool {
	return (p.Op == OpAnd || p.Op == OpOr) && len(p.Children) == 0
}

// Expression converts the tree into a gorm clause expression.
func (p Predicate) Expression() clause.Expression {
	col := column(p.Column)
	switch p.Op {
	case OpEq:
		return clause.Eq{Column: col, Value: p.Value}
	case OpNe:
		return clause.Neq{Column: col, Value: p.Value}
	case OpGt:
		return clause.Gt{Column: col, Value: p.Value}
	case OpGte:
		return clause.Gte{Column: col, Value: p.Value}
	case OpLt:
		return clause.Lt{Column: col, Value: p.Value}
	case OpLike:
		return clause.Like{Column: col, Value: p.Value}
	case OpIn:
		return clause.IN{Column: col, Values: p.Values}
	case OpNotIn:
		return clause.Not(clause.IN{Column: col, Values: p.Values})
	case OpAnd:
		return clause.And(p.children()...)
	case OpOr:
		return clause.Or(p.children()...)
	}
	return nil
}

func (p Predicate) children() []clause.Expression {
	exprs := make([]clause.Expression, 0, len(p.Children))
	for _, child := range p.Children {
		if child.Empty() {
			continue
		}
		exprs = append(exprs, child.Expression())
	}
	return exprs
}

// Apply adds the predicate as a WHERE condition.
func Apply(db *gorm.DB, p Predicate) *gorm.DB {
	if p.Empty() {
		return db
	}
	return db.Where(p.Expression())
}

// column accepts "name" or "table.name".
func column(name string) clause.Column {
	if table, col, ok := strings.Cut(name, "."); ok {
		return clause.Column{Table: table, Name: col}
	}
	return clause.Column{Name: name}
}

func toAny[T any](values []T) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
