package plan

import (
	"fmt"
	"strings"

	"github.com/guileen/nativeplan/types"
)

// Expression is a typed computation over attributes and constants
type Expression interface {
	// Type returns the column type the expression evaluates to
	Type() types.ColumnType
	String() string
}

// ColumnRef is a plain reference to an attribute produced by a child operator
type ColumnRef struct {
	Attr Attribute
}

func (c *ColumnRef) Type() types.ColumnType { return c.Attr.Type }
func (c *ColumnRef) String() string         { return c.Attr.Name }

// Constant is a literal value
type Constant struct {
	Value    interface{}
	ValueTyp types.ColumnType
}

func (c *Constant) Type() types.ColumnType { return c.ValueTyp }
func (c *Constant) String() string         { return fmt.Sprintf("%v", c.Value) }

// BinaryExpr applies an infix operator to two expressions
type BinaryExpr struct {
	Op        string
	Left      Expression
	Right     Expression
	ResultTyp types.ColumnType
}

func (b *BinaryExpr) Type() types.ColumnType { return b.ResultTyp }

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// FuncCall applies a scalar function to its arguments
type FuncCall struct {
	Name      string
	Args      []Expression
	ResultTyp types.ColumnType
}

func (f *FuncCall) Type() types.ColumnType { return f.ResultTyp }

func (f *FuncCall) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

// Cast converts an expression to another type
type Cast struct {
	Expr      Expression
	TargetTyp types.ColumnType
}

func (c *Cast) Type() types.ColumnType { return c.TargetTyp }

func (c *Cast) String() string {
	return fmt.Sprintf("cast(%s as %s)", c.Expr, c.TargetTyp)
}

// Alias wraps an expression with an output name without changing its value
type Alias struct {
	Expr Expression
	Name string
}

func (a *Alias) Type() types.ColumnType { return a.Expr.Type() }

func (a *Alias) String() string {
	return fmt.Sprintf("%s as %s", a.Expr, a.Name)
}

// StripAlias removes wrapping rename nodes from an expression, exposing the
// underlying computation. Idempotent; never changes semantic value.
func StripAlias(expr Expression) Expression {
	for {
		alias, ok := expr.(*Alias)
		if !ok {
			return expr
		}
		expr = alias.Expr
	}
}

// NamedExpr is an expression evaluated as a top-level result column,
// carrying the output name it contributes
type NamedExpr struct {
	Expr Expression
	Name string
}

// OutputAttr returns the attribute this expression contributes to the
// declared output of its operator
func (ne NamedExpr) OutputAttr() Attribute {
	return Attribute{Name: ne.Name, Type: ne.Expr.Type()}
}

func (ne NamedExpr) String() string {
	if ref, ok := ne.Expr.(*ColumnRef); ok && ref.Attr.Name == ne.Name {
		return ne.Expr.String()
	}
	return fmt.Sprintf("%s as %s", ne.Expr, ne.Name)
}

// NamedExprsFromAttrs lifts attributes into bare column-reference result
// expressions named after themselves
func NamedExprsFromAttrs(attrs []Attribute) []NamedExpr {
	exprs := make([]NamedExpr, len(attrs))
	for i, attr := range attrs {
		exprs[i] = NamedExpr{Expr: &ColumnRef{Attr: attr}, Name: attr.Name}
	}
	return exprs
}

// OutputAttrs derives the attribute sequence a list of named expressions produces
func OutputAttrs(exprs []NamedExpr) []Attribute {
	attrs := make([]Attribute, len(exprs))
	for i, ne := range exprs {
		attrs[i] = ne.OutputAttr()
	}
	return attrs
}
