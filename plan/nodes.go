package plan

import (
	"fmt"
	"strings"
)

// DataSource reads a table's columns from storage
type DataSource struct {
	baseNode
	Table   string
	Columns []Attribute
}

// NewDataSource creates a leaf scan node over a table
func NewDataSource(table string, columns []Attribute) *DataSource {
	return &DataSource{baseNode: newBaseNode(), Table: table, Columns: columns}
}

func (d *DataSource) Schema() []Attribute { return d.Columns }

func (d *DataSource) ExplainInfo() string {
	return fmt.Sprintf("DataSource(%s) %s", d.Table, formatSchema(d.Columns))
}

// Filter drops rows of its child that do not satisfy the condition
type Filter struct {
	baseNode
	Condition Expression
}

// NewFilter creates a filter node over child
func NewFilter(condition Expression, child Node) *Filter {
	return &Filter{baseNode: newBaseNode(child), Condition: condition}
}

func (f *Filter) Schema() []Attribute { return f.children[0].Schema() }

func (f *Filter) ExplainInfo() string {
	return fmt.Sprintf("Filter(%s)", f.Condition)
}

// Projection re-expresses its child's output via a list of named expressions
type Projection struct {
	baseNode
	Exprs []NamedExpr
}

// NewProjection creates a projection node over child
func NewProjection(exprs []NamedExpr, child Node) *Projection {
	return &Projection{baseNode: newBaseNode(child), Exprs: exprs}
}

func (p *Projection) Schema() []Attribute { return OutputAttrs(p.Exprs) }

func (p *Projection) ExplainInfo() string {
	parts := make([]string, len(p.Exprs))
	for i, ne := range p.Exprs {
		parts[i] = ne.String()
	}
	return fmt.Sprintf("Projection(%s)", strings.Join(parts, ", "))
}

// Aggregate computes grouped aggregate functions.
//
// GroupBy holds the grouping expressions, AggFuncs the aggregate functions
// being computed, and AggResults one placeholder attribute per aggregate
// function, bound to that function's output. ResultExprs defines the node's
// final declared output; it is generally built from grouping columns and
// AggResults but may rename, wrap or recombine them.
type Aggregate struct {
	baseNode
	GroupBy     []Expression
	AggFuncs    []*AggFunc
	AggResults  []Attribute
	ResultExprs []NamedExpr
}

// NewAggregate creates an aggregate node over child
func NewAggregate(groupBy []Expression, aggFuncs []*AggFunc, aggResults []Attribute, resultExprs []NamedExpr, child Node) *Aggregate {
	return &Aggregate{
		baseNode:    newBaseNode(child),
		GroupBy:     groupBy,
		AggFuncs:    aggFuncs,
		AggResults:  aggResults,
		ResultExprs: resultExprs,
	}
}

func (a *Aggregate) Schema() []Attribute { return OutputAttrs(a.ResultExprs) }

func (a *Aggregate) ExplainInfo() string {
	groups := make([]string, len(a.GroupBy))
	for i, g := range a.GroupBy {
		groups[i] = g.String()
	}
	funcs := make([]string, len(a.AggFuncs))
	for i, f := range a.AggFuncs {
		funcs[i] = f.String()
	}
	results := make([]string, len(a.ResultExprs))
	for i, ne := range a.ResultExprs {
		results[i] = ne.String()
	}
	return fmt.Sprintf("Aggregate(group=[%s], funcs=[%s], output=[%s])",
		strings.Join(groups, ", "), strings.Join(funcs, ", "), strings.Join(results, ", "))
}

// CloneWithResultExprs returns a new Aggregate identical to a except for its
// declared result expressions. The clone gets a fresh identity; grouping
// expressions and aggregate descriptors are copied, children are shared.
func (a *Aggregate) CloneWithResultExprs(resultExprs []NamedExpr) *Aggregate {
	cloned := &Aggregate{
		baseNode:    newBaseNode(a.children...),
		GroupBy:     make([]Expression, len(a.GroupBy)),
		AggFuncs:    make([]*AggFunc, len(a.AggFuncs)),
		AggResults:  make([]Attribute, len(a.AggResults)),
		ResultExprs: resultExprs,
	}
	copy(cloned.GroupBy, a.GroupBy)
	for i, f := range a.AggFuncs {
		cloned.AggFuncs[i] = f.Clone()
	}
	copy(cloned.AggResults, a.AggResults)
	return cloned
}
