package offload

import (
	"fmt"

	"github.com/guileen/nativeplan/plan"
	"github.com/guileen/nativeplan/types"
)

// Resolver computes the ordered attribute sequence the native engine emits
// for an aggregate's grouping expressions, aggregate functions and bound
// result attributes. Implementations must be deterministic for identical
// inputs.
type Resolver interface {
	Resolve(groupBy []plan.Expression, aggFuncs []*plan.AggFunc, aggResults []plan.Attribute) ([]plan.Attribute, error)
}

// ColumnarResolver resolves native output for the columnar engine.
//
// The engine emits one attribute per grouping column followed by one
// attribute per aggregate function. Grouping keys come back under their
// base column names; aggregate outputs keep the planner's bound result
// attribute names but take the engine's own return types, which differ
// from the planner's PostgreSQL-style typing for sum and avg: the engine
// accumulates integer sums in numeric and averages in double.
type ColumnarResolver struct{}

// NewColumnarResolver creates a resolver for the columnar engine
func NewColumnarResolver() *ColumnarResolver {
	return &ColumnarResolver{}
}

// Resolve implements Resolver
func (r *ColumnarResolver) Resolve(groupBy []plan.Expression, aggFuncs []*plan.AggFunc, aggResults []plan.Attribute) ([]plan.Attribute, error) {
	if len(aggResults) != len(aggFuncs) {
		return nil, fmt.Errorf("%w: %d aggregate functions bound to %d result attributes",
			ErrResolution, len(aggFuncs), len(aggResults))
	}

	attrs := make([]plan.Attribute, 0, len(groupBy)+len(aggFuncs))

	for _, expr := range groupBy {
		ref, ok := plan.StripAlias(expr).(*plan.ColumnRef)
		if !ok {
			return nil, fmt.Errorf("%w: grouping expression %s is not a plain column", ErrResolution, expr)
		}
		attrs = append(attrs, ref.Attr)
	}

	for i, f := range aggFuncs {
		typ, err := r.returnType(f)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, plan.Attribute{Name: aggResults[i].Name, Type: typ})
	}

	return attrs, nil
}

func (r *ColumnarResolver) returnType(f *plan.AggFunc) (types.ColumnType, error) {
	switch f.Name {
	case plan.AggCount:
		return types.ColumnTypeBigInt, nil
	case plan.AggSum:
		arg, err := r.argType(f)
		if err != nil {
			return "", err
		}
		switch arg {
		case types.ColumnTypeSmallInt, types.ColumnTypeInteger, types.ColumnTypeBigInt, types.ColumnTypeNumeric:
			return types.ColumnTypeNumeric, nil
		case types.ColumnTypeReal, types.ColumnTypeDouble:
			return types.ColumnTypeDouble, nil
		default:
			return "", fmt.Errorf("%w: sum over %s", ErrResolution, arg)
		}
	case plan.AggAvg:
		arg, err := r.argType(f)
		if err != nil {
			return "", err
		}
		if !arg.IsNumeric() {
			return "", fmt.Errorf("%w: avg over %s", ErrResolution, arg)
		}
		return types.ColumnTypeDouble, nil
	case plan.AggMin, plan.AggMax:
		return r.argType(f)
	default:
		return "", fmt.Errorf("%w: unsupported aggregate function %q", ErrResolution, f.Name)
	}
}

func (r *ColumnarResolver) argType(f *plan.AggFunc) (types.ColumnType, error) {
	if len(f.Args) != 1 {
		return "", fmt.Errorf("%w: %s takes exactly one argument, got %d", ErrResolution, f.Name, len(f.Args))
	}
	return f.Args[0].Type(), nil
}
