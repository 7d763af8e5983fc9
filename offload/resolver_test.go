package offload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/nativeplan/plan"
	"github.com/guileen/nativeplan/types"
)

func colRef(name string, typ types.ColumnType) *plan.ColumnRef {
	return &plan.ColumnRef{Attr: plan.Attribute{Name: name, Type: typ}}
}

func TestResolveGroupingAndAggregates(t *testing.T) {
	r := NewColumnarResolver()

	attrs, err := r.Resolve(
		[]plan.Expression{colRef("dept", types.ColumnTypeText)},
		[]*plan.AggFunc{
			{Name: plan.AggCount},
			{Name: plan.AggSum, Args: []plan.Expression{colRef("salary", types.ColumnTypeInteger)}},
			{Name: plan.AggMax, Args: []plan.Expression{colRef("salary", types.ColumnTypeInteger)}},
		},
		[]plan.Attribute{
			{Name: "cnt", Type: types.ColumnTypeBigInt},
			{Name: "total", Type: types.ColumnTypeBigInt},
			{Name: "top", Type: types.ColumnTypeInteger},
		},
	)
	require.NoError(t, err)

	want := []plan.Attribute{
		{Name: "dept", Type: types.ColumnTypeText},
		{Name: "cnt", Type: types.ColumnTypeBigInt},
		{Name: "total", Type: types.ColumnTypeNumeric},
		{Name: "top", Type: types.ColumnTypeInteger},
	}
	assert.Equal(t, want, attrs)
}

func TestResolveNativeTypingRules(t *testing.T) {
	r := NewColumnarResolver()

	tests := []struct {
		name string
		fn   *plan.AggFunc
		want types.ColumnType
	}{
		{"count", &plan.AggFunc{Name: plan.AggCount}, types.ColumnTypeBigInt},
		{"sum smallint", &plan.AggFunc{Name: plan.AggSum, Args: []plan.Expression{colRef("c", types.ColumnTypeSmallInt)}}, types.ColumnTypeNumeric},
		{"sum bigint", &plan.AggFunc{Name: plan.AggSum, Args: []plan.Expression{colRef("c", types.ColumnTypeBigInt)}}, types.ColumnTypeNumeric},
		{"sum real", &plan.AggFunc{Name: plan.AggSum, Args: []plan.Expression{colRef("c", types.ColumnTypeReal)}}, types.ColumnTypeDouble},
		{"avg integer", &plan.AggFunc{Name: plan.AggAvg, Args: []plan.Expression{colRef("c", types.ColumnTypeInteger)}}, types.ColumnTypeDouble},
		{"min text", &plan.AggFunc{Name: plan.AggMin, Args: []plan.Expression{colRef("c", types.ColumnTypeText)}}, types.ColumnTypeText},
		{"max timestamp", &plan.AggFunc{Name: plan.AggMax, Args: []plan.Expression{colRef("c", types.ColumnTypeTimestamp)}}, types.ColumnTypeTimestamp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs, err := r.Resolve(nil, []*plan.AggFunc{tt.fn}, []plan.Attribute{{Name: "r", Type: tt.want}})
			require.NoError(t, err)
			require.Len(t, attrs, 1)
			assert.Equal(t, tt.want, attrs[0].Type)
			assert.Equal(t, "r", attrs[0].Name)
		})
	}
}

func TestResolveStripsGroupingAliases(t *testing.T) {
	r := NewColumnarResolver()

	group := &plan.Alias{Expr: colRef("dept", types.ColumnTypeText), Name: "department"}
	attrs, err := r.Resolve([]plan.Expression{group}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []plan.Attribute{{Name: "dept", Type: types.ColumnTypeText}}, attrs)
}

func TestResolveRejectsExpressionGrouping(t *testing.T) {
	r := NewColumnarResolver()

	group := &plan.BinaryExpr{
		Op:        "+",
		Left:      colRef("a", types.ColumnTypeInteger),
		Right:     colRef("b", types.ColumnTypeInteger),
		ResultTyp: types.ColumnTypeInteger,
	}
	_, err := r.Resolve([]plan.Expression{group}, nil, nil)
	require.ErrorIs(t, err, ErrResolution)
}

func TestResolveRejectsUnknownAggregate(t *testing.T) {
	r := NewColumnarResolver()

	fn := &plan.AggFunc{Name: "string_agg", Args: []plan.Expression{colRef("c", types.ColumnTypeText)}}
	_, err := r.Resolve(nil, []*plan.AggFunc{fn}, []plan.Attribute{{Name: "r", Type: types.ColumnTypeText}})
	require.ErrorIs(t, err, ErrResolution)
}

func TestResolveRejectsNonNumericSum(t *testing.T) {
	r := NewColumnarResolver()

	fn := &plan.AggFunc{Name: plan.AggSum, Args: []plan.Expression{colRef("c", types.ColumnTypeText)}}
	_, err := r.Resolve(nil, []*plan.AggFunc{fn}, []plan.Attribute{{Name: "r", Type: types.ColumnTypeText}})
	require.ErrorIs(t, err, ErrResolution)
}

func TestResolveRejectsResultAttributeArityMismatch(t *testing.T) {
	r := NewColumnarResolver()

	_, err := r.Resolve(nil, []*plan.AggFunc{{Name: plan.AggCount}}, nil)
	require.ErrorIs(t, err, ErrResolution)
}
