package sql

import (
	"context"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/guileen/nativeplan/catalog"
	"github.com/guileen/nativeplan/logger"
	"github.com/guileen/nativeplan/plan"
	"github.com/guileen/nativeplan/types"
)

// Planner builds physical plan trees from SELECT statements against
// catalog schemas
type Planner struct {
	catalog *catalog.Manager
}

// NewPlanner creates a planner over the given catalog
func NewPlanner(cat *catalog.Manager) *Planner {
	return &Planner{catalog: cat}
}

// PlanSelect parses a SELECT statement and builds its plan tree.
// Aggregate queries produce an Aggregate node whose result expressions are
// typed PostgreSQL-style; plain queries produce a Projection.
func (p *Planner) PlanSelect(ctx context.Context, query string) (plan.Node, error) {
	result, err := pg_query.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if len(result.Stmts) != 1 {
		return nil, fmt.Errorf("expected a single statement, got %d", len(result.Stmts))
	}

	selectStmt := result.Stmts[0].GetStmt().GetSelectStmt()
	if selectStmt == nil {
		return nil, fmt.Errorf("only SELECT statements are plannable")
	}

	source, err := p.buildDataSource(ctx, selectStmt)
	if err != nil {
		return nil, err
	}

	var child plan.Node = source
	if whereClause := selectStmt.GetWhereClause(); whereClause != nil {
		condition, err := buildCondition(whereClause, source.Columns)
		if err != nil {
			return nil, err
		}
		child = plan.NewFilter(condition, child)
	}

	node, err := buildOutput(selectStmt, source.Columns, child)
	if err != nil {
		return nil, err
	}

	logger.DebugContext(ctx, "planned select", "table", source.Table)
	return node, nil
}

func (p *Planner) buildDataSource(ctx context.Context, stmt *pg_query.SelectStmt) (*plan.DataSource, error) {
	fromClause := stmt.GetFromClause()
	if len(fromClause) != 1 {
		return nil, fmt.Errorf("expected a single FROM table, got %d", len(fromClause))
	}
	rangeVar := fromClause[0].GetRangeVar()
	if rangeVar == nil {
		return nil, fmt.Errorf("only plain table references are supported in FROM")
	}

	table := rangeVar.GetRelname()
	def, err := p.catalog.GetTable(ctx, table)
	if err != nil {
		return nil, err
	}

	columns := make([]plan.Attribute, len(def.Columns))
	for i, col := range def.Columns {
		columns[i] = plan.Attribute{Name: col.Name, Type: col.Type}
	}
	return plan.NewDataSource(table, columns), nil
}

// target is one SELECT-list entry after extraction
type target struct {
	column string        // set for plain column targets
	agg    *plan.AggFunc // set for aggregate targets
	alias  string
}

func buildOutput(stmt *pg_query.SelectStmt, columns []plan.Attribute, child plan.Node) (plan.Node, error) {
	targets, err := extractTargets(stmt, columns)
	if err != nil {
		return nil, err
	}

	groupCols, err := extractGroupBy(stmt, columns)
	if err != nil {
		return nil, err
	}

	hasAgg := false
	for _, t := range targets {
		if t.agg != nil {
			hasAgg = true
			break
		}
	}

	if !hasAgg && len(groupCols) == 0 {
		return buildProjection(targets, columns, child)
	}
	return buildAggregate(targets, groupCols, columns, child)
}

func buildProjection(targets []target, columns []plan.Attribute, child plan.Node) (plan.Node, error) {
	exprs := make([]plan.NamedExpr, len(targets))
	for i, t := range targets {
		attr, ok := resolveColumn(t.column, columns)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", t.column)
		}
		exprs[i] = namedColumn(attr, t.alias)
	}
	return plan.NewProjection(exprs, child), nil
}

func buildAggregate(targets []target, groupCols []plan.Attribute, columns []plan.Attribute, child plan.Node) (plan.Node, error) {
	groupBy := make([]plan.Expression, len(groupCols))
	grouped := make(map[string]bool, len(groupCols))
	for i, attr := range groupCols {
		groupBy[i] = &plan.ColumnRef{Attr: attr}
		grouped[attr.Name] = true
	}

	var aggFuncs []*plan.AggFunc
	var aggResults []plan.Attribute
	resultExprs := make([]plan.NamedExpr, len(targets))

	for i, t := range targets {
		if t.agg == nil {
			attr, ok := resolveColumn(t.column, columns)
			if !ok {
				return nil, fmt.Errorf("unknown column %q", t.column)
			}
			if !grouped[attr.Name] {
				return nil, fmt.Errorf("column %q must appear in GROUP BY or an aggregate", attr.Name)
			}
			resultExprs[i] = namedColumn(attr, t.alias)
			continue
		}

		typ, err := aggReturnType(t.agg)
		if err != nil {
			return nil, err
		}
		name := t.alias
		if name == "" {
			name = t.agg.String()
		}
		resultAttr := plan.Attribute{Name: name, Type: typ}
		aggFuncs = append(aggFuncs, t.agg)
		aggResults = append(aggResults, resultAttr)
		resultExprs[i] = plan.NamedExpr{Expr: &plan.ColumnRef{Attr: resultAttr}, Name: name}
	}

	return plan.NewAggregate(groupBy, aggFuncs, aggResults, resultExprs, child), nil
}

// namedColumn builds the result expression for a plain column target. An
// alias different from the column name becomes a rename wrapper around the
// reference, which the offload pass strips when comparing layouts.
func namedColumn(attr plan.Attribute, alias string) plan.NamedExpr {
	var expr plan.Expression = &plan.ColumnRef{Attr: attr}
	name := attr.Name
	if alias != "" && alias != attr.Name {
		expr = &plan.Alias{Expr: expr, Name: alias}
		name = alias
	}
	return plan.NamedExpr{Expr: expr, Name: name}
}

// aggReturnType types an aggregate result the way PostgreSQL does
func aggReturnType(f *plan.AggFunc) (types.ColumnType, error) {
	switch f.Name {
	case plan.AggCount:
		return types.ColumnTypeBigInt, nil
	case plan.AggSum:
		arg, err := singleArgType(f)
		if err != nil {
			return "", err
		}
		switch arg {
		case types.ColumnTypeSmallInt, types.ColumnTypeInteger:
			return types.ColumnTypeBigInt, nil
		case types.ColumnTypeBigInt, types.ColumnTypeNumeric:
			return types.ColumnTypeNumeric, nil
		case types.ColumnTypeReal:
			return types.ColumnTypeReal, nil
		case types.ColumnTypeDouble:
			return types.ColumnTypeDouble, nil
		default:
			return "", fmt.Errorf("sum over non-numeric type %s", arg)
		}
	case plan.AggAvg:
		arg, err := singleArgType(f)
		if err != nil {
			return "", err
		}
		if !arg.IsNumeric() {
			return "", fmt.Errorf("avg over non-numeric type %s", arg)
		}
		return types.ColumnTypeNumeric, nil
	case plan.AggMin, plan.AggMax:
		return singleArgType(f)
	default:
		return "", fmt.Errorf("unknown aggregate function %q", f.Name)
	}
}

func singleArgType(f *plan.AggFunc) (types.ColumnType, error) {
	if len(f.Args) != 1 {
		return "", fmt.Errorf("%s takes exactly one argument, got %d", f.Name, len(f.Args))
	}
	return f.Args[0].Type(), nil
}

func resolveColumn(name string, columns []plan.Attribute) (plan.Attribute, bool) {
	for _, attr := range columns {
		if attr.Name == name {
			return attr, true
		}
	}
	return plan.Attribute{}, false
}

func isAggregateName(name string) bool {
	switch name {
	case plan.AggCount, plan.AggSum, plan.AggAvg, plan.AggMin, plan.AggMax:
		return true
	default:
		return false
	}
}

func extractTargets(stmt *pg_query.SelectStmt, columns []plan.Attribute) ([]target, error) {
	targetList := stmt.GetTargetList()
	if len(targetList) == 0 {
		return nil, fmt.Errorf("empty select list")
	}

	targets := make([]target, 0, len(targetList))
	for _, item := range targetList {
		resTarget := item.GetResTarget()
		if resTarget == nil {
			return nil, fmt.Errorf("unsupported select-list entry")
		}
		val := resTarget.GetVal()
		if val == nil {
			return nil, fmt.Errorf("unsupported select-list entry")
		}

		t := target{alias: resTarget.GetName()}

		if funcCall := val.GetFuncCall(); funcCall != nil {
			agg, err := extractAggregate(funcCall, columns)
			if err != nil {
				return nil, err
			}
			t.agg = agg
		} else if columnRef := val.GetColumnRef(); columnRef != nil {
			name, err := columnRefName(columnRef)
			if err != nil {
				return nil, err
			}
			t.column = name
		} else {
			return nil, fmt.Errorf("unsupported select-list expression")
		}

		targets = append(targets, t)
	}
	return targets, nil
}

func extractAggregate(funcCall *pg_query.FuncCall, columns []plan.Attribute) (*plan.AggFunc, error) {
	funcname := funcCall.GetFuncname()
	if len(funcname) == 0 {
		return nil, fmt.Errorf("function call without a name")
	}
	name := strings.ToLower(funcname[len(funcname)-1].GetString_().GetSval())
	if !isAggregateName(name) {
		return nil, fmt.Errorf("unsupported function %q in select list", name)
	}

	agg := &plan.AggFunc{Name: name, Distinct: funcCall.GetAggDistinct()}

	if funcCall.GetAggStar() {
		if name != plan.AggCount {
			return nil, fmt.Errorf("%s(*) is not supported", name)
		}
		return agg, nil
	}

	for _, arg := range funcCall.GetArgs() {
		columnRef := arg.GetColumnRef()
		if columnRef == nil {
			return nil, fmt.Errorf("%s arguments must be plain columns", name)
		}
		colName, err := columnRefName(columnRef)
		if err != nil {
			return nil, err
		}
		attr, ok := resolveColumn(colName, columns)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", colName)
		}
		agg.Args = append(agg.Args, &plan.ColumnRef{Attr: attr})
	}
	return agg, nil
}

func extractGroupBy(stmt *pg_query.SelectStmt, columns []plan.Attribute) ([]plan.Attribute, error) {
	groupClause := stmt.GetGroupClause()
	groupCols := make([]plan.Attribute, 0, len(groupClause))
	for _, item := range groupClause {
		columnRef := item.GetColumnRef()
		if columnRef == nil {
			return nil, fmt.Errorf("only plain columns are supported in GROUP BY")
		}
		name, err := columnRefName(columnRef)
		if err != nil {
			return nil, err
		}
		attr, ok := resolveColumn(name, columns)
		if !ok {
			return nil, fmt.Errorf("unknown column %q in GROUP BY", name)
		}
		groupCols = append(groupCols, attr)
	}
	return groupCols, nil
}

func columnRefName(columnRef *pg_query.ColumnRef) (string, error) {
	fields := columnRef.GetFields()
	if len(fields) == 0 {
		return "", fmt.Errorf("empty column reference")
	}
	str := fields[len(fields)-1].GetString_()
	if str == nil {
		return "", fmt.Errorf("unsupported column reference")
	}
	return str.GetSval(), nil
}

func buildCondition(node *pg_query.Node, columns []plan.Attribute) (plan.Expression, error) {
	if boolExpr := node.GetBoolExpr(); boolExpr != nil {
		if boolExpr.GetBoolop() != pg_query.BoolExprType_AND_EXPR {
			return nil, fmt.Errorf("only AND conditions are supported")
		}
		args := boolExpr.GetArgs()
		if len(args) == 0 {
			return nil, fmt.Errorf("empty boolean expression")
		}
		cond, err := buildCondition(args[0], columns)
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			right, err := buildCondition(arg, columns)
			if err != nil {
				return nil, err
			}
			cond = &plan.BinaryExpr{Op: "and", Left: cond, Right: right, ResultTyp: types.ColumnTypeBoolean}
		}
		return cond, nil
	}

	aExpr := node.GetAExpr()
	if aExpr == nil || aExpr.GetKind() != pg_query.A_Expr_Kind_AEXPR_OP {
		return nil, fmt.Errorf("unsupported WHERE expression")
	}
	opNames := aExpr.GetName()
	if len(opNames) == 0 {
		return nil, fmt.Errorf("operator expression without an operator")
	}
	op := opNames[len(opNames)-1].GetString_().GetSval()

	left, err := buildOperand(aExpr.GetLexpr(), columns)
	if err != nil {
		return nil, err
	}
	right, err := buildOperand(aExpr.GetRexpr(), columns)
	if err != nil {
		return nil, err
	}
	return &plan.BinaryExpr{Op: op, Left: left, Right: right, ResultTyp: types.ColumnTypeBoolean}, nil
}

func buildOperand(node *pg_query.Node, columns []plan.Attribute) (plan.Expression, error) {
	if node == nil {
		return nil, fmt.Errorf("missing operand")
	}
	if columnRef := node.GetColumnRef(); columnRef != nil {
		name, err := columnRefName(columnRef)
		if err != nil {
			return nil, err
		}
		attr, ok := resolveColumn(name, columns)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		return &plan.ColumnRef{Attr: attr}, nil
	}
	if aConst := node.GetAConst(); aConst != nil {
		if ival := aConst.GetIval(); ival != nil {
			return &plan.Constant{Value: ival.GetIval(), ValueTyp: types.ColumnTypeInteger}, nil
		}
		if fval := aConst.GetFval(); fval != nil {
			return &plan.Constant{Value: fval.GetFval(), ValueTyp: types.ColumnTypeNumeric}, nil
		}
		if sval := aConst.GetSval(); sval != nil {
			return &plan.Constant{Value: sval.GetSval(), ValueTyp: types.ColumnTypeText}, nil
		}
		return nil, fmt.Errorf("unsupported constant in WHERE")
	}
	return nil, fmt.Errorf("unsupported operand in WHERE")
}
