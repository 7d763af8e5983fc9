package plan

import (
	"fmt"
	"strings"
)

// Aggregate function names understood by the planner
const (
	AggCount = "count"
	AggSum   = "sum"
	AggAvg   = "avg"
	AggMin   = "min"
	AggMax   = "max"
)

// AggFunc describes one aggregate function computed by an Aggregate node
type AggFunc struct {
	Name     string
	Args     []Expression
	Distinct bool
}

func (f *AggFunc) String() string {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.String()
	}
	if len(args) == 0 {
		args = []string{"*"}
	}
	if f.Distinct {
		return fmt.Sprintf("%s(distinct %s)", f.Name, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

// Clone returns a copy of the aggregate function descriptor. Argument
// expressions are immutable once built, so they are shared.
func (f *AggFunc) Clone() *AggFunc {
	cloned := &AggFunc{
		Name:     f.Name,
		Args:     make([]Expression, len(f.Args)),
		Distinct: f.Distinct,
	}
	copy(cloned.Args, f.Args)
	return cloned
}
