package offload

import (
	"fmt"

	"github.com/guileen/nativeplan/logger"
	"github.com/guileen/nativeplan/plan"
)

// Adapter reconciles an aggregate's declared output with the attribute
// layout the native engine actually produces. When the two disagree, the
// aggregate is rebuilt to emit the native attributes directly and a
// projection above it re-expresses the original result expressions, so
// downstream operators keep the schema they were compiled against.
type Adapter struct {
	resolver Resolver
	tags     *TagSet
}

// NewAdapter creates an adapter using the given resolver and tag table
func NewAdapter(resolver Resolver, tags *TagSet) *Adapter {
	return &Adapter{resolver: resolver, tags: tags}
}

// Tags returns the adapter's tag table
func (a *Adapter) Tags() *TagSet { return a.tags }

// adaptation is the outcome of matching a single aggregate node
type adaptation struct {
	adapted bool
	proj    *plan.Projection
	agg     *plan.Aggregate
}

// NeedsAdaptation reports whether an adaptation projection is required for
// the aggregate. Nodes already excluded from offload are never adapted and
// report false without consulting the resolver.
func (a *Adapter) NeedsAdaptation(agg *plan.Aggregate) (bool, error) {
	if a.tags.IsExcluded(agg) {
		return false, nil
	}
	native, err := a.resolver.Resolve(agg.GroupBy, agg.AggFuncs, agg.AggResults)
	if err != nil {
		return false, err
	}
	return mismatch(agg.ResultExprs, native), nil
}

// mismatch decides whether the declared result expressions can stand in for
// the native attribute layout. The native engine only emits raw attributes:
// any result expression that does not normalize to a plain, compatible
// column reference forces adaptation.
func mismatch(resultExprs []plan.NamedExpr, native []plan.Attribute) bool {
	if len(resultExprs) != len(native) {
		return true
	}
	for i, ne := range resultExprs {
		ref, ok := plan.StripAlias(ne.Expr).(*plan.ColumnRef)
		if !ok {
			return true
		}
		if !ref.Attr.Compatible(native[i]) {
			return true
		}
	}
	return false
}

// match is the shared detection/construction core behind both driver modes.
// It never mutates the input node or its tag entry; tags are copied onto
// the replacement aggregate it builds.
func (a *Adapter) match(agg *plan.Aggregate) (adaptation, error) {
	if a.tags.IsExcluded(agg) {
		return adaptation{}, nil
	}

	native, err := a.resolver.Resolve(agg.GroupBy, agg.AggFuncs, agg.AggResults)
	if err != nil {
		return adaptation{}, err
	}
	if !mismatch(agg.ResultExprs, native) {
		return adaptation{}, nil
	}

	// The rebuilt aggregate declares the native attributes directly, so no
	// expression evaluation happens at that layer.
	newAgg := agg.CloneWithResultExprs(plan.NamedExprsFromAttrs(native))
	if !plan.AttributesEqual(newAgg.Schema(), native) {
		return adaptation{}, fmt.Errorf("%w: declared %s, resolved %s",
			ErrSchemaDrift, newAgg.Schema(), native)
	}
	a.tags.Copy(agg, newAgg)

	resultExprs := make([]plan.NamedExpr, len(agg.ResultExprs))
	copy(resultExprs, agg.ResultExprs)
	proj := plan.NewProjection(resultExprs, newAgg)

	return adaptation{adapted: true, proj: proj, agg: newAgg}, nil
}

// ApplyToPlan walks the plan tree and replaces every aggregate whose
// declared output disagrees with its native layout by an adaptation
// projection over a rebuilt aggregate. The returned subtree declares
// exactly the schema the original tree declared. The superseded node's tag
// is cleared once its replacement is committed into the tree.
func (a *Adapter) ApplyToPlan(root plan.Node) (plan.Node, error) {
	children := root.Children()
	for i, child := range children {
		newChild, err := a.ApplyToPlan(child)
		if err != nil {
			return nil, err
		}
		children[i] = newChild
	}
	root.SetChildren(children...)

	agg, ok := root.(*plan.Aggregate)
	if !ok {
		return root, nil
	}

	res, err := a.match(agg)
	if err != nil {
		return nil, err
	}
	if !res.adapted {
		return root, nil
	}

	a.tags.Clear(agg)
	logger.Debug("inserted adaptation projection above aggregate",
		"aggregate", res.agg.ID(), "superseded", agg.ID())
	return res.proj, nil
}

// EvaluateForValidation shows a feasibility validator what a single node
// would look like after adaptation, without mutating the node or the tree.
// If adaptation applies, the rebuilt aggregate is returned directly and the
// synthesized projection is discarded; otherwise the node comes back
// unchanged. Safe to call repeatedly against the same node.
func (a *Adapter) EvaluateForValidation(n plan.Node) (plan.Node, error) {
	agg, ok := n.(*plan.Aggregate)
	if !ok {
		return n, nil
	}

	res, err := a.match(agg)
	if err != nil {
		return nil, err
	}
	if !res.adapted {
		return n, nil
	}
	return res.agg, nil
}
