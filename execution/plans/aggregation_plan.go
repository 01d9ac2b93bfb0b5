package plans

import (
	"minidb/catalog"
	"minidb/execution/expressions"
)

type AggregationType int

const (
	CountStar AggregationType = iota
	Count
	Sum
	Min
	Max
)

// AggregateTerm is one aggregate in the SELECT list: Expr is evaluated per
// row and folded into the running state the way Type names (CountStar
// ignores Expr entirely, since it counts rows rather than values).
type AggregateTerm struct {
	Expr expressions.IExpression
	Type AggregationType
}

// AggregationPlanNode groups the child's rows by GroupBys and folds each
// group's rows through Aggregates. OutSchema's columns must be ordered
// group-bys first, then aggregates, matching the order the executor builds
// its output tuple in. Having, if non-nil, is evaluated against that same
// output tuple and schema, so it can reference aggregate output columns
// directly instead of needing a separate aggregate-aware expression type.
type AggregationPlanNode struct {
	BasePlanNode
	GroupBys   []expressions.IExpression
	Aggregates []AggregateTerm
	Having     expressions.IExpression
}

func (n *AggregationPlanNode) GetType() PlanType {
	return Aggregation
}

func NewAggregationPlanNode(outSchema catalog.Schema, child IPlanNode, groupBys []expressions.IExpression, aggregates []AggregateTerm, having expressions.IExpression) *AggregationPlanNode {
	return &AggregationPlanNode{
		BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{child}},
		GroupBys:     groupBys,
		Aggregates:   aggregates,
		Having:       having,
	}
}
