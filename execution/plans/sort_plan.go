package plans

import (
	"minidb/catalog"
	"minidb/execution/expressions"
)

// SortKey is one ORDER BY term: Expr evaluated per row, Ascending false
// for a descending term.
type SortKey struct {
	Expr      expressions.IExpression
	Ascending bool
}

type SortPlanNode struct {
	BasePlanNode
	Keys []SortKey
}

func (n *SortPlanNode) GetType() PlanType {
	return Sort
}

func NewSortPlanNode(outSchema catalog.Schema, child IPlanNode, keys []SortKey) *SortPlanNode {
	return &SortPlanNode{BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{child}}, Keys: keys}
}

type TopNPlanNode struct {
	BasePlanNode
	Keys []SortKey
	N    int
}

func (n *TopNPlanNode) GetType() PlanType {
	return TopN
}

func NewTopNPlanNode(outSchema catalog.Schema, child IPlanNode, keys []SortKey, n int) *TopNPlanNode {
	return &TopNPlanNode{BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{child}}, Keys: keys, N: n}
}
