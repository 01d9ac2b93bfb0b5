package plans

import "minidb/catalog"

type PlanType int

const (
	SeqScan PlanType = iota
	IndexScan
	Insert
	Update
	Delete
	Aggregation
	Limit
	Distinct
	Sort
	TopN
	NestedLoopJoin
	NestedIndexJoin
	HashJoin
)

type IPlanNode interface {
	GetType() PlanType
	GetOutSchema() catalog.Schema
	GetChildAt(idx int) IPlanNode
	GetChildren() []IPlanNode
}

// BasePlanNode is the common state every plan node embeds: its output
// schema (what shape of tuple its executor yields) and its child plans, if
// any (a SeqScan has none, a join has two).
type BasePlanNode struct {
	OutSchema catalog.Schema
	Children  []IPlanNode
}

func (n *BasePlanNode) GetChildAt(idx int) IPlanNode {
	return n.Children[idx]
}

func (n *BasePlanNode) GetChildren() []IPlanNode {
	return n.Children
}

func (n *BasePlanNode) GetOutSchema() catalog.Schema {
	return n.OutSchema
}
