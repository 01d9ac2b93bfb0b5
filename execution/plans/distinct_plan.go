package plans

import "minidb/catalog"

type DistinctPlanNode struct {
	BasePlanNode
}

func (n *DistinctPlanNode) GetType() PlanType {
	return Distinct
}

func NewDistinctPlanNode(outSchema catalog.Schema, child IPlanNode) *DistinctPlanNode {
	return &DistinctPlanNode{BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{child}}}
}
