package plans

import "minidb/catalog"

type LimitPlanNode struct {
	BasePlanNode
	Limit int
}

func (n *LimitPlanNode) GetType() PlanType {
	return Limit
}

func NewLimitPlanNode(outSchema catalog.Schema, child IPlanNode, limit int) *LimitPlanNode {
	return &LimitPlanNode{BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{child}}, Limit: limit}
}
