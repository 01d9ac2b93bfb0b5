package plans

import (
	"minidb/catalog"
	"minidb/execution/expressions"
)

// HashJoinPlanNode equi-joins its two children on LeftKey/RightKey,
// evaluated against each side's own schema (unlike NestedLoopJoin's single
// join-wide predicate, since the hash build only ever needs the key, not
// an arbitrary boolean expression).
type HashJoinPlanNode struct {
	BasePlanNode
	LeftKey  expressions.IExpression
	RightKey expressions.IExpression
}

func (n *HashJoinPlanNode) GetType() PlanType {
	return HashJoin
}

func (n *HashJoinPlanNode) GetLeftPlan() IPlanNode {
	return n.GetChildAt(0)
}

func (n *HashJoinPlanNode) GetRightPlan() IPlanNode {
	return n.GetChildAt(1)
}

func NewHashJoinPlanNode(outSchema catalog.Schema, leftKey, rightKey expressions.IExpression, left, right IPlanNode) *HashJoinPlanNode {
	return &HashJoinPlanNode{
		BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{left, right}},
		LeftKey:      leftKey,
		RightKey:     rightKey,
	}
}
