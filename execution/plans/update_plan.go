package plans

import (
	"minidb/catalog"
	"minidb/execution/expressions"
)

// UpdatePlanNode carries one expression per column it changes; any column
// index absent from Assignments keeps its original value. The expression
// is evaluated against the child's row, so a plain ConstExpression gives
// "Set column = literal" and an ArithmeticExpression over a
// GetColumnExpression gives "Set column = column + literal".
type UpdatePlanNode struct {
	BasePlanNode
	tableOID    catalog.TableOID
	Assignments map[int]expressions.IExpression
}

func (n *UpdatePlanNode) GetType() PlanType {
	return Update
}

func (n *UpdatePlanNode) GetTableOID() catalog.TableOID {
	return n.tableOID
}

func NewUpdatePlanNode(child IPlanNode, toid catalog.TableOID, assignments map[int]expressions.IExpression) *UpdatePlanNode {
	return &UpdatePlanNode{
		BasePlanNode: BasePlanNode{OutSchema: nil, Children: []IPlanNode{child}},
		tableOID:     toid,
		Assignments:  assignments,
	}
}
