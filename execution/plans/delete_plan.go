package plans

import "minidb/catalog"

type DeletePlanNode struct {
	BasePlanNode
	tableOID catalog.TableOID
}

func (n *DeletePlanNode) GetType() PlanType {
	return Delete
}

func (n *DeletePlanNode) GetTableOID() catalog.TableOID {
	return n.tableOID
}

func NewDeletePlanNode(child IPlanNode, toid catalog.TableOID) *DeletePlanNode {
	return &DeletePlanNode{
		BasePlanNode: BasePlanNode{OutSchema: nil, Children: []IPlanNode{child}},
		tableOID:     toid,
	}
}
