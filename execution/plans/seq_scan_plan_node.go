package plans

import (
	"minidb/catalog"
	"minidb/execution/expressions"
)

type SeqScanPlanNode struct {
	BasePlanNode
	predicate expressions.IExpression
	tableOID  catalog.TableOID
}

func NewSeqScanPlanNode(outSchema catalog.Schema, predicate expressions.IExpression, tableOID catalog.TableOID) *SeqScanPlanNode {
	return &SeqScanPlanNode{
		BasePlanNode: BasePlanNode{OutSchema: outSchema},
		predicate:    predicate,
		tableOID:     tableOID,
	}
}

func (n *SeqScanPlanNode) GetType() PlanType {
	return SeqScan
}

func (n *SeqScanPlanNode) GetPredicate() expressions.IExpression {
	return n.predicate
}

func (n *SeqScanPlanNode) GetTableOID() catalog.TableOID {
	return n.tableOID
}
