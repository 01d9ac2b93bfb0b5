package plans

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

// IndexScanPlanNode is a point lookup against a unique index: SearchValues
// gives one literal per indexed column, in index column order.
type IndexScanPlanNode struct {
	BasePlanNode
	tableOID     catalog.TableOID
	indexOID     catalog.IndexOID
	SearchValues []*db_types.Value
}

func (n *IndexScanPlanNode) GetType() PlanType {
	return IndexScan
}

func (n *IndexScanPlanNode) GetTableOID() catalog.TableOID {
	return n.tableOID
}

func (n *IndexScanPlanNode) GetIndexOID() catalog.IndexOID {
	return n.indexOID
}

func NewIndexScanPlanNode(outSchema catalog.Schema, tableOID catalog.TableOID, indexOID catalog.IndexOID, searchValues []*db_types.Value) *IndexScanPlanNode {
	return &IndexScanPlanNode{
		BasePlanNode: BasePlanNode{OutSchema: outSchema, Children: []IPlanNode{}},
		tableOID:     tableOID,
		indexOID:     indexOID,
		SearchValues: searchValues,
	}
}
