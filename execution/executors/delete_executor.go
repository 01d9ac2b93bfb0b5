package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// DeleteExecutor removes the rows its child produces from the table heap
// and every attached index, taking an exclusive lock on each rid first
// since a delete conflicts with any concurrent reader or writer of the
// same row. Each Next call deletes one child row and yields that row and
// its rid; Next does not drain the child in a single call.
type DeleteExecutor struct {
	BaseExecutor
	plan          *plans.DeletePlanNode
	childExecutor IExecutor
}

func NewDeleteExecutor(ctx *execution.ExecutorContext, plan *plans.DeletePlanNode, child IExecutor) *DeleteExecutor {
	return &DeleteExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *DeleteExecutor) Init() {
	e.childExecutor.Init()
}

func (e *DeleteExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *DeleteExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	ctx := e.executorCtx
	table := ctx.Catalog.GetTableByOID(e.plan.GetTableOID())

	var childTuple catalog.Tuple
	var childRid structures.Rid
	if err := e.childExecutor.Next(&childTuple, &childRid); err != nil {
		return err
	}

	if err := ctx.LockManager.LockExclusive(ctx.Txn, childRid); err != nil {
		return err
	}
	if err := table.DeleteTuple(childRid); err != nil {
		return err
	}

	*t = childTuple
	*rid = childRid
	return nil
}
