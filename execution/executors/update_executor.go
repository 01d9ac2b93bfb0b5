package executors

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// UpdateExecutor pulls one row at a time from its child, applies the
// plan's per-column assignment expressions to build the new value list,
// and replaces the row in the table heap and every attached index. It is
// not a sink: each Next call advances exactly one child row and yields the
// pre-update tuple.
type UpdateExecutor struct {
	BaseExecutor
	plan          *plans.UpdatePlanNode
	childExecutor IExecutor
}

func NewUpdateExecutor(ctx *execution.ExecutorContext, plan *plans.UpdatePlanNode, child IExecutor) *UpdateExecutor {
	return &UpdateExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *UpdateExecutor) Init() {
	e.childExecutor.Init()
}

func (e *UpdateExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *UpdateExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	ctx := e.executorCtx
	table := ctx.Catalog.GetTableByOID(e.plan.GetTableOID())
	schema := e.childExecutor.GetOutSchema()

	var childTuple catalog.Tuple
	var childRid structures.Rid
	if err := e.childExecutor.Next(&childTuple, &childRid); err != nil {
		return err
	}

	if err := ctx.LockManager.LockExclusive(ctx.Txn, childRid); err != nil {
		return err
	}

	cols := schema.GetColumns()
	newValues := make([]*db_types.Value, len(cols))
	for i := range cols {
		if expr, ok := e.plan.Assignments[i]; ok {
			val := expr.Eval(childTuple, schema)
			newValues[i] = &val
			continue
		}
		newValues[i] = childTuple.GetValue(schema, i)
	}

	if err := table.UpdateTuple(childRid, newValues); err != nil {
		return err
	}

	*t = childTuple
	*rid = childRid
	return nil
}
