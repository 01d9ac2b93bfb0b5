package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// InsertExecutor inserts either a fixed list of raw value rows (a VALUES
// clause) or every row its child executor produces, acquiring an exclusive
// lock on each inserted rid before returning it.
type InsertExecutor struct {
	BaseExecutor
	plan                  *plans.InsertPlanNode
	childExecutor         IExecutor
	lastInsertedRawValue int
}

func (e *InsertExecutor) Init() {
	e.lastInsertedRawValue = -1
	if !e.plan.IsRawInsert() {
		e.childExecutor.Init()
	}
}

func (e *InsertExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *InsertExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	ctx := e.executorCtx
	table := ctx.Catalog.GetTableByOID(e.plan.GetTableOID())

	if e.plan.IsRawInsert() {
		e.lastInsertedRawValue++
		if e.lastInsertedRawValue == len(e.plan.RawValues()) {
			return ErrNoTuple{}
		}

		insertedRid, err := table.InsertTupleViaValues(e.plan.RawValuesAt(e.lastInsertedRawValue))
		if err != nil {
			return err
		}
		if err := ctx.LockManager.LockExclusive(ctx.Txn, *insertedRid); err != nil {
			return err
		}
		*rid = *insertedRid
		return nil
	}

	if err := e.childExecutor.Next(t, rid); err != nil {
		return err
	}
	insertedRid, err := table.InsertTuple(t)
	if err != nil {
		return err
	}
	if err := ctx.LockManager.LockExclusive(ctx.Txn, *insertedRid); err != nil {
		return err
	}
	*rid = *insertedRid
	return nil
}

func NewInsertExecutor(ctx *execution.ExecutorContext, plan *plans.InsertPlanNode, childExecutor IExecutor) *InsertExecutor {
	return &InsertExecutor{
		BaseExecutor:          BaseExecutor{executorCtx: ctx},
		plan:                  plan,
		childExecutor:         childExecutor,
		lastInsertedRawValue: -1,
	}
}
