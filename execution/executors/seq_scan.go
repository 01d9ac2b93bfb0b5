package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
	"minidb/transaction"
)

// SeqScanExecutor walks a table's heap in physical order, acquiring a
// shared lock on each row before testing it against the plan's predicate.
// Under READ_COMMITTED the lock is dropped immediately after the row is
// read; REPEATABLE_READ and stricter levels hold it until the transaction
// ends.
type SeqScanExecutor struct {
	BaseExecutor
	plan      *plans.SeqScanPlanNode
	tableIter *structures.TableIterator
}

func (e *SeqScanExecutor) Init() {
	table := e.executorCtx.Catalog.GetTableByOID(e.plan.GetTableOID())
	e.tableIter = structures.NewTableIterator(table.Heap)
}

func (e *SeqScanExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *SeqScanExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	ctx := e.executorCtx
	for {
		row, err := e.tableIter.Next()
		if err != nil {
			return err
		}
		if row == nil {
			return ErrNoTuple{}
		}

		if err := ctx.LockManager.LockShared(ctx.Txn, row.Rid); err != nil {
			return err
		}
		if ctx.Txn.Isolation() == transaction.ReadCommitted {
			defer ctx.LockManager.Unlock(ctx.Txn, row.Rid)
		}

		*t = *catalog.CastRowAsTuple(row)
		*rid = t.Rid

		pred := e.plan.GetPredicate()
		if pred != nil {
			val := pred.Eval(*t, e.GetOutSchema())
			if val.GetAsInterface().(uint8) == 0 {
				continue
			}
		}

		return nil
	}
}

func NewSeqScanExecutor(ctx *execution.ExecutorContext, plan *plans.SeqScanPlanNode) *SeqScanExecutor {
	return &SeqScanExecutor{
		BaseExecutor: BaseExecutor{executorCtx: ctx},
		plan:         plan,
	}
}
