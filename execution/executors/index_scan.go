package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
	"minidb/transaction"
)

// IndexScanExecutor resolves the plan's search values to a rid through a
// unique hash index, then reads that single row out of its table heap,
// taking the same shared-lock/read-committed-release discipline SeqScan
// uses. Init does the index lookup; at most one row is ever produced.
type IndexScanExecutor struct {
	BaseExecutor
	plan   *plans.IndexScanPlanNode
	rids   []structures.Rid
	cursor int
}

func NewIndexScanExecutor(ctx *execution.ExecutorContext, plan *plans.IndexScanPlanNode) *IndexScanExecutor {
	return &IndexScanExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan}
}

func (e *IndexScanExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *IndexScanExecutor) Init() {
	ctx := e.executorCtx
	index := ctx.Catalog.GetIndexByOID(e.plan.GetIndexOID())

	key, err := index.BuildSearchKey(e.plan.SearchValues)
	if err != nil {
		panic(err)
	}

	rids, err := index.Index.GetValue(key)
	if err != nil {
		panic(err)
	}
	e.rids = rids
	e.cursor = 0
}

func (e *IndexScanExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	ctx := e.executorCtx
	table := ctx.Catalog.GetTableByOID(e.plan.GetTableOID())

	for e.cursor < len(e.rids) {
		candidate := e.rids[e.cursor]
		e.cursor++

		if err := ctx.LockManager.LockShared(ctx.Txn, candidate); err != nil {
			return err
		}
		if ctx.Txn.Isolation() == transaction.ReadCommitted {
			defer ctx.LockManager.Unlock(ctx.Txn, candidate)
		}

		var row structures.Row
		if err := table.Heap.ReadRow(candidate, &row); err != nil {
			continue
		}

		*t = *catalog.CastRowAsTuple(&row)
		*rid = candidate
		return nil
	}
	return ErrNoTuple{}
}
