package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// TopNExecutor is Sort truncated to the plan's N: it drains and orders the
// child exactly like SortExecutor, then only ever replays the first N rows.
type TopNExecutor struct {
	BaseExecutor
	plan          *plans.TopNPlanNode
	childExecutor IExecutor
	rows          []sortedRow
	pos           int
}

func NewTopNExecutor(ctx *execution.ExecutorContext, plan *plans.TopNPlanNode, child IExecutor) *TopNExecutor {
	return &TopNExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *TopNExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *TopNExecutor) Init() {
	e.childExecutor.Init()
	rows := drainSorted(e.childExecutor)
	sortRows(rows, e.childExecutor.GetOutSchema(), e.plan.Keys)
	if len(rows) > e.plan.N {
		rows = rows[:e.plan.N]
	}
	e.rows = rows
	e.pos = 0
}

func (e *TopNExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	if e.pos >= len(e.rows) {
		return ErrNoTuple{}
	}
	row := e.rows[e.pos]
	e.pos++
	*t = row.tuple
	*rid = row.rid
	return nil
}
