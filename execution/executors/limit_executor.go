package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// LimitExecutor emits at most plan.Limit rows from its child, then reports
// end of stream without pulling the child any further.
type LimitExecutor struct {
	BaseExecutor
	plan          *plans.LimitPlanNode
	childExecutor IExecutor
	emitted       int
}

func NewLimitExecutor(ctx *execution.ExecutorContext, plan *plans.LimitPlanNode, child IExecutor) *LimitExecutor {
	return &LimitExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *LimitExecutor) Init() {
	e.childExecutor.Init()
	e.emitted = 0
}

func (e *LimitExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *LimitExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	if e.emitted >= e.plan.Limit {
		return ErrNoTuple{}
	}
	if err := e.childExecutor.Next(t, rid); err != nil {
		return err
	}
	e.emitted++
	return nil
}
