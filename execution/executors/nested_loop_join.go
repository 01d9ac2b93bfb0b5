package executors

import (
	"errors"

	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// NestedLoopJoinExecutor pairs every left row with every matching right
// row: for each left tuple it rewinds the right child and scans it end to
// end, testing the join predicate on each pair.
type NestedLoopJoinExecutor struct {
	BaseExecutor
	plan          *plans.NestedLoopJoinPlanNode
	leftExec      IExecutor
	rightExec     IExecutor
	lastLeftTuple *catalog.Tuple
}

func (e *NestedLoopJoinExecutor) Init() {
	e.leftExec.Init()
	e.rightExec.Init()
	e.lastLeftTuple = nil
}

// GetOutSchema returns the plan's out schema if it set one, else the
// concatenation of both children's schemas.
func (e *NestedLoopJoinExecutor) GetOutSchema() catalog.Schema {
	if e.plan.GetOutSchema() == nil {
		rs, ls := e.plan.GetRightPlan().GetOutSchema(), e.plan.GetLeftPlan().GetOutSchema()
		return concatSchemas(ls, rs)
	}
	return e.plan.OutSchema
}

func (e *NestedLoopJoinExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	var rt, lt catalog.Tuple
	var rr, lr structures.Rid
	rs, ls := e.plan.GetRightPlan().GetOutSchema(), e.plan.GetLeftPlan().GetOutSchema()

	if e.lastLeftTuple != nil {
		lt = *e.lastLeftTuple
	} else {
		if err := e.leftExec.Next(&lt, &lr); err != nil {
			return err
		}
		e.lastLeftTuple = &lt
	}

	for {
		var err error
		for err = e.rightExec.Next(&rt, &rr); err == nil; err = e.rightExec.Next(&rt, &rr) {
			val := e.plan.GetPredicate().EvalJoin(lt, ls, rt, rs)
			if val.GetAsInterface().(uint8) == 0 {
				continue
			}

			*t = catalog.Tuple{Row: concatRows(lt.Row, rt.Row)}
			return nil
		}

		if !errors.Is(err, ErrNoTuple{}) {
			return err
		}
		e.rightExec.Init()

		if err := e.leftExec.Next(&lt, &lr); err != nil {
			return err
		}
		e.lastLeftTuple = &lt
	}
}

func NewNestedLoopJoinExecutor(ctx *execution.ExecutorContext, plan *plans.NestedLoopJoinPlanNode, l, r IExecutor) *NestedLoopJoinExecutor {
	return &NestedLoopJoinExecutor{
		BaseExecutor: BaseExecutor{executorCtx: ctx},
		plan:         plan,
		leftExec:     l,
		rightExec:    r,
	}
}

func concatSchemas(s1 catalog.Schema, s2 catalog.Schema) catalog.Schema {
	newColumns := make([]catalog.Column, 0, len(s1.GetColumns())+len(s2.GetColumns()))
	newColumns = append(newColumns, s1.GetColumns()...)
	newColumns = append(newColumns, s2.GetColumns()...)
	// NewSchema recomputes every Offset sequentially, so the columns'
	// original offsets (meaningful only within their own schema) don't
	// need adjusting here.
	return catalog.NewSchema(newColumns)
}

func concatRows(r1 structures.Row, r2 structures.Row) structures.Row {
	d1, d2 := r1.GetData(), r2.GetData()
	newData := make([]byte, 0, len(d1)+len(d2))
	newData = append(newData, d1...)
	newData = append(newData, d2...)

	return structures.Row{Data: newData}
}
