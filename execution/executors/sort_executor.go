package executors

import (
	"errors"
	"sort"

	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

type sortedRow struct {
	tuple catalog.Tuple
	rid   structures.Rid
}

// SortExecutor drains its child fully in Init, orders the materialized
// rows by the plan's key list, and replays them one at a time in Next.
type SortExecutor struct {
	BaseExecutor
	plan          *plans.SortPlanNode
	childExecutor IExecutor
	rows          []sortedRow
	pos           int
}

func NewSortExecutor(ctx *execution.ExecutorContext, plan *plans.SortPlanNode, child IExecutor) *SortExecutor {
	return &SortExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *SortExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *SortExecutor) Init() {
	e.childExecutor.Init()
	e.rows = drainSorted(e.childExecutor)
	sortRows(e.rows, e.childExecutor.GetOutSchema(), e.plan.Keys)
	e.pos = 0
}

func (e *SortExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	if e.pos >= len(e.rows) {
		return ErrNoTuple{}
	}
	row := e.rows[e.pos]
	e.pos++
	*t = row.tuple
	*rid = row.rid
	return nil
}

// drainSorted pulls every row out of child. It panics on anything but
// ErrNoTuple: Init has no error return, and a real storage error here
// means the caller's plan is unusable regardless.
func drainSorted(child IExecutor) []sortedRow {
	var rows []sortedRow
	for {
		var t catalog.Tuple
		var rid structures.Rid
		err := child.Next(&t, &rid)
		if err != nil {
			if errors.Is(err, ErrNoTuple{}) {
				break
			}
			panic(err)
		}
		rows = append(rows, sortedRow{tuple: t, rid: rid})
	}
	return rows
}

func sortRows(rows []sortedRow, schema catalog.Schema, keys []plans.SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			vi := k.Expr.Eval(rows[i].tuple, schema)
			vj := k.Expr.Eval(rows[j].tuple, schema)
			if vi.Less(&vj) {
				return k.Ascending
			}
			if vj.Less(&vi) {
				return !k.Ascending
			}
		}
		return false
	})
}
