package executors

import (
	"minidb/catalog"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// DistinctExecutor emits only the first row seen for each distinct
// combination of output-schema column values, grounded on the same
// build-a-key-then-look-it-up shape the hash join and aggregation
// executors use.
type DistinctExecutor struct {
	BaseExecutor
	plan          *plans.DistinctPlanNode
	childExecutor IExecutor
	seen          map[string]struct{}
}

func NewDistinctExecutor(ctx *execution.ExecutorContext, plan *plans.DistinctPlanNode, child IExecutor) *DistinctExecutor {
	return &DistinctExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *DistinctExecutor) Init() {
	e.childExecutor.Init()
	e.seen = make(map[string]struct{})
}

func (e *DistinctExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *DistinctExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	childSchema := e.childExecutor.GetOutSchema()
	for {
		var childTuple catalog.Tuple
		var childRid structures.Rid
		if err := e.childExecutor.Next(&childTuple, &childRid); err != nil {
			return err
		}

		key, err := distinctKey(childTuple, childSchema, e.plan.OutSchema)
		if err != nil {
			return err
		}
		if _, ok := e.seen[key]; ok {
			continue
		}
		e.seen[key] = struct{}{}

		*t = childTuple
		*rid = childRid
		return nil
	}
}

// distinctKey serializes the child row's values for out's columns, each
// located by name in the child's schema.
func distinctKey(t catalog.Tuple, child, out catalog.Schema) (string, error) {
	var buf []byte
	for _, col := range out.GetColumns() {
		idx, err := child.GetColIdx(col.Name)
		if err != nil {
			return "", err
		}
		v := t.GetValue(child, idx)
		b := make([]byte, v.Size())
		v.Serialize(b)
		buf = append(buf, b...)
	}
	return string(buf), nil
}
