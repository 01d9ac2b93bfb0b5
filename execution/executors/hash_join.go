package executors

import (
	"errors"

	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// HashJoinExecutor equi-joins by building an in-memory multimap over the
// entire left child in Init, keyed by the join key's serialized bytes,
// then probing it one right row at a time in Next. A cursor into the
// current right row's matching bucket persists across Next calls so a
// right row with several left matches is reported one pair per call
// before the executor advances to the next right row.
type HashJoinExecutor struct {
	BaseExecutor
	plan       *plans.HashJoinPlanNode
	leftExec   IExecutor
	rightExec  IExecutor
	leftSchema catalog.Schema

	buckets map[string][]catalog.Tuple

	curRightTuple catalog.Tuple
	curBucket     []catalog.Tuple
	bucketPos     int
}

func NewHashJoinExecutor(ctx *execution.ExecutorContext, plan *plans.HashJoinPlanNode, l, r IExecutor) *HashJoinExecutor {
	return &HashJoinExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, leftExec: l, rightExec: r}
}

func (e *HashJoinExecutor) GetOutSchema() catalog.Schema {
	if e.plan.GetOutSchema() == nil {
		return concatSchemas(e.plan.GetLeftPlan().GetOutSchema(), e.plan.GetRightPlan().GetOutSchema())
	}
	return e.plan.OutSchema
}

func (e *HashJoinExecutor) Init() {
	e.leftExec.Init()
	e.rightExec.Init()
	e.leftSchema = e.leftExec.GetOutSchema()

	e.buckets = make(map[string][]catalog.Tuple)
	for {
		var lt catalog.Tuple
		var lr structures.Rid
		err := e.leftExec.Next(&lt, &lr)
		if err != nil {
			if errors.Is(err, ErrNoTuple{}) {
				break
			}
			panic(err)
		}
		lv := e.plan.LeftKey.Eval(lt, e.leftSchema)
		key := joinKey(&lv)
		e.buckets[key] = append(e.buckets[key], lt)
	}

	e.curBucket = nil
	e.bucketPos = 0
}

func (e *HashJoinExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	rightSchema := e.rightExec.GetOutSchema()

	for {
		if e.bucketPos < len(e.curBucket) {
			lt := e.curBucket[e.bucketPos]
			e.bucketPos++
			*t = catalog.Tuple{Row: concatRows(lt.Row, e.curRightTuple.Row)}
			return nil
		}

		var rt catalog.Tuple
		var rr structures.Rid
		if err := e.rightExec.Next(&rt, &rr); err != nil {
			return err
		}
		e.curRightTuple = rt
		rv := e.plan.RightKey.Eval(rt, rightSchema)
		key := joinKey(&rv)
		e.curBucket = e.buckets[key]
		e.bucketPos = 0
	}
}

func joinKey(v *db_types.Value) string {
	b := make([]byte, v.Size())
	v.Serialize(b)
	return string(b)
}
