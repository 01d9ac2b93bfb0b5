package executors

import (
	"errors"

	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/plans"
)

// aggregateState is one group's running fold: one value per aggregate term
// plus a count, since CountStar has no input value to fold.
type aggregateState struct {
	groupValues []*db_types.Value
	values      []*db_types.Value
	counts      []int64
}

// AggregationExecutor builds a group_key -> aggregate_state hash table over
// the entire child in Init, then walks it in Next, emitting one row per
// group (filtered by Having, if set) in the order each group was first
// seen in the child's output.
type AggregationExecutor struct {
	BaseExecutor
	plan          *plans.AggregationPlanNode
	childExecutor IExecutor

	order []string
	table map[string]*aggregateState
	pos   int
}

func NewAggregationExecutor(ctx *execution.ExecutorContext, plan *plans.AggregationPlanNode, child IExecutor) *AggregationExecutor {
	return &AggregationExecutor{BaseExecutor: BaseExecutor{executorCtx: ctx}, plan: plan, childExecutor: child}
}

func (e *AggregationExecutor) GetOutSchema() catalog.Schema {
	return e.plan.OutSchema
}

func (e *AggregationExecutor) Init() {
	e.childExecutor.Init()
	schema := e.childExecutor.GetOutSchema()

	e.table = make(map[string]*aggregateState)
	e.order = nil

	for {
		var t catalog.Tuple
		var rid structures.Rid
		err := e.childExecutor.Next(&t, &rid)
		if err != nil {
			if errors.Is(err, ErrNoTuple{}) {
				break
			}
			panic(err)
		}

		groupValues := make([]*db_types.Value, len(e.plan.GroupBys))
		for i, g := range e.plan.GroupBys {
			v := g.Eval(t, schema)
			groupValues[i] = &v
		}
		key := groupKey(groupValues)

		state, ok := e.table[key]
		if !ok {
			state = &aggregateState{
				groupValues: groupValues,
				values:      make([]*db_types.Value, len(e.plan.Aggregates)),
				counts:      make([]int64, len(e.plan.Aggregates)),
			}
			e.table[key] = state
			e.order = append(e.order, key)
		}

		for i, agg := range e.plan.Aggregates {
			insertCombine(state, i, agg, t, schema)
		}
	}

	e.pos = 0
}

func insertCombine(state *aggregateState, i int, agg plans.AggregateTerm, t catalog.Tuple, schema catalog.Schema) {
	state.counts[i]++

	if agg.Type == plans.CountStar {
		return
	}

	v := agg.Expr.Eval(t, schema)
	switch agg.Type {
	case plans.Count:
		// counted via state.counts[i] above; no value to carry.
	case plans.Sum:
		if state.values[i] == nil {
			state.values[i] = &v
		} else {
			*state.values[i] = *state.values[i].Add(&v)
		}
	case plans.Min:
		if state.values[i] == nil || v.Less(state.values[i]) {
			state.values[i] = &v
		}
	case plans.Max:
		if state.values[i] == nil || state.values[i].Less(&v) {
			state.values[i] = &v
		}
	}
}

func (e *AggregationExecutor) Next(t *catalog.Tuple, rid *structures.Rid) error {
	for e.pos < len(e.order) {
		key := e.order[e.pos]
		e.pos++
		state := e.table[key]

		values := append([]*db_types.Value{}, state.groupValues...)
		for i, agg := range e.plan.Aggregates {
			if agg.Type == plans.CountStar || agg.Type == plans.Count {
				count := int32(state.counts[i])
				values = append(values, db_types.NewValue(count))
				continue
			}
			values = append(values, state.values[i])
		}

		out, err := catalog.NewTupleWithSchema(values, e.plan.OutSchema)
		if err != nil {
			return err
		}

		if e.plan.Having != nil {
			hv := e.plan.Having.Eval(*out, e.plan.OutSchema)
			if hv.GetAsInterface().(uint8) == 0 {
				continue
			}
		}

		*t = *out
		*rid = structures.Rid{}
		return nil
	}
	return ErrNoTuple{}
}

func groupKey(values []*db_types.Value) string {
	var buf []byte
	for _, v := range values {
		b := make([]byte, v.Size())
		v.Serialize(b)
		buf = append(buf, b...)
	}
	return string(buf)
}
