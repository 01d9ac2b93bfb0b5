package expressions

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

// GetColumnExpression reads one column out of a tuple. TupleIdx selects
// which side of a join the column comes from (0 left, 1 right); Eval
// ignores it since there is only one tuple outside a join.
type GetColumnExpression struct {
	BaseExpression
	ColIdx   int
	TupleIdx int
}

func NewGetColumnExpression(colIdx, tupleIdx int) *GetColumnExpression {
	return &GetColumnExpression{ColIdx: colIdx, TupleIdx: tupleIdx}
}

func (e *GetColumnExpression) Eval(t catalog.Tuple, s catalog.Schema) db_types.Value {
	return *t.GetValue(s, e.ColIdx)
}

func (e *GetColumnExpression) EvalJoin(lt catalog.Tuple, ls catalog.Schema, rt catalog.Tuple, rs catalog.Schema) db_types.Value {
	if e.TupleIdx == 0 {
		return *lt.GetValue(ls, e.ColIdx)
	}
	return *rt.GetValue(rs, e.ColIdx)
}
