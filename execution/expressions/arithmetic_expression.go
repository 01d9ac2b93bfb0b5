package expressions

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

// ArithmeticExpression adds its two children's values together. It backs
// Update's "Set column_index = Add literal" plan entries.
type ArithmeticExpression struct {
	BaseExpression
}

func NewArithmeticExpression(lhs, rhs IExpression) *ArithmeticExpression {
	return &ArithmeticExpression{BaseExpression: BaseExpression{Children: []IExpression{lhs, rhs}}}
}

func (e *ArithmeticExpression) Eval(t catalog.Tuple, s catalog.Schema) db_types.Value {
	lhs := e.GetChildAt(0).Eval(t, s)
	rhs := e.GetChildAt(1).Eval(t, s)
	return *lhs.Add(&rhs)
}

func (e *ArithmeticExpression) EvalJoin(lt catalog.Tuple, ls catalog.Schema, rt catalog.Tuple, rs catalog.Schema) db_types.Value {
	lhs := e.GetChildAt(0).EvalJoin(lt, ls, rt, rs)
	rhs := e.GetChildAt(1).EvalJoin(lt, ls, rt, rs)
	return *lhs.Add(&rhs)
}
