package expressions

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

type ConstExpression struct {
	BaseExpression
	val db_types.Value
}

func NewConstExpression(val db_types.Value) *ConstExpression {
	return &ConstExpression{val: val}
}

func (e *ConstExpression) Eval(t catalog.Tuple, s catalog.Schema) db_types.Value {
	return e.val
}

func (e *ConstExpression) EvalJoin(lt catalog.Tuple, ls catalog.Schema, rt catalog.Tuple, rs catalog.Schema) db_types.Value {
	return e.val
}
