package expressions

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

type CompType int

const (
	Equal CompType = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

type CompExpression struct {
	BaseExpression
	compType CompType
}

func NewCompExpression(compType CompType, lhs, rhs IExpression) *CompExpression {
	return &CompExpression{BaseExpression: BaseExpression{Children: []IExpression{lhs, rhs}}, compType: compType}
}

func (e *CompExpression) Eval(t catalog.Tuple, s catalog.Schema) db_types.Value {
	lhs := e.GetChildAt(0).Eval(t, s)
	rhs := e.GetChildAt(1).Eval(t, s)
	return *db_types.NewValue(boolToUint8(doComparison(e.compType, lhs, rhs)))
}

func (e *CompExpression) EvalJoin(lt catalog.Tuple, ls catalog.Schema, rt catalog.Tuple, rs catalog.Schema) db_types.Value {
	lhs := e.GetChildAt(0).EvalJoin(lt, ls, rt, rs)
	rhs := e.GetChildAt(1).EvalJoin(lt, ls, rt, rs)
	return *db_types.NewValue(boolToUint8(doComparison(e.compType, lhs, rhs)))
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func doComparison(compType CompType, lhs, rhs db_types.Value) bool {
	switch compType {
	case Equal:
		return !lhs.Less(&rhs) && !rhs.Less(&lhs)
	case NotEqual:
		return lhs.Less(&rhs) || rhs.Less(&lhs)
	case LessThan:
		return lhs.Less(&rhs)
	case LessThanOrEqual:
		return !rhs.Less(&lhs)
	case GreaterThan:
		return rhs.Less(&lhs)
	case GreaterThanOrEqual:
		return !lhs.Less(&rhs)
	default:
		panic("unknown comparison type")
	}
}
