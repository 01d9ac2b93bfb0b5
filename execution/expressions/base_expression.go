package expressions

import (
	"minidb/catalog"
	"minidb/catalog/db_types"
)

// IExpression is a node in an expression tree. Eval evaluates it against a
// single tuple (a filter predicate, a projection); EvalJoin evaluates it
// against a pair of tuples from a join's two input schemas.
type IExpression interface {
	Eval(catalog.Tuple, catalog.Schema) db_types.Value
	EvalJoin(lt catalog.Tuple, ls catalog.Schema, rt catalog.Tuple, rs catalog.Schema) db_types.Value
	GetChildAt(idx int) IExpression
	GetChildren() []IExpression
}

// BaseExpression implements the tree traversal methods every IExpression
// node needs. Eval/EvalJoin are left for each concrete expression type.
type BaseExpression struct {
	Children []IExpression
}

func (e *BaseExpression) GetChildAt(idx int) IExpression {
	return e.Children[idx]
}

func (e *BaseExpression) GetChildren() []IExpression {
	return e.Children
}
