package db_types

import "github.com/shopspring/decimal"

// Value is a typed, boxed column value. The DbType registered for its
// TypeID supplies comparison, arithmetic and (de)serialization.
type Value struct {
	typeID TypeID
	value  interface{}
}

func (v *Value) Less(than *Value) bool {
	return GetType(v.GetTypeId()).Less(v, than)
}

func (v *Value) Add(other *Value) *Value {
	return GetType(v.GetTypeId()).Add(v, other)
}

func (v *Value) GetTypeId() TypeID {
	return v.typeID
}

func (v *Value) Serialize(dest []byte) {
	GetType(v.GetTypeId()).Serialize(dest, v)
}

func (v *Value) Size() int {
	return GetType(v.GetTypeId()).Length(v)
}

func Deserialize(typeID TypeID, src []byte) *Value {
	return GetType(typeID).Deserialize(src)
}

func (v *Value) GetAsInterface() interface{} {
	return v.value
}

func NewValue(src interface{}) *Value {
	var typeID TypeID
	switch src.(type) {
	case int32:
		typeID = IntegerTypeID
	case string:
		typeID = CharTypeID
	case []byte:
		typeID = TypeID{KindID: 3, Size: uint32(len(src.([]byte)))}
	case float64:
		typeID = Float64TypeID
	case uint8:
		typeID = BoolTypeID
	case decimal.Decimal:
		typeID = DecimalTypeID
	default:
		panic("not supported type")
	}

	return &Value{
		typeID: typeID,
		value:  src,
	}
}
