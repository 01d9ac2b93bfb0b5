package db_types

import (
	"strings"

	"minidb/common"

	"github.com/shopspring/decimal"
)

// decimalWidth is the fixed on-page width of a decimal column: its textual
// form, right-padded with spaces. Arbitrary-precision numeric columns use
// github.com/shopspring/decimal instead of float64 so repeated Add calls
// (e.g. a running SUM aggregate) don't accumulate binary-float rounding
// drift.
const decimalWidth = 16

var DecimalTypeID = TypeID{KindID: 6, Size: decimalWidth}

type DecimalType struct {
}

func (d *DecimalType) Less(this *Value, than *Value) bool {
	return this.GetAsInterface().(decimal.Decimal).LessThan(than.GetAsInterface().(decimal.Decimal))
}

func (d *DecimalType) Add(right *Value, left *Value) *Value {
	res := right.GetAsInterface().(decimal.Decimal).Add(left.GetAsInterface().(decimal.Decimal))
	return NewValue(res)
}

func (d *DecimalType) Serialize(dest []byte, src *Value) {
	s := src.GetAsInterface().(decimal.Decimal).String()
	if len(s) > decimalWidth {
		panic("decimal value does not fit in its column width")
	}
	copy(dest, []byte(s+strings.Repeat(" ", decimalWidth-len(s))))
}

func (d *DecimalType) Deserialize(src []byte) *Value {
	s := strings.TrimRight(string(src[:decimalWidth]), " ")
	dec, err := decimal.NewFromString(s)
	common.PanicIfErr(err)
	return NewValue(dec)
}

func (d *DecimalType) Length(*Value) int {
	return decimalWidth
}

func (d *DecimalType) TypeId() TypeID {
	return DecimalTypeID
}
