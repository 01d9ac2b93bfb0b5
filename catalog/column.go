package catalog

import "minidb/catalog/db_types"

type Column struct {
	Name   string
	TypeId db_types.TypeID

	// Offset is the column's byte offset in a tuple built from this schema.
	Offset uint32
}

func NewColumn(name string, typeID db_types.TypeID) Column {
	return Column{Name: name, TypeId: typeID}
}

// InlinedSize returns how many bytes this column occupies in a tuple.
func (c *Column) InlinedSize() uint32 {
	return uint32(db_types.GetType(c.TypeId).Length(nil))
}

// IsInlined returns true always; variable length columns are not supported yet.
func (c *Column) IsInlined() bool {
	return true
}
