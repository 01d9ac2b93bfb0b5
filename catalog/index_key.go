package catalog

import (
	"errors"

	"minidb/catalog/db_types"
	"minidb/disk/structures"
	"minidb/hashindex"
)

var ErrNotUniqueIndex = errors.New("catalog: point lookup by value requires a unique index")

// BuildSearchKey builds the hashindex.Key a point lookup for values would
// look for. It only works on unique indexes: a non-unique index folds the
// matching row's rid into its stored key, which the caller doesn't know in
// advance, so there is no way to construct the same key from values alone.
func (index *IndexInfo) BuildSearchKey(values []*db_types.Value) (hashindex.Key, error) {
	if !index.IsUnique {
		return hashindex.Key{}, ErrNotUniqueIndex
	}
	var data []byte
	for _, v := range values {
		buf := make([]byte, v.Size())
		v.Serialize(buf)
		data = append(data, buf...)
	}
	return hashindex.NewKey(data)
}

// buildIndexKey serializes tuple's indexed columns (plus, for a non-unique
// index, the tuple's rid) into a hashindex.Key the same way
// NewTupleWithSchema packs a row: each value written at its natural width,
// back to back, in column order.
func buildIndexKey(tuple *Tuple, sourceSchema Schema, columnIndexes []int, rid structures.Rid, isUnique bool) (hashindex.Key, error) {
	values := make([]*db_types.Value, 0, len(columnIndexes)+2)
	for _, idx := range columnIndexes {
		values = append(values, tuple.GetValue(sourceSchema, idx))
	}
	if !isUnique {
		values = append(values, db_types.NewValue(int32(rid.PageId)), db_types.NewValue(int32(rid.SlotIdx)))
	}

	var data []byte
	for _, v := range values {
		buf := make([]byte, v.Size())
		v.Serialize(buf)
		data = append(data, buf...)
	}
	return hashindex.NewKey(data)
}
