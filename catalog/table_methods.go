package catalog

import (
	"minidb/catalog/db_types"
	"minidb/disk/structures"
)

func (tbl *TableInfo) InsertTupleViaValues(values []*db_types.Value) (*structures.Rid, error) {
	tuple, err := NewTupleWithSchema(values, tbl.Schema)
	if err != nil {
		return nil, err
	}
	return tbl.InsertTuple(tuple)
}

func (tbl *TableInfo) InsertTuple(tuple *Tuple) (*structures.Rid, error) {
	rid, err := tbl.Heap.InsertRow(*tuple.GetRow())
	if err != nil {
		return nil, err
	}
	tuple.Rid = rid

	for _, index := range tbl.GetIndexes() {
		if err := index.insertTupleKey(tbl, tuple, rid); err != nil {
			return nil, err
		}
	}
	return &rid, nil
}

func (tbl *TableInfo) DeleteTuple(rid structures.Rid) error {
	var oldRow structures.Row
	if err := tbl.Heap.ReadRow(rid, &oldRow); err != nil {
		return err
	}
	oldTuple := CastRowAsTuple(&oldRow)

	for _, index := range tbl.GetIndexes() {
		if err := index.deleteTupleKey(tbl, oldTuple, rid); err != nil {
			return err
		}
	}
	return tbl.Heap.DeleteRow(rid)
}

func (tbl *TableInfo) UpdateTuple(rid structures.Rid, values []*db_types.Value) error {
	var oldRow structures.Row
	if err := tbl.Heap.ReadRow(rid, &oldRow); err != nil {
		return err
	}
	oldTuple := CastRowAsTuple(&oldRow)

	newTuple, err := NewTupleWithSchema(values, tbl.Schema)
	if err != nil {
		return err
	}

	if err := tbl.Heap.UpdateRow(*newTuple.GetRow(), rid); err == nil {
		newTuple.Rid = rid
		for _, index := range tbl.GetIndexes() {
			if err := index.deleteTupleKey(tbl, oldTuple, rid); err != nil {
				return err
			}
			if err := index.insertTupleKey(tbl, newTuple, rid); err != nil {
				return err
			}
		}
		return nil
	}

	// in-place update didn't fit; delete and re-insert elsewhere.
	if err := tbl.DeleteTuple(rid); err != nil {
		return err
	}
	if _, err := tbl.InsertTupleViaValues(values); err != nil {
		return err
	}
	return nil
}

func (tbl *TableInfo) GetIndexes() []*IndexInfo {
	return tbl.catalog.GetTableIndexes(tbl.Name)
}

func (index *IndexInfo) GetTable() *TableInfo {
	return index.catalog.GetTable(index.TableName)
}

func (index *IndexInfo) insertTupleKey(tbl *TableInfo, tuple *Tuple, rid structures.Rid) error {
	key, err := buildIndexKey(tuple, tbl.Schema, index.ColumnIndexes, rid, index.IsUnique)
	if err != nil {
		return err
	}
	return index.Index.Insert(key, rid)
}

func (index *IndexInfo) deleteTupleKey(tbl *TableInfo, tuple *Tuple, rid structures.Rid) error {
	key, err := buildIndexKey(tuple, tbl.Schema, index.ColumnIndexes, rid, index.IsUnique)
	if err != nil {
		return err
	}
	_, err = index.Index.Remove(key, rid)
	return err
}
