package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/buffer"
	"minidb/catalog/db_types"
	"minidb/disk"
	"minidb/disk/structures"
)

func newTestPool() *buffer.Manager {
	return buffer.NewManager(32, 2, disk.NewMemManager())
}

func testSchema() Schema {
	return NewSchema([]Column{
		NewColumn("id", db_types.IntegerTypeID),
		NewColumn("name", db_types.CharTypeID),
	})
}

func TestCatalog_CreateTable_Should_Create_Table_Successfully(t *testing.T) {
	pool := newTestPool()
	cat := NewCatalog(pool)

	table := cat.CreateTable("myTable", testSchema())
	require.NotNil(t, table)
	assert.Equal(t, table, cat.GetTable("myTable"))
}

func TestCatalog_CreateTable_Rejects_Duplicate_Name(t *testing.T) {
	pool := newTestPool()
	cat := NewCatalog(pool)

	require.NotNil(t, cat.CreateTable("myTable", testSchema()))
	assert.Nil(t, cat.CreateTable("myTable", testSchema()))
}

func TestCatalog_InsertAndReadTuples(t *testing.T) {
	pool := newTestPool()
	cat := NewCatalog(pool)
	schema := testSchema()

	table := cat.CreateTable("myTable", schema)
	require.NotNil(t, table)

	n := 10
	for i := 0; i < n; i++ {
		values := []*db_types.Value{db_types.NewValue(int32(i)), db_types.NewValue("selam")}
		rid, err := table.InsertTupleViaValues(values)
		require.NoError(t, err)
		require.NotNil(t, rid)
	}

	it := make([]int32, 0, n)
	iter := structures.NewTableIterator(table.Heap)
	for {
		row, err := iter.Next()
		require.NoError(t, err)
		if row == nil {
			break
		}
		tuple := CastRowAsTuple(row)
		intVal := tuple.GetValue(schema, 0)
		strVal := tuple.GetValue(schema, 1)
		assert.Equal(t, db_types.IntegerTypeID, intVal.GetTypeId())
		assert.Equal(t, db_types.CharTypeID, strVal.GetTypeId())
		assert.Equal(t, "selam", strVal.GetAsInterface().(string))
		it = append(it, intVal.GetAsInterface().(int32))
	}
	assert.Len(t, it, n)
}

func TestCatalog_CreateIndex_PopulatesFromExistingRows(t *testing.T) {
	pool := newTestPool()
	cat := NewCatalog(pool)
	schema := testSchema()

	table := cat.CreateTable("myTable", schema)
	require.NotNil(t, table)

	for i := 0; i < 5; i++ {
		values := []*db_types.Value{db_types.NewValue(int32(i)), db_types.NewValue("selam")}
		_, err := table.InsertTupleViaValues(values)
		require.NoError(t, err)
	}

	idx, err := cat.CreateIndex("id_idx", "myTable", []int{0}, false)
	require.NoError(t, err)
	require.NotNil(t, idx)
	assert.Len(t, table.GetIndexes(), 1)
}

// TestCatalog_CreateIndex_ConcurrentDistinctNamesBothSucceed exercises the
// per-table index-build lock: two callers racing to add different indexes
// to the same table must both land, not clobber each other's write to the
// table's index name map.
func TestCatalog_CreateIndex_ConcurrentDistinctNamesBothSucceed(t *testing.T) {
	pool := newTestPool()
	cat := NewCatalog(pool)
	table := cat.CreateTable("myTable", testSchema())
	require.NotNil(t, table)

	errs := make(chan error, 2)
	go func() {
		_, err := cat.CreateIndex("id_idx", "myTable", []int{0}, false)
		errs <- err
	}()
	go func() {
		_, err := cat.CreateIndex("name_idx", "myTable", []int{1}, false)
		errs <- err
	}()

	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Len(t, table.GetIndexes(), 2)
}
