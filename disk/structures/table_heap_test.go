package structures

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/buffer"
	"minidb/disk"
)

func TestTableHeap(t *testing.T) {
	pool := buffer.NewManager(2, 2, disk.NewMemManager())
	table, err := NewTableHeap(pool)
	require.NoError(t, err)

	rid, err := table.InsertRow(Row{Data: make([]byte, 10)})

	assert.NoError(t, err)
	assert.Equal(t, table.FirstPageID(), int(rid.PageId))
}

func TestTableHeapAllInsertedShouldBeFound(t *testing.T) {
	pool := buffer.NewManager(32, 2, disk.NewMemManager())
	table, err := NewTableHeap(pool)
	require.NoError(t, err)

	n := 3000
	inserted := make([]Rid, 0, n)
	for i := 0; i < n; i++ {
		rid, err := table.InsertRow(Row{Data: []byte(strconv.Itoa(i))})
		require.NoError(t, err)
		inserted = append(inserted, rid)
	}

	for i := 0; i < n; i++ {
		var row Row
		require.NoError(t, table.ReadRow(inserted[i], &row))
		assert.Equal(t, strconv.Itoa(i), string(row.Data))
	}
}

func TestTableHeapDeleteThenReadFails(t *testing.T) {
	pool := buffer.NewManager(4, 2, disk.NewMemManager())
	table, err := NewTableHeap(pool)
	require.NoError(t, err)

	rid, err := table.InsertRow(Row{Data: []byte("hello")})
	require.NoError(t, err)

	require.NoError(t, table.DeleteRow(rid))

	var row Row
	assert.Error(t, table.ReadRow(rid, &row))
}
