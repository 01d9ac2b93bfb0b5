package structures

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/buffer"
	"minidb/disk"
)

func TestTableIterator(t *testing.T) {
	pool := buffer.NewManager(32, 2, disk.NewMemManager())
	table, err := NewTableHeap(pool)
	require.NoError(t, err)

	n := 3000
	for i := 0; i < n; i++ {
		_, err := table.InsertRow(Row{Data: []byte(strconv.Itoa(i))})
		require.NoError(t, err)
	}

	it := NewTableIterator(table)
	i := 0
	for {
		row, err := it.Next()
		require.NoError(t, err)
		if row == nil {
			break
		}

		assert.Equal(t, strconv.Itoa(i), string(row.Data))
		i++
	}

	assert.Equal(t, n, i)
}

func TestTableIteratorSkipsDeletedRows(t *testing.T) {
	pool := buffer.NewManager(32, 2, disk.NewMemManager())
	table, err := NewTableHeap(pool)
	require.NoError(t, err)

	var toDelete Rid
	for i := 0; i < 10; i++ {
		rid, err := table.InsertRow(Row{Data: []byte(strconv.Itoa(i))})
		require.NoError(t, err)
		if i == 5 {
			toDelete = rid
		}
	}
	require.NoError(t, table.DeleteRow(toDelete))

	it := NewTableIterator(table)
	count := 0
	for {
		row, err := it.Next()
		require.NoError(t, err)
		if row == nil {
			break
		}
		assert.NotEqual(t, "5", string(row.Data))
		count++
	}
	assert.Equal(t, 9, count)
}
