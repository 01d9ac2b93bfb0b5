package lockmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/disk/structures"
	"minidb/transaction"
)

func TestLockCounts_TalliesGrantedRequestsByMode(t *testing.T) {
	m := New()
	readerTxn := transaction.New(transaction.ReadCommitted)
	writerTxn := transaction.New(transaction.ReadCommitted)

	sharedRid := structures.NewRid(1, 0)
	exclusiveRid := structures.NewRid(2, 0)

	require.NoError(t, m.LockShared(readerTxn, sharedRid))
	require.NoError(t, m.LockExclusive(writerTxn, exclusiveRid))

	shared, exclusive := m.LockCounts()
	assert.Equal(t, 1, shared)
	assert.Equal(t, 1, exclusive)

	m.ReleaseAll(readerTxn)
	m.ReleaseAll(writerTxn)

	shared, exclusive = m.LockCounts()
	assert.Equal(t, 0, shared)
	assert.Equal(t, 0, exclusive)
}
