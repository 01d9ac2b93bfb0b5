package db

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/catalog"
	"minidb/catalog/db_types"
	"minidb/execution/executors"
	"minidb/execution/plans"
	"minidb/transaction"
)

func mkDB(t *testing.T) *DB {
	d, err := Open("", 64, 2)
	require.NoError(t, err)
	return d
}

func accountSchema() catalog.Schema {
	return catalog.NewSchema([]catalog.Column{
		catalog.NewColumn("id", db_types.IntegerTypeID),
		catalog.NewColumn("owner", db_types.CharTypeID),
	})
}

func insertRows(t *testing.T, d *DB, table *catalog.TableInfo, rows [][]*db_types.Value) {
	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	plan := plans.NewRawInsertPlanNode(rows, table.OID)
	exec := executors.NewInsertExecutor(ctx, plan, nil)

	_, err := Execute(exec)
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))
}

func TestDB_InsertThenSeqScan(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	require.NotNil(t, table)

	insertRows(t, d, table, [][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
		{db_types.NewValue(int32(2)), db_types.NewValue("bob")},
	})

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	rows, err := Execute(executors.NewSeqScanExecutor(ctx, scanPlan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	assert.Len(t, rows, 2)
}

// TestDB_ConcurrentInsertsAcrossTransactions hammers one table with many
// concurrent insert transactions and checks every row lands, exercising the
// lock manager's per-rid exclusive locking path under contention.
func TestDB_ConcurrentInsertsAcrossTransactions(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)
	require.NotNil(t, table)

	const goroutines = 20
	const perGoroutine = 25

	wg := &sync.WaitGroup{}
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				insertRows(t, d, table, [][]*db_types.Value{
					{db_types.NewValue(int32(base + i)), db_types.NewValue("owner")},
				})
			}
		}(g * perGoroutine)
	}
	wg.Wait()

	txn := d.BeginTxn(transaction.ReadCommitted)
	ctx := d.NewExecutorContext(txn)
	scanPlan := plans.NewSeqScanPlanNode(schema, nil, table.OID)
	rows, err := Execute(executors.NewSeqScanExecutor(ctx, scanPlan))
	require.NoError(t, err)
	require.NoError(t, d.Commit(txn))

	assert.Len(t, rows, goroutines*perGoroutine)
}

func TestDB_RollbackReleasesLocks(t *testing.T) {
	d := mkDB(t)
	schema := accountSchema()
	table := d.Catalog.CreateTable("accounts", schema)

	txn := d.BeginTxn(transaction.RepeatableRead)
	ctx := d.NewExecutorContext(txn)
	plan := plans.NewRawInsertPlanNode([][]*db_types.Value{
		{db_types.NewValue(int32(1)), db_types.NewValue("alice")},
	}, table.OID)
	rows, err := Execute(executors.NewInsertExecutor(ctx, plan, nil))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	d.Rollback(txn)
	assert.Equal(t, transaction.Aborted, txn.State())

	// a fresh transaction can now take an exclusive lock on the same rid
	// without blocking, since Rollback released it.
	txn2 := d.BeginTxn(transaction.ReadCommitted)
	require.NoError(t, d.Locks.LockExclusive(txn2, rows[0].Rid))
	d.Rollback(txn2)
}
