package execution

import (
	"minidb/buffer"
	"minidb/catalog"
	"minidb/concurrency/lockmanager"
	"minidb/transaction"
)

// ExecutorContext is the state every executor in a query's tree shares:
// the transaction it runs under, the catalog it resolves tables/indexes
// through, the buffer pool backing those tables, and the lock manager
// SeqScan/Insert/Delete/Update acquire rid locks through.
type ExecutorContext struct {
	Txn         *transaction.Transaction
	Catalog     catalog.Catalog
	Pool        *buffer.Manager
	LockManager *lockmanager.Manager
}

func NewExecutorContext(txn *transaction.Transaction, cat catalog.Catalog, pool *buffer.Manager, lckManager *lockmanager.Manager) *ExecutorContext {
	return &ExecutorContext{
		Txn:         txn,
		Catalog:     cat,
		Pool:        pool,
		LockManager: lckManager,
	}
}
