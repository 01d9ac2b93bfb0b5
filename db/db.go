// Package db wires the buffer pool, catalog, lock manager and execution
// engine into a single embeddable handle.
package db

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"minidb/buffer"
	"minidb/catalog"
	"minidb/common"
	"minidb/concurrency/lockmanager"
	"minidb/disk"
	"minidb/disk/structures"
	"minidb/execution"
	"minidb/execution/executors"
	"minidb/internal/statusserver"
	"minidb/transaction"
)

// DB owns the pool, catalog and lock table a set of transactions share.
// It does not itself parse or plan queries: callers build plan trees and
// hand them to Execute.
type DB struct {
	pool    *buffer.Manager
	Catalog catalog.Catalog
	Locks   *lockmanager.Manager
	dm      disk.Manager
	log     *logrus.Logger

	// Stats keeps a running total of executor latency and a call count per
	// label, fed only by ExecuteTimed. common.Stats has no exported method
	// for reading those totals back.
	Stats *common.Stats

	txnsMu sync.Mutex
	txns   map[transaction.TxnID]*transaction.Transaction
}

// Open starts a DB backed by a file at path, or an in-memory heap when
// path is empty. poolSize and k are the buffer pool's frame count and its
// LRU-K lookback window.
func Open(path string, poolSize int, k int) (*DB, error) {
	var dm disk.Manager
	if path == "" {
		dm = disk.NewMemManager()
	} else {
		fm, err := disk.NewFileManager(path)
		if err != nil {
			return nil, err
		}
		dm = fm
	}

	pool := buffer.NewManager(poolSize, k, dm)
	return &DB{
		pool:    pool,
		Catalog: catalog.NewCatalog(pool),
		Locks:   lockmanager.New(),
		dm:      dm,
		log:     logrus.StandardLogger(),
		Stats:   common.NewStats(),
		txns:    make(map[transaction.TxnID]*transaction.Transaction),
	}, nil
}

// BeginTxn starts a new transaction at the given isolation level and
// registers it as in-flight, so Gauges can report the oldest running
// transaction until it commits or rolls back.
func (d *DB) BeginTxn(isolation transaction.IsolationLevel) *transaction.Transaction {
	txn := transaction.New(isolation)

	d.txnsMu.Lock()
	d.txns[txn.ID()] = txn
	d.txnsMu.Unlock()

	d.log.WithField("txn", txn.ID()).Debug("db: began transaction")
	return txn
}

func (d *DB) forgetTxn(txn *transaction.Transaction) {
	d.txnsMu.Lock()
	delete(d.txns, txn.ID())
	d.txnsMu.Unlock()
}

var ErrTxnNotGrowingOrShrinking = errors.New("db: cannot commit a transaction that is already aborted or committed")

// Commit releases every lock txn holds and marks it committed. It refuses
// to commit a transaction that is already committed or that the lock
// manager has already aborted, since the wound-wait policy may have killed
// it out from under the caller.
func (d *DB) Commit(txn *transaction.Transaction) error {
	if s := txn.State(); s == transaction.Aborted || s == transaction.Committed {
		return ErrTxnNotGrowingOrShrinking
	}
	d.Locks.ReleaseAll(txn)
	txn.SetState(transaction.Committed)
	d.forgetTxn(txn)
	d.log.WithField("txn", txn.ID()).Debug("db: committed transaction")
	return nil
}

// Rollback releases every lock txn holds and marks it aborted. Unlike
// Commit it is always safe to call, including on a transaction the lock
// manager already wounded.
func (d *DB) Rollback(txn *transaction.Transaction) {
	d.Locks.ReleaseAll(txn)
	txn.SetState(transaction.Aborted)
	d.forgetTxn(txn)
	d.log.WithField("txn", txn.ID()).Debug("db: rolled back transaction")
}

// NewExecutorContext builds the context executors read the catalog, pool
// and lock table through for the given transaction.
func (d *DB) NewExecutorContext(txn *transaction.Transaction) *execution.ExecutorContext {
	return execution.NewExecutorContext(txn, d.Catalog, d.pool, d.Locks)
}

// ResultRow pairs a produced tuple with the rid it came from.
type ResultRow struct {
	Tuple catalog.Tuple
	Rid   structures.Rid
}

// Execute pulls every tuple out of exec, initializing it first. It is the
// non-streaming convenience entry point; callers that want to pull lazily
// can call Init/Next on the executor directly instead.
func Execute(exec executors.IExecutor) ([]ResultRow, error) {
	exec.Init()

	var out []ResultRow
	for {
		var t catalog.Tuple
		var rid structures.Rid
		err := exec.Next(&t, &rid)
		if err != nil {
			if errors.Is(err, executors.ErrNoTuple{}) {
				return out, nil
			}
			return out, err
		}
		out = append(out, ResultRow{Tuple: t, Rid: rid})
	}
}

// ExecuteTimed runs Execute and folds its wall-clock duration, in
// milliseconds, into Stats under label. Callers that don't care about
// per-query latency can keep calling the package-level Execute directly.
func (d *DB) ExecuteTimed(label string, exec executors.IExecutor) ([]ResultRow, error) {
	start := time.Now()
	rows, err := Execute(exec)
	d.Stats.Avg(label, float64(time.Since(start).Milliseconds()))
	return rows, err
}

// Metrics reports the buffer pool's free frame count, the cheapest signal
// of memory pressure callers can poll without reaching into internals.
func (d *DB) Metrics() int {
	return d.pool.EmptyFrameSize()
}

// Gauges snapshots buffer pool headroom, lock table occupancy and the
// oldest still-running transaction, for statusserver to publish. It is the
// only point where db reaches across into internal/statusserver, kept to a
// single conversion function rather than letting DB depend on its wire
// format more broadly.
func (d *DB) Gauges() statusserver.Gauges {
	sharedCount, exclusiveCount := d.Locks.LockCounts()

	var oldest int64
	d.txnsMu.Lock()
	for _, txn := range d.txns {
		if oldest == 0 || txn.StartedAt() < oldest {
			oldest = txn.StartedAt()
		}
	}
	d.txnsMu.Unlock()

	return statusserver.Gauges{
		EmptyFrames:      d.pool.EmptyFrameSize(),
		ActiveShared:     sharedCount,
		ActiveExclusive:  exclusiveCount,
		OldestTxnStarted: oldest,
	}
}

// Close flushes every dirty page and releases the underlying disk manager.
func (d *DB) Close() error {
	if err := d.pool.FlushAllPages(); err != nil {
		return err
	}
	return d.dm.Close()
}
