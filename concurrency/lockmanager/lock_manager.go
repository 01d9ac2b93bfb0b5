// Package lockmanager implements a per-record lock table enforcing strict
// two-phase locking with a wound-wait deadlock-prevention policy: an older
// transaction (lower txn id) preempts a younger one holding or requesting a
// conflicting lock, rather than waiting behind it.
package lockmanager

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"minidb/disk/structures"
	"minidb/transaction"
)

var ErrTxnAborted = errors.New("lockmanager: transaction already aborted or committed")
var ErrIsolationViolation = errors.New("lockmanager: lock request violates isolation level")
var ErrUpgradeConflict = errors.New("lockmanager: another upgrade is already in progress on this rid")
var ErrUpgradeOnUnheldShared = errors.New("lockmanager: upgrade requested on a rid with no shared lock held")

// lockMode is a granted or requested lock's mode.
type lockMode int

const (
	shared lockMode = iota
	exclusive
)

// lockRequest is one (txn, mode, granted) entry in a rid's queue.
type lockRequest struct {
	txnID   transaction.TxnID
	txn     *transaction.Transaction
	mode    lockMode
	granted bool
}

// lockRequestQueue is the FIFO of requests for a single rid, plus the
// condition variable LockShared/LockExclusive park on while waiting out an
// older holder, and the upgrading flag that limits a rid to one concurrent
// upgrade.
type lockRequestQueue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	requests  []*lockRequest
	upgrading bool
}

func newLockRequestQueue() *lockRequestQueue {
	q := &lockRequestQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Manager is the lock table: one lockRequestQueue per rid under a single
// table-level mutex that only guards the queues map itself, not the queues'
// own contents.
type Manager struct {
	mu     sync.Mutex
	tables map[structures.Rid]*lockRequestQueue
}

// New returns an empty lock manager.
func New() *Manager {
	return &Manager{tables: make(map[structures.Rid]*lockRequestQueue)}
}

func (m *Manager) queueFor(rid structures.Rid) *lockRequestQueue {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.tables[rid]
	if !ok {
		q = newLockRequestQueue()
		m.tables[rid] = q
	}
	return q
}

// LockShared acquires a shared lock on rid for txn, blocking while a
// younger request holds an exclusive lock (wounded) or an older one does
// (waited out).
func (m *Manager) LockShared(txn *transaction.Transaction, rid structures.Rid) error {
	if s := txn.State(); s == transaction.Aborted || s == transaction.Committed {
		return ErrTxnAborted
	}
	if txn.Isolation() == transaction.ReadUncommitted {
		txn.SetState(transaction.Aborted)
		return ErrIsolationViolation
	}
	if txn.Isolation() == transaction.RepeatableRead && txn.State() == transaction.Shrinking {
		txn.SetState(transaction.Aborted)
		return ErrIsolationViolation
	}
	if txn.HasSharedLock(rid) {
		return nil
	}

	q := m.queueFor(rid)
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		woundedAny := false
		blocked := false

		for _, r := range q.requests {
			if r.txnID == txn.ID() {
				continue
			}
			if r.mode != exclusive {
				continue
			}
			if r.txnID > txn.ID() {
				// younger holder/requester: wound it.
				r.txn.SetState(transaction.Aborted)
				r.txn.RemoveExclusiveLock(rid)
				m.removeRequest(q, r.txnID)
				woundedAny = true
				continue
			}
			// older holder: wait for it to release.
			blocked = true
		}

		if woundedAny {
			q.cond.Broadcast()
			continue
		}
		if blocked {
			q.cond.Wait()
			continue
		}
		break
	}

	q.requests = append(q.requests, &lockRequest{txnID: txn.ID(), txn: txn, mode: shared, granted: true})
	txn.SetState(transaction.Growing)
	txn.AddSharedLock(rid)
	logrus.WithFields(logrus.Fields{"txn": txn.ID(), "rid": rid}).Debug("lockmanager: granted shared lock")
	return nil
}

// LockExclusive acquires an exclusive lock on rid for txn, wounding any
// younger holder of either mode and waiting out any older one.
func (m *Manager) LockExclusive(txn *transaction.Transaction, rid structures.Rid) error {
	if s := txn.State(); s == transaction.Aborted || s == transaction.Committed {
		return ErrTxnAborted
	}
	if txn.Isolation() == transaction.RepeatableRead && txn.State() == transaction.Shrinking {
		txn.SetState(transaction.Aborted)
		return ErrIsolationViolation
	}
	if txn.HasExclusiveLock(rid) {
		return nil
	}

	q := m.queueFor(rid)
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		woundedAny := false
		blocked := false

		for _, r := range q.requests {
			if r.txnID == txn.ID() {
				continue
			}
			if r.txnID > txn.ID() {
				r.txn.SetState(transaction.Aborted)
				if r.mode == shared {
					r.txn.RemoveSharedLock(rid)
				} else {
					r.txn.RemoveExclusiveLock(rid)
				}
				m.removeRequest(q, r.txnID)
				woundedAny = true
				continue
			}
			blocked = true
		}

		if woundedAny {
			q.cond.Broadcast()
			continue
		}
		if blocked {
			q.cond.Wait()
			continue
		}
		break
	}

	q.requests = append(q.requests, &lockRequest{txnID: txn.ID(), txn: txn, mode: exclusive, granted: true})
	txn.SetState(transaction.Growing)
	txn.AddExclusiveLock(rid)
	logrus.WithFields(logrus.Fields{"txn": txn.ID(), "rid": rid}).Debug("lockmanager: granted exclusive lock")
	return nil
}

// LockUpgrade converts txn's shared lock on rid into an exclusive one.
// Only one upgrade per rid may be in flight at a time.
func (m *Manager) LockUpgrade(txn *transaction.Transaction, rid structures.Rid) error {
	if !txn.HasSharedLock(rid) {
		return ErrUpgradeOnUnheldShared
	}

	q := m.queueFor(rid)
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.upgrading {
		return ErrUpgradeConflict
	}
	q.upgrading = true
	defer func() { q.upgrading = false }()

	for {
		woundedAny := false
		blocked := false

		for _, r := range q.requests {
			if r.txnID == txn.ID() {
				continue
			}
			if r.txnID > txn.ID() {
				r.txn.SetState(transaction.Aborted)
				if r.mode == shared {
					r.txn.RemoveSharedLock(rid)
				} else {
					r.txn.RemoveExclusiveLock(rid)
				}
				m.removeRequest(q, r.txnID)
				woundedAny = true
				continue
			}
			blocked = true
		}

		if woundedAny {
			q.cond.Broadcast()
			continue
		}
		if blocked {
			q.cond.Wait()
			continue
		}
		break
	}

	for _, r := range q.requests {
		if r.txnID == txn.ID() {
			r.mode = exclusive
		}
	}
	txn.MoveSharedToExclusive(rid)
	return nil
}

// Unlock releases txn's lock on rid, if any, and wakes anyone waiting on
// the queue. READ_COMMITTED callers use this to drop shared locks the
// instant they are done reading, per isolation semantics; other locks are
// released at commit/abort time.
func (m *Manager) Unlock(txn *transaction.Transaction, rid structures.Rid) error {
	q := m.queueFor(rid)
	q.mu.Lock()
	m.removeRequest(q, txn.ID())
	q.cond.Broadcast()
	q.mu.Unlock()

	txn.RemoveSharedLock(rid)
	txn.RemoveExclusiveLock(rid)

	if txn.Isolation() == transaction.RepeatableRead && txn.State() == transaction.Growing {
		txn.SetState(transaction.Shrinking)
	}
	return nil
}

// removeRequest drops txnID's entry from q. Caller holds q.mu.
func (m *Manager) removeRequest(q *lockRequestQueue, txnID transaction.TxnID) {
	for i, r := range q.requests {
		if r.txnID == txnID {
			q.requests = append(q.requests[:i], q.requests[i+1:]...)
			return
		}
	}
}

// ReleaseAll unlocks every rid txn currently holds, used at commit/abort.
func (m *Manager) ReleaseAll(txn *transaction.Transaction) {
	for _, rid := range txn.SharedRids() {
		_ = m.Unlock(txn, rid)
	}
	for _, rid := range txn.ExclusiveRids() {
		_ = m.Unlock(txn, rid)
	}
}

// LockCounts tallies currently granted requests across every rid's queue, by
// mode. It takes a snapshot under each queue's own lock in turn rather than
// holding the table lock throughout, so the count can be stale by the time a
// caller reads it; that is acceptable for a status gauge, not for 2PL itself.
func (m *Manager) LockCounts() (sharedCount, exclusiveCount int) {
	m.mu.Lock()
	queues := make([]*lockRequestQueue, 0, len(m.tables))
	for _, q := range m.tables {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		q.mu.Lock()
		for _, r := range q.requests {
			if !r.granted {
				continue
			}
			if r.mode == shared {
				sharedCount++
			} else {
				exclusiveCount++
			}
		}
		q.mu.Unlock()
	}
	return sharedCount, exclusiveCount
}
