// Package transaction defines the externally-owned transaction context the
// lock manager and executors read and mutate: identity, 2PL phase,
// isolation level, and the RID sets a transaction currently holds locks on.
package transaction

import (
	"sync"
	"sync/atomic"

	"minidb/disk/structures"
)

// TxnID uniquely identifies a transaction. Lower ids are older; the lock
// manager's wound-wait policy lets an older txn preempt a younger one.
type TxnID int64

// State is a transaction's position in strict two-phase locking.
type State int

const (
	Growing State = iota
	Shrinking
	Committed
	Aborted
)

func (s State) String() string {
	switch s {
	case Growing:
		return "GROWING"
	case Shrinking:
		return "SHRINKING"
	case Committed:
		return "COMMITTED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsolationLevel governs which locks the lock manager requires and when it
// allows them to be taken.
type IsolationLevel int

const (
	ReadUncommitted IsolationLevel = iota
	ReadCommitted
	RepeatableRead
)

var nextTxnID int64

// Transaction is one unit of work. The lock manager mutates State and the
// RID sets directly; callers otherwise treat it as a read-mostly handle.
type Transaction struct {
	mu sync.Mutex

	id        TxnID
	state     State
	isolation IsolationLevel
	startedAt int64

	sharedLocks    map[structures.Rid]struct{}
	exclusiveLocks map[structures.Rid]struct{}
}

// New starts a fresh transaction in the GROWING phase at the given
// isolation level. Ids are assigned in increasing order of creation, which
// is what the lock manager's wound-wait comparison relies on.
func New(isolation IsolationLevel) *Transaction {
	id := atomic.AddInt64(&nextTxnID, 1)
	return &Transaction{
		id:             TxnID(id),
		state:          Growing,
		isolation:      isolation,
		startedAt:      id,
		sharedLocks:    make(map[structures.Rid]struct{}),
		exclusiveLocks: make(map[structures.Rid]struct{}),
	}
}

// StartedAt is a monotonic creation counter, not a wall-clock timestamp:
// only relative order ("which transaction is oldest") matters to any
// caller, and the id sequence already gives that for free.
func (t *Transaction) StartedAt() int64 { return t.startedAt }

func (t *Transaction) ID() TxnID { return t.id }

func (t *Transaction) Isolation() IsolationLevel { return t.isolation }

func (t *Transaction) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transaction) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

func (t *Transaction) HasSharedLock(rid structures.Rid) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sharedLocks[rid]
	return ok
}

func (t *Transaction) HasExclusiveLock(rid structures.Rid) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.exclusiveLocks[rid]
	return ok
}

func (t *Transaction) AddSharedLock(rid structures.Rid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sharedLocks[rid] = struct{}{}
}

func (t *Transaction) AddExclusiveLock(rid structures.Rid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exclusiveLocks[rid] = struct{}{}
}

func (t *Transaction) RemoveSharedLock(rid structures.Rid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sharedLocks, rid)
}

func (t *Transaction) RemoveExclusiveLock(rid structures.Rid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.exclusiveLocks, rid)
}

// MoveSharedToExclusive is used by LockUpgrade: the RID moves from the
// shared set to the exclusive set atomically from the caller's perspective.
func (t *Transaction) MoveSharedToExclusive(rid structures.Rid) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sharedLocks, rid)
	t.exclusiveLocks[rid] = struct{}{}
}

// SharedRids returns a snapshot of the shared-lock set, used when releasing
// all locks at end of transaction.
func (t *Transaction) SharedRids() []structures.Rid {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]structures.Rid, 0, len(t.sharedLocks))
	for rid := range t.sharedLocks {
		out = append(out, rid)
	}
	return out
}

// ExclusiveRids returns a snapshot of the exclusive-lock set.
func (t *Transaction) ExclusiveRids() []structures.Rid {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]structures.Rid, 0, len(t.exclusiveLocks))
	for rid := range t.exclusiveLocks {
		out = append(out, rid)
	}
	return out
}
