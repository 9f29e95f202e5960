package heapdb

import (
	"sync"
	"time"
)

// RWPerm is the permission requested when locking a page: shared (read) or
// exclusive (write), per spec.md §4.4.
type RWPerm int

const (
	ReadPerm RWPerm = iota
	WritePerm
)

// lockBackoff is how long AcquireLock sleeps between conflict checks,
// matching the teacher's poll-and-retry loop in GetPage.
const lockBackoff = 5 * time.Millisecond

// LockManager grants page-level shared/exclusive locks to transactions and
// detects deadlock by cycle-checking a waits-for graph on every blocked
// re-entry (spec.md §4.4). Generalized out of the teacher's BufferPool,
// which inlined this as readPermissionLocks/writePermissionLocks/
// transactionDependencies/hasCycle directly on the pool.
type LockManager struct {
	mu sync.Mutex

	holders  map[PageID]map[TransactionID]RWPerm // current grants per page
	txnPages map[TransactionID]map[PageID]struct{}
	waitsFor map[TransactionID]map[TransactionID]struct{}
	active   map[TransactionID]struct{}
}

// NewLockManager constructs an empty LockManager.
func NewLockManager() *LockManager {
	return &LockManager{
		holders:  make(map[PageID]map[TransactionID]RWPerm),
		txnPages: make(map[TransactionID]map[PageID]struct{}),
		waitsFor: make(map[TransactionID]map[TransactionID]struct{}),
		active:   make(map[TransactionID]struct{}),
	}
}

// Begin registers tid as an active transaction able to acquire locks.
func (lm *LockManager) Begin(tid TransactionID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.active[tid] = struct{}{}
	if _, ok := lm.txnPages[tid]; !ok {
		lm.txnPages[tid] = make(map[PageID]struct{})
	}
}

// conflicts reports whether perm on pid, requested by tid, conflicts with
// any other transaction's current grant, and records the conflicting
// holders as dependencies in the waits-for graph.
func (lm *LockManager) conflicts(tid TransactionID, pid PageID, perm RWPerm) bool {
	conflict := false
	for holder, heldPerm := range lm.holders[pid] {
		if holder == tid {
			// tid never conflicts with its own grant, including a
			// read-to-write upgrade: only other holders can block it.
			continue
		}
		if perm == ReadPerm && heldPerm == ReadPerm {
			continue
		}
		conflict = true
		if lm.waitsFor[tid] == nil {
			lm.waitsFor[tid] = make(map[TransactionID]struct{})
		}
		lm.waitsFor[tid][holder] = struct{}{}
	}
	return conflict
}

// hasCycle runs a DFS over the waits-for graph rooted at every active
// transaction, reporting whether any cycle exists (spec.md §4.4 deadlock
// detection), in the shape of the teacher's BufferPool.hasCycle.
func (lm *LockManager) hasCycle() bool {
	onStack := make(map[TransactionID]bool)
	visited := make(map[TransactionID]bool)

	var dfs func(tid TransactionID) bool
	dfs = func(tid TransactionID) bool {
		onStack[tid] = true
		visited[tid] = true
		for next := range lm.waitsFor[tid] {
			if !visited[next] {
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}
		onStack[tid] = false
		return false
	}

	for tid := range lm.active {
		if !visited[tid] && dfs(tid) {
			return true
		}
	}
	return false
}

// AcquireLock blocks until tid holds perm on pid, granting the lock and
// returning nil once acquired. If granting would deadlock (a cycle appears
// in the waits-for graph), the detecting transaction is the victim: all of
// its locks are released and it returns a Deadlock error (spec.md §4.4,
// "self-abort").
func (lm *LockManager) AcquireLock(tid TransactionID, pid PageID, perm RWPerm) error {
	for {
		lm.mu.Lock()
		if held, ok := lm.holders[pid][tid]; ok && (held == WritePerm || perm == ReadPerm) {
			lm.mu.Unlock()
			return nil
		}

		delete(lm.waitsFor, tid)
		if lm.conflicts(tid, pid, perm) {
			if lm.hasCycle() {
				lm.mu.Unlock()
				lm.ReleaseAll(tid)
				time.Sleep(lockBackoff)
				return newErr(Deadlock, "transaction %d aborted to break a lock cycle", tid)
			}
			lm.mu.Unlock()
			time.Sleep(lockBackoff)
			continue
		}

		lm.grantLocked(tid, pid, perm)
		lm.mu.Unlock()
		return nil
	}
}

func (lm *LockManager) grantLocked(tid TransactionID, pid PageID, perm RWPerm) {
	if lm.holders[pid] == nil {
		lm.holders[pid] = make(map[TransactionID]RWPerm)
	}
	if held, ok := lm.holders[pid][tid]; !ok || (perm == WritePerm && held != WritePerm) {
		lm.holders[pid][tid] = perm
	}
	if lm.txnPages[tid] == nil {
		lm.txnPages[tid] = make(map[PageID]struct{})
	}
	lm.txnPages[tid][pid] = struct{}{}
	delete(lm.waitsFor, tid)
}

// HoldsLock reports whether tid currently holds at least perm on pid.
func (lm *LockManager) HoldsLock(tid TransactionID, pid PageID, perm RWPerm) bool {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	held, ok := lm.holders[pid][tid]
	if !ok {
		return false
	}
	return held == WritePerm || perm == ReadPerm
}

// PagesLockedBy returns every page tid currently holds a lock on.
func (lm *LockManager) PagesLockedBy(tid TransactionID) []PageID {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	pages := make([]PageID, 0, len(lm.txnPages[tid]))
	for pid := range lm.txnPages[tid] {
		pages = append(pages, pid)
	}
	return pages
}

// ReleaseAll drops every lock tid holds and removes it from the waits-for
// graph, called on both commit and abort (spec.md §4.5).
func (lm *LockManager) ReleaseAll(tid TransactionID) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for pid := range lm.txnPages[tid] {
		delete(lm.holders[pid], tid)
		if len(lm.holders[pid]) == 0 {
			delete(lm.holders, pid)
		}
	}
	delete(lm.txnPages, tid)
	delete(lm.waitsFor, tid)
	delete(lm.active, tid)
	for _, deps := range lm.waitsFor {
		delete(deps, tid)
	}
}
