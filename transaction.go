package heapdb

// Transaction is a thin lifecycle handle over a TransactionID and a
// BufferPool: Begin registers the id with the pool's lock manager, and
// Commit/Abort flush-or-discard its dirtied pages and release its locks
// (spec.md §4.5/§4.7). The teacher threads transactions as bare
// TransactionID values passed to every BufferPool call directly; this
// wraps that pattern in a handle so callers don't have to re-derive the
// commit/abort bool themselves.
type Transaction struct {
	ID TransactionID
	bp *BufferPool
}

// NewTransaction allocates a fresh TransactionID and wraps it for bp.
func NewTransaction(bp *BufferPool) *Transaction {
	return &Transaction{ID: NewTID(), bp: bp}
}

// Begin registers the transaction with its BufferPool. Must be called
// before any operator is Open'd with this transaction's ID.
func (txn *Transaction) Begin() error {
	return txn.bp.BeginTransaction(txn.ID)
}

// Commit flushes every page the transaction dirtied and releases its
// locks. Returns the IoError, if any, from flushing a dirty page
// (spec.md §7); locks are released regardless.
func (txn *Transaction) Commit() error {
	return txn.bp.TransactionComplete(txn.ID, true)
}

// Abort discards every page the transaction dirtied (so the next reader
// re-reads the clean copy from disk) and releases its locks. Infallible.
func (txn *Transaction) Abort() {
	txn.bp.TransactionComplete(txn.ID, false)
}
