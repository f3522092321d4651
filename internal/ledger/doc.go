// Package ledger persists a local history of publish runs in SQLite.
//
// One row in runs describes a publish run; outcomes holds one row per
// attempted or skipped field of that run. The ledger is write-after-the-fact
// bookkeeping: it never influences what the publisher sends.
package ledger
