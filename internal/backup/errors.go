package backup

import "fmt"

// SchemaMismatchError means the snapshot was produced by an incompatible
// schema. Import returns it before touching the store.
type SchemaMismatchError struct {
	Got  int
	Want int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("snapshot schema version %d is not compatible with %d", e.Got, e.Want)
}

// BusyError means the store-wide exclusive lock could not be acquired
// within the bounded wait. The store is unchanged; the caller may retry.
type BusyError struct {
	Wait string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("store busy: exclusive lock not acquired within %s", e.Wait)
}

// RestoreReport is the per-table count of restored records — the
// caller-visible proof that an import succeeded.
type RestoreReport map[string]int
