package sql

import "sync"

// DefaultPartitionColumn is the display name given by default to the
// partitioning column of a table.
const DefaultPartitionColumn = "PARTITIONTIME"

// Options holds the caller configuration consulted at render time.
type Options struct {
	mu              sync.RWMutex
	partitionColumn *string
}

// DefaultOptions are the process wide options used by contexts created
// without explicit options.
var DefaultOptions = NewOptions()

// NewOptions returns options with the default values.
func NewOptions() *Options {
	name := DefaultPartitionColumn
	return &Options{partitionColumn: &name}
}

// PartitionColumn returns the display name of partitioning columns. If
// false is returned, partitioning columns are displayed with their storage
// name.
func (o *Options) PartitionColumn() (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.partitionColumn == nil {
		return "", false
	}
	return *o.partitionColumn, true
}

// SetPartitionColumn changes the display name of partitioning columns. A
// nil name means the storage name is used.
func (o *Options) SetPartitionColumn(name *string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.partitionColumn = copyString(name)
}

// WithPartitionColumn runs fn with the given display name for partitioning
// columns, restoring the previous value when fn returns.
func (o *Options) WithPartitionColumn(name *string, fn func() error) error {
	o.mu.Lock()
	previous := o.partitionColumn
	o.partitionColumn = copyString(name)
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.partitionColumn = previous
		o.mu.Unlock()
	}()

	return fn()
}

// Clone returns an independent copy of the options.
func (o *Options) Clone() *Options {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return &Options{partitionColumn: copyString(o.partitionColumn)}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
