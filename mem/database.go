package mem

import (
	"sort"
	"sync"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Database is an in-memory dataset.
type Database struct {
	mu     sync.RWMutex
	id     sql.DatasetID
	tables map[string]*sql.TableMetadata
}

// NewDatabase creates a new empty dataset of the given project.
func NewDatabase(project, name string) *Database {
	return &Database{
		id:     sql.DatasetID{Project: project, Dataset: name},
		tables: make(map[string]*sql.TableMetadata),
	}
}

// Name returns the name of the dataset.
func (d *Database) Name() string {
	return d.id.Dataset
}

// ID returns the identifier of the dataset.
func (d *Database) ID() sql.DatasetID {
	return d.id
}

// AddTable adds a table to the dataset, replacing the one with the same
// name. The identifier of the table is set to belong to the dataset.
func (d *Database) AddTable(t *sql.TableMetadata) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t.ID.Project = d.id.Project
	t.ID.Dataset = d.id.Dataset
	d.tables[t.ID.Name] = t
}

// Table returns the table with the given name.
func (d *Database) Table(name string) (*sql.TableMetadata, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.tables[name]
	return t, ok
}

// TableNames returns the sorted names of the tables.
func (d *Database) TableNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
