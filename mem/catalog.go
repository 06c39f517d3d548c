// Package mem provides in-memory implementations of the catalog and the
// remote engine, mostly useful for testing.
package mem

import (
	"context"
	"sort"
	"sync"

	"gopkg.in/src-d/go-bqsql.v0/internal/similartext"
	"gopkg.in/src-d/go-bqsql.v0/sql"
)

// Catalog is a catalog of in-memory datasets.
type Catalog struct {
	mu        sync.RWMutex
	databases map[sql.DatasetID]*Database
}

var _ sql.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalog with the given datasets.
func NewCatalog(dbs ...*Database) *Catalog {
	c := &Catalog{databases: make(map[sql.DatasetID]*Database)}
	for _, db := range dbs {
		c.AddDatabase(db)
	}
	return c
}

// AddDatabase adds a dataset to the catalog.
func (c *Catalog) AddDatabase(db *Database) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.databases[db.ID()] = db
}

// Database returns the dataset with the given identifier.
func (c *Catalog) Database(id sql.DatasetID) (*Database, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	db, ok := c.databases[id]
	if !ok {
		return nil, sql.ErrDatasetNotFound.New(id)
	}
	return db, nil
}

// Datasets returns the identifiers of all datasets, sorted.
func (c *Catalog) Datasets() []sql.DatasetID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]sql.DatasetID, 0, len(c.databases))
	for id := range c.databases {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// DatasetExists implements the sql.Catalog interface.
func (c *Catalog) DatasetExists(_ context.Context, id sql.DatasetID) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.databases[id]
	return ok, nil
}

// ListTables implements the sql.Catalog interface.
func (c *Catalog) ListTables(_ context.Context, id sql.DatasetID) ([]string, error) {
	db, err := c.Database(id)
	if err != nil {
		return nil, err
	}
	return db.TableNames(), nil
}

// Describe implements the sql.Catalog interface.
func (c *Catalog) Describe(_ context.Context, id sql.TableID) (*sql.TableMetadata, error) {
	db, err := c.Database(id.DatasetID())
	if err != nil {
		return nil, err
	}

	t, ok := db.Table(id.Name)
	if !ok {
		return nil, sql.ErrTableNotFound.New(id, similartext.Find(db.TableNames(), id.Name))
	}
	return t, nil
}
