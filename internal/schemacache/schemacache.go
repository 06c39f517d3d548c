// Package schemacache caches the table descriptions of a catalog in a bolt
// database, so they survive between runs.
package schemacache

import (
	"context"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"gopkg.in/src-d/go-bqsql.v0/sql"
)

var tablesBucket = []byte("tables")

type column struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Nullable bool   `msgpack:"nullable"`
}

type entry struct {
	Project         string   `msgpack:"project"`
	Dataset         string   `msgpack:"dataset"`
	Name            string   `msgpack:"name"`
	Columns         []column `msgpack:"columns"`
	PartitionColumn string   `msgpack:"partition_column,omitempty"`
	IngestionTime   bool     `msgpack:"ingestion_time,omitempty"`
	// Expires is the unix time in nanoseconds after which the entry is
	// stale. Zero means it never expires.
	Expires int64 `msgpack:"expires,omitempty"`
}

// Catalog wraps a catalog caching the results of Describe. The rest of the
// operations are not cached.
type Catalog struct {
	sql.Catalog

	mu  sync.RWMutex
	db  *bolt.DB
	ttl time.Duration
	now func() time.Time
}

var _ sql.Catalog = (*Catalog)(nil)

// Open opens or creates the cache at path in front of the given catalog.
// Entries older than ttl are described again; a zero ttl keeps them
// forever.
func Open(path string, catalog sql.Catalog, ttl time.Duration) (*Catalog, error) {
	db, err := bolt.Open(path, 0640, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tablesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{Catalog: catalog, db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the cache.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// Describe implements the sql.Catalog interface.
func (c *Catalog) Describe(ctx context.Context, id sql.TableID) (*sql.TableMetadata, error) {
	key := []byte(id.String())

	meta, err := c.lookup(key)
	if err != nil {
		return nil, err
	}

	if meta != nil {
		logrus.WithField("table", id.String()).Debug("table description found in cache")
		return meta, nil
	}

	meta, err = c.Catalog.Describe(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store(key, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// Invalidate removes the cached description of a table.
func (c *Catalog) Invalidate(id sql.TableID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tablesBucket).Delete([]byte(id.String()))
	})
}

func (c *Catalog) lookup(key []byte) (*sql.TableMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var value []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(tablesBucket).Get(key); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || value == nil {
		return nil, err
	}

	var e entry
	if err := msgpack.Unmarshal(value, &e); err != nil {
		return nil, err
	}

	if e.Expires != 0 && c.now().UnixNano() > e.Expires {
		return nil, nil
	}

	return e.metadata()
}

func (c *Catalog) store(key []byte, meta *sql.TableMetadata) error {
	e := newEntry(meta)
	if c.ttl > 0 {
		e.Expires = c.now().Add(c.ttl).UnixNano()
	}

	value, err := msgpack.Marshal(e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tablesBucket).Put(key, value)
	})
}

func newEntry(meta *sql.TableMetadata) *entry {
	e := &entry{
		Project:         meta.ID.Project,
		Dataset:         meta.ID.Dataset,
		Name:            meta.ID.Name,
		PartitionColumn: meta.PartitionColumn,
		IngestionTime:   meta.IngestionTime,
	}

	for _, c := range meta.Schema {
		e.Columns = append(e.Columns, column{
			Name:     c.Name,
			Type:     c.Type.String(),
			Nullable: c.Nullable,
		})
	}
	return e
}

func (e *entry) metadata() (*sql.TableMetadata, error) {
	meta := &sql.TableMetadata{
		ID:              sql.TableID{Project: e.Project, Dataset: e.Dataset, Name: e.Name},
		PartitionColumn: e.PartitionColumn,
		IngestionTime:   e.IngestionTime,
	}

	for _, c := range e.Columns {
		t, err := sql.ParseType(c.Type)
		if err != nil {
			return nil, err
		}

		meta.Schema = append(meta.Schema, &sql.Column{
			Name:     c.Name,
			Type:     t,
			Nullable: c.Nullable,
			Source:   e.Name,
		})
	}
	return meta, nil
}
