package mem

import "gopkg.in/src-d/go-bqsql.v0/sql"

// TableOption configures a table created with NewTable.
type TableOption func(*sql.TableMetadata)

// PartitionedBy partitions the table by one of its columns.
func PartitionedBy(column string) TableOption {
	return func(t *sql.TableMetadata) {
		t.PartitionColumn = column
		t.IngestionTime = false
	}
}

// IngestionTime partitions the table by ingestion time.
func IngestionTime() TableOption {
	return func(t *sql.TableMetadata) {
		t.PartitionColumn = ""
		t.IngestionTime = true
	}
}

// NewTable returns the metadata of a table with the given schema. The
// source of the columns is set to the table name.
func NewTable(name string, schema sql.Schema, opts ...TableOption) *sql.TableMetadata {
	columns := make(sql.Schema, len(schema))
	for i, c := range schema {
		cc := *c
		cc.Source = name
		columns[i] = &cc
	}

	t := &sql.TableMetadata{
		ID:     sql.TableID{Name: name},
		Schema: columns,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
