package sql

import (
	"context"
	"strings"
)

// DatasetID identifies a dataset inside a project.
type DatasetID struct {
	Project string
	Dataset string
}

func (id DatasetID) String() string {
	if id.Project == "" {
		return id.Dataset
	}
	return id.Project + "." + id.Dataset
}

// ParseDatasetID parses a dataset name, either "dataset" or
// "project.dataset". Datasets without project belong to defaultProject.
func ParseDatasetID(name, defaultProject string) (DatasetID, error) {
	parts := strings.Split(name, ".")
	for _, p := range parts {
		if p == "" {
			return DatasetID{}, ErrInvalidTableName.New(name, "empty name component")
		}
	}

	switch len(parts) {
	case 1:
		return DatasetID{Project: defaultProject, Dataset: parts[0]}, nil
	case 2:
		return DatasetID{Project: parts[0], Dataset: parts[1]}, nil
	default:
		return DatasetID{}, ErrInvalidTableName.New(name, "datasets are named project.dataset")
	}
}

// TableID identifies a table of a remote engine.
type TableID struct {
	Project string
	Dataset string
	Name    string
}

// NewTableID qualifies a table name with the given dataset. The name itself
// can't be qualified.
func NewTableID(name string, dataset DatasetID) (TableID, error) {
	if name == "" || strings.Contains(name, ".") {
		return TableID{}, ErrInvalidTableName.New(name, "table names must not be qualified, use the database argument")
	}
	return TableID{Project: dataset.Project, Dataset: dataset.Dataset, Name: name}, nil
}

// DatasetID returns the dataset the table belongs to.
func (id TableID) DatasetID() DatasetID {
	return DatasetID{Project: id.Project, Dataset: id.Dataset}
}

func (id TableID) String() string {
	var parts []string
	for _, p := range []string{id.Project, id.Dataset, id.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// TableMetadata is the description of a table given by a Catalog.
type TableMetadata struct {
	ID TableID
	// Schema of the regular columns of the table.
	Schema Schema
	// PartitionColumn is the storage name of the column the table is
	// partitioned by, if any.
	PartitionColumn string
	// IngestionTime is true if the table is partitioned by ingestion time,
	// in which case it exposes the _PARTITIONTIME pseudo-column.
	IngestionTime bool
}

// Partitioned checks whether the table is partitioned.
func (m *TableMetadata) Partitioned() bool {
	return m.IngestionTime || m.PartitionColumn != ""
}

// TableSchema returns the full schema of the table, flagging the partition
// column and appending the ingestion time pseudo-column when needed.
func (m *TableMetadata) TableSchema() Schema {
	name := m.ID.Name
	schema := make(Schema, 0, len(m.Schema)+1)
	for _, c := range m.Schema {
		cc := *c
		cc.Source = name
		cc.Partition = !m.IngestionTime && c.Name == m.PartitionColumn
		schema = append(schema, &cc)
	}

	if m.IngestionTime {
		schema = append(schema, &Column{
			Name:      PartitionTimeColumn,
			Type:      Timestamp,
			Nullable:  true,
			Source:    name,
			Partition: true,
		})
	}
	return schema
}

// Catalog is the source of metadata of remote tables and datasets.
type Catalog interface {
	// DatasetExists checks whether the dataset exists.
	DatasetExists(ctx context.Context, id DatasetID) (bool, error)
	// ListTables returns the names of the tables of a dataset, sorted.
	ListTables(ctx context.Context, id DatasetID) ([]string, error)
	// Describe returns the metadata of a table or ErrTableNotFound.
	Describe(ctx context.Context, id TableID) (*TableMetadata, error)
}
