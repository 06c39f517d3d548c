package sql

// PartitionTimeColumn is the storage name of the pseudo-column exposed by
// tables partitioned by ingestion time.
const PartitionTimeColumn = "_PARTITIONTIME"

// Column is the definition of a table column.
type Column struct {
	// Name is the storage name of the column.
	Name string
	// Type is the data type of the column.
	Type Type
	// Nullable is true if the column can contain NULL values.
	Nullable bool
	// Source is the name of the table this column came from.
	Source string
	// Partition is true if the column is the partitioning column of its
	// table, either a real column or the ingestion time pseudo-column.
	Partition bool
}

// Equals checks whether two columns are equal.
func (c *Column) Equals(c2 *Column) bool {
	return c.Name == c2.Name &&
		c.Source == c2.Source &&
		c.Nullable == c2.Nullable &&
		c.Partition == c2.Partition &&
		c.Type.Equals(c2.Type)
}

// Schema is the ordered definition of the columns of a relation.
type Schema []*Column

// IndexOf returns the index of the column with the given name or -1 if it's
// not present.
func (s Schema) IndexOf(name string) int {
	for i, col := range s {
		if col.Name == name {
			return i
		}
	}
	return -1
}

// Contains returns whether the schema contains a column with the given name.
func (s Schema) Contains(name string) bool {
	return s.IndexOf(name) >= 0
}

// Column returns the column with the given name, or nil.
func (s Schema) Column(name string) *Column {
	if i := s.IndexOf(name); i >= 0 {
		return s[i]
	}
	return nil
}

// Names returns the names of all columns in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// PartitionColumn returns the partitioning column of the schema, or nil.
func (s Schema) PartitionColumn() *Column {
	for _, c := range s {
		if c.Partition {
			return c
		}
	}
	return nil
}

// Equals checks whether the given schema is equal to this one.
func (s Schema) Equals(s2 Schema) bool {
	if len(s) != len(s2) {
		return false
	}

	for i := range s {
		if !s[i].Equals(s2[i]) {
			return false
		}
	}

	return true
}

// WithSource returns a copy of the schema with the given source in every
// column.
func (s Schema) WithSource(source string) Schema {
	result := make(Schema, len(s))
	for i, c := range s {
		cc := *c
		cc.Source = source
		result[i] = &cc
	}
	return result
}
