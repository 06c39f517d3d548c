package bqsql

import (
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-bqsql.v0/sql"
	"gopkg.in/src-d/go-bqsql.v0/sql/compiler"
)

// Config is the configuration of a client, usually read from a YAML file.
type Config struct {
	// ProjectID is the project queries are run in.
	ProjectID string `yaml:"project_id"`
	// DatasetID is the default dataset, either "dataset" or
	// "project.dataset".
	DatasetID string `yaml:"dataset_id"`
	// PartitionColumn is the name partitioning columns are displayed with.
	// It's PARTITIONTIME if not given, and the storage name if null.
	PartitionColumn *string `yaml:"partition_column"`
	// Dialect of the generated SQL, "bigquery" by default.
	Dialect string `yaml:"dialect"`
	// QueryParameters sends bound parameters along with the query instead
	// of inlining them.
	QueryParameters bool `yaml:"query_parameters"`

	// Driver and DSN of the database/sql engine used by the CLI.
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`

	// SchemaCache is the path of the table description cache, disabled if
	// empty.
	SchemaCache    string        `yaml:"schema_cache"`
	SchemaCacheTTL time.Duration `yaml:"schema_cache_ttl"`
}

// NewConfig returns a configuration with the default values.
func NewConfig() *Config {
	name := sql.DefaultPartitionColumn
	return &Config{PartitionColumn: &name, Dialect: compiler.BigQuery.Name()}
}

// ParseConfig parses a YAML configuration. Missing keys keep their
// default value.
func ParseConfig(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// Options returns the render options of the configuration.
func (c *Config) Options() *sql.Options {
	o := sql.NewOptions()
	o.SetPartitionColumn(c.PartitionColumn)
	return o
}

// ClientOptions returns the options of a client with this configuration.
func (c *Config) ClientOptions() ([]Option, error) {
	d, err := compiler.DialectByName(c.Dialect)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithDialect(d),
		WithOptions(c.Options()),
	}

	if c.DatasetID != "" {
		opts = append(opts, WithDataset(c.DatasetID))
	}

	if c.QueryParameters {
		opts = append(opts, WithQueryParameters())
	}
	return opts, nil
}
