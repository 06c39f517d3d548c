package bqsql

// Names of the fields of the log entries of a query execution.
const (
	JobIDLogField     = "job_id"
	QueryHashLogField = "query_hash"
	DurationLogField  = "duration"
	DatasetLogField   = "dataset"
)
