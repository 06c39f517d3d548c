package sql

import "gopkg.in/src-d/go-errors.v1"

var (
	// ErrInvalidType is returned when a value has no representation in the
	// type system.
	ErrInvalidType = errors.NewKind("invalid type: %s")

	// ErrTypeMismatch is returned when the operands of an expression have
	// incompatible types, or a value can't be coerced to a type.
	ErrTypeMismatch = errors.NewKind("type mismatch in %s: %s")

	// ErrUnsupportedCast is returned when there is no conversion rule between
	// two types.
	ErrUnsupportedCast = errors.NewKind("cannot cast %s from %s to %s")

	// ErrUnsupportedBackendType is returned when a type can't be represented by
	// the target dialect or in a query parameter payload.
	ErrUnsupportedBackendType = errors.NewKind("type %s is not supported by %s")

	// ErrDuplicateField is returned when a struct type declares a field twice.
	ErrDuplicateField = errors.NewKind("duplicate field %q in struct")

	// ErrFieldNotFound is returned when accessing a field not declared by a
	// struct type.
	ErrFieldNotFound = errors.NewKind("struct %s does not have field %q")

	// ErrTableNotFound is returned when the table is not available from the
	// catalog.
	ErrTableNotFound = errors.NewKind("table not found: %s%s")

	// ErrDatasetNotFound is returned when a dataset does not exist.
	ErrDatasetNotFound = errors.NewKind("dataset not found: %s")

	// ErrColumnNotFound is returned when a column is not part of the schema of
	// the table it is referenced from.
	ErrColumnNotFound = errors.NewKind("table %q does not have column %q%s")

	// ErrDuplicateColumn is returned when a relation would have two output
	// columns with the same name.
	ErrDuplicateColumn = errors.NewKind("duplicate column %q in %s")

	// ErrInvalidLimit is returned when a limit or offset is negative.
	ErrInvalidLimit = errors.NewKind("invalid limit %d offset %d")

	// ErrAmbiguousColumn is returned when a column name is present in more
	// than one table of a join.
	ErrAmbiguousColumn = errors.NewKind("ambiguous column name %q, it's present in tables %s and %s")

	// ErrForeignColumn is returned when an expression references a column
	// that does not belong to the tables in scope.
	ErrForeignColumn = errors.NewKind("column %q of table %q is not in scope of %s")

	// ErrInvalidTableName is returned when a table name can't be qualified.
	ErrInvalidTableName = errors.NewKind("invalid table name %q: %s")

	// ErrSelfJoin is returned when both sides of a join are the same node.
	ErrSelfJoin = errors.NewKind("cannot join table %s with itself, create a view of one of the sides")

	// ErrDuplicateParameter is returned when two distinct parameters share a
	// name in the same query.
	ErrDuplicateParameter = errors.NewKind("parameter name %q is used by more than one parameter")

	// ErrUnboundParameter is returned when a query parameter reaches the
	// remote engine without a value.
	ErrUnboundParameter = errors.NewKind("unbound parameter %q in query")

	// ErrDuplicateFunction is returned when two different user defined
	// functions share a name in the same query.
	ErrDuplicateFunction = errors.NewKind("function %q is defined more than once with different definitions")

	// ErrUnsupportedOperation is returned when a node can't be rendered by the
	// target dialect.
	ErrUnsupportedOperation = errors.NewKind("operation %s is not supported by %s")

	// ErrInvalidNode is returned when the compiler receives a node it can't
	// handle.
	ErrInvalidNode = errors.NewKind("invalid node of type %T: %s")

	// ErrRemoteExecution wraps any failure returned by the remote engine. The
	// original message is kept as the cause.
	ErrRemoteExecution = errors.NewKind("remote execution of job %s failed")

	// ErrQueryCancelled is returned when the context of a remote query is
	// cancelled before the engine answers.
	ErrQueryCancelled = errors.NewKind("query %s was cancelled")

	// ErrAsyncNotImplemented is returned when asynchronous execution is
	// requested.
	ErrAsyncNotImplemented = errors.NewKind("asynchronous execution is not implemented")

	// ErrUnexpectedRowLength is returned when a raw row has more or less values
	// than its schema.
	ErrUnexpectedRowLength = errors.NewKind("expected %d values, got %d")

	// ErrNodeNotWritten is returned when the children are printed before the node.
	ErrNodeNotWritten = errors.NewKind("treeprinter: a child was written before the node")

	// ErrNodeAlreadyWritten is returned when the node has already been written.
	ErrNodeAlreadyWritten = errors.NewKind("treeprinter: node already written")

	// ErrChildrenAlreadyWritten is returned when the children have already been written.
	ErrChildrenAlreadyWritten = errors.NewKind("treeprinter: children already written")
)
