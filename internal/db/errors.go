package db

import "errors"

// Sentinel errors for key-value operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op names for error context. Key-value ops map to Valkey/Redis commands.
const (
	OpGet    = "GET"
	OpMGet   = "MGET"
	OpSet    = "SET"
	OpPing   = "PING"
	OpCreate = "CREATE_COLLECTION"
	OpDelete = "DELETE_COLLECTION"
	OpUpsert = "UPSERT"
	OpQuery  = "QUERY"
	OpCount  = "COUNT"
	OpScan   = "SCAN"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
