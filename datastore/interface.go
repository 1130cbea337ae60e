package datastore

import (
	"fmt"

	"github.com/shelfview/shelfview/lib/catalog"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IDataStore is the generic interface for interacting with the remote
// collection store. Fetch has network GET semantics and is cacheable by
// (collection, params); Mutate writes through and returns only an error.
type IDataStore interface {
	// Fetch retrieves a named collection. params narrows the fetch and is
	// part of the cache identity; nil means the whole collection.
	Fetch(collection string, params map[string]string) ([]catalog.Entity, error)
	// Invalidate drops any cached snapshots of the collection so the next
	// Fetch hits the remote again. A no-op for non-caching implementations.
	Invalidate(collection string)
	// Mutate issues a write (POST/PUT/DELETE) against a collection path
	// such as "books" or "books/7". body is encoded as the request payload;
	// nil means an empty body.
	Mutate(method, path string, body interface{}) (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCTransport:
		errorCode = "Transport"
	case RetCRemoteRejected:
		errorCode = "RemoteRejected"
	case RetCDecode:
		errorCode = "Decode"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("DataStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Operation executed successfully.
	RetCTransport                       // 1: The remote could not be reached.
	RetCRemoteRejected                  // 2: The remote answered with a non-2xx status.
	RetCDecode                          // 3: The response body could not be decoded.
	RetCInvalidOperation                // 4: Invalid operation.
)
