// Package httpstore implements the IDataStore interface over HTTP. Every
// request carries the current session's bearer credential; responses are
// decoded from the backend's collection document shape. Request counts and
// failures are tracked as metrics per collection.
package httpstore
