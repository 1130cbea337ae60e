// Package devserver is a self-contained fixture backend for local work and
// end-to-end tests. It serves the same collection documents, wrapped mutation
// payloads and bearer-token login the real catalog backend speaks, backed by
// seeded in-memory data instead of a database.
package devserver
