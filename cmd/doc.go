// Package cmd implements the command-line interface for the shelfview catalog
// browser. It provides a hierarchical command structure with operations for
// browsing and managing the catalog, handling the login session and running
// the local fixture backend.
//
// The package is organized into several subpackages:
//
//   - browse: Commands for viewing and managing the catalog (books, authors, circulation)
//   - account: Commands for the login session (login, logout, whoami)
//   - serve: Commands for starting the local fixture backend
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See shelfview -help for a list of all commands.
package cmd
