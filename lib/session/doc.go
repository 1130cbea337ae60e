// Package session exposes the current actor's identity, role and bearer
// credential to the components that need them. The context is passed
// explicitly into every component instead of living in process-wide mutable
// state, so two engines in one process can act as two different members.
package session
