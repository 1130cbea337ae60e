package session

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RoleLibrarian is the privileged role name the backend reports.
const RoleLibrarian = "Librarian"

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISessionContext exposes the current actor to the engine. Components only
// read from it; establishing or tearing down a session is the caller's job.
type ISessionContext interface {
	// CurrentMemberID returns the acting member's id, or "" if unauthenticated.
	CurrentMemberID() string
	// IsPrivilegedRole reports whether the actor may manage the catalog.
	IsPrivilegedRole() bool
	// BearerCredential returns the authorization bearer, or "" if none.
	BearerCredential() string
}

// --------------------------------------------------------------------------
// Static Session (injected, used in tests and one-shot tools)
// --------------------------------------------------------------------------

// Static is a fixed session context.
type Static struct {
	MemberID   string
	Privileged bool
	Token      string
}

func (s Static) CurrentMemberID() string { return s.MemberID }
func (s Static) IsPrivilegedRole() bool  { return s.Privileged }
func (s Static) BearerCredential() string {
	return s.Token
}

// --------------------------------------------------------------------------
// File-Backed Session
// --------------------------------------------------------------------------

// State is the persisted session shape written by a successful login.
type State struct {
	Token    string `json:"token"`
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
}

// Stored is a session context backed by a saved State.
type Stored struct {
	state State
}

func (s *Stored) CurrentMemberID() string { return s.state.MemberID }
func (s *Stored) IsPrivilegedRole() bool  { return s.state.Role == RoleLibrarian }
func (s *Stored) BearerCredential() string {
	return s.state.Token
}

// DefaultPath returns the session file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "shelfview", "session.json"), nil
}

// Load reads the session file. A missing file yields an empty
// (unauthenticated) session rather than an error.
func Load(path string) (*Stored, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Stored{}, nil
	}
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	return &Stored{state: state}, nil
}

// Save writes the session file, creating parent directories as needed.
func Save(path string, state State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Clear removes the session file. Missing files are not an error.
func Clear(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
