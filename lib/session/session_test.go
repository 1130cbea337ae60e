package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	sess, err := Load(path)
	if err != nil {
		t.Fatalf("load of missing file failed: %v", err)
	}
	if sess.CurrentMemberID() != "" || sess.IsPrivilegedRole() || sess.BearerCredential() != "" {
		t.Error("missing file must yield an unauthenticated session")
	}
}

func TestSaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	state := State{Token: "tok", MemberID: "42", Role: RoleLibrarian}
	if err := Save(path, state); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	sess, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if sess.CurrentMemberID() != "42" || sess.BearerCredential() != "tok" {
		t.Errorf("loaded session = %+v", sess.state)
	}
	if !sess.IsPrivilegedRole() {
		t.Error("librarian role must be privileged")
	}

	if err := Clear(path); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file survived clear")
	}
	if err := Clear(path); err != nil {
		t.Errorf("second clear must be a no-op, got: %v", err)
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("corrupt session file must fail to load")
	}
}

func TestNonLibrarianRoleIsNotPrivileged(t *testing.T) {
	s := &Stored{state: State{MemberID: "7", Role: "Member"}}
	if s.IsPrivilegedRole() {
		t.Error("member role must not be privileged")
	}
}
