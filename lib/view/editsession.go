package view

import "fmt"

// --------------------------------------------------------------------------
// Edit Modes
// --------------------------------------------------------------------------

// EditMode is the state of the per-row edit session.
type EditMode int

const (
	ModeNone EditMode = iota
	ModeCreate
	ModeEdit
)

func (m EditMode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Edit Session
// --------------------------------------------------------------------------

// EditSession tracks which single row (if any) is being created or edited
// and the in-progress field values, independent of the committed collection.
// At most one row across the whole view may be in create or edit mode;
// opening a second session is refused without touching the current one.
//
// Draft values are strings even for numeric fields so they can back
// controlled text inputs; they are parsed back to numbers on commit.
type EditSession struct {
	mode     EditMode
	targetID string
	fields   []string
	draft    map[string]string
}

// NewEditSession creates an idle session for the given editable schema.
// The field order is preserved for rendering.
func NewEditSession(fields []string) *EditSession {
	return &EditSession{fields: fields}
}

// Mode returns the current session mode.
func (s *EditSession) Mode() EditMode { return s.mode }

// TargetID returns the id of the row being edited, or "" outside edit mode.
func (s *EditSession) TargetID() string { return s.targetID }

// Fields returns the editable schema in declaration order.
func (s *EditSession) Fields() []string { return s.fields }

// StartCreate opens a create session with empty field values. It is only
// valid while idle; otherwise it is a no-op and reports false, leaving the
// current session unchanged.
func (s *EditSession) StartCreate() bool {
	if s.mode != ModeNone {
		return false
	}

	s.mode = ModeCreate
	s.draft = make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		s.draft[f] = ""
	}
	return true
}

// StartEdit opens an edit session for rowID, seeding the draft from the
// row's committed values (numeric fields stringified by the caller). It is
// only valid while idle; otherwise it is a no-op and reports false.
func (s *EditSession) StartEdit(rowID string, current map[string]string) bool {
	if s.mode != ModeNone {
		return false
	}

	s.mode = ModeEdit
	s.targetID = rowID
	s.draft = make(map[string]string, len(s.fields))
	for _, f := range s.fields {
		s.draft[f] = current[f]
	}
	return true
}

// UpdateField replaces one draft field, leaving the others untouched.
func (s *EditSession) UpdateField(key, value string) error {
	if s.mode == ModeNone {
		return fmt.Errorf("no edit session in progress")
	}
	if _, ok := s.draft[key]; !ok {
		return fmt.Errorf("unknown field %q", key)
	}
	s.draft[key] = value
	return nil
}

// Draft returns a copy of the in-progress field values.
func (s *EditSession) Draft() map[string]string {
	draft := make(map[string]string, len(s.draft))
	for k, v := range s.draft {
		draft[k] = v
	}
	return draft
}

// Cancel discards the draft and returns to idle. Valid in any state.
func (s *EditSession) Cancel() {
	s.mode = ModeNone
	s.targetID = ""
	s.draft = nil
}

// Clear resets the session after a successful commit. On commit failure the
// caller must NOT clear: the draft stays so the user can retry.
func (s *EditSession) Clear() {
	s.Cancel()
}
