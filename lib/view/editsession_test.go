package view

import "testing"

func TestStartCreateSeedsEmptyDraft(t *testing.T) {
	s := NewEditSession([]string{"title", "published_year"})

	if !s.StartCreate() {
		t.Fatal("StartCreate on an idle session must succeed")
	}
	if s.Mode() != ModeCreate {
		t.Errorf("mode is %s, want create", s.Mode())
	}

	draft := s.Draft()
	if len(draft) != 2 || draft["title"] != "" || draft["published_year"] != "" {
		t.Errorf("draft not seeded empty: %v", draft)
	}
}

func TestStartEditSeedsFromCommittedValues(t *testing.T) {
	s := NewEditSession([]string{"title", "published_year"})

	if !s.StartEdit("7", map[string]string{"title": "Dune", "published_year": "1965"}) {
		t.Fatal("StartEdit on an idle session must succeed")
	}
	if s.TargetID() != "7" {
		t.Errorf("target is %q, want 7", s.TargetID())
	}
	if draft := s.Draft(); draft["title"] != "Dune" || draft["published_year"] != "1965" {
		t.Errorf("draft not seeded from row: %v", draft)
	}
}

// A second session may not open while one is in progress, and the refusal
// must leave the first session untouched.
func TestSecondSessionIsRefusedWithoutSideEffects(t *testing.T) {
	s := NewEditSession([]string{"title"})
	s.StartEdit("7", map[string]string{"title": "Dune"})

	if s.StartCreate() {
		t.Error("StartCreate during edit must be refused")
	}
	if s.StartEdit("8", map[string]string{"title": "Emma"}) {
		t.Error("StartEdit during edit must be refused")
	}

	if s.Mode() != ModeEdit || s.TargetID() != "7" {
		t.Errorf("refused start changed session state: mode=%s target=%s", s.Mode(), s.TargetID())
	}
	if draft := s.Draft(); draft["title"] != "Dune" {
		t.Errorf("refused start changed draft: %v", draft)
	}
}

func TestUpdateFieldValidation(t *testing.T) {
	s := NewEditSession([]string{"title"})

	if err := s.UpdateField("title", "x"); err == nil {
		t.Error("UpdateField outside a session must fail")
	}

	s.StartCreate()
	if err := s.UpdateField("color", "red"); err == nil {
		t.Error("UpdateField on an unknown field must fail")
	}
	if err := s.UpdateField("title", "Dune"); err != nil {
		t.Errorf("UpdateField on a known field failed: %v", err)
	}
	if draft := s.Draft(); draft["title"] != "Dune" {
		t.Errorf("draft not updated: %v", draft)
	}
}

func TestCancelReturnsToIdle(t *testing.T) {
	s := NewEditSession([]string{"title"})
	s.StartCreate()
	s.Cancel()

	if s.Mode() != ModeNone {
		t.Errorf("mode after cancel is %s, want none", s.Mode())
	}
	if !s.StartEdit("7", nil) {
		t.Error("session must be reusable after cancel")
	}
}

func TestDraftReturnsACopy(t *testing.T) {
	s := NewEditSession([]string{"title"})
	s.StartCreate()

	draft := s.Draft()
	draft["title"] = "mutated"

	if fresh := s.Draft(); fresh["title"] != "" {
		t.Errorf("mutating the returned draft leaked into the session: %v", fresh)
	}
}
