package view

import (
	"testing"
	"time"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
	"github.com/shelfview/shelfview/lib/session"
)

// --------------------------------------------------------------------------
// Stub Store
// --------------------------------------------------------------------------

type mutation struct {
	method string
	path   string
	body   interface{}
}

type stubStore struct {
	collections map[string][]catalog.Entity
	mutations   []mutation
	invalidated []string
	mutateErr   error
}

func (s *stubStore) Fetch(collection string, _ map[string]string) ([]catalog.Entity, error) {
	if entities, ok := s.collections[collection]; ok {
		return entities, nil
	}
	return nil, datastore.NewError(datastore.RetCTransport, "no fixture for "+collection)
}

func (s *stubStore) Invalidate(collection string) {
	s.invalidated = append(s.invalidated, collection)
}

func (s *stubStore) Mutate(method, path string, body interface{}) error {
	if s.mutateErr != nil {
		return s.mutateErr
	}
	s.mutations = append(s.mutations, mutation{method: method, path: path, body: body})
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func newTestCoordinator(store *stubStore, sess session.ISessionContext) *Coordinator {
	return &Coordinator{
		store:   store,
		session: sess,
		logger:  logging.CreateLogger("test"),
		now:     fixedClock,
	}
}

// --------------------------------------------------------------------------
// Reserve
// --------------------------------------------------------------------------

func TestReserveDecrementsOptimisticallyAndInvalidatesNothing(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{MemberID: "42"})

	book := catalog.Book{ID: "7", Title: "Dune", CopiesAvailable: 1}
	stale, err := coord.Reserve(&book)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if len(stale) != 0 {
		t.Errorf("reserve invalidated %v, want nothing", stale)
	}
	if book.CopiesAvailable != 0 {
		t.Errorf("copies after reserve = %d, want 0", book.CopiesAvailable)
	}

	if len(store.mutations) != 1 {
		t.Fatalf("recorded %d mutations, want 1", len(store.mutations))
	}
	m := store.mutations[0]
	if m.method != "POST" || m.path != "reservations" {
		t.Errorf("mutation was %s %s, want POST reservations", m.method, m.path)
	}
	payload := m.body.(catalog.ReservationPayload).Reservation
	if payload.UserID != 42 || payload.BookID != 7 {
		t.Errorf("payload ids = user %d book %d, want 42 and 7", payload.UserID, payload.BookID)
	}
	if payload.ReservationDate != "2026-03-10" || payload.ExpirationDate != "2026-03-24" {
		t.Errorf("loan window = %s..%s, want 2026-03-10..2026-03-24",
			payload.ReservationDate, payload.ExpirationDate)
	}
}

func TestReserveLastCopyThenRefuse(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{MemberID: "42"})

	book := catalog.Book{ID: "7", Title: "Dune", CopiesAvailable: 1}
	if _, err := coord.Reserve(&book); err != nil {
		t.Fatalf("first reserve failed: %v", err)
	}

	_, err := coord.Reserve(&book)
	if !IsValidationError(err) {
		t.Fatalf("second reserve returned %v, want a validation error", err)
	}
	if book.CopiesAvailable != 0 {
		t.Errorf("copies went to %d, must never drop below 0", book.CopiesAvailable)
	}
	if len(store.mutations) != 1 {
		t.Errorf("refused reserve reached the store: %d mutations", len(store.mutations))
	}
}

func TestReserveWithoutMemberSessionIsRefused(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{})

	book := catalog.Book{ID: "7", CopiesAvailable: 3}
	_, err := coord.Reserve(&book)
	if !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}
	if book.CopiesAvailable != 3 {
		t.Errorf("refused reserve changed copies to %d", book.CopiesAvailable)
	}
}

// Reserve is deliberately fire-and-forget: a failed remote call leaves the
// decrement in place until the next refetch corrects it.
func TestReserveDoesNotRollBackOnRemoteFailure(t *testing.T) {
	store := &stubStore{mutateErr: datastore.NewError(datastore.RetCRemoteRejected, "conflict")}
	coord := newTestCoordinator(store, session.Static{MemberID: "42"})

	book := catalog.Book{ID: "7", CopiesAvailable: 2}
	if _, err := coord.Reserve(&book); err == nil {
		t.Fatal("expected the remote failure to surface")
	}
	if book.CopiesAvailable != 1 {
		t.Errorf("copies = %d, want the optimistic 1 kept", book.CopiesAvailable)
	}
}

// --------------------------------------------------------------------------
// Borrow
// --------------------------------------------------------------------------

func TestBorrowInvalidatesBooksAndAuthors(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{MemberID: "1", Privileged: true})

	stale, err := coord.Borrow("7", "42")
	if err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if len(stale) != 2 || stale[0] != "books" || stale[1] != "authors" {
		t.Errorf("stale = %v, want [books authors]", stale)
	}

	payload := store.mutations[0].body.(catalog.BorrowingPayload).Borrowing
	if payload.ReturnDate != nil {
		t.Error("new borrowing must carry a null return date")
	}
	if payload.DueDate != "2026-03-24" {
		t.Errorf("due date = %s, want 2026-03-24", payload.DueDate)
	}
}

// --------------------------------------------------------------------------
// Delete
// --------------------------------------------------------------------------

func TestDeleteStaleSetDependsOnKind(t *testing.T) {
	cases := []struct {
		kind  catalog.Kind
		path  string
		stale []string
	}{
		{catalog.KindBook, "books/7", []string{"books", "authors"}},
		{catalog.KindAuthor, "authors/3", []string{"authors", "books"}},
		{catalog.KindReservation, "reservations/9", []string{"reservations"}},
	}

	for _, tc := range cases {
		store := &stubStore{}
		coord := newTestCoordinator(store, session.Static{Privileged: true})

		id := tc.path[len(tc.kind.Collection())+1:]
		stale, err := coord.Delete(tc.kind, id)
		if err != nil {
			t.Fatalf("delete %s failed: %v", tc.kind, err)
		}
		if store.mutations[0].method != "DELETE" || store.mutations[0].path != tc.path {
			t.Errorf("mutation was %s %s, want DELETE %s",
				store.mutations[0].method, store.mutations[0].path, tc.path)
		}
		if len(stale) != len(tc.stale) {
			t.Fatalf("delete %s stale = %v, want %v", tc.kind, stale, tc.stale)
		}
		for i := range stale {
			if stale[i] != tc.stale[i] {
				t.Errorf("delete %s stale = %v, want %v", tc.kind, stale, tc.stale)
			}
		}
	}
}

func TestDeleteBorrowingIsRefused(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{Privileged: true})

	if _, err := coord.Delete(catalog.KindBorrowing, "9"); !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}
	if len(store.mutations) != 0 {
		t.Error("refused delete reached the store")
	}
}

// --------------------------------------------------------------------------
// Book Drafts
// --------------------------------------------------------------------------

func validBookDraft() map[string]string {
	return map[string]string{
		"title":            "Dune",
		"published_year":   "1965",
		"description":      "Desert planet",
		"book_type":        "scifi",
		"copies_available": "3",
	}
}

func TestSaveBookCreatePostsParsedRecord(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{Privileged: true})

	stale, err := coord.SaveBookCreate(validBookDraft(), "5")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(stale) != 2 {
		t.Errorf("stale = %v, want books and authors", stale)
	}

	record := store.mutations[0].body.(catalog.BookPayload).Book
	if record.PublishedYear != 1965 || record.CopiesAvailable != 3 || record.AuthorID != 5 {
		t.Errorf("numeric fields not parsed: %+v", record)
	}
}

func TestSaveBookEditPutsToBookPath(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{Privileged: true})

	if _, err := coord.SaveBookEdit("7", validBookDraft(), "5"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	if m := store.mutations[0]; m.method != "PUT" || m.path != "books/7" {
		t.Errorf("mutation was %s %s, want PUT books/7", m.method, m.path)
	}
}

func TestBookDraftValidation(t *testing.T) {
	breakages := map[string]func(map[string]string){
		"empty title":     func(d map[string]string) { d["title"] = "" },
		"bad year":        func(d map[string]string) { d["published_year"] = "soon" },
		"bad copies":      func(d map[string]string) { d["copies_available"] = "many" },
		"negative copies": func(d map[string]string) { d["copies_available"] = "-1" },
		"unknown type":    func(d map[string]string) { d["book_type"] = "cookbook" },
	}

	for name, breakDraft := range breakages {
		store := &stubStore{}
		coord := newTestCoordinator(store, session.Static{Privileged: true})

		draft := validBookDraft()
		breakDraft(draft)

		if _, err := coord.SaveBookCreate(draft, "5"); !IsValidationError(err) {
			t.Errorf("%s: got %v, want a validation error", name, err)
		}
		if len(store.mutations) != 0 {
			t.Errorf("%s: invalid draft reached the store", name)
		}
	}
}

func TestAuthorDraftNeedsAName(t *testing.T) {
	store := &stubStore{}
	coord := newTestCoordinator(store, session.Static{Privileged: true})

	draft := map[string]string{"first_name": "", "last_name": "", "biography": "b"}
	if _, err := coord.SaveAuthorCreate(draft); !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}

	draft["last_name"] = "Herbert"
	if _, err := coord.SaveAuthorCreate(draft); err != nil {
		t.Fatalf("create with last name failed: %v", err)
	}
}
