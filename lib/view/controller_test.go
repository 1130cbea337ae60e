package view

import (
	"testing"

	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/session"
)

// --------------------------------------------------------------------------
// Fixtures
// --------------------------------------------------------------------------

func bookEntity(id, title, bookType string, year, copies int, authorID string) catalog.Entity {
	e := catalog.Entity{
		ID:   id,
		Kind: catalog.KindBook,
		Attributes: map[string]interface{}{
			"title":            title,
			"book_type":        bookType,
			"published_year":   float64(year),
			"copies_available": float64(copies),
		},
	}
	if authorID != "" {
		e.Relationships = map[string]catalog.RelationRef{
			"author": {One: &catalog.EntityRef{ID: authorID, Kind: catalog.KindAuthor}},
		}
	}
	return e
}

func authorEntity(id, first, last string, bookIDs ...string) catalog.Entity {
	refs := make([]catalog.EntityRef, len(bookIDs))
	for i, bid := range bookIDs {
		refs[i] = catalog.EntityRef{ID: bid, Kind: catalog.KindBook}
	}
	return catalog.Entity{
		ID:   id,
		Kind: catalog.KindAuthor,
		Attributes: map[string]interface{}{
			"first_name": first,
			"last_name":  last,
		},
		Relationships: map[string]catalog.RelationRef{
			"books": {Many: refs},
		},
	}
}

func fixtureStore() *stubStore {
	return &stubStore{collections: map[string][]catalog.Entity{
		"books": {
			bookEntity("1", "Dune", "scifi", 1965, 2, "10"),
			bookEntity("2", "Emma", "romance", 1815, 0, "11"),
			bookEntity("3", "Dune Messiah", "scifi", 1969, 1, "10"),
		},
		"authors": {
			authorEntity("10", "Frank", "Herbert", "1", "3"),
			authorEntity("11", "Jane", "Austen", "2"),
		},
		"reservations": {},
		"borrowings":   {},
	}}
}

func loadedController(t *testing.T, store *stubStore, sess session.ISessionContext) *Controller {
	t.Helper()
	c := NewController(store, sess)
	c.coord.now = fixedClock
	if err := c.Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return c
}

func rowIDs(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func assertRowIDs(t *testing.T, rows []Row, want ...string) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("got rows %v, want %v", rowIDs(rows), want)
	}
	for i, r := range rows {
		if r.ID != want[i] {
			t.Fatalf("got rows %v, want %v", rowIDs(rows), want)
		}
	}
}

// --------------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------------

func TestBookRowsJoinAuthorsAndKeepFetchOrder(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{MemberID: "42"})

	rows := c.Rows()
	assertRowIDs(t, rows, "1", "2", "3")
	if rows[0].Cells[1] != "Frank Herbert" {
		t.Errorf("author cell = %q, want Frank Herbert", rows[0].Cells[1])
	}
}

// A dangling author reference renders the Unknown sentinel, while the sort
// key keeps its empty fallback so unresolved rows group together.
func TestBookRowsDanglingAuthorShowsUnknown(t *testing.T) {
	store := fixtureStore()
	store.collections["books"] = append(store.collections["books"],
		bookEntity("4", "Orphan", "fiction", 2020, 1, "99"))
	c := loadedController(t, store, session.Static{})

	rows := c.Rows()
	if got := rows[3].Cells[1]; got != catalog.UnknownAuthor.FullName() {
		t.Errorf("dangling author cell = %q, want %q", got, catalog.UnknownAuthor.FullName())
	}

	joined := catalog.JoinBooks(catalog.BooksFromEntities(store.collections["books"]), catalog.Index(c.authors))
	if key := joined.Books[3].AuthorName(); key != "" {
		t.Errorf("dangling author sort key = %q, want empty", key)
	}
}

func TestRowsFilterThenSort(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{})

	c.SetFilter("book_type", "scifi")
	c.SetSort("year", Descending)

	assertRowIDs(t, c.Rows(), "3", "1")
}

func TestAuthorRowsCarryBookCounts(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{})
	c.SetCategory(CategoryAuthors)

	rows := c.Rows()
	assertRowIDs(t, rows, "10", "11")
	if rows[0].Cells[2] != "2" || rows[1].Cells[2] != "1" {
		t.Errorf("book counts = %q and %q, want 2 and 1", rows[0].Cells[2], rows[1].Cells[2])
	}
}

func TestSwitchingCategoryResetsViewState(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{})

	c.SetFilter("title", "dune")
	c.SetSort("year", Descending)
	c.SelectAuthor("10")

	c.SetCategory(CategoryAuthors)
	c.SetCategory(CategoryBooks)

	assertRowIDs(t, c.Rows(), "1", "2", "3")
	if _, ok := c.SelectedAuthor(); ok {
		t.Error("author selection survived the category switch")
	}
}

func TestSelectAuthorScopesBookRows(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{})

	c.SelectAuthor("10")
	assertRowIDs(t, c.Rows(), "1", "3")

	c.SelectAuthor("")
	assertRowIDs(t, c.Rows(), "1", "2", "3")
}

// Scoping to an author id that does not resolve shows nothing rather than
// silently widening back to the whole catalog.
func TestSelectUnknownAuthorScopesToNothing(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{})

	c.SelectAuthor("99")
	assertRowIDs(t, c.Rows())

	c.SelectAuthor("10")
	assertRowIDs(t, c.Rows(), "1", "3")
}

func TestRowCapabilitiesFollowSession(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{MemberID: "42"})

	rows := c.Rows()
	if !rows[0].CanReserve {
		t.Error("member cannot reserve an available book")
	}
	if rows[1].CanReserve {
		t.Error("book without copies is reservable")
	}
	if rows[0].CanEdit || rows[0].CanDelete {
		t.Error("plain member may edit or delete")
	}

	c = loadedController(t, fixtureStore(), session.Static{MemberID: "1", Privileged: true})
	if rows := c.Rows(); !rows[0].CanEdit || !rows[0].CanDelete {
		t.Error("librarian may not edit or delete")
	}
}

// --------------------------------------------------------------------------
// Actions Through the Controller
// --------------------------------------------------------------------------

func TestControllerReserveUpdatesSnapshotInPlace(t *testing.T) {
	store := fixtureStore()
	c := loadedController(t, store, session.Static{MemberID: "42"})

	if err := c.Reserve("1"); err != nil {
		t.Fatalf("reserve failed: %v", err)
	}

	rows := c.Rows()
	if rows[0].Cells[4] != "1" {
		t.Errorf("copies cell = %q, want optimistic 1", rows[0].Cells[4])
	}
	if len(store.invalidated) != 0 {
		t.Errorf("reserve invalidated %v, want nothing", store.invalidated)
	}
}

func TestControllerBorrowRefetchesStaleCollections(t *testing.T) {
	store := fixtureStore()
	c := loadedController(t, store, session.Static{MemberID: "1", Privileged: true})

	if err := c.Borrow("1", "42"); err != nil {
		t.Fatalf("borrow failed: %v", err)
	}
	if len(store.invalidated) != 2 {
		t.Errorf("invalidated %v, want books and authors", store.invalidated)
	}
}

func TestControllerRefreshKeepsSnapshotOnFetchFailure(t *testing.T) {
	store := fixtureStore()
	c := loadedController(t, store, session.Static{})

	delete(store.collections, "books")
	if err := c.refresh("books"); err == nil {
		t.Fatal("expected the fetch failure to surface")
	}

	assertRowIDs(t, c.Rows(), "1", "2", "3")
}

// --------------------------------------------------------------------------
// Edit Flow
// --------------------------------------------------------------------------

func TestCreateBookRequiresAuthorScope(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{Privileged: true})

	if err := c.StartCreate(); !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}

	c.SelectAuthor("10")
	if err := c.StartCreate(); err != nil {
		t.Fatalf("create with author scope failed: %v", err)
	}
}

func TestEditFlowCommitClearsSessionAndRefetches(t *testing.T) {
	store := fixtureStore()
	c := loadedController(t, store, session.Static{MemberID: "1", Privileged: true})

	if err := c.StartEdit("1"); err != nil {
		t.Fatalf("start edit failed: %v", err)
	}
	if draft := c.Edit().Draft(); draft["title"] != "Dune" || draft["published_year"] != "1965" {
		t.Fatalf("draft not seeded from committed values: %v", draft)
	}

	if err := c.UpdateField("title", "Dune (Revised)"); err != nil {
		t.Fatalf("update field failed: %v", err)
	}
	if err := c.CommitEdit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if c.Edit().Mode() != ModeNone {
		t.Error("session not cleared after a successful commit")
	}

	record := store.mutations[0].body.(catalog.BookPayload).Book
	if record.Title != "Dune (Revised)" || record.AuthorID != 10 {
		t.Errorf("committed record = %+v, want revised title and author 10", record)
	}
	if len(store.invalidated) != 2 {
		t.Errorf("invalidated %v, want books and authors", store.invalidated)
	}
}

// A failed commit must keep the draft so the input can be corrected.
func TestCommitFailureKeepsDraft(t *testing.T) {
	c := loadedController(t, fixtureStore(), session.Static{Privileged: true})

	if err := c.StartEdit("1"); err != nil {
		t.Fatalf("start edit failed: %v", err)
	}
	if err := c.UpdateField("published_year", "soon"); err != nil {
		t.Fatalf("update field failed: %v", err)
	}

	if err := c.CommitEdit(); !IsValidationError(err) {
		t.Fatalf("got %v, want a validation error", err)
	}
	if c.Edit().Mode() != ModeEdit {
		t.Error("failed commit cleared the session")
	}
	if draft := c.Edit().Draft(); draft["published_year"] != "soon" {
		t.Errorf("failed commit lost the draft: %v", draft)
	}
}

func TestAuthorEditFlow(t *testing.T) {
	store := fixtureStore()
	c := loadedController(t, store, session.Static{Privileged: true})
	c.SetCategory(CategoryAuthors)

	if err := c.StartEdit("11"); err != nil {
		t.Fatalf("start edit failed: %v", err)
	}
	if err := c.UpdateField("biography", "Novelist of manners."); err != nil {
		t.Fatalf("update field failed: %v", err)
	}
	if err := c.CommitEdit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	m := store.mutations[0]
	if m.method != "PUT" || m.path != "authors/11" {
		t.Errorf("mutation was %s %s, want PUT authors/11", m.method, m.path)
	}
	record := m.body.(catalog.AuthorPayload).Author
	if record.FirstName != "Jane" || record.Biography != "Novelist of manners." {
		t.Errorf("committed record = %+v", record)
	}
}

// --------------------------------------------------------------------------
// Circulation
// --------------------------------------------------------------------------

func TestCirculationMergesReservationsAndBorrowings(t *testing.T) {
	store := fixtureStore()
	returned := "2026-03-01"
	store.collections["reservations"] = []catalog.Entity{{
		ID:   "r1",
		Kind: catalog.KindReservation,
		Attributes: map[string]interface{}{
			"reservation_date": "2026-03-10",
			"expiration_date":  "2026-03-24",
		},
		Relationships: map[string]catalog.RelationRef{
			"book":   {One: &catalog.EntityRef{ID: "1", Kind: catalog.KindBook}},
			"member": {One: &catalog.EntityRef{ID: "42", Kind: catalog.KindMember}},
		},
	}}
	store.collections["borrowings"] = []catalog.Entity{
		{
			ID:   "b1",
			Kind: catalog.KindBorrowing,
			Attributes: map[string]interface{}{
				"borrow_date": "2026-02-20",
				"due_date":    "2026-03-06",
				"return_date": returned,
			},
		},
		{
			ID:   "b2",
			Kind: catalog.KindBorrowing,
			Attributes: map[string]interface{}{
				"borrow_date": "2026-03-01",
				"due_date":    "2026-03-15",
			},
		},
	}

	c := loadedController(t, store, session.Static{Privileged: true})
	rows, err := c.Circulation()
	if err != nil {
		t.Fatalf("circulation failed: %v", err)
	}

	assertRowIDs(t, rows, "r1", "b1", "b2")
	if !rows[0].CanDelete {
		t.Error("librarian cannot cancel a reservation")
	}
	if rows[1].CanDelete {
		t.Error("borrowings must not be deletable")
	}
	if rows[1].Cells[4] != "2026-03-01" {
		t.Errorf("returned borrowing end = %q, want the return date", rows[1].Cells[4])
	}
	if rows[2].Cells[4] != "2026-03-15" {
		t.Errorf("open borrowing end = %q, want the due date", rows[2].Cells[4])
	}
}
