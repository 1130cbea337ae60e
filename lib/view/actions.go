package view

import (
	"strconv"
	"time"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
	"github.com/shelfview/shelfview/lib/session"
)

// --------------------------------------------------------------------------
// Action Coordinator
// --------------------------------------------------------------------------

// Coordinator validates and dispatches catalog mutations. Each action returns
// the collection keys whose cached snapshots it made stale; callers invalidate
// and refetch exactly those. An empty key list means the committed data did
// not change shape (optimistic paths update the in-memory rows themselves).
type Coordinator struct {
	store   datastore.IDataStore
	session session.ISessionContext
	logger  logging.ILogger
	now     func() time.Time
}

// NewCoordinator creates a coordinator over the given store and session.
func NewCoordinator(store datastore.IDataStore, sess session.ISessionContext) *Coordinator {
	return &Coordinator{
		store:   store,
		session: sess,
		logger:  logging.CreateLogger("view/actions"),
		now:     time.Now,
	}
}

// --------------------------------------------------------------------------
// Circulation Actions
// --------------------------------------------------------------------------

// Reserve places a reservation on the given book for the current member. The
// book's copy count is decremented in place before the remote call so the
// view reflects the reservation immediately; there is no rollback on failure,
// the count self-corrects on the next refetch. No collections are invalidated.
func (c *Coordinator) Reserve(book *catalog.Book) ([]string, error) {
	if book.CopiesAvailable <= 0 {
		return nil, NewValidationError("no copies of %q available", book.Title)
	}

	memberID, err := strconv.Atoi(c.session.CurrentMemberID())
	if err != nil {
		return nil, NewValidationError("not logged in as a member")
	}
	bookID, err := strconv.Atoi(book.ID)
	if err != nil {
		return nil, NewValidationError("invalid book id %q", book.ID)
	}

	start, end := catalog.LoanWindow(c.now())

	book.CopiesAvailable--

	payload := catalog.ReservationPayload{Reservation: catalog.ReservationRecord{
		ReservationDate: start,
		ExpirationDate:  end,
		UserID:          memberID,
		BookID:          bookID,
	}}
	if err := c.store.Mutate("POST", "reservations", payload); err != nil {
		c.logger.Errorf("Reservation of book %s failed: %v", book.ID, err)
		return nil, err
	}

	c.logger.Infof("Reserved book %s for member %d until %s", book.ID, memberID, end)
	return nil, nil
}

// Borrow opens a borrowing of the book for the given member. Unlike Reserve
// there is no in-place update: books and authors are invalidated and the new
// copy count arrives with the refetch.
func (c *Coordinator) Borrow(bookID, memberID string) ([]string, error) {
	book, err := strconv.Atoi(bookID)
	if err != nil {
		return nil, NewValidationError("invalid book id %q", bookID)
	}
	member, err := strconv.Atoi(memberID)
	if err != nil {
		return nil, NewValidationError("invalid member id %q", memberID)
	}

	start, end := catalog.LoanWindow(c.now())

	payload := catalog.BorrowingPayload{Borrowing: catalog.BorrowingRecord{
		BorrowDate: start,
		DueDate:    end,
		ReturnDate: nil,
		UserID:     member,
		BookID:     book,
	}}
	if err := c.store.Mutate("POST", "borrowings", payload); err != nil {
		c.logger.Errorf("Borrowing of book %s failed: %v", bookID, err)
		return nil, err
	}

	c.logger.Infof("Opened borrowing of book %s for member %s, due %s", bookID, memberID, end)
	return []string{"books", "authors"}, nil
}

// Members fetches the member list for the borrow dialog.
func (c *Coordinator) Members() ([]catalog.Member, error) {
	entities, err := c.store.Fetch("members", nil)
	if err != nil {
		return nil, err
	}
	return catalog.MembersFromEntities(entities), nil
}

// --------------------------------------------------------------------------
// Deletion
// --------------------------------------------------------------------------

// Delete removes the given row. Which collections go stale depends on the
// kind: books and authors reference each other, reservations stand alone.
func (c *Coordinator) Delete(kind catalog.Kind, id string) ([]string, error) {
	var stale []string
	switch kind {
	case catalog.KindBook:
		stale = []string{"books", "authors"}
	case catalog.KindAuthor:
		stale = []string{"authors", "books"}
	case catalog.KindReservation:
		stale = []string{"reservations"}
	default:
		return nil, NewValidationError("cannot delete rows of kind %q", kind)
	}

	if err := c.store.Mutate("DELETE", kind.Collection()+"/"+id, nil); err != nil {
		c.logger.Errorf("Deletion of %s %s failed: %v", kind, id, err)
		return nil, err
	}

	c.logger.Infof("Deleted %s %s", kind, id)
	return stale, nil
}

// --------------------------------------------------------------------------
// Book Create / Edit
// --------------------------------------------------------------------------

// SaveBookCreate validates a create draft and posts it. authorID scopes the
// new book to the currently selected author.
func (c *Coordinator) SaveBookCreate(draft map[string]string, authorID string) ([]string, error) {
	record, err := parseBookDraft(draft, authorID)
	if err != nil {
		return nil, err
	}

	if err := c.store.Mutate("POST", "books", catalog.BookPayload{Book: record}); err != nil {
		c.logger.Errorf("Creating book %q failed: %v", record.Title, err)
		return nil, err
	}
	return []string{"books", "authors"}, nil
}

// SaveBookEdit validates an edit draft and puts it to the existing book.
func (c *Coordinator) SaveBookEdit(bookID string, draft map[string]string, authorID string) ([]string, error) {
	record, err := parseBookDraft(draft, authorID)
	if err != nil {
		return nil, err
	}

	if err := c.store.Mutate("PUT", "books/"+bookID, catalog.BookPayload{Book: record}); err != nil {
		c.logger.Errorf("Updating book %s failed: %v", bookID, err)
		return nil, err
	}
	return []string{"books", "authors"}, nil
}

// parseBookDraft coerces the string draft back into the typed record.
func parseBookDraft(draft map[string]string, authorID string) (catalog.BookRecord, error) {
	var record catalog.BookRecord

	if draft["title"] == "" {
		return record, NewValidationError("title must not be empty")
	}

	year, err := strconv.Atoi(draft["published_year"])
	if err != nil {
		return record, NewValidationError("published year %q is not a number", draft["published_year"])
	}
	copies, err := strconv.Atoi(draft["copies_available"])
	if err != nil {
		return record, NewValidationError("copies available %q is not a number", draft["copies_available"])
	}
	if copies < 0 {
		return record, NewValidationError("copies available must not be negative")
	}
	if !catalog.IsBookType(draft["book_type"]) {
		return record, NewValidationError("unknown book type %q", draft["book_type"])
	}
	author, err := strconv.Atoi(authorID)
	if err != nil {
		return record, NewValidationError("invalid author id %q", authorID)
	}

	record = catalog.BookRecord{
		Title:           draft["title"],
		PublishedYear:   year,
		Description:     draft["description"],
		BookType:        draft["book_type"],
		CopiesAvailable: copies,
		AuthorID:        author,
	}
	return record, nil
}

// --------------------------------------------------------------------------
// Author Create / Edit
// --------------------------------------------------------------------------

// SaveAuthorCreate validates a create draft and posts it.
func (c *Coordinator) SaveAuthorCreate(draft map[string]string) ([]string, error) {
	record, err := parseAuthorDraft(draft)
	if err != nil {
		return nil, err
	}

	if err := c.store.Mutate("POST", "authors", catalog.AuthorPayload{Author: record}); err != nil {
		c.logger.Errorf("Creating author %q failed: %v", record.LastName, err)
		return nil, err
	}
	return []string{"authors", "books"}, nil
}

// SaveAuthorEdit validates an edit draft and puts it to the existing author.
func (c *Coordinator) SaveAuthorEdit(authorID string, draft map[string]string) ([]string, error) {
	record, err := parseAuthorDraft(draft)
	if err != nil {
		return nil, err
	}

	if err := c.store.Mutate("PUT", "authors/"+authorID, catalog.AuthorPayload{Author: record}); err != nil {
		c.logger.Errorf("Updating author %s failed: %v", authorID, err)
		return nil, err
	}
	return []string{"authors", "books"}, nil
}

func parseAuthorDraft(draft map[string]string) (catalog.AuthorRecord, error) {
	var record catalog.AuthorRecord

	if draft["first_name"] == "" && draft["last_name"] == "" {
		return record, NewValidationError("author needs a first or last name")
	}

	record = catalog.AuthorRecord{
		FirstName: draft["first_name"],
		LastName:  draft["last_name"],
		Biography: draft["biography"],
	}
	return record, nil
}
