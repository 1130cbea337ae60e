package view

import (
	"strconv"

	"github.com/shelfview/shelfview/datastore"
	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
	"github.com/shelfview/shelfview/lib/session"
)

// --------------------------------------------------------------------------
// Categories and Rows
// --------------------------------------------------------------------------

// Category selects which collection the view presents.
type Category string

const (
	CategoryBooks   Category = "books"
	CategoryAuthors Category = "authors"
)

// Row is one rendered line of the view. Cells line up with Headers(); the
// Can* flags tell the presentation layer which actions to offer.
type Row struct {
	Kind       catalog.Kind
	ID         string
	Cells      []string
	CanReserve bool
	CanEdit    bool
	CanDelete  bool
}

// AuthorRow pairs an author with its derived book count.
type AuthorRow struct {
	catalog.Author
	BookCount int
}

// Editable field schemas, in rendering order.
var (
	BookEditFields   = []string{"title", "published_year", "description", "book_type", "copies_available"}
	AuthorEditFields = []string{"first_name", "last_name", "biography"}
)

// --------------------------------------------------------------------------
// View Controller
// --------------------------------------------------------------------------

// Controller owns the whole view state: the fetched snapshots, the active
// category with its filter and sort state, the author selection and the edit
// session. It is not safe for concurrent use; drive it from one goroutine.
type Controller struct {
	store   datastore.IDataStore
	session session.ISessionContext
	coord   *Coordinator
	logger  logging.ILogger

	category         Category
	filters          FilterState
	sort             SortState
	selectedAuthorID string
	edit             *EditSession

	books   []catalog.Book
	authors []catalog.Author
}

// NewController creates a controller presenting the books category.
func NewController(store datastore.IDataStore, sess session.ISessionContext) *Controller {
	return &Controller{
		store:    store,
		session:  sess,
		coord:    NewCoordinator(store, sess),
		logger:   logging.CreateLogger("view/controller"),
		category: CategoryBooks,
		filters:  FilterState{},
		edit:     NewEditSession(BookEditFields),
	}
}

// Load performs the initial fetch of both base collections.
func (c *Controller) Load() error {
	return c.refresh("books", "authors")
}

// refresh refetches the named collections. On failure the last-known snapshot
// of that collection is kept and the first error is returned; a stale view
// beats an empty one.
func (c *Controller) refresh(keys ...string) error {
	var firstErr error
	for _, key := range keys {
		entities, err := c.store.Fetch(key, nil)
		if err != nil {
			c.logger.Errorf("Refresh of %s failed, keeping last snapshot: %v", key, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		switch key {
		case "books":
			c.books = catalog.BooksFromEntities(entities)
		case "authors":
			c.authors = catalog.AuthorsFromEntities(entities)
		}
	}
	return firstErr
}

// invalidateAndRefresh drops the cached snapshots of the given collections
// and refetches them.
func (c *Controller) invalidateAndRefresh(keys []string) error {
	for _, key := range keys {
		c.store.Invalidate(key)
	}
	return c.refresh(keys...)
}

// --------------------------------------------------------------------------
// View State
// --------------------------------------------------------------------------

// Category returns the active category.
func (c *Controller) Category() Category { return c.category }

// SetCategory switches the presented collection. Filter, sort and author
// selection are view-local state and reset with the switch; an open edit
// session is cancelled.
func (c *Controller) SetCategory(category Category) {
	if category == c.category {
		return
	}

	c.category = category
	c.filters = FilterState{}
	c.sort = SortState{}
	c.selectedAuthorID = ""
	if category == CategoryAuthors {
		c.edit = NewEditSession(AuthorEditFields)
	} else {
		c.edit = NewEditSession(BookEditFields)
	}
}

// SetFilter records the raw filter input of a column. "" clears it.
func (c *Controller) SetFilter(column, raw string) {
	c.filters.Set(column, raw)
}

// SetSort selects the sorted column and direction. An empty column restores
// fetch order.
func (c *Controller) SetSort(column string, direction Direction) {
	c.sort = SortState{Column: column, Direction: direction}
}

// SelectAuthor scopes the books category to one author. "" clears the scope.
func (c *Controller) SelectAuthor(authorID string) {
	c.selectedAuthorID = authorID
}

// SelectedAuthor returns the scoping author, if one is selected and loaded.
func (c *Controller) SelectedAuthor() (catalog.Author, bool) {
	if c.selectedAuthorID == "" {
		return catalog.Author{}, false
	}
	author, ok := catalog.Index(c.authors)[c.selectedAuthorID]
	return author, ok
}

// Edit exposes the edit session for rendering draft inputs.
func (c *Controller) Edit() *EditSession { return c.edit }

// --------------------------------------------------------------------------
// Rendering
// --------------------------------------------------------------------------

// Headers returns the column captions of the active category.
func (c *Controller) Headers() []string {
	if c.category == CategoryAuthors {
		return []string{"Name", "Biography", "Books"}
	}
	return []string{"Title", "Author", "Type", "Year", "Copies"}
}

// Rows runs the full pipeline (scope, join, filter, sort) over the current
// snapshots and renders the result.
func (c *Controller) Rows() []Row {
	if c.category == CategoryAuthors {
		return c.authorRows()
	}
	return c.bookRows()
}

func (c *Controller) bookRows() []Row {
	books := c.scopedBooks()
	joined := catalog.JoinBooks(books, catalog.Index(c.authors))

	filtered := Filter(joined.Books, c.filters, bookAccessors)
	sorted := Sort(filtered, c.sort.Column, c.sort.Direction, bookSortKeys)

	member := c.session.CurrentMemberID() != ""
	librarian := c.session.IsPrivilegedRole()

	rows := make([]Row, 0, len(sorted))
	for _, b := range sorted {
		rows = append(rows, Row{
			Kind: catalog.KindBook,
			ID:   b.ID,
			Cells: []string{
				b.Title,
				b.Author.FullName(),
				b.BookType,
				strconv.Itoa(b.PublishedYear),
				strconv.Itoa(b.CopiesAvailable),
			},
			CanReserve: member && b.CopiesAvailable > 0,
			CanEdit:    librarian,
			CanDelete:  librarian,
		})
	}
	return rows
}

func (c *Controller) authorRows() []Row {
	counts := catalog.JoinBooks(c.books, catalog.Index(c.authors)).BooksPerAuthor

	authorRows := make([]AuthorRow, 0, len(c.authors))
	for _, a := range c.authors {
		authorRows = append(authorRows, AuthorRow{Author: a, BookCount: counts[a.ID]})
	}

	filtered := Filter(authorRows, c.filters, authorAccessors)
	sorted := Sort(filtered, c.sort.Column, c.sort.Direction, authorSortKeys)

	librarian := c.session.IsPrivilegedRole()

	rows := make([]Row, 0, len(sorted))
	for _, a := range sorted {
		rows = append(rows, Row{
			Kind: catalog.KindAuthor,
			ID:   a.ID,
			Cells: []string{
				a.FullName(),
				a.Biography,
				strconv.Itoa(a.BookCount),
			},
			CanEdit:   librarian,
			CanDelete: librarian,
		})
	}
	return rows
}

// scopedBooks narrows the book snapshot to the selected author's books. The
// scope uses the author's inverse relation, so a book shows up as soon as the
// backend links it. An author id that does not resolve scopes to nothing, not
// to the whole catalog.
func (c *Controller) scopedBooks() []catalog.Book {
	if c.selectedAuthorID == "" {
		return c.books
	}

	author, ok := c.SelectedAuthor()
	if !ok {
		return nil
	}

	wanted := make(map[string]bool, len(author.BookIDs))
	for _, id := range author.BookIDs {
		wanted[id] = true
	}

	books := make([]catalog.Book, 0, len(author.BookIDs))
	for _, b := range c.books {
		if wanted[b.ID] {
			books = append(books, b)
		}
	}
	return books
}

// --------------------------------------------------------------------------
// Column Schemas
// --------------------------------------------------------------------------

var bookAccessors = map[string]Accessor[catalog.ResolvedBook]{
	"title":       {Kind: MatchContains, Text: func(b catalog.ResolvedBook) string { return b.Title }},
	"author":      {Kind: MatchContains, Text: func(b catalog.ResolvedBook) string { return b.AuthorName() }},
	"description": {Kind: MatchContains, Text: func(b catalog.ResolvedBook) string { return b.Description }},
	"book_type":   {Kind: MatchExact, Text: func(b catalog.ResolvedBook) string { return b.BookType }},
	"year":        {Kind: MatchNumeric, Num: func(b catalog.ResolvedBook) int { return b.PublishedYear }},
	"available":   {Kind: MatchBool, Bool: func(b catalog.ResolvedBook) bool { return b.CopiesAvailable > 0 }},
}

var bookSortKeys = map[string]SortKey[catalog.ResolvedBook]{
	"title":  {Text: func(b catalog.ResolvedBook) string { return b.Title }},
	"author": {Text: func(b catalog.ResolvedBook) string { return b.AuthorName() }},
	"type":   {Text: func(b catalog.ResolvedBook) string { return b.BookType }},
	"year":   {Num: func(b catalog.ResolvedBook) int { return b.PublishedYear }},
	"copies": {Num: func(b catalog.ResolvedBook) int { return b.CopiesAvailable }},
}

var authorAccessors = map[string]Accessor[AuthorRow]{
	"name":      {Kind: MatchContains, Text: func(a AuthorRow) string { return a.FullName() }},
	"biography": {Kind: MatchContains, Text: func(a AuthorRow) string { return a.Biography }},
	"books":     {Kind: MatchNumeric, Num: func(a AuthorRow) int { return a.BookCount }},
}

var authorSortKeys = map[string]SortKey[AuthorRow]{
	"name":  {Text: func(a AuthorRow) string { return a.FullName() }},
	"books": {Num: func(a AuthorRow) int { return a.BookCount }},
}

// --------------------------------------------------------------------------
// Actions
// --------------------------------------------------------------------------

// Reserve reserves the book with the given id for the current member. The
// copy count in the snapshot is decremented optimistically; nothing is
// refetched on success.
func (c *Controller) Reserve(bookID string) error {
	for i := range c.books {
		if c.books[i].ID == bookID {
			_, err := c.coord.Reserve(&c.books[i])
			return err
		}
	}
	return NewValidationError("unknown book %q", bookID)
}

// Borrow opens a borrowing for the given member and refetches what went stale.
func (c *Controller) Borrow(bookID, memberID string) error {
	stale, err := c.coord.Borrow(bookID, memberID)
	if err != nil {
		return err
	}
	return c.invalidateAndRefresh(stale)
}

// Members exposes the member list for the borrow dialog.
func (c *Controller) Members() ([]catalog.Member, error) {
	return c.coord.Members()
}

// DeleteRow deletes a row and refetches what went stale.
func (c *Controller) DeleteRow(kind catalog.Kind, id string) error {
	stale, err := c.coord.Delete(kind, id)
	if err != nil {
		return err
	}
	return c.invalidateAndRefresh(stale)
}

// StartCreate opens a create session in the active category. Creating a book
// requires an author scope to attach it to.
func (c *Controller) StartCreate() error {
	if c.category == CategoryBooks && c.selectedAuthorID == "" {
		return NewValidationError("select an author before creating a book")
	}
	if !c.edit.StartCreate() {
		return NewValidationError("another row is already being edited")
	}
	return nil
}

// StartEdit opens an edit session for the given row, seeded from its
// committed values.
func (c *Controller) StartEdit(rowID string) error {
	current, err := c.committedFields(rowID)
	if err != nil {
		return err
	}
	if !c.edit.StartEdit(rowID, current) {
		return NewValidationError("another row is already being edited")
	}
	return nil
}

// UpdateField forwards one draft change to the edit session.
func (c *Controller) UpdateField(key, value string) error {
	return c.edit.UpdateField(key, value)
}

// CancelEdit discards the draft.
func (c *Controller) CancelEdit() {
	c.edit.Cancel()
}

// CommitEdit validates and saves the draft. On success the session is cleared
// and the stale collections refetched; on failure the draft stays so the
// input can be corrected.
func (c *Controller) CommitEdit() error {
	draft := c.edit.Draft()

	var stale []string
	var err error
	switch {
	case c.category == CategoryAuthors && c.edit.Mode() == ModeCreate:
		stale, err = c.coord.SaveAuthorCreate(draft)
	case c.category == CategoryAuthors && c.edit.Mode() == ModeEdit:
		stale, err = c.coord.SaveAuthorEdit(c.edit.TargetID(), draft)
	case c.edit.Mode() == ModeCreate:
		stale, err = c.coord.SaveBookCreate(draft, c.selectedAuthorID)
	case c.edit.Mode() == ModeEdit:
		stale, err = c.coord.SaveBookEdit(c.edit.TargetID(), draft, c.editedBookAuthor())
	default:
		return NewValidationError("no edit session in progress")
	}
	if err != nil {
		return err
	}

	c.edit.Clear()
	return c.invalidateAndRefresh(stale)
}

// committedFields stringifies a row's committed values as the edit seed.
func (c *Controller) committedFields(rowID string) (map[string]string, error) {
	if c.category == CategoryAuthors {
		author, ok := catalog.Index(c.authors)[rowID]
		if !ok {
			return nil, NewValidationError("unknown author %q", rowID)
		}
		return map[string]string{
			"first_name": author.FirstName,
			"last_name":  author.LastName,
			"biography":  author.Biography,
		}, nil
	}

	book, ok := catalog.Index(c.books)[rowID]
	if !ok {
		return nil, NewValidationError("unknown book %q", rowID)
	}
	return map[string]string{
		"title":            book.Title,
		"published_year":   strconv.Itoa(book.PublishedYear),
		"description":      book.Description,
		"book_type":        book.BookType,
		"copies_available": strconv.Itoa(book.CopiesAvailable),
	}, nil
}

// editedBookAuthor resolves the author a book edit is saved against: the
// selected scope if any, else the book's current author.
func (c *Controller) editedBookAuthor() string {
	if c.selectedAuthorID != "" {
		return c.selectedAuthorID
	}
	if book, ok := catalog.Index(c.books)[c.edit.TargetID()]; ok {
		return book.AuthorID
	}
	return ""
}

// --------------------------------------------------------------------------
// Circulation View
// --------------------------------------------------------------------------

// CirculationHeaders captions the merged reservations/borrowings view.
var CirculationHeaders = []string{"Type", "Book", "Member", "Start", "End"}

// Circulation fetches and merges the circulation collections: reservations
// first, then borrowings, each in fetch order. A borrowing's end column shows
// the return date once returned, the due date while out.
func (c *Controller) Circulation() ([]Row, error) {
	reservations, err := c.store.Fetch("reservations", nil)
	if err != nil {
		return nil, err
	}
	borrowings, err := c.store.Fetch("borrowings", nil)
	if err != nil {
		return nil, err
	}

	librarian := c.session.IsPrivilegedRole()

	rows := make([]Row, 0, len(reservations)+len(borrowings))
	for _, e := range reservations {
		r := catalog.ReservationFromEntity(e)
		rows = append(rows, Row{
			Kind:      catalog.KindReservation,
			ID:        r.ID,
			Cells:     []string{"reservation", r.BookID, r.MemberID, r.ReservationDate, r.ExpirationDate},
			CanDelete: librarian,
		})
	}
	for _, e := range borrowings {
		b := catalog.BorrowingFromEntity(e)
		end := b.DueDate
		if b.ReturnDate != nil {
			end = *b.ReturnDate
		}
		rows = append(rows, Row{
			Kind:  catalog.KindBorrowing,
			ID:    b.ID,
			Cells: []string{"borrowing", b.BookID, b.MemberID, b.BorrowDate, end},
		})
	}
	return rows, nil
}
