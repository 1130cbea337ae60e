package devserver

import (
	"sort"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/session"
)

// --------------------------------------------------------------------------
// Row Types
// --------------------------------------------------------------------------

type bookRow struct {
	ID              int
	Title           string
	PublishedYear   int
	Description     string
	BookType        string
	CopiesAvailable int
	AuthorID        int
}

type authorRow struct {
	ID        int
	FirstName string
	LastName  string
	Biography string
}

type reservationRow struct {
	ID              int
	ReservationDate string
	ExpirationDate  string
	UserID          int
	BookID          int
}

type borrowingRow struct {
	ID         int
	BorrowDate string
	DueDate    string
	ReturnDate *string
	UserID     int
	BookID     int
}

type memberRow struct {
	ID    int
	Name  string
	Email string
}

type userRow struct {
	ID           int
	Username     string
	PasswordHash []byte
	Role         string
}

// --------------------------------------------------------------------------
// Dataset
// --------------------------------------------------------------------------

// dataset is the whole in-memory state. Access is guarded by the server's
// mutex; ids grow monotonically and are never reused.
type dataset struct {
	books        map[int]*bookRow
	authors      map[int]*authorRow
	reservations map[int]*reservationRow
	borrowings   map[int]*borrowingRow
	members      map[int]*memberRow
	users        map[string]*userRow
	nextID       int
}

func (d *dataset) allocID() int {
	d.nextID++
	return d.nextID
}

// seedDataset builds the fixture state every fresh server starts with.
func seedDataset() *dataset {
	d := &dataset{
		books:        map[int]*bookRow{},
		authors:      map[int]*authorRow{},
		reservations: map[int]*reservationRow{},
		borrowings:   map[int]*borrowingRow{},
		members:      map[int]*memberRow{},
		users:        map[string]*userRow{},
		nextID:       100,
	}

	d.authors[1] = &authorRow{ID: 1, FirstName: "Frank", LastName: "Herbert", Biography: "Science fiction author."}
	d.authors[2] = &authorRow{ID: 2, FirstName: "Jane", LastName: "Austen", Biography: "Novelist of manners."}

	d.books[1] = &bookRow{ID: 1, Title: "Dune", PublishedYear: 1965, Description: "Desert planet.", BookType: "scifi", CopiesAvailable: 3, AuthorID: 1}
	d.books[2] = &bookRow{ID: 2, Title: "Dune Messiah", PublishedYear: 1969, Description: "The sequel.", BookType: "scifi", CopiesAvailable: 1, AuthorID: 1}
	d.books[3] = &bookRow{ID: 3, Title: "Emma", PublishedYear: 1815, Description: "Matchmaking gone wrong.", BookType: "romance", CopiesAvailable: 2, AuthorID: 2}

	d.members[1] = &memberRow{ID: 1, Name: "Sam Stacks", Email: "sam@shelfview.dev"}
	d.members[2] = &memberRow{ID: 2, Name: "Robin Reader", Email: "robin@shelfview.dev"}

	d.users["librarian"] = &userRow{ID: 1, Username: "librarian", PasswordHash: mustHash("stacks"), Role: session.RoleLibrarian}
	d.users["reader"] = &userRow{ID: 2, Username: "reader", PasswordHash: mustHash("card"), Role: "Member"}

	return d
}

func mustHash(password string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// --------------------------------------------------------------------------
// Entity Rendering
// --------------------------------------------------------------------------

func (b *bookRow) entity() catalog.Entity {
	return catalog.Entity{
		ID:   strconv.Itoa(b.ID),
		Kind: catalog.KindBook,
		Attributes: map[string]interface{}{
			"title":            b.Title,
			"published_year":   b.PublishedYear,
			"description":      b.Description,
			"book_type":        b.BookType,
			"copies_available": b.CopiesAvailable,
		},
		Relationships: map[string]catalog.RelationRef{
			"author": {One: &catalog.EntityRef{ID: strconv.Itoa(b.AuthorID), Kind: catalog.KindAuthor}},
		},
	}
}

// entity renders the author with its inverse book relation. The relation is
// derived from the books map on every render, so it cannot drift.
func (a *authorRow) entity(d *dataset) catalog.Entity {
	refs := make([]catalog.EntityRef, 0)
	for _, id := range sortedKeys(d.books) {
		if d.books[id].AuthorID == a.ID {
			refs = append(refs, catalog.EntityRef{ID: strconv.Itoa(id), Kind: catalog.KindBook})
		}
	}

	return catalog.Entity{
		ID:   strconv.Itoa(a.ID),
		Kind: catalog.KindAuthor,
		Attributes: map[string]interface{}{
			"first_name": a.FirstName,
			"last_name":  a.LastName,
			"biography":  a.Biography,
		},
		Relationships: map[string]catalog.RelationRef{
			"books": {Many: refs},
		},
	}
}

func (r *reservationRow) entity() catalog.Entity {
	return catalog.Entity{
		ID:   strconv.Itoa(r.ID),
		Kind: catalog.KindReservation,
		Attributes: map[string]interface{}{
			"reservation_date": r.ReservationDate,
			"expiration_date":  r.ExpirationDate,
		},
		Relationships: map[string]catalog.RelationRef{
			"book":   {One: &catalog.EntityRef{ID: strconv.Itoa(r.BookID), Kind: catalog.KindBook}},
			"member": {One: &catalog.EntityRef{ID: strconv.Itoa(r.UserID), Kind: catalog.KindMember}},
		},
	}
}

func (b *borrowingRow) entity() catalog.Entity {
	attributes := map[string]interface{}{
		"borrow_date": b.BorrowDate,
		"due_date":    b.DueDate,
	}
	if b.ReturnDate != nil {
		attributes["return_date"] = *b.ReturnDate
	}

	return catalog.Entity{
		ID:         strconv.Itoa(b.ID),
		Kind:       catalog.KindBorrowing,
		Attributes: attributes,
		Relationships: map[string]catalog.RelationRef{
			"book":   {One: &catalog.EntityRef{ID: strconv.Itoa(b.BookID), Kind: catalog.KindBook}},
			"member": {One: &catalog.EntityRef{ID: strconv.Itoa(b.UserID), Kind: catalog.KindMember}},
		},
	}
}

func (m *memberRow) entity() catalog.Entity {
	return catalog.Entity{
		ID:   strconv.Itoa(m.ID),
		Kind: catalog.KindMember,
		Attributes: map[string]interface{}{
			"name":  m.Name,
			"email": m.Email,
		},
	}
}

// sortedKeys returns the map keys in ascending order so collection documents
// render deterministically.
func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
