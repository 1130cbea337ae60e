package catalog

// --------------------------------------------------------------------------
// Book Types
// --------------------------------------------------------------------------

// BookTypes is the canonical closed set of book type tags. The same set
// backs both the filter options and the create/edit dropdown.
var BookTypes = []string{
	"fiction",
	"nonfiction",
	"fantasy",
	"scifi",
	"mystery",
	"romance",
	"horror",
	"historical",
	"biography",
	"self_help",
	"thriller",
	"poetry",
}

// IsBookType reports whether tag is one of the canonical book types.
func IsBookType(tag string) bool {
	for _, t := range BookTypes {
		if t == tag {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------
// Typed View
// --------------------------------------------------------------------------

// Book is the typed projection of a book entity.
type Book struct {
	ID              string
	Title           string
	Description     string
	PublishedYear   int
	BookType        string
	CopiesAvailable int
	AuthorID        string
}

// EntityID implements Identified.
func (b Book) EntityID() string { return b.ID }

// BookFromEntity projects a generic entity onto the typed view.
func BookFromEntity(e Entity) Book {
	return Book{
		ID:              e.ID,
		Title:           e.StringAttr("title"),
		Description:     e.StringAttr("description"),
		PublishedYear:   e.IntAttr("published_year"),
		BookType:        e.StringAttr("book_type"),
		CopiesAvailable: e.IntAttr("copies_available"),
		AuthorID:        e.RelatedID("author"),
	}
}

// BooksFromEntities projects a fetched collection, skipping foreign kinds.
func BooksFromEntities(entities []Entity) []Book {
	books := make([]Book, 0, len(entities))
	for _, e := range entities {
		if e.Kind != KindBook {
			continue
		}
		books = append(books, BookFromEntity(e))
	}
	return books
}

// --------------------------------------------------------------------------
// Outbound Record
// --------------------------------------------------------------------------

// BookRecord is the create/update shape emitted to the backend.
type BookRecord struct {
	Title           string `json:"title"`
	PublishedYear   int    `json:"published_year"`
	Description     string `json:"description"`
	BookType        string `json:"book_type"`
	CopiesAvailable int    `json:"copies_available"`
	AuthorID        int    `json:"author_id"`
}

// BookPayload wraps a record the way the backend expects mutation bodies.
type BookPayload struct {
	Book BookRecord `json:"book"`
}
