package catalog

import "strings"

// Author is the typed projection of an author entity. BookIDs is the inverse
// of Book.AuthorID as reported by the backend; for every book referencing
// this author the backend keeps that book's id in the relation.
type Author struct {
	ID        string
	FirstName string
	LastName  string
	Biography string
	BookIDs   []string
}

// UnknownAuthor is the sentinel substituted for a dangling author reference.
// A reference may dangle simply because the author collection has not loaded
// yet, so this is a display concern, not an error.
var UnknownAuthor = Author{FirstName: "Unknown"}

// EntityID implements Identified.
func (a Author) EntityID() string { return a.ID }

// FullName returns "first last" with missing parts trimmed away.
func (a Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// AuthorFromEntity projects a generic entity onto the typed view.
func AuthorFromEntity(e Entity) Author {
	return Author{
		ID:        e.ID,
		FirstName: e.StringAttr("first_name"),
		LastName:  e.StringAttr("last_name"),
		Biography: e.StringAttr("biography"),
		BookIDs:   e.RelatedIDs("books"),
	}
}

// AuthorsFromEntities projects a fetched collection, skipping foreign kinds.
func AuthorsFromEntities(entities []Entity) []Author {
	authors := make([]Author, 0, len(entities))
	for _, e := range entities {
		if e.Kind != KindAuthor {
			continue
		}
		authors = append(authors, AuthorFromEntity(e))
	}
	return authors
}

// AuthorRecord is the create/update shape emitted to the backend.
type AuthorRecord struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Biography string `json:"biography"`
}

// AuthorPayload wraps a record the way the backend expects mutation bodies.
type AuthorPayload struct {
	Author AuthorRecord `json:"author"`
}
