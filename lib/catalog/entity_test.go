package catalog

import "testing"

const bookDocument = `{
	"data": [
		{
			"id": "1",
			"type": "book",
			"attributes": {
				"title": "Dune",
				"published_year": 1965,
				"description": "Desert planet",
				"book_type": "scifi",
				"copies_available": 2
			},
			"relationships": {
				"author": {"data": {"id": "10", "type": "author"}}
			}
		},
		{
			"id": "2",
			"type": "book",
			"attributes": {"title": "Orphan"},
			"relationships": {
				"author": {"data": null}
			}
		}
	]
}`

const authorDocument = `{
	"data": [
		{
			"id": "10",
			"type": "author",
			"attributes": {"first_name": "Frank", "last_name": "Herbert"},
			"relationships": {
				"books": {"data": [{"id": "1", "type": "book"}, {"id": "3", "type": "book"}]}
			}
		}
	]
}`

func TestDecodeDocumentBooks(t *testing.T) {
	entities, err := DecodeDocument([]byte(bookDocument))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(entities) != 2 {
		t.Fatalf("decoded %d entities, want 2", len(entities))
	}

	book := BookFromEntity(entities[0])
	if book.Title != "Dune" || book.PublishedYear != 1965 || book.CopiesAvailable != 2 {
		t.Errorf("book attributes not projected: %+v", book)
	}
	if book.AuthorID != "10" {
		t.Errorf("to-one relation id = %q, want 10", book.AuthorID)
	}

	orphan := BookFromEntity(entities[1])
	if orphan.AuthorID != "" {
		t.Errorf("null relation id = %q, want empty", orphan.AuthorID)
	}
	if orphan.PublishedYear != 0 {
		t.Errorf("absent numeric attribute = %d, want 0", orphan.PublishedYear)
	}
}

func TestDecodeDocumentToManyRelation(t *testing.T) {
	entities, err := DecodeDocument([]byte(authorDocument))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	author := AuthorFromEntity(entities[0])
	if author.FullName() != "Frank Herbert" {
		t.Errorf("full name = %q", author.FullName())
	}
	if len(author.BookIDs) != 2 || author.BookIDs[0] != "1" || author.BookIDs[1] != "3" {
		t.Errorf("to-many relation ids = %v, want [1 3]", author.BookIDs)
	}
}

func TestDecodeDocumentMalformed(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{"data": "nope"`)); err == nil {
		t.Error("malformed body must fail to decode")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entities, err := DecodeDocument([]byte(authorDocument))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	encoded, err := EncodeDocument(entities)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	again, err := DecodeDocument(encoded)
	if err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if len(again) != 1 || len(again[0].RelatedIDs("books")) != 2 {
		t.Errorf("relations lost in round trip: %+v", again)
	}
}

func TestIndexLastSeenWins(t *testing.T) {
	books := []Book{
		{ID: "1", Title: "old"},
		{ID: "2", Title: "other"},
		{ID: "1", Title: "new"},
	}

	index := Index(books)
	if len(index) != 2 {
		t.Fatalf("index has %d entries, want 2", len(index))
	}
	if index["1"].Title != "new" {
		t.Errorf("duplicate id resolved to %q, want the later row", index["1"].Title)
	}
}

func TestKindCollection(t *testing.T) {
	if got := KindBook.Collection(); got != "books" {
		t.Errorf("book collection = %q", got)
	}
	if got := KindAuthor.Collection(); got != "authors" {
		t.Errorf("author collection = %q", got)
	}
}

func TestFullNameTrimsMissingParts(t *testing.T) {
	if got := (Author{FirstName: "Frank"}).FullName(); got != "Frank" {
		t.Errorf("first-only name = %q", got)
	}
	if got := (Author{LastName: "Herbert"}).FullName(); got != "Herbert" {
		t.Errorf("last-only name = %q", got)
	}
	if got := UnknownAuthor.FullName(); got != "Unknown" {
		t.Errorf("unknown sentinel name = %q", got)
	}
}
