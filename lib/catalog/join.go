package catalog

// ResolvedBook is a book row with its author reference resolved.
type ResolvedBook struct {
	Book
	Author         Author
	AuthorResolved bool
}

// AuthorName returns the resolved author's full name, or "" when the
// reference is still unresolved. Used as the sort key of the author column.
func (r ResolvedBook) AuthorName() string {
	if !r.AuthorResolved {
		return ""
	}
	return r.Author.FullName()
}

// JoinResult is the output of JoinBooks.
type JoinResult struct {
	Books []ResolvedBook
	// BooksPerAuthor counts books per raw author id from the book
	// relationships, independent of whether the id resolves. The aggregate
	// stays correct even while the author fetch is still pending.
	BooksPerAuthor map[string]int
}

// JoinBooks resolves each book's author reference via the author index and
// derives the per-author book count. Unresolvable references (dangling id or
// author collection not yet loaded) get the Unknown sentinel rather than
// failing; the collections are fetched independently and may arrive in any
// order. The function is pure and idempotent; callers recompute it whenever
// either input snapshot changes.
func JoinBooks(books []Book, authors map[string]Author) JoinResult {
	result := JoinResult{
		Books:          make([]ResolvedBook, 0, len(books)),
		BooksPerAuthor: make(map[string]int),
	}

	for _, book := range books {
		row := ResolvedBook{Book: book, Author: UnknownAuthor}

		if book.AuthorID != "" {
			result.BooksPerAuthor[book.AuthorID]++
			if author, ok := authors[book.AuthorID]; ok {
				row.Author = author
				row.AuthorResolved = true
			}
		}

		result.Books = append(result.Books, row)
	}

	return result
}
