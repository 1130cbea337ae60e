package devserver

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfview/shelfview/lib/catalog"
	"github.com/shelfview/shelfview/lib/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// --------------------------------------------------------------------------
// Server
// --------------------------------------------------------------------------

// Server serves the fixture backend. Every instance starts from the same
// seeded dataset; state lives only as long as the process.
type Server struct {
	mu     sync.Mutex
	data   *dataset
	secret []byte
	logger logging.ILogger
	router *mux.Router
}

// New creates a seeded fixture server. secret signs the issued bearer tokens.
func New(secret string) *Server {
	s := &Server{
		data:   seedDataset(),
		secret: []byte(secret),
		logger: logging.CreateLogger("devserver"),
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server on the given address until it fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Infof("Fixture backend listening on %s", addr)
	return http.ListenAndServe(addr, s)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.countRequests)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	}).Methods(http.MethodGet)

	r.HandleFunc("/books", s.requireAuth(s.listBooks)).Methods(http.MethodGet)
	r.HandleFunc("/books", s.requireAuth(s.createBook)).Methods(http.MethodPost)
	r.HandleFunc("/books/{id}", s.requireAuth(s.updateBook)).Methods(http.MethodPut)
	r.HandleFunc("/books/{id}", s.requireAuth(s.deleteBook)).Methods(http.MethodDelete)

	r.HandleFunc("/authors", s.requireAuth(s.listAuthors)).Methods(http.MethodGet)
	r.HandleFunc("/authors", s.requireAuth(s.createAuthor)).Methods(http.MethodPost)
	r.HandleFunc("/authors/{id}", s.requireAuth(s.updateAuthor)).Methods(http.MethodPut)
	r.HandleFunc("/authors/{id}", s.requireAuth(s.deleteAuthor)).Methods(http.MethodDelete)

	r.HandleFunc("/members", s.requireAuth(s.listMembers)).Methods(http.MethodGet)

	r.HandleFunc("/reservations", s.requireAuth(s.listReservations)).Methods(http.MethodGet)
	r.HandleFunc("/reservations", s.requireAuth(s.createReservation)).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}", s.requireAuth(s.deleteReservation)).Methods(http.MethodDelete)

	r.HandleFunc("/borrowings", s.requireAuth(s.listBorrowings)).Methods(http.MethodGet)
	r.HandleFunc("/borrowings", s.requireAuth(s.createBorrowing)).Methods(http.MethodPost)

	return r
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.GetOrCreateCounter(fmt.Sprintf(`devserver_requests_total{method=%q}`, r.Method)).Inc()
		next.ServeHTTP(w, r)
	})
}

// --------------------------------------------------------------------------
// Response Helpers
// --------------------------------------------------------------------------

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) writeDocument(w http.ResponseWriter, entities []catalog.Entity) {
	body, err := catalog.EncodeDocument(entities)
	if err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		s.logger.Errorf("Failed to write response: %v", err)
	}
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

// --------------------------------------------------------------------------
// Book Handlers
// --------------------------------------------------------------------------

func (s *Server) listBooks(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entities := make([]catalog.Entity, 0, len(s.data.books))
	for _, id := range sortedKeys(s.data.books) {
		entities = append(entities, s.data.books[id].entity())
	}
	s.mu.Unlock()

	s.writeDocument(w, entities)
}

func (s *Server) createBook(w http.ResponseWriter, r *http.Request) {
	var payload catalog.BookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed book payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.authors[payload.Book.AuthorID]; !ok {
		http.Error(w, "unknown author", http.StatusUnprocessableEntity)
		return
	}

	id := s.data.allocID()
	s.data.books[id] = &bookRow{
		ID:              id,
		Title:           payload.Book.Title,
		PublishedYear:   payload.Book.PublishedYear,
		Description:     payload.Book.Description,
		BookType:        payload.Book.BookType,
		CopiesAvailable: payload.Book.CopiesAvailable,
		AuthorID:        payload.Book.AuthorID,
	}

	s.logger.Infof("Created book %d (%s)", id, payload.Book.Title)
	s.writeDocument(w, []catalog.Entity{s.data.books[id].entity()})
}

func (s *Server) updateBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var payload catalog.BookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed book payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.data.books[id]
	if !ok {
		http.Error(w, "unknown book", http.StatusNotFound)
		return
	}
	if _, ok := s.data.authors[payload.Book.AuthorID]; !ok {
		http.Error(w, "unknown author", http.StatusUnprocessableEntity)
		return
	}

	book.Title = payload.Book.Title
	book.PublishedYear = payload.Book.PublishedYear
	book.Description = payload.Book.Description
	book.BookType = payload.Book.BookType
	book.CopiesAvailable = payload.Book.CopiesAvailable
	book.AuthorID = payload.Book.AuthorID

	s.writeDocument(w, []catalog.Entity{book.entity()})
}

func (s *Server) deleteBook(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.books[id]; !ok {
		http.Error(w, "unknown book", http.StatusNotFound)
		return
	}
	delete(s.data.books, id)
	s.logger.Infof("Deleted book %d", id)
	w.WriteHeader(http.StatusNoContent)
}

// --------------------------------------------------------------------------
// Author Handlers
// --------------------------------------------------------------------------

func (s *Server) listAuthors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entities := make([]catalog.Entity, 0, len(s.data.authors))
	for _, id := range sortedKeys(s.data.authors) {
		entities = append(entities, s.data.authors[id].entity(s.data))
	}
	s.mu.Unlock()

	s.writeDocument(w, entities)
}

func (s *Server) createAuthor(w http.ResponseWriter, r *http.Request) {
	var payload catalog.AuthorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed author payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.data.allocID()
	s.data.authors[id] = &authorRow{
		ID:        id,
		FirstName: payload.Author.FirstName,
		LastName:  payload.Author.LastName,
		Biography: payload.Author.Biography,
	}

	s.logger.Infof("Created author %d (%s %s)", id, payload.Author.FirstName, payload.Author.LastName)
	s.writeDocument(w, []catalog.Entity{s.data.authors[id].entity(s.data)})
}

func (s *Server) updateAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var payload catalog.AuthorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed author payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	author, ok := s.data.authors[id]
	if !ok {
		http.Error(w, "unknown author", http.StatusNotFound)
		return
	}

	author.FirstName = payload.Author.FirstName
	author.LastName = payload.Author.LastName
	author.Biography = payload.Author.Biography

	s.writeDocument(w, []catalog.Entity{author.entity(s.data)})
}

// deleteAuthor removes the author and every book attached to it, matching
// the dependent-destroy behavior of the real backend.
func (s *Server) deleteAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.authors[id]; !ok {
		http.Error(w, "unknown author", http.StatusNotFound)
		return
	}

	delete(s.data.authors, id)
	for bookID, book := range s.data.books {
		if book.AuthorID == id {
			delete(s.data.books, bookID)
		}
	}

	s.logger.Infof("Deleted author %d and their books", id)
	w.WriteHeader(http.StatusNoContent)
}

// --------------------------------------------------------------------------
// Member Handlers
// --------------------------------------------------------------------------

func (s *Server) listMembers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entities := make([]catalog.Entity, 0, len(s.data.members))
	for _, id := range sortedKeys(s.data.members) {
		entities = append(entities, s.data.members[id].entity())
	}
	s.mu.Unlock()

	s.writeDocument(w, entities)
}

// --------------------------------------------------------------------------
// Circulation Handlers
// --------------------------------------------------------------------------

func (s *Server) listReservations(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entities := make([]catalog.Entity, 0, len(s.data.reservations))
	for _, id := range sortedKeys(s.data.reservations) {
		entities = append(entities, s.data.reservations[id].entity())
	}
	s.mu.Unlock()

	s.writeDocument(w, entities)
}

func (s *Server) createReservation(w http.ResponseWriter, r *http.Request) {
	var payload catalog.ReservationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed reservation payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.data.books[payload.Reservation.BookID]
	if !ok {
		http.Error(w, "unknown book", http.StatusUnprocessableEntity)
		return
	}
	if book.CopiesAvailable <= 0 {
		http.Error(w, "no copies available", http.StatusUnprocessableEntity)
		return
	}
	book.CopiesAvailable--

	id := s.data.allocID()
	s.data.reservations[id] = &reservationRow{
		ID:              id,
		ReservationDate: payload.Reservation.ReservationDate,
		ExpirationDate:  payload.Reservation.ExpirationDate,
		UserID:          payload.Reservation.UserID,
		BookID:          payload.Reservation.BookID,
	}

	s.logger.Infof("Reserved book %d for member %d", payload.Reservation.BookID, payload.Reservation.UserID)
	s.writeDocument(w, []catalog.Entity{s.data.reservations[id].entity()})
}

// deleteReservation cancels the reservation and restocks the copy it held.
func (s *Server) deleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.data.reservations[id]
	if !ok {
		http.Error(w, "unknown reservation", http.StatusNotFound)
		return
	}

	delete(s.data.reservations, id)
	if book, ok := s.data.books[reservation.BookID]; ok {
		book.CopiesAvailable++
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listBorrowings(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	entities := make([]catalog.Entity, 0, len(s.data.borrowings))
	for _, id := range sortedKeys(s.data.borrowings) {
		entities = append(entities, s.data.borrowings[id].entity())
	}
	s.mu.Unlock()

	s.writeDocument(w, entities)
}

func (s *Server) createBorrowing(w http.ResponseWriter, r *http.Request) {
	var payload catalog.BorrowingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed borrowing payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.data.books[payload.Borrowing.BookID]
	if !ok {
		http.Error(w, "unknown book", http.StatusUnprocessableEntity)
		return
	}
	if book.CopiesAvailable <= 0 {
		http.Error(w, "no copies available", http.StatusUnprocessableEntity)
		return
	}
	book.CopiesAvailable--

	id := s.data.allocID()
	s.data.borrowings[id] = &borrowingRow{
		ID:         id,
		BorrowDate: payload.Borrowing.BorrowDate,
		DueDate:    payload.Borrowing.DueDate,
		ReturnDate: payload.Borrowing.ReturnDate,
		UserID:     payload.Borrowing.UserID,
		BookID:     payload.Borrowing.BookID,
	}

	s.logger.Infof("Opened borrowing of book %d for member %d", payload.Borrowing.BookID, payload.Borrowing.UserID)
	s.writeDocument(w, []catalog.Entity{s.data.borrowings[id].entity()})
}
