package catalog

import "time"

// LoanPeriodDays is the span of both reservations and borrowings.
const LoanPeriodDays = 14

// dateLayout is the ISO date format the backend exchanges.
const dateLayout = "2006-01-02"

// LoanWindow returns the start and end dates of a loan opened today.
func LoanWindow(today time.Time) (start, end string) {
	return today.Format(dateLayout), today.AddDate(0, 0, LoanPeriodDays).Format(dateLayout)
}

// --------------------------------------------------------------------------
// Typed Views
// --------------------------------------------------------------------------

// Reservation is the typed projection of a reservation entity.
type Reservation struct {
	ID              string
	BookID          string
	MemberID        string
	ReservationDate string
	ExpirationDate  string
}

// EntityID implements Identified.
func (r Reservation) EntityID() string { return r.ID }

// ReservationFromEntity projects a generic entity onto the typed view.
func ReservationFromEntity(e Entity) Reservation {
	return Reservation{
		ID:              e.ID,
		BookID:          e.RelatedID("book"),
		MemberID:        e.RelatedID("member"),
		ReservationDate: e.StringAttr("reservation_date"),
		ExpirationDate:  e.StringAttr("expiration_date"),
	}
}

// Borrowing is the typed projection of a borrowing entity. ReturnDate is nil
// while the book is still out.
type Borrowing struct {
	ID         string
	BookID     string
	MemberID   string
	BorrowDate string
	DueDate    string
	ReturnDate *string
}

// EntityID implements Identified.
func (b Borrowing) EntityID() string { return b.ID }

// BorrowingFromEntity projects a generic entity onto the typed view.
func BorrowingFromEntity(e Entity) Borrowing {
	return Borrowing{
		ID:         e.ID,
		BookID:     e.RelatedID("book"),
		MemberID:   e.RelatedID("member"),
		BorrowDate: e.StringAttr("borrow_date"),
		DueDate:    e.StringAttr("due_date"),
		ReturnDate: e.NullableStringAttr("return_date"),
	}
}

// Member is the typed projection of a member entity.
type Member struct {
	ID    string
	Name  string
	Email string
}

// EntityID implements Identified.
func (m Member) EntityID() string { return m.ID }

// MemberFromEntity projects a generic entity onto the typed view.
func MemberFromEntity(e Entity) Member {
	return Member{
		ID:    e.ID,
		Name:  e.StringAttr("name"),
		Email: e.StringAttr("email"),
	}
}

// MembersFromEntities projects a fetched collection, skipping foreign kinds.
func MembersFromEntities(entities []Entity) []Member {
	members := make([]Member, 0, len(entities))
	for _, e := range entities {
		if e.Kind != KindMember {
			continue
		}
		members = append(members, MemberFromEntity(e))
	}
	return members
}

// --------------------------------------------------------------------------
// Outbound Records
// --------------------------------------------------------------------------

// ReservationRecord is the create shape emitted to the backend.
type ReservationRecord struct {
	ReservationDate string `json:"reservation_date"`
	ExpirationDate  string `json:"expiration_date"`
	UserID          int    `json:"user_id"`
	BookID          int    `json:"book_id"`
}

// ReservationPayload wraps a record the way the backend expects mutation bodies.
type ReservationPayload struct {
	Reservation ReservationRecord `json:"reservation"`
}

// BorrowingRecord is the create shape emitted to the backend. ReturnDate is
// always null on creation.
type BorrowingRecord struct {
	BorrowDate string  `json:"borrow_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date"`
	UserID     int     `json:"user_id"`
	BookID     int     `json:"book_id"`
}

// BorrowingPayload wraps a record the way the backend expects mutation bodies.
type BorrowingPayload struct {
	Borrowing BorrowingRecord `json:"borrowing"`
}
