package catalog

import (
	"bytes"
	gojson "encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// --------------------------------------------------------------------------
// Entity Kinds
// --------------------------------------------------------------------------

// Kind identifies the collection an entity belongs to.
type Kind string

const (
	KindBook         Kind = "book"
	KindAuthor       Kind = "author"
	KindReservation  Kind = "reservation"
	KindBorrowing    Kind = "borrowing"
	KindMember       Kind = "member"
	KindNotification Kind = "notification"
)

// Collection returns the collection name entities of this kind are fetched from.
func (k Kind) Collection() string {
	return string(k) + "s"
}

// --------------------------------------------------------------------------
// Generic Entity Model
// --------------------------------------------------------------------------

// EntityRef is a reference to another entity by id and kind.
type EntityRef struct {
	ID   string `json:"id"`
	Kind Kind   `json:"type"`
}

// RelationRef is a named relationship of an entity. It holds either a single
// reference (to-one) or an ordered sequence of references (to-many).
type RelationRef struct {
	One  *EntityRef
	Many []EntityRef
}

// UnmarshalJSON decodes the wire shape {"data": {...}} or {"data": [...]}.
func (r *RelationRef) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data gojson.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	data := bytes.TrimSpace(raw.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '[' {
		return json.Unmarshal(data, &r.Many)
	}

	r.One = &EntityRef{}
	return json.Unmarshal(data, r.One)
}

// MarshalJSON encodes back into the wire shape.
func (r RelationRef) MarshalJSON() ([]byte, error) {
	if r.Many != nil {
		return json.Marshal(struct {
			Data []EntityRef `json:"data"`
		}{r.Many})
	}
	return json.Marshal(struct {
		Data *EntityRef `json:"data"`
	}{r.One})
}

// Entity is the generic record shape of every fetched collection.
type Entity struct {
	ID            string                 `json:"id"`
	Kind          Kind                   `json:"type"`
	Attributes    map[string]interface{} `json:"attributes"`
	Relationships map[string]RelationRef `json:"relationships"`
}

// EntityID implements Identified.
func (e Entity) EntityID() string { return e.ID }

// StringAttr returns the named attribute as a string, or "" if absent.
func (e Entity) StringAttr(name string) string {
	if v, ok := e.Attributes[name].(string); ok {
		return v
	}
	return ""
}

// NullableStringAttr returns the named attribute as a string pointer,
// or nil if the attribute is absent or null.
func (e Entity) NullableStringAttr(name string) *string {
	if v, ok := e.Attributes[name].(string); ok {
		return &v
	}
	return nil
}

// IntAttr returns the named attribute as an int, or 0 if absent.
// JSON numbers decode as float64, so both forms are accepted.
func (e Entity) IntAttr(name string) int {
	switch v := e.Attributes[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// RelatedID returns the id of a to-one relationship, or "" if unset.
func (e Entity) RelatedID(name string) string {
	if rel, ok := e.Relationships[name]; ok && rel.One != nil {
		return rel.One.ID
	}
	return ""
}

// RelatedIDs returns the ids of a to-many relationship in order.
func (e Entity) RelatedIDs(name string) []string {
	rel, ok := e.Relationships[name]
	if !ok || rel.Many == nil {
		return nil
	}
	ids := make([]string, len(rel.Many))
	for i, ref := range rel.Many {
		ids[i] = ref.ID
	}
	return ids
}

// --------------------------------------------------------------------------
// Document Codec
// --------------------------------------------------------------------------

// Document is the top-level wire shape of every collection fetch.
type Document struct {
	Data []Entity `json:"data"`
}

// DecodeDocument parses a fetched collection body.
func DecodeDocument(b []byte) ([]Entity, error) {
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("malformed collection document: %w", err)
	}
	return doc.Data, nil
}

// EncodeDocument renders entities as a collection document.
func EncodeDocument(entities []Entity) ([]byte, error) {
	return json.Marshal(Document{Data: entities})
}
