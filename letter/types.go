package letter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned for a field name outside the record shape.
	ErrUnknownField = errors.New("letter: unknown field")
	// ErrUnknownSpecItem is returned when a specification key was not part
	// of the record at construction time.
	ErrUnknownSpecItem = errors.New("letter: unknown specification item")
)

// OfferRecord is the content of one offer letter.
type OfferRecord struct {
	Location      string        `json:"location"`
	Date          string        `json:"date"`
	Recipient     string        `json:"recipient"`
	Subject       string        `json:"subject"`
	OfferSubject  string        `json:"offerSubject"`
	Price         string        `json:"price"`
	PriceInWords  string        `json:"priceInWords"`
	Signatory     string        `json:"signatory"`
	Specification Specification `json:"specification"`
}

// Field names a top-level text field of OfferRecord.
type Field int

const (
	FieldLocation Field = iota + 1
	FieldDate
	FieldRecipient
	FieldSubject
	FieldOfferSubject
	FieldPrice
	FieldPriceInWords
	FieldSignatory
)

var fieldNames = map[Field]string{
	FieldLocation:     "location",
	FieldDate:         "date",
	FieldRecipient:    "recipient",
	FieldSubject:      "subject",
	FieldOfferSubject: "offerSubject",
	FieldPrice:        "price",
	FieldPriceInWords: "priceInWords",
	FieldSignatory:    "signatory",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField maps a JSON field name to its Field.
func ParseField(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Set replaces one top-level field.
func (r *OfferRecord) Set(f Field, value string) error {
	switch f {
	case FieldLocation:
		r.Location = value
	case FieldDate:
		r.Date = value
	case FieldRecipient:
		r.Recipient = value
	case FieldSubject:
		r.Subject = value
	case FieldOfferSubject:
		r.OfferSubject = value
	case FieldPrice:
		r.Price = value
	case FieldPriceInWords:
		r.PriceInWords = value
	case FieldSignatory:
		r.Signatory = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return nil
}

// Get returns one top-level field.
func (r OfferRecord) Get(f Field) (string, error) {
	switch f {
	case FieldLocation:
		return r.Location, nil
	case FieldDate:
		return r.Date, nil
	case FieldRecipient:
		return r.Recipient, nil
	case FieldSubject:
		return r.Subject, nil
	case FieldOfferSubject:
		return r.OfferSubject, nil
	case FieldPrice:
		return r.Price, nil
	case FieldPriceInWords:
		return r.PriceInWords, nil
	case FieldSignatory:
		return r.Signatory, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
}

// SetSpec replaces the value of an existing specification item.
func (r *OfferRecord) SetSpec(key, value string) error {
	return r.Specification.Set(key, value)
}

// Clone returns a copy that shares no mutable state with r.
func (r OfferRecord) Clone() OfferRecord {
	out := r
	out.Specification = r.Specification.Clone()
	return out
}

// SpecItem is one row of the specification table.
type SpecItem struct {
	Key   string
	Value string
}

// Specification is an ordered key/value list. Its keys are fixed when it is
// built; only values change afterwards.
type Specification struct {
	items []SpecItem
}

// NewSpecification builds a specification from items in display order.
// Duplicate keys keep their first position and last value.
func NewSpecification(items ...SpecItem) Specification {
	s := Specification{items: make([]SpecItem, 0, len(items))}
	for _, it := range items {
		if i := s.index(it.Key); i >= 0 {
			s.items[i].Value = it.Value
			continue
		}
		s.items = append(s.items, it)
	}
	return s
}

func (s Specification) index(key string) int {
	for i, it := range s.items {
		if it.Key == key {
			return i
		}
	}
	return -1
}

// Len returns the number of items.
func (s Specification) Len() int { return len(s.items) }

// Items returns a copy of the items in order.
func (s Specification) Items() []SpecItem {
	out := make([]SpecItem, len(s.items))
	copy(out, s.items)
	return out
}

// Keys returns the keys in order.
func (s Specification) Keys() []string {
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.Key
	}
	return out
}

// Get returns the value for key.
func (s Specification) Get(key string) (string, bool) {
	if i := s.index(key); i >= 0 {
		return s.items[i].Value, true
	}
	return "", false
}

// Set replaces the value for an existing key.
func (s *Specification) Set(key, value string) error {
	i := s.index(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSpecItem, key)
	}
	s.items[i].Value = value
	return nil
}

// Clone returns an independent copy.
func (s Specification) Clone() Specification {
	return Specification{items: s.Items()}
}

// MarshalJSON writes the items as a JSON object in display order.
func (s Specification) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, it := range s.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(it.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(it.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the order of its keys.
func (s *Specification) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = Specification{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("letter: specification must be a JSON object")
	}
	var items []SpecItem
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("letter: specification key must be a string")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("letter: specification %q: %w", key, err)
		}
		items = append(items, SpecItem{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = NewSpecification(items...)
	return nil
}
