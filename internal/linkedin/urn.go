package linkedin

import (
	"encoding/json"
	"strings"
)

// URN identifies a LinkedIn entity, e.g. urn:li:image:C4E10AQFoyyAjHPMQuQ.
type URN struct {
	namespace  string
	entityType string
	id         string
}

// NewURN returns a URN in the "li" namespace.
func NewURN(entityType, id string) URN {
	return URN{namespace: "li", entityType: entityType, id: id}
}

// ParseURN parses the string form of a URN. Everything after the entity
// type is kept verbatim as the id, so composite ids survive a round trip.
func ParseURN(s string) (URN, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 4)
	if len(parts) != 4 || parts[0] != "urn" {
		return URN{}, invalid("malformed urn %q", s)
	}
	for _, p := range parts[1:] {
		if p == "" {
			return URN{}, invalid("malformed urn %q", s)
		}
	}
	return URN{namespace: parts[1], entityType: parts[2], id: parts[3]}, nil
}

// MustParseURN is like ParseURN but panics on error.
func MustParseURN(s string) URN {
	u, err := ParseURN(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u URN) Namespace() string  { return u.namespace }
func (u URN) EntityType() string { return u.entityType }
func (u URN) ID() string         { return u.id }
func (u URN) IsZero() bool       { return u == URN{} }

func (u URN) String() string {
	if u.IsZero() {
		return ""
	}
	return "urn:" + u.namespace + ":" + u.entityType + ":" + u.id
}

func (u URN) MarshalJSON() ([]byte, error) {
	if u.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(u.String())
}

func (u *URN) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*u = URN{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*u = URN{}
		return nil
	}
	parsed, err := ParseURN(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
