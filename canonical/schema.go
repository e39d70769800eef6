package canonical

import "fmt"

// A Schema is the fixed, ordered list of field names of a
// certificate type.
type Schema struct {
	names []string
}

// CertificateSchema is the field layout of a course certificate.
var CertificateSchema = MustSchema(
	"name",
	"course",
	"course_load",
	"location",
	"date",
	"instructor",
	"instructor_title",
	"issuer",
	"nft_id",
)

// NewSchema validates names and returns a schema using them in the
// given order.
func NewSchema(names ...string) (*Schema, error) {
	if len(names) == 0 {
		return nil, ErrEmptySchema
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, n)
		}
		seen[n] = struct{}{}
	}
	return &Schema{names: append([]string(nil), names...)}, nil
}

// MustSchema is like NewSchema but panics on invalid names.
func MustSchema(names ...string) *Schema {
	s, err := NewSchema(names...)
	if err != nil {
		panic(err)
	}
	return s
}

// Names returns a copy of the schema's field names.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.names)
}

// Has reports whether name belongs to the schema.
func (s *Schema) Has(name string) bool {
	return s.Index(name) >= 0
}

// Index returns the position of name in the schema, or -1.
func (s *Schema) Index(name string) int {
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Empty returns the schema's field set with every value empty.
func (s *Schema) Empty() Fields {
	fs := make(Fields, len(s.names))
	for i, n := range s.names {
		fs[i] = Field{Name: n}
	}
	return fs
}

// Conforms reports whether fs has exactly the schema's names
// in the schema's order.
func (s *Schema) Conforms(fs Fields) bool {
	if len(fs) != len(s.names) {
		return false
	}
	for i, f := range fs {
		if f.Name != s.names[i] {
			return false
		}
	}
	return true
}
