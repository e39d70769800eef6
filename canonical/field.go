package canonical

import (
	"fmt"
	"strings"
)

const (
	fieldSeparator  = '|'
	escapeCharacter = '\\'
)

// A Field is a named certificate value.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields is an ordered field set. The position of a field is its
// leaf index in the record's Merkle tree.
type Fields []Field

// Names returns the field names in order.
func (fs Fields) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the field called name, or -1.
func (fs Fields) Index(name string) int {
	for i, f := range fs {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value of the field called name.
func (fs Fields) Get(name string) (string, bool) {
	if i := fs.Index(name); i >= 0 {
		return fs[i].Value, true
	}
	return "", false
}

// Map returns the fields as a name to value map.
func (fs Fields) Map() map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		m[f.Name] = f.Value
	}
	return m
}

// Equal reports whether fs and other contain the same fields
// in the same order.
func (fs Fields) Equal(other Fields) bool {
	if len(fs) != len(other) {
		return false
	}
	for i := range fs {
		if fs[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of fs.
func (fs Fields) Clone() Fields {
	return append(Fields(nil), fs...)
}

// Validate checks every name and rejects duplicates.
func (fs Fields) Validate() error {
	seen := make(map[string]struct{}, len(fs))
	for _, f := range fs {
		if err := ValidateName(f.Name); err != nil {
			return err
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// ValidateName returns ErrInvalidFieldName if name is empty or
// contains a pipe or a backslash.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, "|\\") {
		return fmt.Errorf("%w: %q", ErrInvalidFieldName, name)
	}
	return nil
}
