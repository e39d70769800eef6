package canonical

import "strings"

// EncodeLeaf returns the bytes hashed into the leaf of the field
// (name, value) under salt: salt "|" name "|" escaped value, in UTF-8.
// The salt must not contain separator characters either.
func EncodeLeaf(salt, name, value string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if salt == "" || strings.ContainsAny(salt, "|\\") {
		return nil, ErrInvalidSalt
	}
	escaped := Escape(value)
	buf := make([]byte, 0, len(salt)+len(name)+len(escaped)+2)
	buf = append(buf, salt...)
	buf = append(buf, fieldSeparator)
	buf = append(buf, name...)
	buf = append(buf, fieldSeparator)
	buf = append(buf, escaped...)
	return buf, nil
}
