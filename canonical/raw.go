package canonical

import (
	"fmt"
	"strings"
)

// Escape escapes backslashes and pipes in v.
func Escape(v string) string {
	if !strings.ContainsAny(v, "|\\") {
		return v
	}
	var sb strings.Builder
	sb.Grow(len(v) + 4)
	for i := 0; i < len(v); i++ {
		if v[i] == fieldSeparator || v[i] == escapeCharacter {
			sb.WriteByte(escapeCharacter)
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}

// EncodeRaw serializes fs as "name1|value1||name2|value2||...".
func EncodeRaw(fs Fields) (string, error) {
	if err := fs.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteString("||")
		}
		sb.WriteString(f.Name)
		sb.WriteByte(fieldSeparator)
		sb.WriteString(Escape(f.Value))
	}
	return sb.String(), nil
}

// DecodeRaw parses a string produced by EncodeRaw.
// A pipe seen while reading a name always ends the name; inside a value
// only a double pipe is legal, and it ends the pair. This keeps empty
// values ("name|||next|v") unambiguous.
func DecodeRaw(raw string) (Fields, error) {
	fs := Fields{}
	if raw == "" {
		return fs, nil
	}
	var (
		cur     strings.Builder
		name    string
		inValue bool
	)
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; c {
		case escapeCharacter:
			if i+1 >= len(raw) {
				return nil, fmt.Errorf("%w at offset %d", ErrUnterminatedEscape, i)
			}
			next := raw[i+1]
			if next != fieldSeparator && next != escapeCharacter {
				return nil, fmt.Errorf("%w at offset %d", ErrInvalidEscape, i)
			}
			if !inValue {
				// names never contain escapes
				return nil, fmt.Errorf("%w at offset %d", ErrInvalidFieldName, i)
			}
			cur.WriteByte(next)
			i++
		case fieldSeparator:
			if !inValue {
				name = cur.String()
				if err := ValidateName(name); err != nil {
					return nil, err
				}
				cur.Reset()
				inValue = true
				continue
			}
			if i+1 >= len(raw) || raw[i+1] != fieldSeparator {
				return nil, fmt.Errorf("%w at offset %d", ErrUnbalancedSeparator, i)
			}
			fs = append(fs, Field{Name: name, Value: cur.String()})
			cur.Reset()
			inValue = false
			i++
		default:
			cur.WriteByte(c)
		}
	}
	if !inValue {
		return nil, fmt.Errorf("%w at offset %d", ErrUnbalancedSeparator, len(raw))
	}
	fs = append(fs, Field{Name: name, Value: cur.String()})
	if err := fs.Validate(); err != nil {
		return nil, err
	}
	return fs, nil
}
