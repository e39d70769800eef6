package canonical

import "errors"

var (
	// ErrInvalidFieldName indicates a field name that is empty or
	// contains a separator or escape character.
	ErrInvalidFieldName = errors.New("[canonical] Invalid field name")
	// ErrDuplicateField indicates a schema or field set that names
	// the same field twice.
	ErrDuplicateField = errors.New("[canonical] Duplicate field name")
	// ErrEmptySchema indicates a schema without fields.
	ErrEmptySchema = errors.New("[canonical] Schema has no fields")
	// ErrUnterminatedEscape indicates a raw string ending in
	// a lone backslash.
	ErrUnterminatedEscape = errors.New("[canonical] Unterminated escape sequence")
	// ErrInvalidEscape indicates a backslash followed by a character
	// other than a pipe or a backslash.
	ErrInvalidEscape = errors.New("[canonical] Invalid escape sequence")
	// ErrUnbalancedSeparator indicates a raw string whose pipes do not
	// form name|value pairs joined by double pipes.
	ErrUnbalancedSeparator = errors.New("[canonical] Unbalanced separator")
	// ErrInvalidSalt indicates an empty salt or one containing
	// separator characters.
	ErrInvalidSalt = errors.New("[canonical] Invalid salt")
)

var encodingErrors = []error{
	ErrInvalidFieldName,
	ErrDuplicateField,
	ErrEmptySchema,
	ErrUnterminatedEscape,
	ErrInvalidEscape,
	ErrUnbalancedSeparator,
	ErrInvalidSalt,
}

// IsEncodingError reports whether err belongs to the encoding error class.
func IsEncodingError(err error) bool {
	for _, e := range encodingErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
