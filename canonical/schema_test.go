package canonical

import (
	"errors"
	"testing"
)

func TestNewSchema(t *testing.T) {
	s, err := NewSchema("name", "course", "issuer")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 || s.Index("course") != 1 || s.Has("date") {
		t.Fatal("Unexpected schema layout", s.Names())
	}
	empty := s.Empty()
	if !s.Conforms(empty) {
		t.Fatal("Empty field set must conform to its schema")
	}
	if s.Conforms(Fields{{"course", ""}, {"name", ""}, {"issuer", ""}}) {
		t.Fatal("Reordered field set must not conform")
	}

	// Names returns a copy
	names := s.Names()
	names[0] = "changed"
	if s.Names()[0] != "name" {
		t.Fatal("Schema must not be mutable through Names")
	}
}

func TestNewSchemaErrors(t *testing.T) {
	if _, err := NewSchema(); err != ErrEmptySchema {
		t.Error("Expect ErrEmptySchema", "got", err)
	}
	if _, err := NewSchema("a", "a"); !errors.Is(err, ErrDuplicateField) {
		t.Error("Expect ErrDuplicateField", "got", err)
	}
	if _, err := NewSchema("a|b"); !errors.Is(err, ErrInvalidFieldName) {
		t.Error("Expect ErrInvalidFieldName", "got", err)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("Expected MustSchema to panic.")
		}
	}()
	MustSchema("")
}

func TestCertificateSchema(t *testing.T) {
	if CertificateSchema.Len() != 9 || CertificateSchema.Index("name") != 0 {
		t.Fatal("Unexpected certificate schema", CertificateSchema.Names())
	}
	if CertificateSchema.Has("pdf_hash") {
		t.Fatal("The document hash must stay outside the tree")
	}
}
