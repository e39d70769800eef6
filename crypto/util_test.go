package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

type testErrorRandReader struct{}

func (er testErrorRandReader) Read([]byte) (int, error) {
	return 0, errors.New("not enough entropy")
}

func TestMakeRand(t *testing.T) {
	r, err := MakeRand(rand.Reader, 32)
	if err != nil {
		t.Fatal(err)
	}
	if len(r) != 32 {
		t.Fatal("Unexpected length of random output", "got", len(r))
	}
	if _, err := MakeRand(testErrorRandReader{}, 32); err == nil {
		t.Fatal("No error returned")
	}
	if _, err := MakeRand(nil, 32); err != ErrNoRandSource {
		t.Fatal("Expect ErrNoRandSource", "got", err)
	}
}

func TestNewSalt(t *testing.T) {
	salt, err := NewSalt(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if err := salt.Validate(); err != nil {
		t.Fatal("Generated salt is malformed:", salt)
	}
	other, err := NewSalt(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if salt == other {
		t.Error("Two fresh salts should differ")
	}
}

func TestNewSaltDeterministicSource(t *testing.T) {
	// 0xff is above the rejection bound and must be skipped
	src := bytes.Repeat([]byte{0xff, 0x00, 0x01, 0x3d}, 16)
	salt, err := NewSalt(bytes.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if salt != "AB9AB9AB9AB9AB9A" {
		t.Fatal("Unexpected salt", "got", salt)
	}
}

func TestNewSaltShortSource(t *testing.T) {
	if _, err := NewSalt(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Fatal("Expect an error from an exhausted source")
	}
}

func TestSaltDisplay(t *testing.T) {
	salt := Salt("AAAA1111BBBB2222")
	if got := salt.Display(); got != "AAAA-1111-BBBB-2222" {
		t.Fatal("Bad display form", "got", got)
	}
	if salt.String() != "AAAA1111BBBB2222" {
		t.Fatal("Bad hashing form")
	}
}

func TestParseSalt(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Salt
		err  error
	}{
		{"AAAA1111BBBB2222", "AAAA1111BBBB2222", nil},
		{"AAAA-1111-BBBB-2222", "AAAA1111BBBB2222", nil},
		{"AAAA_1111-BBBB-2222", "", ErrMalformedSalt},
		{"AAAA1111BBBB222", "", ErrMalformedSalt},
		{"AAAA1111BBBB222!", "", ErrMalformedSalt},
		{"", "", ErrMalformedSalt},
	} {
		got, err := ParseSalt(tc.in)
		if err != tc.err || got != tc.want {
			t.Errorf("ParseSalt(%q) = (%q, %v), want (%q, %v)", tc.in, got, err, tc.want, tc.err)
		}
	}
}
