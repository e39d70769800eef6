package kv

import (
	"bytes"
	"testing"
)

func TestBytesPrefix(t *testing.T) {
	for _, tc := range []struct {
		prefix, limit []byte
	}{
		{[]byte("R"), []byte("S")},
		{[]byte{'A', 0xff}, []byte{'B'}},
		{[]byte{0xff, 0xff}, nil},
		{nil, nil},
	} {
		rg := BytesPrefix(tc.prefix)
		if !bytes.Equal(rg.Start, tc.prefix) || !bytes.Equal(rg.Limit, tc.limit) {
			t.Error("BytesPrefix", tc.prefix, "Expect limit", tc.limit, "got", rg.Limit)
		}
	}
}
