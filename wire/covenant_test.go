package wire

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/handshake-org/hskd/util/hash"
)

// TestCovenantArity verifies the positional schema is enforced on
// construction and decode.
func TestCovenantArity(t *testing.T) {
	name := []byte("hello")
	blind := make([]byte, hash.Size)
	resource := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

	tests := []struct {
		typ     CovenantType
		items   [][]byte
		wantErr bool
	}{
		{CovenantNone, nil, false},
		{CovenantNone, [][]byte{name}, true},
		{CovenantClaim, [][]byte{name}, false},
		{CovenantClaim, nil, true},
		{CovenantBid, [][]byte{name, blind}, false},
		{CovenantBid, [][]byte{name}, true},
		// Blind must be exactly 32 bytes.
		{CovenantBid, [][]byte{name, []byte{0x01}}, true},
		{CovenantReveal, [][]byte{name, blind}, false},
		{CovenantRedeem, [][]byte{name}, false},
		{CovenantRegister, [][]byte{name, resource, blind}, false},
		{CovenantRegister, [][]byte{name, resource}, true},
		{CovenantUpdate, [][]byte{name, resource}, false},
		{CovenantRenew, [][]byte{name, blind}, false},
		{CovenantTransfer, [][]byte{name, {0x00, 0x01, 0x02}}, false},
		{CovenantFinalize, [][]byte{name}, false},
		{CovenantRevoke, [][]byte{name}, false},
		// Empty name.
		{CovenantRevoke, [][]byte{{}}, true},
		// Oversized name.
		{CovenantClaim, [][]byte{bytes.Repeat([]byte{'a'}, maxNameSize+1)}, true},
	}

	for i, test := range tests {
		_, err := NewCovenant(test.typ, test.items...)
		if (err != nil) != test.wantErr {
			t.Errorf("NewCovenant #%d (%v): err %v, wantErr %v",
				i, test.typ, err, test.wantErr)
		}
	}
}

// TestCovenantSerialize tests round trips through the covenant codec,
// including rejection of unknown types.
func TestCovenantSerialize(t *testing.T) {
	name := []byte("example")
	blind := make([]byte, hash.Size)
	for i := range blind {
		blind[i] = byte(i)
	}

	cov, err := NewCovenant(CovenantBid, name, blind)
	if err != nil {
		t.Fatalf("NewCovenant: %v", err)
	}

	var buf bytes.Buffer
	if err := writeCovenant(&buf, cov); err != nil {
		t.Fatalf("writeCovenant: %v", err)
	}
	if buf.Len() != cov.SerializeSize() {
		t.Errorf("SerializeSize: got %d, want %d", cov.SerializeSize(),
			buf.Len())
	}

	var decoded Covenant
	if err := readCovenant(bytes.NewReader(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("readCovenant: %v", err)
	}
	if !reflect.DeepEqual(&decoded, cov) {
		t.Fatalf("readCovenant: got %v, want %v", decoded, *cov)
	}

	// An unknown covenant type must be rejected at decode time.
	raw := buf.Bytes()
	raw[0] = byte(CovenantRevoke) + 1
	err = readCovenant(bytes.NewReader(raw), &decoded)
	if err == nil {
		t.Errorf("readCovenant: no error for unknown covenant type")
	}
}

// TestCovenantNameHash pins the store key derivation.
func TestCovenantNameHash(t *testing.T) {
	cov, err := NewCovenant(CovenantClaim, []byte("hello"))
	if err != nil {
		t.Fatalf("NewCovenant: %v", err)
	}

	want := hash.HashB([]byte("hello"))
	got := cov.NameHash()
	if !got.IsEqual(&want) {
		t.Errorf("NameHash: got %v, want %v", got, want)
	}
}
