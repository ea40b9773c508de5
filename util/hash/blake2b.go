package hash

import (
	"golang.org/x/crypto/blake2b"
)

// HashB calculates blake2b-256(b) and returns the resulting bytes as a Hash.
func HashB(b []byte) Hash {
	return Hash(blake2b.Sum256(b))
}

// HashH calculates blake2b-256(b) and returns a pointer to the resulting
// hash.
func HashH(b []byte) *Hash {
	h := Hash(blake2b.Sum256(b))
	return &h
}

// DoubleHashB calculates blake2b-256(blake2b-256(b)) and returns the
// resulting bytes as a Hash.
func DoubleHashB(b []byte) Hash {
	first := blake2b.Sum256(b)
	return Hash(blake2b.Sum256(first[:]))
}

// Writer is a running blake2b-256 digest. The zero value is not usable; use
// NewWriter.
type Writer struct {
	inner interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
	}
}

// NewWriter returns a running digest that hashes everything written to it.
func NewWriter() *Writer {
	// blake2b.New256 only fails when a key longer than 64 bytes is
	// passed, so the error is impossible here.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return &Writer{inner: h}
}

// Write adds more data to the running digest. It never returns an error.
func (w *Writer) Write(p []byte) (int, error) {
	return w.inner.Write(p)
}

// Finalize returns the digest of everything written so far.
func (w *Writer) Finalize() Hash {
	var h Hash
	copy(h[:], w.inner.Sum(nil))
	return h
}
