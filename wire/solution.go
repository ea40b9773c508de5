package wire

import (
	"io"

	"github.com/handshake-org/hskd/util/binaryserializer"
)

// MaxSolutionSize is the largest permitted number of edge indices in a
// cuckoo-cycle solution. The actual required length is a per-network
// parameter; this bound only protects the decoder.
const MaxSolutionSize = 254

// Solution is an ordered, fixed-arity sequence of 32-bit cuckoo-cycle edge
// indices. Its required length and numeric bounds are network parameters.
type Solution []uint32

// ReadSolution reads a solution from r: a one-byte count followed by that
// many little-endian uint32 edge indices.
func ReadSolution(r io.Reader) (Solution, error) {
	count, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}

	sol := make(Solution, count)
	for i := range sol {
		sol[i], err = binaryserializer.Uint32(r)
		if err != nil {
			return nil, err
		}
	}
	return sol, nil
}

// WriteSolution writes a solution to w.
func WriteSolution(w io.Writer, sol Solution) error {
	if len(sol) > MaxSolutionSize {
		return messageError("WriteSolution", "solution too long")
	}

	err := binaryserializer.PutUint8(w, uint8(len(sol)))
	if err != nil {
		return err
	}
	for _, edge := range sol {
		err = binaryserializer.PutUint32(w, edge)
		if err != nil {
			return err
		}
	}
	return nil
}

// SolutionSerializeSize returns the number of bytes it would take to
// serialize the solution.
func SolutionSerializeSize(sol Solution) int {
	return 1 + 4*len(sol)
}

// Clone returns a copy of the solution.
func (sol Solution) Clone() Solution {
	clone := make(Solution, len(sol))
	copy(clone, sol)
	return clone
}
