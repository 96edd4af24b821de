// Package encoding formats assembled object code as a human-readable
// listing: each word's address, its hex encoding, and its decoded
// instruction, one per line. It began life as an Intel Hex object
// encoder; the machine's object format is a flat binary with no header,
// so there is nothing left to encode, only to disassemble for a human to
// read.
package encoding

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mna/vm16/internal/vm"
)

// Dump writes one line per word in code to out: the byte address, the
// word's hex encoding, and its disassembly. It returns the first decode
// error encountered, having already written every line up to that point.
func Dump(out io.Writer, code vm.ObjectCode) (int64, error) {
	var written int64

	buf := make([]byte, 2)

	for i, w := range code.Words {
		addr := vm.Word(2 * i)

		buf[0] = byte(w & 0xff)
		buf[1] = byte(w >> 8)

		instr, err := vm.Decode(w, addr)
		if err != nil {
			return written, err
		}

		n, err := fmt.Fprintf(out, "%s  %s  %s\n", addr, hex.EncodeToString(buf), instr)
		written += int64(n)

		if err != nil {
			return written, err
		}
	}

	return written, nil
}
