package encoding

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mna/vm16/internal/vm"
)

func TestDump(t *testing.T) {
	t.Parallel()

	code := vm.ObjectCode{
		Words: []vm.Word{
			vm.Mov{Dst: vm.A, Imm: 1}.Encode(),
			vm.Noop{}.Encode(),
		},
	}

	var buf bytes.Buffer

	n, err := Dump(&buf, code)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}

	if n != int64(buf.Len()) {
		t.Errorf("written = %d, want %d", n, buf.Len())
	}

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != len(code.Words) {
		t.Fatalf("got %d lines, want %d", len(lines), len(code.Words))
	}

	if !strings.Contains(lines[0], "0000") {
		t.Errorf("first line missing address: %q", lines[0])
	}

	if !strings.Contains(lines[1], "0002") {
		t.Errorf("second line missing address: %q", lines[1])
	}
}

func TestDumpStopsOnBadOpcode(t *testing.T) {
	t.Parallel()

	code := vm.ObjectCode{Words: []vm.Word{0x000a}}

	var buf bytes.Buffer

	if _, err := Dump(&buf, code); err == nil {
		t.Fatal("expected a decode error, got nil")
	}
}
