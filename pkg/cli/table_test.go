package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "SETTING", "VALUE")
	tbl.Row("device", "xr1")
	tbl.Row("redis_addr", "127.0.0.1:6379")
	tbl.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	want := []string{
		"SETTING     VALUE",
		"-------     -----",
		"device      xr1",
		"redis_addr  127.0.0.1:6379",
	}
	if len(lines) != len(want) {
		t.Fatalf("table has %d lines, want %d:\n%s", len(lines), len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTableTo(&buf, "A", "B").Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTable_WithPrefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "VRF").WithPrefix("  ")
	tbl.Row("A")
	tbl.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
	}
}
