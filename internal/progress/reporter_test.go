package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type countingReporter struct {
	started  bool
	total    int64
	added    int
	finished bool
}

func (c *countingReporter) Start(total int64, _ string) { c.started, c.total = true, total }
func (c *countingReporter) Add(n int)                   { c.added += n }
func (c *countingReporter) Finish()                     { c.finished = true }

func TestReaderCountsBytes(t *testing.T) {
	rep := &countingReporter{}
	data := strings.Repeat("a", 10_000)

	n, err := io.Copy(io.Discard, Reader(strings.NewReader(data), rep))
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != int64(len(data)) || rep.added != len(data) {
		t.Errorf("copied %d, reported %d, want %d", n, rep.added, len(data))
	}
}

func TestWriterCountsBytes(t *testing.T) {
	rep := &countingReporter{}
	var buf bytes.Buffer

	w := Writer(&buf, rep)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if rep.added != 5 || buf.String() != "hello" {
		t.Errorf("reported %d bytes, buffer %q", rep.added, buf.String())
	}
}

func TestCIReporterOutput(t *testing.T) {
	var out bytes.Buffer
	r := &CIReporter{Out: &out}

	r.Start(100, "Uploading dune.pdf")
	r.Add(60)
	r.Add(40)
	r.Finish()

	got := out.String()
	if !strings.Contains(got, "Uploading dune.pdf (100 bytes)") {
		t.Errorf("missing start line in %q", got)
	}
	if !strings.Contains(got, "Uploading dune.pdf complete (100 bytes)") {
		t.Errorf("missing finish line in %q", got)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
