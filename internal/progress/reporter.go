package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while bytes move to or from the backend.
type Reporter interface {
	Start(total int64, description string)
	Add(n int)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{Out: os.Stderr}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a byte progress bar in the terminal. An unknown
// total (-1) shows a spinner.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int64, description string) {
	r.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Add(n int) {
	if r.bar != nil {
		_ = r.bar.Add(n)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints start and finish lines suitable for CI logs.
type CIReporter struct {
	Out   io.Writer
	total int64
	done  int64
	desc  string
}

func (r *CIReporter) Start(total int64, description string) {
	r.total, r.done, r.desc = total, 0, description
	if total >= 0 {
		fmt.Fprintf(r.Out, "%s (%d bytes)\n", description, total)
	} else {
		fmt.Fprintf(r.Out, "%s\n", description)
	}
}

func (r *CIReporter) Add(n int) {
	r.done += int64(n)
}

func (r *CIReporter) Finish() {
	fmt.Fprintf(r.Out, "%s complete (%d bytes)\n", r.desc, r.done)
}

// Nop discards all progress.
type Nop struct{}

func (Nop) Start(int64, string) {}
func (Nop) Add(int)             {}
func (Nop) Finish()             {}

// Reader reports every read from r to rep.
func Reader(r io.Reader, rep Reporter) io.Reader {
	return &countingReader{r: r, rep: rep}
}

// Writer reports every write to w to rep.
func Writer(w io.Writer, rep Reporter) io.Writer {
	return &countingWriter{w: w, rep: rep}
}

type countingReader struct {
	r   io.Reader
	rep Reporter
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.rep.Add(n)
	}
	return n, err
}

type countingWriter struct {
	w   io.Writer
	rep Reporter
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.rep.Add(n)
	}
	return n, err
}
