// Package upload implements the upload view: choosing a manuscript, sending
// it to the backend and handing the resulting book to the scenario view.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"rsc.io/pdf"

	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/progress"
)

// Notice texts shown by the upload view.
const (
	MsgChooseFile = "Please choose a PDF before uploading."
	MsgUploaded   = "Book uploaded successfully!"
	MsgFailed     = "Upload failed. Please try again."
)

var (
	ErrNoFile = errors.New("no file selected")
	ErrNotPDF = errors.New("file is not a PDF")
	ErrBusy   = errors.New("an upload is already in progress")
)

// File is an opened manuscript. *os.File and multipart.File both qualify.
type File interface {
	io.Reader
	io.ReaderAt
}

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// Result describes a finished upload. Pages is 0 when the page count could
// not be read locally.
type Result struct {
	Book     *models.Book
	Filename string
	Size     int64
	Pages    int
}

// Flow holds the state of the upload view.
type Flow struct {
	svc      api.Service
	notifier notifications.Notifier
	reporter progress.Reporter

	uploading atomic.Bool

	mu       sync.Mutex
	uploaded *models.Book
}

// NewFlow creates a Flow. A nil notifier discards notices.
func NewFlow(svc api.Service, notifier notifications.Notifier) *Flow {
	if notifier == nil {
		notifier = notifications.Discard
	}
	return &Flow{svc: svc, notifier: notifier, reporter: progress.Nop{}}
}

// SetReporter reports the bytes of later uploads to r.
func (f *Flow) SetReporter(r progress.Reporter) {
	if r == nil {
		r = progress.Nop{}
	}
	f.reporter = r
}

// Uploading reports whether an upload is in flight.
func (f *Flow) Uploading() bool { return f.uploading.Load() }

// Uploaded returns the last successfully uploaded book, or nil.
func (f *Flow) Uploaded() *models.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploaded
}

// ProceedPath is where the user continues after an upload.
func (f *Flow) ProceedPath() (string, bool) {
	book := f.Uploaded()
	if book == nil {
		return "", false
	}
	return ScenarioPath(book.ID), true
}

// ScenarioPath is the scenario view of a book.
func ScenarioPath(bookID string) string {
	return "/scenario/" + url.PathEscape(bookID)
}

// Upload opens the manuscript at path and uploads it.
func (f *Flow) Upload(ctx context.Context, path string) (*Result, error) {
	if strings.TrimSpace(path) == "" {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, ErrNoFile
	}

	file, err := os.Open(path)
	if err != nil {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	if info.IsDir() {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, fmt.Errorf("%w: %s is a directory", ErrNoFile, path)
	}

	return f.UploadFile(ctx, filepath.Base(path), file, info.Size())
}

// UploadFile uploads an already opened manuscript of the given size. Only one
// upload runs at a time; a second call returns ErrBusy.
func (f *Flow) UploadFile(ctx context.Context, name string, file File, size int64) (*Result, error) {
	if file == nil || size <= 0 {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, ErrNoFile
	}
	if !f.uploading.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer f.uploading.Store(false)

	if !IsPDF(file) {
		f.notifier.Notify(ctx, notifications.Hint(MsgChooseFile))
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, name)
	}
	pages, err := CountPages(file, size)
	if err != nil {
		log.Printf("upload: counting pages of %s: %v", name, err)
	}

	f.reporter.Start(size, "Uploading "+name)
	body := progress.Reader(io.NewSectionReader(file, 0, size), f.reporter)
	book, err := f.svc.UploadBook(ctx, name, body)
	f.reporter.Finish()
	if err != nil {
		f.notifier.Notify(ctx, notifications.Failure(MsgFailed))
		return nil, fmt.Errorf("uploading %s: %w", name, err)
	}

	f.mu.Lock()
	f.uploaded = book
	f.mu.Unlock()
	if f.svc.ActiveBook().Get() != book {
		f.svc.SetActiveBook(book)
	}
	f.notifier.Notify(ctx, notifications.Success(MsgUploaded))

	return &Result{Book: book, Filename: name, Size: size, Pages: pages}, nil
}

// IsPDF reports whether r starts with the PDF header.
func IsPDF(r io.ReaderAt) bool {
	head := make([]byte, len(pdfMagic))
	n, _ := r.ReadAt(head, 0)
	return n == len(head) && bytes.Equal(head, pdfMagic)
}

// CountPages parses the document trailer and returns the page count. It
// fails for PDFs the parser cannot read, such as version 2.0 headers or
// data after the end-of-file marker.
func CountPages(r io.ReaderAt, size int64) (pages int, err error) {
	defer func() {
		if p := recover(); p != nil {
			pages, err = 0, fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}
