// Package scenario implements the scenario view: reading a book chapter by
// chapter, asking the backend for a what-if storyline and exporting it.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/history"
	"github.com/ziadkadry99/dynbook/internal/metrics"
	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/progress"
)

// Notice texts shown by the scenario view.
const (
	MsgNoBook          = "No book was provided. Please upload a book first."
	MsgBookNotFound    = "Book not found. Please upload it again."
	MsgMetadataFailed  = "Unable to load the book metadata."
	MsgChapterFailed   = "Unable to load the selected chapter."
	MsgEmptyScenario   = "Please describe a scenario before generating a story."
	MsgGenerated       = "Scenario generated successfully."
	MsgGenerateFailed  = "Unable to generate a story. Please try again."
	MsgExportStarted   = "Export started. Check your downloads."
	MsgExportFailed    = "Export failed. Please try again."
	DefaultExportTitle = "generated-story"
)

var (
	ErrBusy          = errors.New("request already in progress")
	ErrOutOfBounds   = errors.New("chapter index out of bounds")
	ErrNoBook        = errors.New("no book loaded")
	ErrEmptyScenario = errors.New("scenario is empty")
)

// Direction moves between chapters.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// ParseDirection accepts "previous"/"prev" and "next".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "previous", "prev":
		return Previous, nil
	case "next":
		return Next, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// State is a snapshot of a session for rendering.
type State struct {
	Book           *models.Book
	Index          int
	Chapter        models.ChapterSummary
	HasChapter     bool
	OriginalText   string
	GeneratedText  string
	Scenario       string
	LoadingChapter bool
	Generating     bool
	Exporting      bool
	CanGoPrevious  bool
	CanGoNext      bool
}

// Session is the scenario view for one book.
type Session struct {
	svc      api.Service
	notifier notifications.Notifier
	bookID   string

	recorder history.Recorder
	reporter progress.Reporter

	loadingChapter atomic.Bool
	generating     atomic.Bool
	exporting      atomic.Bool

	mu            sync.Mutex
	book          *models.Book
	index         int
	originalText  string
	generatedText string
	scenario      string
}

// NewSession creates a session for bookID. Call Open before anything else.
func NewSession(svc api.Service, notifier notifications.Notifier, bookID string) *Session {
	if notifier == nil {
		notifier = notifications.Discard
	}
	return &Session{
		svc:      svc,
		notifier: notifier,
		bookID:   strings.TrimSpace(bookID),
		reporter: progress.Nop{},
	}
}

// SetRecorder saves every successful generation to r.
func (s *Session) SetRecorder(r history.Recorder) { s.recorder = r }

// SetReporter reports export bytes to r.
func (s *Session) SetReporter(r progress.Reporter) {
	if r == nil {
		r = progress.Nop{}
	}
	s.reporter = r
}

// BookID is the id the session was created for.
func (s *Session) BookID() string { return s.bookID }

// Book returns the loaded book, or nil before Open succeeds.
func (s *Session) Book() *models.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book
}

// Open resolves the book and loads its first chapter.
func (s *Session) Open(ctx context.Context) error {
	if err := s.Resolve(ctx); err != nil {
		return err
	}
	if len(s.Book().Chapters) == 0 {
		return nil
	}
	return s.LoadChapter(ctx, 0)
}

// Resolve finds the book and publishes it as the active book without
// loading a chapter. The active book is reused when it has the same id.
func (s *Session) Resolve(ctx context.Context) error {
	if s.bookID == "" {
		s.notifier.Notify(ctx, notifications.Problem(MsgNoBook))
		return ErrNoBook
	}

	book := s.svc.ActiveBook().Get()
	if book == nil || book.ID != s.bookID {
		books, err := s.svc.ListBooks(ctx)
		if err != nil {
			s.notifier.Notify(ctx, notifications.Problem(MsgMetadataFailed))
			return fmt.Errorf("loading books: %w", err)
		}
		found, ok := models.FindBook(books, s.bookID)
		if !ok {
			s.notifier.Notify(ctx, notifications.Problem(MsgBookNotFound))
			return fmt.Errorf("%w: %s not found", ErrNoBook, s.bookID)
		}
		book = found
		s.svc.SetActiveBook(book)
	}

	s.mu.Lock()
	s.book = book
	s.index = 0
	s.originalText, s.generatedText = "", ""
	s.mu.Unlock()
	return nil
}

// IndexOf returns the position of the chapter with the given number.
func (s *Session) IndexOf(number int) (int, bool) {
	book := s.Book()
	if book == nil {
		return 0, false
	}
	for i, ch := range book.Chapters {
		if ch.Number == number {
			return i, true
		}
	}
	return 0, false
}

// Index is the position of the current chapter in the book.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// CurrentChapter returns the summary of the chapter being read.
func (s *Session) CurrentChapter() (models.ChapterSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Chapter(s.index)
}

// CanGoPrevious reports whether there is a chapter before the current one.
func (s *Session) CanGoPrevious() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book != nil && s.index > 0
}

// CanGoNext reports whether there is a chapter after the current one.
func (s *Session) CanGoNext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book != nil && s.index < len(s.book.Chapters)-1
}

// Navigate loads the neighbouring chapter. Moving past either end returns
// ErrOutOfBounds and changes nothing.
func (s *Session) Navigate(ctx context.Context, dir Direction) error {
	s.mu.Lock()
	book, target := s.book, s.index+int(dir)
	s.mu.Unlock()

	if book == nil {
		return ErrNoBook
	}
	if _, ok := book.Chapter(target); !ok {
		return ErrOutOfBounds
	}
	return s.LoadChapter(ctx, target)
}

// LoadChapter fetches the chapter at index. On success it becomes the
// current chapter and any generated text is cleared.
func (s *Session) LoadChapter(ctx context.Context, index int) error {
	book := s.Book()
	if book == nil {
		return ErrNoBook
	}
	summary, ok := book.Chapter(index)
	if !ok {
		return ErrOutOfBounds
	}
	if !s.loadingChapter.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.loadingChapter.Store(false)

	chapter, err := s.svc.GetChapter(ctx, book.ID, summary.Number)
	if err != nil {
		s.notifier.Notify(ctx, notifications.Problem(MsgChapterFailed))
		return fmt.Errorf("loading chapter %d of %s: %w", summary.Number, book.ID, err)
	}

	s.mu.Lock()
	s.index = index
	s.originalText = chapter.Content
	s.generatedText = ""
	s.mu.Unlock()
	return nil
}

// Generate asks the backend to rewrite the current chapter under the given
// scenario.
func (s *Session) Generate(ctx context.Context, scenario string) (*models.GeneratedStory, error) {
	s.mu.Lock()
	book, index := s.book, s.index
	s.mu.Unlock()
	if book == nil {
		return nil, ErrNoBook
	}
	summary, ok := book.Chapter(index)
	if !ok {
		return nil, ErrOutOfBounds
	}

	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		s.notifier.Notify(ctx, notifications.Hint(MsgEmptyScenario))
		return nil, ErrEmptyScenario
	}

	if !s.generating.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.generating.Store(false)

	story, err := s.svc.GenerateStory(ctx, book.ID, summary.Number, scenario)
	if err != nil {
		s.notifier.Notify(ctx, notifications.Failure(MsgGenerateFailed))
		return nil, fmt.Errorf("generating story for chapter %d: %w", summary.Number, err)
	}

	s.mu.Lock()
	s.generatedText = story.GeneratedText
	if story.OriginalText != "" {
		s.originalText = story.OriginalText
	}
	s.scenario = scenario
	s.mu.Unlock()

	metrics.StoriesGeneratedTotal.Inc()
	s.notifier.Notify(ctx, notifications.Success(MsgGenerated))

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, history.NewEntry(book, summary, scenario, story)); err != nil {
			log.Printf("scenario: recording history: %v", err)
		}
	}
	return story, nil
}

// ExportTo streams the exported PDF into w and returns the file name it
// should be saved under.
func (s *Session) ExportTo(ctx context.Context, w io.Writer) (string, int64, error) {
	book := s.Book()
	if book == nil {
		return "", 0, ErrNoBook
	}
	if !s.exporting.CompareAndSwap(false, true) {
		return "", 0, ErrBusy
	}
	defer s.exporting.Store(false)

	name := ExportFileName(book)
	s.reporter.Start(-1, "Exporting "+name)
	n, err := s.svc.ExportStory(ctx, book.ID, progress.Writer(w, s.reporter))
	s.reporter.Finish()
	if err != nil {
		s.notifier.Notify(ctx, notifications.Failure(MsgExportFailed))
		return "", n, fmt.Errorf("exporting %s: %w", book.ID, err)
	}

	s.notifier.Notify(ctx, notifications.Success(MsgExportStarted))
	return name, n, nil
}

// Export saves the exported PDF under dir and returns its path. Nothing is
// left behind when the export fails.
func (s *Session) Export(ctx context.Context, dir string) (string, error) {
	if s.Book() == nil {
		return "", ErrNoBook
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.notifier.Notify(ctx, notifications.Failure(MsgExportFailed))
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".dynbook-export-*")
	if err != nil {
		s.notifier.Notify(ctx, notifications.Failure(MsgExportFailed))
		return "", fmt.Errorf("creating export file: %w", err)
	}

	name, _, err := s.ExportTo(ctx, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		s.notifier.Notify(ctx, notifications.Failure(MsgExportFailed))
		err = fmt.Errorf("writing export file: %w", cerr)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("saving export: %w", err)
	}
	return path, nil
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Book:           s.book,
		Index:          s.index,
		OriginalText:   s.originalText,
		GeneratedText:  s.generatedText,
		Scenario:       s.scenario,
		LoadingChapter: s.loadingChapter.Load(),
		Generating:     s.generating.Load(),
		Exporting:      s.exporting.Load(),
	}
	st.Chapter, st.HasChapter = s.book.Chapter(s.index)
	if s.book != nil {
		st.CanGoPrevious = s.index > 0
		st.CanGoNext = s.index < len(s.book.Chapters)-1
	}
	return st
}

var unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

// ExportFileName is the download name for a book's export: its title with
// characters that are invalid in file names replaced, or "generated-story".
func ExportFileName(book *models.Book) string {
	title := ""
	if book != nil {
		title = strings.TrimSpace(unsafeFileChars.ReplaceAllString(book.Title, "_"))
	}
	title = strings.Trim(title, ". ")
	if title == "" {
		title = DefaultExportTitle
	}
	return title + ".pdf"
}
