// Package api is the HTTP client for the dynamic-book backend. It also owns
// the shared active-book slot that views read and write.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ziadkadry99/dynbook/internal/activebook"
	"github.com/ziadkadry99/dynbook/internal/metrics"
	"github.com/ziadkadry99/dynbook/internal/models"
)

// UploadField is the multipart form field that carries the manuscript.
const UploadField = "book"

// Service is the set of backend operations the views depend on.
type Service interface {
	UploadBook(ctx context.Context, filename string, r io.Reader) (*models.Book, error)
	ListBooks(ctx context.Context) ([]models.Book, error)
	GetChapter(ctx context.Context, bookID string, number int) (*models.Chapter, error)
	GenerateStory(ctx context.Context, bookID string, chapterNumber int, scenarioText string) (*models.GeneratedStory, error)
	ExportStory(ctx context.Context, bookID string, w io.Writer) (int64, error)
	ActiveBook() *activebook.Holder
	SetActiveBook(book *models.Book)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryWait  time.Duration
	UserAgent  string
	Debug      bool
}

// Client talks to the backend over HTTP.
type Client struct {
	resty  *resty.Client
	active *activebook.Holder
}

var _ Service = (*Client)(nil)

// NewClient creates a Client. A nil holder gets a fresh, empty one.
func NewClient(opts Options, active *activebook.Holder) *Client {
	if active == nil {
		active = activebook.New(nil)
	}

	if opts.RetryWait <= 0 {
		opts.RetryWait = 2 * time.Second
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Debug {
		rc.SetDebug(true)
	} else {
		rc.SetLogger(disableLogger{})
	}
	if opts.RetryCount > 0 {
		// Uploads and generations are not repeated: the upload body is a
		// one-shot stream and a generation is not idempotent.
		rc.AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})
	}

	return &Client{resty: rc, active: active}
}

// ActiveBook returns the shared active-book holder.
func (c *Client) ActiveBook() *activebook.Holder { return c.active }

// SetActiveBook publishes book as the active book.
func (c *Client) SetActiveBook(book *models.Book) { c.active.Set(book) }

// UploadBook posts a manuscript as multipart form data. The returned book
// becomes the active book.
func (c *Client) UploadBook(ctx context.Context, filename string, r io.Reader) (*models.Book, error) {
	var book models.Book
	req := c.resty.R().
		SetContext(ctx).
		SetFileReader(UploadField, filename, r).
		SetResult(&book)

	if err := c.do("upload", http.MethodPost, "/upload", req); err != nil {
		return nil, err
	}

	c.active.Set(&book)
	return &book, nil
}

// ListBooks returns every book known to the backend.
func (c *Client) ListBooks(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	req := c.resty.R().SetContext(ctx).SetResult(&books)

	if err := c.do("list_books", http.MethodGet, "/books", req); err != nil {
		return nil, err
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}

// GetChapter fetches the full text of one chapter.
func (c *Client) GetChapter(ctx context.Context, bookID string, number int) (*models.Chapter, error) {
	var chapter models.Chapter
	req := c.resty.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"id":     bookID,
			"number": strconv.Itoa(number),
		}).
		SetResult(&chapter)

	if err := c.do("get_chapter", http.MethodGet, "/books/{id}/chapters/{number}", req); err != nil {
		return nil, err
	}
	return &chapter, nil
}

// GenerateStory asks the backend for an alternate storyline of a chapter.
func (c *Client) GenerateStory(ctx context.Context, bookID string, chapterNumber int, scenarioText string) (*models.GeneratedStory, error) {
	var story models.GeneratedStory
	req := c.resty.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.GenerateStoryRequest{
			BookID:        bookID,
			ChapterNumber: chapterNumber,
			ScenarioText:  scenarioText,
		}).
		SetResult(&story)

	if err := c.do("generate_story", http.MethodPost, "/generate-story", req); err != nil {
		return nil, err
	}
	return &story, nil
}

// ExportStory streams the exported PDF for a book into w and returns the
// number of bytes written.
func (c *Client) ExportStory(ctx context.Context, bookID string, w io.Writer) (int64, error) {
	const op = "export"
	start := time.Now()

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf, application/octet-stream").
		SetPathParam("id", bookID).
		SetDoNotParseResponse(true).
		Get("/export/{id}")
	if err != nil {
		observe(op, "error", start)
		return 0, fmt.Errorf("export %s: %w", bookID, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		observe(op, strconv.Itoa(resp.StatusCode()), start)
		data, _ := io.ReadAll(io.LimitReader(body, 4096))
		return 0, &Error{
			StatusCode: resp.StatusCode(),
			Method:     http.MethodGet,
			Path:       requestPath(resp, "/export/"+bookID),
			Message:    errorMessage(data),
		}
	}

	n, err := io.Copy(w, body)
	observe(op, strconv.Itoa(resp.StatusCode()), start)
	if err != nil {
		return n, fmt.Errorf("reading export of %s: %w", bookID, err)
	}
	return n, nil
}

// do executes req and converts transport failures and non-2xx responses
// into errors.
func (c *Client) do(op, method, path string, req *resty.Request) error {
	start := time.Now()

	resp, err := req.Execute(method, path)
	if err != nil {
		observe(op, "error", start)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	observe(op, strconv.Itoa(resp.StatusCode()), start)

	if resp.IsError() || resp.StatusCode() >= 300 {
		return &Error{
			StatusCode: resp.StatusCode(),
			Method:     method,
			Path:       requestPath(resp, path),
			Message:    errorMessage(resp.Body()),
		}
	}
	return nil
}

// requestPath is the escaped path of the request behind resp.
func requestPath(resp *resty.Response, fallback string) string {
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		return raw.Request.URL.EscapedPath()
	}
	return fallback
}

func observe(op, status string, start time.Time) {
	metrics.BackendRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.BackendRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

type disableLogger struct{}

func (disableLogger) Errorf(string, ...interface{}) {}
func (disableLogger) Warnf(string, ...interface{})  {}
func (disableLogger) Debugf(string, ...interface{}) {}
