package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/dynbook/internal/activebook"
	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/db"
	"github.com/ziadkadry99/dynbook/internal/history"
	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/preferences"
)

var testBook = models.Book{
	ID:     "b1",
	Title:  "Dune",
	Author: "Frank Herbert",
	Chapters: []models.ChapterSummary{
		{Number: 1, Title: "Arrival"},
		{Number: 2, Title: "Desert"},
	},
}

// fakeBackend serves the subset of the dynamic-book API the UI calls.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile(api.UploadField); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeTestJSON(w, testBook)
	})
	r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, []models.Book{testBook})
	})
	r.Get("/books/{id}/chapters/{number}", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(chi.URLParam(r, "number"))
		writeTestJSON(w, models.Chapter{Number: n, Title: "t", Content: "Original text of chapter " + strconv.Itoa(n)})
	})
	r.Post("/generate-story", func(w http.ResponseWriter, r *http.Request) {
		var req models.GenerateStoryRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeTestJSON(w, models.GeneratedStory{
			BookID:        req.BookID,
			ChapterNumber: req.ChapterNumber,
			GeneratedText: "The hero **lost**.",
		})
	})
	r.Get("/export/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 exported"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

type testEnv struct {
	handler *Handler
	router  chi.Router
	client  *api.Client
	notices *notifications.Dispatcher
	history *history.Store
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	backend := fakeBackend(t)

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	client := api.NewClient(api.Options{BaseURL: backend.URL, Timeout: 5 * time.Second}, activebook.New(nil))
	dispatcher := notifications.NewDispatcher(notifications.NewStore(database))
	hist := history.NewStore(database)

	h, err := New(Options{
		Service:     client,
		Preferences: preferences.NewStore(database, preferences.ThemeLight),
		Notices:     dispatcher,
		History:     hist,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	return &testEnv{handler: h, router: r, client: client, notices: dispatcher, history: hist}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func uploadRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile(api.UploadField, filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther && w.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Location = %q, want %q", got, location)
	}
}

func expectBody(t *testing.T, w *httptest.ResponseRecorder, substrings ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range substrings {
		if !strings.Contains(body, s) {
			t.Errorf("body missing %q", s)
		}
	}
}

// --- Tests ---

func TestHomePage(t *testing.T) {
	env := setup(t)

	w := env.get(t, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	expectBody(t, w,
		"Upload Any Book",
		"Design What-If Scenarios",
		"Side-by-Side Viewing",
		`class="light-theme"`,
		`id="nav-stories" href="/upload"`,
	)
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	env := setup(t)
	expectRedirect(t, env.get(t, "/does/not/exist"), "/")
	expectRedirect(t, env.get(t, "/scenario"), "/")
}

func TestThemeToggle(t *testing.T) {
	env := setup(t)

	w := env.postForm(t, "/theme", url.Values{"theme": {"toggle"}, "return": {"/upload"}})
	expectRedirect(t, w, "/upload")
	expectBody(t, env.get(t, "/"), `class="dark-theme"`)

	w = env.postForm(t, "/theme", url.Values{"theme": {"light"}, "return": {"//evil.example"}})
	expectRedirect(t, w, "/")
	expectBody(t, env.get(t, "/"), `class="light-theme"`)

	if w := env.postForm(t, "/theme", url.Values{"theme": {"sepia"}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown theme, got %d", w.Code)
	}
}

func TestUploadFlow(t *testing.T) {
	env := setup(t)
	data, err := os.ReadFile(filepath.Join("..", "upload", "testdata", "sample.pdf"))
	if err != nil {
		t.Fatal(err)
	}

	expectRedirect(t, env.get(t, "/upload/proceed"), "/upload")

	w := env.do(t, uploadRequest(t, "dune.pdf", data))
	expectRedirect(t, w, "/upload")

	if env.client.ActiveBook().ID() != "b1" {
		t.Errorf("active book = %q, want b1", env.client.ActiveBook().ID())
	}
	expectBody(t, env.get(t, "/upload"),
		"Dune",
		"by Frank Herbert",
		"Book uploaded successfully!",
		`href="/upload/proceed"`,
		`id="nav-stories" href="/scenario/b1"`,
	)
	expectRedirect(t, env.get(t, "/upload/proceed"), "/scenario/b1")
}

func TestUploadButtonNeedsFile(t *testing.T) {
	env := setup(t)

	expectBody(t, env.get(t, "/upload"),
		`accept="application/pdf" required>`,
		`<button type="submit" class="button" disabled>Upload</button>`,
	)
}

func TestUploadWithoutFile(t *testing.T) {
	env := setup(t)

	expectRedirect(t, env.do(t, uploadRequest(t, "", nil)), "/upload")
	expectBody(t, env.get(t, "/upload"), "Please choose a PDF before uploading.")
	if env.client.ActiveBook().Get() != nil {
		t.Error("active book should not be set")
	}
}

func TestScenarioNavigation(t *testing.T) {
	env := setup(t)

	w := env.get(t, "/scenario/b1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	expectBody(t, w, "Chapter 1: Arrival", "Original text of chapter 1", "1 of 2",
		`<button type="submit" disabled>Previous</button>`,
		`<button type="submit">Next</button>`,
	)
	if env.client.ActiveBook().ID() != "b1" {
		t.Error("opening a scenario should publish the active book")
	}

	expectRedirect(t, env.postForm(t, "/scenario/b1/navigate", url.Values{"direction": {"next"}}), "/scenario/b1")
	expectBody(t, env.get(t, "/scenario/b1"), "Chapter 2: Desert", "Original text of chapter 2",
		`<button type="submit">Previous</button>`,
		`<button type="submit" disabled>Next</button>`,
	)

	// Already at the last chapter: nothing changes.
	expectRedirect(t, env.postForm(t, "/scenario/b1/navigate", url.Values{"direction": {"next"}}), "/scenario/b1")
	expectBody(t, env.get(t, "/scenario/b1"), "Chapter 2: Desert")

	if w := env.postForm(t, "/scenario/b1/navigate", url.Values{"direction": {"sideways"}}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestScenarioUnknownBook(t *testing.T) {
	env := setup(t)

	w := env.get(t, "/scenario/missing")
	expectBody(t, w, "No book loaded", "Book not found. Please upload it again.")
}

func TestGenerateStory(t *testing.T) {
	env := setup(t)
	env.get(t, "/scenario/b1")

	w := env.postForm(t, "/scenario/b1/generate", url.Values{"scenario": {"  What if the hero lost?  "}})
	expectRedirect(t, w, "/scenario/b1")

	expectBody(t, env.get(t, "/scenario/b1"),
		"The hero <strong>lost</strong>.",
		"What if the hero lost?",
		"Scenario generated successfully.",
	)

	entries, err := env.history.Query(context.Background(), history.QueryFilter{BookID: "b1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ScenarioText != "What if the hero lost?" {
		t.Fatalf("unexpected history: %+v", entries)
	}
	expectBody(t, env.get(t, "/stories"), "Dune", "Chapter 1: Arrival", "<strong>lost</strong>")
}

func TestGenerateEmptyScenario(t *testing.T) {
	env := setup(t)

	w := env.postForm(t, "/scenario/b1/generate", url.Values{"scenario": {"   "}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	expectBody(t, w, "Please describe a scenario before generating a story.")
}

func TestExportDownload(t *testing.T) {
	env := setup(t)

	w := env.get(t, "/scenario/b1/export")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename=Dune.pdf` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if w.Body.String() != "%PDF-1.4 exported" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestDismissNotice(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	env.notices.Notify(ctx, notifications.Notice{
		ID:       "n1",
		Severity: notifications.SeverityInfo,
		Message:  "Hello there",
		Action:   notifications.ActionDismiss,
		Duration: time.Minute,
	})
	expectBody(t, env.get(t, "/"), "Hello there")

	expectRedirect(t, env.postForm(t, "/notices/n1/dismiss", url.Values{"return": {"/upload"}}), "/upload")
	if strings.Contains(env.get(t, "/").Body.String(), "Hello there") {
		t.Error("dismissed notice still shown")
	}
}

func TestEventsWebsocket(t *testing.T) {
	env := setup(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/events", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var ev event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if ev.Type != "active_book" || ev.NavTarget != "/upload" {
		t.Errorf("initial event = %+v", ev)
	}

	book := testBook
	env.client.SetActiveBook(&book)
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read book: %v", err)
	}
	if ev.Type != "active_book" || ev.NavTarget != "/scenario/b1" || ev.Book == nil || ev.Book.Title != "Dune" {
		t.Errorf("book event = %+v", ev)
	}

	env.notices.Notify(context.Background(), notifications.Success("done"))
	ev = event{}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read notice: %v", err)
	}
	if ev.Type != "notice" || ev.Notice == nil || ev.Notice.Message != "done" {
		t.Errorf("notice event = %+v", ev)
	}
}

func TestNavTarget(t *testing.T) {
	if got := NavTarget(""); got != "/upload" {
		t.Errorf("NavTarget(\"\") = %q", got)
	}
	if got := NavTarget("a b"); got != "/scenario/a%20b" {
		t.Errorf("NavTarget(\"a b\") = %q", got)
	}
}

func TestSafeReturn(t *testing.T) {
	tests := map[string]string{
		"":              "/",
		"/upload":       "/upload",
		"//evil":        "/",
		"/\\evil":       "/",
		"https://x.com": "/",
	}
	for in, want := range tests {
		if got := safeReturn(in); got != want {
			t.Errorf("safeReturn(%q) = %q, want %q", in, got, want)
		}
	}
}
