// Package web serves the browser front end: the home, upload and scenario
// views plus the navbar, theme toggle and notices shared by all pages.
package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/history"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/preferences"
	"github.com/ziadkadry99/dynbook/internal/progress"
	"github.com/ziadkadry99/dynbook/internal/scenario"
	"github.com/ziadkadry99/dynbook/internal/upload"
)

// requestTimeout bounds page requests. Generation can take a while.
const requestTimeout = 5 * time.Minute

// Feature is a card on the home page.
type Feature struct {
	Title       string
	Description string
}

// Features lists what the home page advertises.
var Features = []Feature{
	{
		Title:       "Upload Any Book",
		Description: "Import full-length manuscripts or sample chapters as PDF files with chapter-aware parsing.",
	},
	{
		Title:       "Design What-If Scenarios",
		Description: "Experiment with alternate timelines and character decisions to see how the story evolves.",
	},
	{
		Title:       "Side-by-Side Viewing",
		Description: "Review the original chapter alongside the AI-generated storyline for quick comparison.",
	},
}

// Options configures a Handler. Only Service is required.
type Options struct {
	Service     api.Service
	Preferences *preferences.Store
	Notices     *notifications.Dispatcher
	History     *history.Store
}

// Handler serves the web UI.
type Handler struct {
	svc     api.Service
	prefs   *preferences.Store
	notices *notifications.Dispatcher
	history *history.Store
	upload  *upload.Flow
	md      goldmark.Markdown
	pages   map[string]*template.Template

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu     sync.Mutex
	s      *scenario.Session
	opened bool
}

// New creates a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("web: a backend service is required")
	}
	notices := opts.Notices
	if notices == nil {
		notices = notifications.NewDispatcher(nil)
	}

	h := &Handler{
		svc:      opts.Service,
		prefs:    opts.Preferences,
		notices:  notices,
		history:  opts.History,
		upload:   upload.NewFlow(opts.Service, notices),
		md:       goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sessions: make(map[string]*sessionEntry),
	}

	pages, err := h.parsePages()
	if err != nil {
		return nil, err
	}
	h.pages = pages
	return h, nil
}

func (h *Handler) parsePages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"add":          func(a, b int) int { return a + b },
		"scenarioPath": upload.ScenarioPath,
		"markdown":     h.renderMarkdown,
	}
	layout, err := template.New("layout").Funcs(funcs).Parse(layoutTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing layout template: %w", err)
	}

	sources := map[string]string{
		"home":     homeTemplate,
		"upload":   uploadTemplate,
		"scenario": scenarioTemplate,
		"stories":  storiesTemplate,
	}
	pages := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		t, err := template.Must(layout.Clone()).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// RegisterRoutes mounts the UI on r. Unknown paths redirect to the home page.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/events", h.handleEvents)
	if store := h.notices.Store(); store != nil {
		notifications.RegisterRoutes(r, store)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Get("/", h.handleHome)
		r.Get("/upload", h.handleUploadPage)
		r.Post("/upload", h.handleUpload)
		r.Get("/upload/proceed", h.handleProceed)
		r.Route("/scenario/{bookId}", func(r chi.Router) {
			r.Get("/", h.handleScenario)
			r.Post("/navigate", h.handleNavigate)
			r.Post("/generate", h.handleGenerate)
			r.Get("/export", h.handleExport)
		})
		r.Post("/theme", h.handleTheme)
		r.Post("/notices/{id}/dismiss", h.handleDismiss)
		r.Get("/stories", h.handleStories)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
}

// Upload exposes the upload view state.
func (h *Handler) Upload() *upload.Flow { return h.upload }

// session returns the opened scenario session for bookID, locked for the
// caller. The returned func unlocks it.
func (h *Handler) session(ctx context.Context, bookID string) (*scenario.Session, func(), error) {
	h.mu.Lock()
	e, ok := h.sessions[bookID]
	if !ok {
		s := scenario.NewSession(h.svc, h.notices, bookID)
		s.SetReporter(progress.Nop{})
		if h.history != nil {
			s.SetRecorder(h.history)
		}
		e = &sessionEntry{s: s}
		h.sessions[bookID] = e
	}
	h.mu.Unlock()

	e.mu.Lock()
	if !e.opened {
		if err := e.s.Open(ctx); err != nil {
			e.mu.Unlock()
			h.forget(bookID, e)
			return nil, nil, err
		}
		e.opened = true
	}
	return e.s, e.mu.Unlock, nil
}

func (h *Handler) forget(bookID string, e *sessionEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[bookID] == e {
		delete(h.sessions, bookID)
	}
}

// page is the data every template receives.
type page struct {
	Title     string
	Path      string
	Theme     preferences.Theme
	NavTarget string
	Notices   []notifications.Notice
	CSS       template.CSS
	Script    template.JS
	Body      any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name, title string, status int, body any) {
	ctx := r.Context()
	p := page{
		Title:     title,
		Path:      r.URL.Path,
		Theme:     preferences.ThemeLight,
		NavTarget: NavTarget(h.svc.ActiveBook().ID()),
		CSS:       template.CSS(cssContent),
		Script:    template.JS(scriptContent),
		Body:      body,
	}
	if h.prefs != nil {
		theme, err := h.prefs.Theme(ctx)
		if err != nil {
			log.Printf("web: loading theme: %v", err)
		} else {
			p.Theme = theme
		}
	}
	if store := h.notices.Store(); store != nil {
		notices, err := store.Active(ctx, time.Now())
		if err != nil {
			log.Printf("web: loading notices: %v", err)
		}
		p.Notices = notices
	}

	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		log.Printf("web: rendering %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// NavTarget is where the navbar's "Generated Stories" link points.
func NavTarget(activeBookID string) string {
	if activeBookID == "" {
		return "/upload"
	}
	return upload.ScenarioPath(activeBookID)
}

// safeReturn keeps redirects on this site.
func safeReturn(path string) string {
	if len(path) == 0 || path[0] != '/' || (len(path) > 1 && (path[1] == '/' || path[1] == '\\')) {
		return "/"
	}
	return path
}
