package web

import (
	"bytes"
	"errors"
	"html/template"
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/dynbook/internal/api"
	"github.com/ziadkadry99/dynbook/internal/history"
	"github.com/ziadkadry99/dynbook/internal/models"
	"github.com/ziadkadry99/dynbook/internal/notifications"
	"github.com/ziadkadry99/dynbook/internal/preferences"
	"github.com/ziadkadry99/dynbook/internal/scenario"
	"github.com/ziadkadry99/dynbook/internal/upload"
)

// maxUploadSize caps the multipart form kept in memory; larger files spill
// to disk.
const maxUploadSize = 32 << 20

const scenarioPlaceholder = "e.g. What if the antagonist secretly helped the hero from the beginning?"

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "home", "Home", http.StatusOK, struct{ Features []Feature }{Features})
}

type uploadView struct {
	Field     string
	Uploading bool
	Book      *models.Book
}

func (h *Handler) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "upload", "Upload", http.StatusOK, uploadView{
		Field:     api.UploadField,
		Uploading: h.upload.Uploading(),
		Book:      h.upload.Uploaded(),
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "invalid upload form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile(api.UploadField)
	if err != nil {
		// Lets the flow report the missing file.
		h.upload.UploadFile(ctx, "", nil, 0)
		http.Redirect(w, r, "/upload", http.StatusSeeOther)
		return
	}
	defer file.Close()

	if _, err := h.upload.UploadFile(ctx, header.Filename, file, header.Size); err != nil {
		log.Printf("web: upload: %v", err)
	}
	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

func (h *Handler) handleProceed(w http.ResponseWriter, r *http.Request) {
	path, ok := h.upload.ProceedPath()
	if !ok {
		path = "/upload"
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

type scenarioView struct {
	Base        string
	State       scenario.State
	Draft       string
	Generated   template.HTML
	Placeholder string
}

func (h *Handler) scenarioView(s *scenario.Session, draft string) scenarioView {
	st := s.State()
	if draft == "" {
		draft = st.Scenario
	}
	v := scenarioView{
		Base:        upload.ScenarioPath(s.BookID()),
		State:       st,
		Draft:       draft,
		Placeholder: scenarioPlaceholder,
	}
	if st.GeneratedText != "" {
		v.Generated = h.renderMarkdown(st.GeneratedText)
	}
	return v
}

func (h *Handler) handleScenario(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")

	s, unlock, err := h.session(r.Context(), bookID)
	if err != nil {
		log.Printf("web: opening %q: %v", bookID, err)
		h.render(w, r, "scenario", "Scenario", http.StatusOK, scenarioView{Placeholder: scenarioPlaceholder})
		return
	}
	view := h.scenarioView(s, "")
	unlock()

	h.render(w, r, "scenario", view.State.Book.DisplayTitle(), http.StatusOK, view)
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")
	dir, err := scenario.ParseDirection(r.FormValue("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s, unlock, err := h.session(r.Context(), bookID)
	if err == nil {
		if err := s.Navigate(r.Context(), dir); err != nil && !errors.Is(err, scenario.ErrOutOfBounds) {
			log.Printf("web: navigate %q: %v", bookID, err)
		}
		unlock()
	}
	http.Redirect(w, r, upload.ScenarioPath(bookID), http.StatusSeeOther)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")
	draft := r.FormValue("scenario")

	s, unlock, err := h.session(r.Context(), bookID)
	if err != nil {
		http.Redirect(w, r, upload.ScenarioPath(bookID), http.StatusSeeOther)
		return
	}
	_, err = s.Generate(r.Context(), draft)
	if err == nil {
		unlock()
		http.Redirect(w, r, upload.ScenarioPath(bookID), http.StatusSeeOther)
		return
	}
	view := h.scenarioView(s, draft)
	unlock()

	status := http.StatusBadGateway
	if errors.Is(err, scenario.ErrEmptyScenario) {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, r, "scenario", view.State.Book.DisplayTitle(), status, view)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookId")

	s, unlock, err := h.session(r.Context(), bookID)
	if err != nil {
		http.Redirect(w, r, upload.ScenarioPath(bookID), http.StatusSeeOther)
		return
	}
	var buf bytes.Buffer
	name, _, err := s.ExportTo(r.Context(), &buf)
	unlock()
	if err != nil {
		log.Printf("web: export %q: %v", bookID, err)
		http.Redirect(w, r, upload.ScenarioPath(bookID), http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	if h.prefs == nil {
		http.Error(w, "theme storage unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()

	var err error
	switch value := r.FormValue("theme"); value {
	case "", "toggle":
		_, err = h.prefs.ToggleTheme(ctx)
	default:
		theme, perr := preferences.ParseTheme(value)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		err = h.prefs.SetTheme(ctx, theme)
	}
	if err != nil {
		log.Printf("web: saving theme: %v", err)
		http.Error(w, "saving theme failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

func (h *Handler) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if store := h.notices.Store(); store != nil {
		err := store.Dismiss(r.Context(), chi.URLParam(r, "id"))
		if err != nil && !errors.Is(err, notifications.ErrNotFound) {
			log.Printf("web: dismissing notice: %v", err)
		}
	}
	http.Redirect(w, r, safeReturn(r.FormValue("return")), http.StatusSeeOther)
}

func (h *Handler) handleStories(w http.ResponseWriter, r *http.Request) {
	var entries []history.Entry
	if h.history != nil {
		var err error
		entries, err = h.history.Query(r.Context(), history.QueryFilter{
			BookID: r.URL.Query().Get("book"),
			Limit:  50,
		})
		if err != nil {
			log.Printf("web: loading history: %v", err)
		}
	}
	h.render(w, r, "stories", "Generated stories", http.StatusOK, struct{ Entries []history.Entry }{entries})
}
