package preferences

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/dynbook/internal/activebook"
	"github.com/ziadkadry99/dynbook/internal/db"
	"github.com/ziadkadry99/dynbook/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, ThemeLight)
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{"dark", ThemeDark, false},
		{"light", ThemeLight, false},
		{"Dark", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTheme(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestThemeToggleAndClass(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Error("Toggle should flip the theme")
	}
	if ThemeDark.BodyClass() != "dark-theme" || ThemeLight.BodyClass() != "light-theme" {
		t.Error("unexpected body classes")
	}
}

func TestDefaultThemeIsFallback(t *testing.T) {
	store := setupStore(t)
	got, err := store.Theme(context.Background())
	if err != nil {
		t.Fatalf("Theme: %v", err)
	}
	if got != ThemeLight {
		t.Errorf("Theme = %q, want light", got)
	}

	database, _ := db.OpenMemory()
	defer database.Close()
	dark := NewStore(database, ThemeDark)
	if got, _ := dark.Theme(context.Background()); got != ThemeDark {
		t.Errorf("Theme with dark fallback = %q", got)
	}
	bogus := NewStore(database, "purple")
	if got, _ := bogus.Theme(context.Background()); got != ThemeLight {
		t.Errorf("Theme with invalid fallback = %q", got)
	}
}

func TestSetAndToggleTheme(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := store.SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if got, _ := store.Theme(ctx); got != ThemeDark {
		t.Errorf("Theme = %q, want dark", got)
	}

	next, err := store.ToggleTheme(ctx)
	if err != nil {
		t.Fatalf("ToggleTheme: %v", err)
	}
	if next != ThemeLight {
		t.Errorf("ToggleTheme = %q, want light", next)
	}

	if err := store.SetTheme(ctx, "sepia"); err == nil {
		t.Error("expected error for invalid theme")
	}
}

func TestUnknownStoredThemeIsLight(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.Set(ctx, ThemeKey, "neon"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, _ := store.Theme(ctx); got != ThemeLight {
		t.Errorf("Theme = %q, want light", got)
	}
}

func TestThemePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dynbook.db")
	ctx := context.Background()

	d1, err := db.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := NewStore(d1, ThemeLight).SetTheme(ctx, ThemeDark); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	d1.Close()

	d2, err := db.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d2.Close()
	if got, _ := NewStore(d2, ThemeLight).Theme(ctx); got != ThemeDark {
		t.Errorf("Theme after reopen = %q, want dark", got)
	}
}

func TestActiveBookID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if id, err := store.ActiveBookID(ctx); err != nil || id != "" {
		t.Fatalf("ActiveBookID = %q, %v", id, err)
	}
	if err := store.SetActiveBookID(ctx, "b-1"); err != nil {
		t.Fatalf("SetActiveBookID: %v", err)
	}
	if id, _ := store.ActiveBookID(ctx); id != "b-1" {
		t.Errorf("ActiveBookID = %q, want b-1", id)
	}
	if err := store.SetActiveBookID(ctx, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if id, _ := store.ActiveBookID(ctx); id != "" {
		t.Errorf("ActiveBookID after clear = %q", id)
	}
}

func TestPersistActiveBookFlushesOnCancel(t *testing.T) {
	store := setupStore(t)
	holder := activebook.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := PersistActiveBook(ctx, store, holder)

	holder.Set(&models.Book{ID: "flushed"})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}

	if id, _ := store.ActiveBookID(context.Background()); id != "flushed" {
		t.Errorf("ActiveBookID = %q, want flushed", id)
	}
}
