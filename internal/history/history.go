// Package history keeps a local record of every alternate storyline the user
// has generated.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/dynbook/internal/db"
	"github.com/ziadkadry99/dynbook/internal/models"
)

// ErrNotFound is returned when an entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Entry is one generated story together with the scenario that produced it.
type Entry struct {
	ID            string    `json:"id"`
	BookID        string    `json:"book_id"`
	BookTitle     string    `json:"book_title"`
	ChapterNumber int       `json:"chapter_number"`
	ChapterTitle  string    `json:"chapter_title"`
	ScenarioText  string    `json:"scenario_text"`
	OriginalText  string    `json:"original_text"`
	GeneratedText string    `json:"generated_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEntry builds an entry from a generation result.
func NewEntry(book *models.Book, chapter models.ChapterSummary, scenario string, story *models.GeneratedStory) Entry {
	e := Entry{
		BookID:        story.BookID,
		ChapterNumber: story.ChapterNumber,
		ChapterTitle:  chapter.Title,
		ScenarioText:  scenario,
		OriginalText:  story.OriginalText,
		GeneratedText: story.GeneratedText,
	}
	if book != nil {
		e.BookTitle = book.Title
		if e.BookID == "" {
			e.BookID = book.ID
		}
	}
	if e.ChapterNumber == 0 {
		e.ChapterNumber = chapter.Number
	}
	return e
}

// Recorder saves generated stories.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store provides CRUD operations for history entries.
type Store struct {
	db *db.DB
}

var _ Recorder = (*Store)(nil)

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts an entry. If e.ID is empty a UUID is generated.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO story_history (
			id, book_id, book_title, chapter_number, chapter_title,
			scenario_text, original_text, generated_text
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BookID, e.BookTitle, e.ChapterNumber, e.ChapterTitle,
		e.ScenarioText, e.OriginalText, e.GeneratedText,
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, book_id, book_title, chapter_number, chapter_title,
			   scenario_text, original_text, generated_text, created_at
		FROM story_history WHERE id = ?`, id)

	e, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	BookID        string
	ChapterNumber int
	Limit         int
	Offset        int
}

// Query returns entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.BookID != "" {
		clauses = append(clauses, "book_id = ?")
		args = append(args, filter.BookID)
	}
	if filter.ChapterNumber > 0 {
		clauses = append(clauses, "chapter_number = ?")
		args = append(args, filter.ChapterNumber)
	}

	query := "SELECT id, book_id, book_title, chapter_number, chapter_title, scenario_text, original_text, generated_text, created_at FROM story_history"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM story_history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting history entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e  Entry
		ts string
	)

	err := sc.Scan(
		&e.ID, &e.BookID, &e.BookTitle, &e.ChapterNumber, &e.ChapterTitle,
		&e.ScenarioText, &e.OriginalText, &e.GeneratedText, &ts,
	)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.CreatedAt = t
	} else if t, parseErr := time.Parse("2006-01-02T15:04:05Z", ts); parseErr == nil {
		e.CreatedAt = t
	}
	return &e, nil
}
