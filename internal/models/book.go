package models

// ChapterSummary is a chapter entry in a book's table of contents.
type ChapterSummary struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// Book is an uploaded manuscript as returned by the backend.
type Book struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Author   string           `json:"author,omitempty"`
	Chapters []ChapterSummary `json:"chapters"`
}

// Chapter returns the chapter summary at index, or false when the index
// is outside the book's chapter list.
func (b *Book) Chapter(index int) (ChapterSummary, bool) {
	if b == nil || index < 0 || index >= len(b.Chapters) {
		return ChapterSummary{}, false
	}
	return b.Chapters[index], true
}

// DisplayTitle returns the title, falling back to the id for untitled books.
func (b *Book) DisplayTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.ID
}

// FindBook returns the book with the given id from a list.
func FindBook(books []Book, id string) (*Book, bool) {
	for i := range books {
		if books[i].ID == id {
			return &books[i], true
		}
	}
	return nil, false
}

// Chapter is the full text of a single chapter.
type Chapter struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
