package models

// GenerateStoryRequest is the payload sent to the generation endpoint.
type GenerateStoryRequest struct {
	BookID        string `json:"bookId"`
	ChapterNumber int    `json:"chapterNumber"`
	ScenarioText  string `json:"scenarioText"`
}

// GeneratedStory is the alternate storyline produced for a chapter.
type GeneratedStory struct {
	BookID        string `json:"bookId"`
	ChapterNumber int    `json:"chapterNumber"`
	OriginalText  string `json:"originalText"`
	GeneratedText string `json:"generatedText"`
}
