package types

// FileResult is one matched file as handed over by the search backend.
//
// Lines is owned by the caller and is only read during formatting. Snippet is
// written in place by the formatter, so a FileResult must not be passed to two
// formatting calls that run at the same time.
type FileResult struct {
	Path     string            `json:"path"`
	Language string            `json:"language,omitempty"`
	Lines    []string          `json:"-"`
	Metadata map[string]string `json:"metadata,omitempty"`

	// Snippet holds the assembled excerpt after formatting.
	Snippet []SnippetLine `json:"snippet,omitempty"`
}

// LineCount returns the number of lines in the file
func (f *FileResult) LineCount() int {
	return len(f.Lines)
}

// SetSnippet attaches an assembled snippet to the result
func (f *FileResult) SetSnippet(lines []SnippetLine) {
	f.Snippet = lines
}

// SnippetLine is a single rendered line of an excerpt.
type SnippetLine struct {
	Line       string `json:"line"`        // Escaped and possibly highlighted HTML
	LineNumber int    `json:"line_number"` // 1-based
	Matching   bool   `json:"matching"`
	Matches    int    `json:"matches"`   // Number of distinct terms found on the line
	AddBreak   bool   `json:"add_break"` // Render a separator before this line
}
