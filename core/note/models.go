package note

import "github.com/trezcool/studyroom/core"

const (
	// FilterAll is the subject filter matching every note.
	FilterAll = "all"

	DefaultMaxFileSize  int64 = 3000000 // raw bytes, inclusive
	DefaultDateFormat         = "1/2/2006"
	DefaultEmptyMessage       = "No notes found. Upload your first PDF!"
)

// Note is one uploaded study artifact. Notes are immutable once created.
type Note struct {
	ID       int64  `json:"id"` // creation time in ms, strictly increasing per namespace
	Title    string `json:"title"`
	Subject  string `json:"subject"`
	FileName string `json:"fileName"`
	FileData string `json:"fileData"` // data URL
	Date     string `json:"date"`     // display date, fixed at creation
}

// Matches reports whether the note is shown under the subject filter.
func (n Note) Matches(filter string) bool {
	filter = CleanFilter(filter)
	return filter == FilterAll || n.Subject == filter
}

// NewNote contains information needed to create a new Note.
type NewNote struct {
	Title    string `json:"title" validate:"notblank"`
	Subject  string `json:"subject"`
	FileName string `json:"fileName" validate:"required"`
	FileData string `json:"fileData" validate:"required,startswith=data:"`
}

// Clean trims the user-supplied text fields. They are stored as typed and escaped on output.
func (nn *NewNote) Clean() {
	nn.Title = core.CleanString(nn.Title)
	nn.Subject = core.CleanString(nn.Subject)
	nn.FileName = core.CleanString(nn.FileName)
}

// Upload is a user-submitted file waiting to become a Note.
type Upload struct {
	Title   string `json:"title" validate:"notblank"`
	Subject string `json:"subject"`
	File    File   `json:"-"`
}

func (up *Upload) Clean() {
	up.Title = core.CleanString(up.Title)
	up.Subject = core.CleanString(up.Subject)
}

// CleanFilter normalizes a subject filter; an empty filter means FilterAll.
func CleanFilter(filter string) string {
	filter = core.CleanString(filter)
	if filter == "" {
		return FilterAll
	}
	return filter
}
