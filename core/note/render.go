package note

import (
	"context"

	"github.com/dustin/go-humanize"
)

type ActionKind string

const (
	ActionView   ActionKind = "view"
	ActionDelete ActionKind = "delete"
)

// Action is a control exposed by a rendered note, bound to the note's id.
type Action struct {
	Kind   ActionKind `json:"kind"`
	NoteID int64      `json:"note_id"`
}

type (
	Item struct {
		ID       int64    `json:"id"`
		Title    string   `json:"title"`
		Subject  string   `json:"subject"`
		FileName string   `json:"file_name"`
		FileSize string   `json:"file_size"`
		Date     string   `json:"date"`
		Actions  []Action `json:"actions"`
	}

	View struct {
		Owner        string   `json:"owner"`
		Filter       string   `json:"filter"`
		Subjects     []string `json:"subjects"`
		Items        []Item   `json:"items"`
		Empty        bool     `json:"empty"`
		EmptyMessage string   `json:"empty_message,omitempty"`
		Usage        string   `json:"usage"`
	}
)

// Project maps the notes shown under `filter` to view items, keeping creation order.
func Project(notes []Note, filter string) []Item {
	filter = CleanFilter(filter)
	items := make([]Item, 0, len(notes))
	for _, n := range notes {
		if !n.Matches(filter) {
			continue
		}
		items = append(items, Item{
			ID:       n.ID,
			Title:    n.Title,
			Subject:  n.Subject,
			FileName: n.FileName,
			FileSize: humanize.Bytes(uint64(DataURLSize(n.FileData))),
			Date:     n.Date,
			Actions: []Action{
				{Kind: ActionView, NoteID: n.ID},
				{Kind: ActionDelete, NoteID: n.ID},
			},
		})
	}
	return items
}

// Subjects returns the distinct non-empty subjects in order of first appearance.
func Subjects(notes []Note) []string {
	seen := make(map[string]bool, len(notes))
	subjects := make([]string, 0)
	for _, n := range notes {
		if n.Subject != "" && !seen[n.Subject] {
			seen[n.Subject] = true
			subjects = append(subjects, n.Subject)
		}
	}
	return subjects
}

// Renderer projects a Store's current notes into a View. It never mutates the Store.
type Renderer struct {
	store        *Store
	emptyMessage string
}

func NewRenderer(store *Store, emptyMessage string) *Renderer {
	if emptyMessage == "" {
		emptyMessage = DefaultEmptyMessage
	}
	return &Renderer{store: store, emptyMessage: emptyMessage}
}

func (r *Renderer) Render(ctx context.Context, filter string) View {
	snap := r.store.snapshot(ctx)
	filter = CleanFilter(filter)

	v := View{
		Owner:    "Library for: " + r.store.Session().UserName,
		Filter:   filter,
		Subjects: Subjects(snap.notes),
		Items:    Project(snap.notes, filter),
		Usage:    humanize.Bytes(uint64(snap.size)),
	}
	if len(v.Items) == 0 {
		v.Empty = true
		v.EmptyMessage = r.emptyMessage
	}
	return v
}
