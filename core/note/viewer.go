package note

import (
	"context"
	"html/template"
	"strings"

	"github.com/pkg/errors"
)

var documentTmpl = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
</head>
<body style="margin:0;"><iframe src="{{.Src}}" title="{{.FileName}}" style="border:0; width:100%; height:100vh;"></iframe></body>
</html>
`))

// Document is a standalone page displaying a single note's file.
type Document struct {
	NoteID int64
	Title  string
	HTML   string
}

// NewDocument renders the viewer page of `n`.
func NewDocument(n Note) (Document, error) {
	src := template.URL("about:blank")
	if strings.HasPrefix(n.FileData, "data:") {
		src = template.URL(n.FileData)
	}

	var sb strings.Builder
	err := documentTmpl.Execute(&sb, struct {
		Title    string
		FileName string
		Src      template.URL
	}{n.Title, n.FileName, src})
	if err != nil {
		return Document{}, errors.Wrap(err, "rendering document")
	}
	return Document{NoteID: n.ID, Title: n.Title, HTML: sb.String()}, nil
}

// Open returns the viewer Document of the note with the given id.
// A missing note (e.g. already deleted) is not an error: ok is false.
func (r *Renderer) Open(ctx context.Context, id int64) (doc Document, ok bool, err error) {
	n, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Document{}, false, nil
		}
		return Document{}, false, err
	}
	if doc, err = NewDocument(n); err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}
