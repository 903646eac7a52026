package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core"
	"github.com/trezcool/studyroom/core/note"
)

// console renders Views and Documents to the command line.
type console struct {
	out     io.Writer
	docPath string // empty: write documents to out
	shown   bool
	err     error
}

func (c *console) Replace(v note.View) {
	fmt.Fprintln(c.out, v.Owner)
	subjects := "-"
	if len(v.Subjects) > 0 {
		subjects = strings.Join(v.Subjects, ", ")
	}
	fmt.Fprintf(c.out, "Filter: %s | Subjects: %s | Used: %s\n", v.Filter, subjects, v.Usage)
	if v.Empty {
		fmt.Fprintln(c.out, v.EmptyMessage)
		return
	}

	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSUBJECT\tFILE\tSIZE\tDATE")
	for _, it := range v.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Title, it.Subject, it.FileName, it.FileSize, it.Date)
	}
	_ = w.Flush()
}

func (c *console) Show(doc note.Document) {
	c.shown = true
	if c.docPath == "" {
		fmt.Fprint(c.out, doc.HTML)
		return
	}
	if err := os.WriteFile(c.docPath, []byte(doc.HTML), 0o644); err != nil {
		c.err = errors.Wrapf(err, "writing %s", c.docPath)
		return
	}
	fmt.Fprintf(c.out, "Wrote %q to %s\n", doc.Title, c.docPath)
}

// ResetInput and Close make the console the upload surface.
func (c *console) ResetInput() {}

func (c *console) Close() {
	fmt.Fprintln(c.out, "Upload complete.")
}

// localFile is a file on disk chosen for upload.
type localFile struct {
	path string
	size int64
}

func openLocalFile(path string) (note.File, error) {
	if path == "" {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory", path)
	}
	return &localFile{path: path, size: info.Size()}, nil
}

func (f *localFile) Name() string { return filepath.Base(f.path) }
func (f *localFile) Size() int64  { return f.size }

func (f *localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

func (cli *commandLine) controller(sess core.Session, c *console, confirmer note.Confirmer) *note.Controller {
	return cli.lib.NewController(cli.lib.Store(sess), c, c, c, confirmer)
}

func (cli *commandLine) list(sess core.Session, subject string) error {
	c := &console{out: cli.out}
	cli.controller(sess, c, nil).Filter(context.Background(), subject)
	return nil
}

func (cli *commandLine) upload(sess core.Session, title, subject, path string) error {
	ctx := context.Background()

	up := note.Upload{Title: title, Subject: subject}
	f, err := openLocalFile(path)
	if err != nil {
		return err
	}
	if f != nil {
		up.File = f
	}

	c := &console{out: cli.out}
	results, err := cli.controller(sess, c, nil).Upload(ctx, up)
	if err != nil {
		return err
	}
	res := <-results
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintf(cli.out, "Created note %d\n", res.Note.ID)
	return nil
}

// view writes the viewer page of a note. A missing note writes nothing.
func (cli *commandLine) view(sess core.Session, id int64, out string) error {
	c := &console{out: cli.out, docPath: out}
	err := cli.controller(sess, c, nil).Dispatch(context.Background(), note.Action{Kind: note.ActionView, NoteID: id})
	if err != nil {
		return err
	}
	return c.err
}

func (cli *commandLine) delete(sess core.Session, id int64, confirm note.ConfirmFunc) error {
	c := &console{out: cli.out}
	var confirmed bool
	ask := func(prompt string) bool {
		confirmed = confirm(prompt)
		return confirmed
	}
	err := cli.controller(sess, c, note.ConfirmFunc(ask)).Dispatch(context.Background(), note.Action{Kind: note.ActionDelete, NoteID: id})
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cli.out, "Nothing deleted.")
	}
	return nil
}

func (cli *commandLine) usage(sess core.Session) error {
	store := cli.lib.Store(sess)
	fmt.Fprintf(cli.out, "%s: %s\n", store.Namespace(), humanize.Bytes(uint64(store.Usage(context.Background()))))
	return nil
}
