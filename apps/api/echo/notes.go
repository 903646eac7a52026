package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studyroom/core/note"
)

type notesApi struct {
	lib *note.Library
}

func registerNotesAPI(g *echo.Group, lib *note.Library, uploadMW echo.MiddlewareFunc) {
	api := notesApi{lib: lib}

	ng := g.Group("/notes", sessionMiddleware())
	ng.GET("", api.query)
	ng.POST("", api.create, uploadMW)
	ng.GET("/subjects", api.querySubjects)
	ng.GET("/usage", api.usage)
	ng.GET("/:id", api.retrieve)
	ng.DELETE("/:id", api.destroy)
}

// httpPage collects what the Controller renders during a single request.
type httpPage struct {
	view *note.View
	doc  *note.Document
}

func (p *httpPage) Replace(v note.View)     { p.view = &v }
func (p *httpPage) Show(doc note.Document) { p.doc = &doc }

// controller returns a Controller for the request's session, rendering into `page`.
// Uploads go through the namespace's shared Pipeline, so concurrent requests cannot double submit.
func (api *notesApi) controller(ctx echo.Context, page *httpPage, confirm bool) *note.Controller {
	sess := getContextSession(ctx)
	store := api.lib.Store(sess)
	return note.NewController(note.ControllerDeps{
		Store:     store,
		Renderer:  api.lib.Renderer(sess),
		Pipeline:  api.lib.Pipeline(sess),
		Container: page,
		Display:   page,
		Confirmer: note.ConfirmFunc(func(string) bool { return confirm }),
	})
}

// formFile adapts an uploaded multipart file to note.File.
type formFile struct {
	fh *multipart.FileHeader
}

func (f formFile) Name() string { return f.fh.Filename }
func (f formFile) Size() int64  { return f.fh.Size }

func (f formFile) Open() (io.ReadCloser, error) {
	return f.fh.Open()
}

func parseNoteID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *notesApi) query(ctx echo.Context) error {
	page := new(httpPage)
	v := api.controller(ctx, page, false).Filter(ctx.Request().Context(), ctx.QueryParam("subject"))
	return ctx.JSON(http.StatusOK, v)
}

func (api *notesApi) create(ctx echo.Context) error {
	up := note.Upload{
		Title:   ctx.FormValue("title"),
		Subject: ctx.FormValue("subject"),
	}
	fh, err := ctx.FormFile("file")
	switch {
	case err == nil:
		up.File = formFile{fh: fh}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return errors.Wrap(err, "reading uploaded file")
	}

	page := new(httpPage)
	results, err := api.controller(ctx, page, false).Upload(ctx.Request().Context(), up)
	if err != nil {
		return err
	}
	res := <-results
	if res.Err != nil {
		return errors.Wrap(res.Err, "uploading note")
	}

	resp := UploadResponse{Note: note.Project([]note.Note{res.Note}, note.FilterAll)[0]}
	if page.view != nil {
		resp.View = *page.view
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *notesApi) querySubjects(ctx echo.Context) error {
	notes := api.lib.Store(getContextSession(ctx)).List(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, SubjectsResponse{Subjects: note.Subjects(notes)})
}

func (api *notesApi) usage(ctx echo.Context) error {
	sess := getContextSession(ctx)
	store := api.lib.Store(sess)
	used := store.Usage(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, UsageResponse{
		Namespace: store.Namespace(),
		Guest:     sess.IsGuest(),
		Bytes:     used,
		Human:     humanize.Bytes(uint64(used)),
	})
}

// retrieve serves the viewer page of a note. A missing note is answered with no content.
func (api *notesApi) retrieve(ctx echo.Context) error {
	id, err := parseNoteID(ctx)
	if err != nil {
		return err
	}

	page := new(httpPage)
	a := note.Action{Kind: note.ActionView, NoteID: id}
	if err = api.controller(ctx, page, false).Dispatch(ctx.Request().Context(), a); err != nil {
		return errors.Wrap(err, "viewing note")
	}
	if page.doc == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.HTML(http.StatusOK, page.doc.HTML)
}

// destroy deletes a note once `confirm` is true; otherwise nothing changes.
func (api *notesApi) destroy(ctx echo.Context) error {
	id, err := parseNoteID(ctx)
	if err != nil {
		return err
	}
	confirm, _ := strconv.ParseBool(ctx.QueryParam("confirm"))

	rctx := ctx.Request().Context()
	page := new(httpPage)
	c := api.controller(ctx, page, confirm)
	_, getErr := api.lib.Store(getContextSession(ctx)).Get(rctx, id)

	if err = c.Dispatch(rctx, note.Action{Kind: note.ActionDelete, NoteID: id}); err != nil {
		return errors.Wrap(err, "deleting note")
	}

	resp := DeleteResponse{Deleted: confirm && getErr == nil}
	if page.view != nil {
		resp.View = *page.view
	} else {
		resp.View = c.Refresh(rctx)
	}
	return ctx.JSON(http.StatusOK, resp)
}
