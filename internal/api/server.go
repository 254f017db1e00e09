// Package api exposes the pipeline output over HTTP for the rendering client.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helenopaiva/congresscal/internal/dateutil"
	"github.com/helenopaiva/congresscal/internal/event"
	"github.com/helenopaiva/congresscal/internal/i18n"
	"github.com/helenopaiva/congresscal/internal/invite"
	"github.com/helenopaiva/congresscal/internal/monitoring"
	"github.com/helenopaiva/congresscal/internal/pipeline"
	"github.com/helenopaiva/congresscal/internal/source"
)

// SnapshotProvider hands out the most recent successful snapshot.
type SnapshotProvider interface {
	Current() (*source.Snapshot, bool)
}

// Server serves the agenda API.
type Server struct {
	snapshots SnapshotProvider
	languages *i18n.Languages
	invites   *invite.Builder
	loc       *time.Location
	httpSrv   *http.Server
}

// Options configure a Server.
type Options struct {
	Snapshots SnapshotProvider
	Languages *i18n.Languages
	Invites   *invite.Builder
	// Location is the server-side fallback timezone for "today" when the
	// viewer does not send its own civil date.
	Location *time.Location
}

// New creates a Server with all routes registered.
func New(opts Options) *Server {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	s := &Server{
		snapshots: opts.Snapshots,
		languages: opts.Languages,
		invites:   opts.Invites,
		loc:       loc,
	}

	e := echo.New()
	e.Use(middleware.Recover())

	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/agenda", s.handleAgenda)
	v1.GET("/agenda.ics", s.handleAgendaFeed)
	v1.GET("/deadlines", s.handleDeadlines)
	v1.GET("/congresses", s.handleCongresses)
	v1.GET("/events/:id/invite.ics", s.handleInvite)

	s.httpSrv = &http.Server{Handler: e, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// ServeTCP listens on bind and serves until ctx is cancelled.
func (s *Server) ServeTCP(ctx context.Context, bind string) error {
	if bind == "" {
		return errors.New("bind address required")
	}
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}
	go s.shutdownOnContext(ctx)

	err = s.httpSrv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) shutdownOnContext(ctx context.Context) {
	<-ctx.Done()
	timeout, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.httpSrv.Shutdown(timeout)
}

// Handler exposes the HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// viewOptions resolves the per-request language and civil date.
func (s *Server) viewOptions(c echo.Context) (pipeline.Options, error) {
	lang := s.languages.Resolve(c.QueryParam("lang"), c.Request().Header.Get("Accept-Language"))

	today := dateutil.Today(s.loc)
	if q := c.QueryParam("today"); q != "" {
		t, err := dateutil.ParseDate(q, s.loc)
		if err != nil {
			return pipeline.Options{}, fmt.Errorf("invalid today parameter %q", q)
		}
		today = t
	}

	return pipeline.Options{Today: today, Lang: lang}, nil
}

type listResponse struct {
	GeneratedAt string          `json:"generated_at"`
	Today       string          `json:"today"`
	Language    string          `json:"language"`
	Events      []pipeline.Item `json:"events"`
}

func (s *Server) handleHealth(c echo.Context) error {
	snap, ok := s.snapshots.Current()
	status := map[string]any{
		"status":   "ok",
		"snapshot": ok,
	}
	if ok {
		status["generated_at"] = snap.Events.GeneratedAt
		status["fetched_at"] = snap.FetchedAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, status)
}

// build runs one pipeline pass for the request, or reports the missing
// snapshot. The 503 is deliberate: an unavailable source must be visibly
// distinct from "no upcoming events".
func (s *Server) build(c echo.Context) (*pipeline.Lists, error) {
	snap, ok := s.snapshots.Current()
	if !ok {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "event snapshot unavailable")
	}

	opts, err := s.viewOptions(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lists := pipeline.Build(snap.Events, snap.Strings, s.languages.Default, opts)
	monitoring.ObserveBuild(len(lists.Deadlines), len(lists.Congresses))
	return lists, nil
}

func (s *Server) handleAgenda(c echo.Context) error {
	lists, err := s.build(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, lists)
}

func (s *Server) handleDeadlines(c echo.Context) error {
	lists, err := s.build(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{
		GeneratedAt: lists.GeneratedAt,
		Today:       lists.Today,
		Language:    lists.Language,
		Events:      lists.Deadlines,
	})
}

func (s *Server) handleCongresses(c echo.Context) error {
	lists, err := s.build(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse{
		GeneratedAt: lists.GeneratedAt,
		Today:       lists.Today,
		Language:    lists.Language,
		Events:      lists.Congresses,
	})
}

func (s *Server) handleAgendaFeed(c echo.Context) error {
	snap, ok := s.snapshots.Current()
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event snapshot unavailable")
	}
	opts, err := s.viewOptions(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	deadlines, congresses := pipeline.Select(snap.Events, opts.Today)

	reqs := make([]invite.Request, 0, len(deadlines)+len(congresses))
	for i := range congresses {
		reqs = append(reqs, s.inviteRequest(&congresses[i], snap.Strings, opts.Lang))
	}
	for i := range deadlines {
		reqs = append(reqs, s.inviteRequest(&deadlines[i], snap.Strings, opts.Lang))
	}

	feed, err := s.invites.Feed("congresscal", reqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "feed generation failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="agenda.ics"`)
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", feed)
}

func (s *Server) handleInvite(c echo.Context) error {
	snap, ok := s.snapshots.Current()
	if !ok {
		monitoring.ObserveInvite("unavailable")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event snapshot unavailable")
	}
	opts, err := s.viewOptions(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.PathParam("id")
	raw, found := findRaw(snap.Events.Events, id)
	if !found {
		monitoring.ObserveInvite("not_found")
		return echo.NewHTTPError(http.StatusNotFound, "unknown event id")
	}

	ev, ok := event.Normalize(raw, s.loc)
	if !ok {
		// No resolvable date: do not emit a partial invite.
		monitoring.ObserveInvite("invalid")
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "event has no resolvable date")
	}

	doc, err := s.invites.Build(s.inviteRequest(&ev, snap.Strings, opts.Lang))
	if err != nil {
		if errors.Is(err, invite.ErrInvalidEvent) {
			monitoring.ObserveInvite("invalid")
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "event has no resolvable date")
		}
		monitoring.ObserveInvite("error")
		return echo.NewHTTPError(http.StatusInternalServerError, "invite generation failed")
	}

	monitoring.ObserveInvite("ok")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s.ics"`, ev.ID))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", doc)
}

func (s *Server) inviteRequest(ev *event.Event, table *i18n.Table, lang string) invite.Request {
	typeLabel := table.TypeLabel(ev.KindTag, lang)
	return invite.Request{
		Event:      ev,
		Title:      pipeline.DisplayTitle(ev, typeLabel, lang, s.languages.Default),
		StatusNote: table.StatusNote(ev.Status, lang),
	}
}

func findRaw(events []event.Raw, id string) (event.Raw, bool) {
	for _, raw := range events {
		if raw.ID == id {
			return raw, true
		}
	}
	return event.Raw{}, false
}
