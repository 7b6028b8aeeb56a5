package dashboard

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/feedbackdesk/backend/internal/api/middleware"
	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	"github.com/feedbackdesk/backend/pkg/client"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"stars": func(rating int) string {
		if rating < 0 {
			rating = 0
		}
		if rating > entities.MaxRating {
			rating = entities.MaxRating
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", entities.MaxRating-rating)
	},
	"date": func(t time.Time) string {
		return t.UTC().Format("Jan 2, 2006 15:04")
	},
}

// Server serves the dashboard pages. Every request builds its own Store.
type Server struct {
	api   FeedbackAPI
	pages *template.Template
	now   func() time.Time
}

// NewServer parses the embedded templates and creates a dashboard server
func NewServer(api FeedbackAPI) (*Server, error) {
	pages, err := template.New("dashboard").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		api:   api,
		pages: pages,
		now:   time.Now,
	}, nil
}

type confirmPage struct {
	ID           string
	FilterRating string
	FilterSearch string
	BackURL      string
}

type indexPage struct {
	Store        *Store
	Draft        Draft
	FormErr      string
	Ratings      []int
	FilterRating string
	ExportURL    string
}

// Routes returns the dashboard handler
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.index)
	mux.HandleFunc("POST /feedback", s.submit)
	mux.HandleFunc("GET /feedback/{id}/delete", s.confirmDelete)
	mux.HandleFunc("POST /feedback/{id}/delete", s.deleteFeedback)
	mux.HandleFunc("GET /export", s.export)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	return middleware.LoggingMiddleware(mux)
}

// index handles GET /?rating=&search=
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	store := NewStore(s.api)
	status := http.StatusOK
	if err := store.ApplyFilter(r.Context(), filterFromQuery(r.URL.Query())); err != nil {
		status = http.StatusBadGateway
	}
	s.renderIndex(w, r, status, store, Draft{}, "")
}

// submit handles POST /feedback
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	store := NewStore(s.api)
	store.Filter = filterFromForm(r.PostForm)
	draft := DraftFromForm(r.PostForm.Get)

	err := store.Submit(r.Context(), draft)
	switch {
	case err == nil:
		s.renderIndex(w, r, http.StatusOK, store, Draft{}, "")
		return
	case store.Flash != "":
		// Created, but the reload failed.
		s.renderIndex(w, r, http.StatusBadGateway, store, Draft{}, "")
		return
	}

	// Rejected, so keep the draft on screen beside a fresh list.
	status := http.StatusBadRequest
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		status = statusFromAPI(err)
	}
	if loadErr := store.Load(r.Context()); loadErr != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(loadErr).Msg("Failed to reload feedback after rejected submit")
	}
	s.renderIndex(w, r, status, store, draft, errorMessage(err, client.MsgSubmitFailed))
}

// confirmDelete handles GET /feedback/{id}/delete
func (s *Server) confirmDelete(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())
	s.render(w, r, http.StatusOK, "confirm.html", confirmPage{
		ID:           r.PathValue("id"),
		FilterRating: ratingValue(filter),
		FilterSearch: filter.Search,
		BackURL:      withFilter("/", filter),
	})
}

// deleteFeedback handles POST /feedback/{id}/delete
func (s *Server) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	store := NewStore(s.api)
	store.Filter = filterFromForm(r.PostForm)
	confirmed := r.PostForm.Get("confirm") == "yes"
	if err := store.Delete(r.Context(), r.PathValue("id"), confirmed); err != nil {
		deleteErr := store.Err
		if loadErr := store.Load(r.Context()); loadErr != nil {
			observability.LoggerFromContext(r.Context()).Warn().Err(loadErr).Msg("Failed to reload feedback after rejected delete")
		}
		store.Err = deleteErr
		s.renderIndex(w, r, statusFromAPI(err), store, Draft{}, "")
		return
	}

	http.Redirect(w, r, withFilter("/", store.Filter), http.StatusSeeOther)
}

// export handles GET /export?rating=&search=
func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	store := NewStore(s.api)
	if err := store.ApplyFilter(r.Context(), filterFromQuery(r.URL.Query())); err != nil {
		s.renderIndex(w, r, http.StatusBadGateway, store, Draft{}, "")
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, store.Feedbacks); err != nil {
		store.Err = MsgNothingToExport
		s.renderIndex(w, r, http.StatusBadRequest, store, Draft{}, "")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(s.now())+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("Failed to write export")
	}
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, store *Store, draft Draft, formErr string) {
	page := indexPage{
		Store:        store,
		Draft:        draft,
		FormErr:      formErr,
		Ratings:      []int{1, 2, 3, 4, 5},
		FilterRating: ratingValue(store.Filter),
		ExportURL:    withFilter("/export", store.Filter),
	}

	s.render(w, r, status, "index.html", page)
}

// render executes into a buffer so a template failure never sends half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("template", name).Msg("Failed to render page")
		http.Error(w, "Server error. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// filterFromQuery ignores a rating that is not a number.
func filterFromQuery(query url.Values) entities.FeedbackFilter {
	filter := entities.FeedbackFilter{Search: strings.TrimSpace(query.Get("search"))}
	if rating, err := strconv.Atoi(strings.TrimSpace(query.Get("rating"))); err == nil {
		filter.Rating = &rating
	}
	return filter
}

// filterFromForm reads the filter a mutation form carries so the reload
// shows the same view the operator was looking at.
func filterFromForm(form url.Values) entities.FeedbackFilter {
	return filterFromQuery(url.Values{
		"rating": {form.Get("filter_rating")},
		"search": {form.Get("filter_search")},
	})
}

func ratingValue(filter entities.FeedbackFilter) string {
	if filter.Rating == nil {
		return ""
	}
	return strconv.Itoa(*filter.Rating)
}

// withFilter appends the filter to path as a query string.
func withFilter(path string, filter entities.FeedbackFilter) string {
	query := url.Values{}
	if filter.Rating != nil {
		query.Set("rating", ratingValue(filter))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func statusFromAPI(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return http.StatusBadGateway
}
