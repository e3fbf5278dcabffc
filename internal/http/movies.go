package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinenote/cinenote-api/internal/domain"
	"github.com/cinenote/cinenote-api/internal/ratings"
)

// flexInt accepts a JSON number or a numeric string. The year field has
// historically arrived both ways from form-backed clients.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		*f = flexInt(parsed)
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type movieCreateRequest struct {
	Title       string  `json:"title"`
	Year        flexInt `json:"year"`
	PosterURL   string  `json:"posterUrl"`
	Description string  `json:"description"`
}

type movieSummaryResponse struct {
	MovieID       string   `json:"movieId"`
	Title         string   `json:"title"`
	Year          int      `json:"year"`
	PosterURL     string   `json:"posterUrl"`
	AverageRating *float64 `json:"averageRating"`
	Description   string   `json:"description"`
}

type movieResponse struct {
	MovieID       string    `json:"movieId"`
	Title         string    `json:"title"`
	Year          int       `json:"year"`
	PosterURL     string    `json:"posterUrl"`
	Description   string    `json:"description"`
	RatingSum     int64     `json:"ratingSum"`
	RatingCount   int64     `json:"ratingCount"`
	AverageRating *float64  `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.engine.ListMovies(r.Context())
	if err != nil {
		s.respondEngineError(w, "list movies", err)
		return
	}

	items := make([]movieSummaryResponse, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieSummaryResponse{
			MovieID:       movie.ID,
			Title:         movie.Title,
			Year:          movie.Year,
			PosterURL:     movie.PosterURL,
			AverageRating: movie.AverageRating,
			Description:   movie.Description,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.engine.GetMovie(r.Context(), chi.URLParam(r, "movieID"))
	if err != nil {
		s.respondEngineError(w, "get movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Authenticate(r)
	if err != nil {
		s.respondUnauthenticated(w)
		return
	}
	if !s.verifier.IsAdmin(principal) {
		s.respondForbidden(w)
		return
	}

	var req movieCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := s.engine.CreateMovie(r.Context(), ratings.MovieInput{
		Title:       req.Title,
		Year:        int(req.Year),
		PosterURL:   req.PosterURL,
		Description: req.Description,
	})
	if err != nil {
		s.respondEngineError(w, "create movie", err)
		return
	}

	w.Header().Set("Location", "/movies/"+movie.ID)
	s.respondJSON(w, http.StatusCreated, toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Authenticate(r)
	if err != nil {
		s.respondUnauthenticated(w)
		return
	}
	if !s.verifier.IsAdmin(principal) {
		s.respondForbidden(w)
		return
	}

	if err := s.engine.DeleteMovie(r.Context(), chi.URLParam(r, "movieID")); err != nil {
		s.respondEngineError(w, "delete movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Movie deleted"})
}

func toMovieResponse(movie domain.Movie) movieResponse {
	return movieResponse{
		MovieID:       movie.ID,
		Title:         movie.Title,
		Year:          movie.Year,
		PosterURL:     movie.PosterURL,
		Description:   movie.Description,
		RatingSum:     movie.RatingSum,
		RatingCount:   movie.RatingCount,
		AverageRating: movie.AverageRating,
		CreatedAt:     movie.CreatedAt,
		UpdatedAt:     movie.UpdatedAt,
	}
}
