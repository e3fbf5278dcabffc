package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cinenote/cinenote-api/internal/ratings"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type reviewResponse struct {
	ReviewID    string    `json:"reviewId"`
	AuthorID    string    `json:"authorId"`
	DisplayName string    `json:"displayName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CanEdit     bool      `json:"canEdit"`
	CanDelete   bool      `json:"canDelete"`
}

type upsertReviewResponse struct {
	MovieID       string   `json:"movieId"`
	ReviewID      string   `json:"reviewId"`
	Rating        int      `json:"rating"`
	Comment       string   `json:"comment"`
	AverageRating *float64 `json:"averageRating"`
	RatingCount   int64    `json:"ratingCount"`
}

type deleteReviewResponse struct {
	Message       string   `json:"message"`
	AverageRating *float64 `json:"averageRating"`
	RatingCount   int64    `json:"ratingCount"`
}

type moderatedReviewResponse struct {
	MovieID     string    `json:"movieId"`
	MovieTitle  string    `json:"movieTitle"`
	ReviewID    string    `json:"reviewId"`
	AuthorID    string    `json:"authorId"`
	DisplayName string    `json:"displayName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	// Anonymous browsing is allowed; invalid credentials degrade to an
	// anonymous caller with both capability flags false.
	principal := s.verifier.Identify(r)

	reviews, err := s.engine.ListReviews(r.Context(), chi.URLParam(r, "movieID"), principal)
	if err != nil {
		s.respondEngineError(w, "list reviews", err)
		return
	}

	items := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, reviewResponse{
			ReviewID:    review.AuthorID,
			AuthorID:    review.AuthorID,
			DisplayName: review.DisplayName,
			Rating:      review.Rating,
			Comment:     review.Comment,
			CreatedAt:   review.CreatedAt,
			UpdatedAt:   review.UpdatedAt,
			CanEdit:     review.CanEdit,
			CanDelete:   review.CanDelete,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleUpsertReview(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Authenticate(r)
	if err != nil {
		s.respondUnauthenticated(w)
		return
	}

	var req reviewRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	result, err := s.engine.UpsertReview(r.Context(), chi.URLParam(r, "movieID"), principal, ratings.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		s.respondEngineError(w, "upsert review", err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	s.respondJSON(w, status, upsertReviewResponse{
		MovieID:       result.Review.MovieID,
		ReviewID:      result.Review.AuthorID,
		Rating:        result.Review.Rating,
		Comment:       result.Review.Comment,
		AverageRating: result.Aggregate.Average,
		RatingCount:   result.Aggregate.Count,
	})
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Authenticate(r)
	if err != nil {
		s.respondUnauthenticated(w)
		return
	}

	agg, err := s.engine.DeleteReview(r.Context(), chi.URLParam(r, "movieID"), chi.URLParam(r, "reviewerID"), principal)
	if err != nil {
		s.respondEngineError(w, "delete review", err)
		return
	}
	s.respondJSON(w, http.StatusOK, deleteReviewResponse{
		Message:       "Review deleted",
		AverageRating: agg.Average,
		RatingCount:   agg.Count,
	})
}

func (s *Server) handleListAllReviews(w http.ResponseWriter, r *http.Request) {
	principal, err := s.verifier.Authenticate(r)
	if err != nil {
		s.respondUnauthenticated(w)
		return
	}
	if !s.verifier.IsAdmin(principal) {
		s.respondForbidden(w)
		return
	}

	reviews, err := s.engine.ListAllReviews(r.Context())
	if err != nil {
		s.respondEngineError(w, "list all reviews", err)
		return
	}

	items := make([]moderatedReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		items = append(items, moderatedReviewResponse{
			MovieID:     review.MovieID,
			MovieTitle:  review.MovieTitle,
			ReviewID:    review.AuthorID,
			AuthorID:    review.AuthorID,
			DisplayName: review.DisplayName,
			Rating:      review.Rating,
			Comment:     review.Comment,
			CreatedAt:   review.CreatedAt,
			UpdatedAt:   review.UpdatedAt,
		})
	}
	s.respondJSON(w, http.StatusOK, items)
}
