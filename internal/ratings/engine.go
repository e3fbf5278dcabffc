// Package ratings implements the rating aggregation engine: the rules that
// keep a movie's (ratingSum, ratingCount, averageRating) triple consistent
// as reviews are created, edited and deleted, and the movie catalog
// operations that feed it. Aggregate application is a read-modify-write
// without a cross-record transaction; two concurrent writers on the same
// movie can lose an update (last writer wins). That weakness is part of the
// contract, not an oversight.
package ratings

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/cinenote/cinenote-api/internal/auth"
	"github.com/cinenote/cinenote-api/internal/domain"
)

// deleteBatchSize bounds how many review keys a single cascade batch removes.
const deleteBatchSize = 25

// deleteConcurrency bounds how many cascade batches run at once.
const deleteConcurrency = 8

// Engine orchestrates movie and review mutations against the stores.
type Engine struct {
	movies   MovieStore
	reviews  ReviewStore
	gate     *auth.Verifier
	validate *validator.Validate
	logger   *log.Logger
}

// New constructs an Engine over the given stores.
func New(movies MovieStore, reviews ReviewStore, gate *auth.Verifier, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		movies:   movies,
		reviews:  reviews,
		gate:     gate,
		validate: validator.New(),
		logger:   logger,
	}
}

// MovieInput carries the fields required to create a movie.
type MovieInput struct {
	Title       string `validate:"required"`
	Year        int    `validate:"required,min=1888"`
	PosterURL   string `validate:"required"`
	Description string `validate:"required"`
}

// ReviewInput carries the fields of a review submission.
type ReviewInput struct {
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"required"`
}

// UpsertResult is the outcome of a review submission.
type UpsertResult struct {
	Review    domain.Review
	Aggregate domain.Aggregate
	Created   bool
}

// DecoratedReview is a review plus the capability flags computed for the
// requesting principal.
type DecoratedReview struct {
	domain.Review
	auth.Capabilities
}

// ModeratedReview is a review enriched with its movie's title for the admin
// listing.
type ModeratedReview struct {
	domain.Review
	MovieTitle string
}

// CreateMovie validates the input, assigns a fresh identifier and inserts
// the record with a zeroed aggregate. The insert is existence-conditional:
// a duplicate identifier surfaces as a conflict rather than an overwrite.
func (e *Engine) CreateMovie(ctx context.Context, in MovieInput) (domain.Movie, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.PosterURL = strings.TrimSpace(in.PosterURL)
	in.Description = strings.TrimSpace(in.Description)
	if err := e.validate.StructCtx(ctx, in); err != nil {
		return domain.Movie{}, invalidInput("title, posterUrl, description and a year of 1888 or later are required")
	}

	now := time.Now().UTC()
	movie := domain.Movie{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Year:        in.Year,
		PosterURL:   in.PosterURL,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.movies.Insert(ctx, movie); err != nil {
		if errors.Is(err, ErrConflict) {
			return domain.Movie{}, conflict("movie already exists")
		}
		return domain.Movie{}, internal("insert movie", err)
	}
	return movie, nil
}

// GetMovie fetches the full movie record.
func (e *Engine) GetMovie(ctx context.Context, id string) (domain.Movie, error) {
	movie, err := e.movies.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Movie{}, notFound("movie not found")
		}
		return domain.Movie{}, internal("get movie", err)
	}
	return movie, nil
}

// ListMovies returns all movies, newest first.
func (e *Engine) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies, err := e.movies.List(ctx)
	if err != nil {
		return nil, internal("list movies", err)
	}
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].CreatedAt.After(movies[j].CreatedAt)
	})
	return movies, nil
}

// DeleteMovie removes a movie and all of its reviews. Reviews are deleted in
// bounded batches issued concurrently; every batch must finish before the
// movie record itself goes, so a failed batch aborts the movie delete and a
// retry reconciles whatever remains.
func (e *Engine) DeleteMovie(ctx context.Context, id string) error {
	if _, err := e.movies.Get(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound("movie not found")
		}
		return internal("get movie", err)
	}

	reviews, err := e.reviews.ListByMovie(ctx, id)
	if err != nil {
		return internal("list reviews for cascade", err)
	}

	if len(reviews) > 0 {
		keys := make([]domain.ReviewKey, 0, len(reviews))
		for _, review := range reviews {
			keys = append(keys, review.Key())
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(deleteConcurrency)
		for start := 0; start < len(keys); start += deleteBatchSize {
			end := start + deleteBatchSize
			if end > len(keys) {
				end = len(keys)
			}
			batch := keys[start:end]
			g.Go(func() error {
				return e.reviews.DeleteBatch(gctx, batch)
			})
		}
		if err := g.Wait(); err != nil {
			e.logger.Printf("ratings: cascade delete for movie %s failed: %v", id, err)
			return internal("delete reviews", err)
		}
	}

	if err := e.movies.Delete(ctx, id); err != nil {
		return internal("delete movie", err)
	}
	return nil
}

// UpsertReview creates or edits the caller's review of a movie and
// recomputes the aggregate. The review write commits before the aggregate
// update; if the latter fails the review stays and the drift heals on the
// next mutation touching the movie.
func (e *Engine) UpsertReview(ctx context.Context, movieID string, p *auth.Principal, in ReviewInput) (UpsertResult, error) {
	in.Comment = strings.TrimSpace(in.Comment)
	if err := e.validate.StructCtx(ctx, in); err != nil {
		if in.Rating < 1 || in.Rating > 5 {
			return UpsertResult{}, invalidInput("rating must be an integer between 1 and 5")
		}
		return UpsertResult{}, invalidInput("comment is required")
	}

	movie, err := e.movies.Get(ctx, movieID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return UpsertResult{}, notFound("movie not found")
		}
		return UpsertResult{}, internal("get movie", err)
	}

	key := domain.ReviewKey{MovieID: movieID, AuthorID: p.SubjectID}
	existing, err := e.reviews.Get(ctx, key)
	editing := true
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return UpsertResult{}, internal("get review", err)
		}
		editing = false
	}

	now := time.Now().UTC()
	review := domain.Review{
		MovieID:     movieID,
		AuthorID:    p.SubjectID,
		DisplayName: p.DisplayName,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if editing {
		review.CreatedAt = existing.CreatedAt
	}

	if err := e.reviews.Put(ctx, review); err != nil {
		return UpsertResult{}, internal("put review", err)
	}

	previous := 0
	if editing {
		previous = existing.Rating
	}
	agg := upsertAggregate(movie, previous, in.Rating, editing)
	if err := e.movies.ApplyAggregate(ctx, movieID, agg, now); err != nil {
		// The review write is already durable; the stale aggregate heals on
		// the next upsert or delete for this movie.
		e.logger.Printf("ratings: aggregate update for movie %s failed after review write: %v", movieID, err)
		return UpsertResult{}, internal("apply aggregate", err)
	}

	return UpsertResult{Review: review, Aggregate: agg, Created: !editing}, nil
}

// DeleteReview removes a review owned by reviewerID and recomputes the
// aggregate. Only the author or an admin may delete; the check runs before
// any load so unauthorized callers cause no reads.
func (e *Engine) DeleteReview(ctx context.Context, movieID, reviewerID string, p *auth.Principal) (domain.Aggregate, error) {
	if caps := e.gate.Capabilities(p, reviewerID); !caps.CanDelete {
		return domain.Aggregate{}, forbidden("only the author or an admin may delete a review")
	}

	key := domain.ReviewKey{MovieID: movieID, AuthorID: reviewerID}
	review, err := e.reviews.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Aggregate{}, notFound("review not found")
		}
		return domain.Aggregate{}, internal("get review", err)
	}

	// A review without its movie is a data anomaly, not an expected state.
	movie, err := e.movies.Get(ctx, movieID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Aggregate{}, notFound("movie not found")
		}
		return domain.Aggregate{}, internal("get movie", err)
	}

	if err := e.reviews.Delete(ctx, key); err != nil {
		return domain.Aggregate{}, internal("delete review", err)
	}

	agg := deleteAggregate(movie, review.Rating)
	if err := e.movies.ApplyAggregate(ctx, movieID, agg, time.Now().UTC()); err != nil {
		e.logger.Printf("ratings: aggregate update for movie %s failed after review delete: %v", movieID, err)
		return domain.Aggregate{}, internal("apply aggregate", err)
	}
	return agg, nil
}

// ListReviews returns a movie's reviews, newest first, each decorated with
// the caller's capability flags. Anonymous callers get both flags false.
func (e *Engine) ListReviews(ctx context.Context, movieID string, p *auth.Principal) ([]DecoratedReview, error) {
	reviews, err := e.reviews.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, internal("list reviews", err)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	decorated := make([]DecoratedReview, 0, len(reviews))
	for _, review := range reviews {
		decorated = append(decorated, DecoratedReview{
			Review:       review,
			Capabilities: e.gate.Capabilities(p, review.AuthorID),
		})
	}
	return decorated, nil
}

// ListAllReviews returns every review, newest first, enriched with its
// movie's title. Titles are looked up once per movie; a failed lookup
// degrades that row's title to "unknown" instead of failing the listing.
func (e *Engine) ListAllReviews(ctx context.Context) ([]ModeratedReview, error) {
	reviews, err := e.reviews.ListAll(ctx)
	if err != nil {
		return nil, internal("list all reviews", err)
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})

	titles := make(map[string]string)
	moderated := make([]ModeratedReview, 0, len(reviews))
	for _, review := range reviews {
		title, ok := titles[review.MovieID]
		if !ok {
			movie, err := e.movies.Get(ctx, review.MovieID)
			if err != nil {
				e.logger.Printf("ratings: title lookup for movie %s failed: %v", review.MovieID, err)
				title = "unknown"
			} else {
				title = movie.Title
			}
			titles[review.MovieID] = title
		}
		moderated = append(moderated, ModeratedReview{Review: review, MovieTitle: title})
	}
	return moderated, nil
}
