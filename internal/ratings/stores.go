package ratings

import (
	"context"
	"errors"
	"time"

	"github.com/cinenote/cinenote-api/internal/domain"
)

// Store-contract sentinels. Implementations translate their driver errors
// into these so the engine stays storage-agnostic.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("ratings: not found")
	// ErrConflict indicates an existence-conditional write lost: the key
	// already exists.
	ErrConflict = errors.New("ratings: conflict")
)

// MovieStore is the durable keyed storage contract for movie records.
// ApplyAggregate is the single numeric-field update of the aggregate triple;
// it is a plain last-writer-wins write, deliberately without compare-and-swap.
type MovieStore interface {
	Insert(ctx context.Context, movie domain.Movie) error
	Get(ctx context.Context, id string) (domain.Movie, error)
	List(ctx context.Context) ([]domain.Movie, error)
	Delete(ctx context.Context, id string) error
	ApplyAggregate(ctx context.Context, id string, agg domain.Aggregate, updatedAt time.Time) error
}

// ReviewStore is the durable storage contract for review records, addressed
// by the (movie, author) composite key.
type ReviewStore interface {
	Get(ctx context.Context, key domain.ReviewKey) (domain.Review, error)
	Put(ctx context.Context, review domain.Review) error
	Delete(ctx context.Context, key domain.ReviewKey) error
	ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error)
	ListAll(ctx context.Context) ([]domain.Review, error)
	DeleteBatch(ctx context.Context, keys []domain.ReviewKey) error
}
