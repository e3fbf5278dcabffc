package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinenote/cinenote-api/internal/domain"
	"github.com/cinenote/cinenote-api/internal/ratings"
)

// ReviewsRepository implements ratings.ReviewStore over postgres.
type ReviewsRepository struct {
	pool *pgxpool.Pool
}

const reviewColumns = `
    movie_id,
    author_id,
    display_name,
    rating,
    comment,
    created_at,
    updated_at
`

// Get fetches a review by its composite key.
func (r *ReviewsRepository) Get(ctx context.Context, key domain.ReviewKey) (domain.Review, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE movie_id = $1 AND author_id = $2`,
		key.MovieID, key.AuthorID)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Review{}, ratings.ErrNotFound
		}
		return domain.Review{}, err
	}
	return review, nil
}

// Put writes a review, overwriting any record under the same key. The
// composite key is what enforces one review per (movie, user) pair.
func (r *ReviewsRepository) Put(ctx context.Context, review domain.Review) error {
	const query = `
        INSERT INTO reviews (movie_id, author_id, display_name, rating, comment, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (movie_id, author_id)
        DO UPDATE SET display_name = EXCLUDED.display_name,
                      rating = EXCLUDED.rating,
                      comment = EXCLUDED.comment,
                      updated_at = EXCLUDED.updated_at
    `
	_, err := r.pool.Exec(ctx, query,
		review.MovieID,
		review.AuthorID,
		review.DisplayName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	return err
}

// Delete removes a review by its composite key. Deleting an absent review is
// not an error.
func (r *ReviewsRepository) Delete(ctx context.Context, key domain.ReviewKey) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE movie_id = $1 AND author_id = $2`,
		key.MovieID, key.AuthorID)
	return err
}

// ListByMovie returns the reviews for one movie, newest first.
func (r *ReviewsRepository) ListByMovie(ctx context.Context, movieID string) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE movie_id = $1 ORDER BY created_at DESC`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// ListAll returns every review, newest first.
func (r *ReviewsRepository) ListAll(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReviews(rows)
}

// DeleteBatch removes a batch of reviews in a single round trip.
func (r *ReviewsRepository) DeleteBatch(ctx context.Context, keys []domain.ReviewKey) error {
	if len(keys) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, key := range keys {
		batch.Queue(`DELETE FROM reviews WHERE movie_id = $1 AND author_id = $2`, key.MovieID, key.AuthorID)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range keys {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch delete review: %w", err)
		}
	}
	return nil
}

func collectReviews(rows pgx.Rows) ([]domain.Review, error) {
	reviews := make([]domain.Review, 0)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func scanReview(row pgx.Row) (domain.Review, error) {
	var review domain.Review
	err := row.Scan(
		&review.MovieID,
		&review.AuthorID,
		&review.DisplayName,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
