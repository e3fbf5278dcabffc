package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinenote/cinenote-api/internal/domain"
	"github.com/cinenote/cinenote-api/internal/ratings"
)

// MoviesRepository implements ratings.MovieStore over postgres.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

const movieColumns = `
    id,
    title,
    release_year,
    poster_url,
    description,
    rating_sum,
    rating_count,
    average_rating,
    created_at,
    updated_at
`

// Insert stores a new movie. The write is existence-conditional: an existing
// identifier is reported as ratings.ErrConflict rather than overwritten.
func (r *MoviesRepository) Insert(ctx context.Context, movie domain.Movie) error {
	const query = `
        INSERT INTO movies (id, title, release_year, poster_url, description, rating_sum, rating_count, average_rating, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        ON CONFLICT (id) DO NOTHING
    `
	tag, err := r.pool.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Year,
		movie.PosterURL,
		movie.Description,
		movie.RatingSum,
		movie.RatingCount,
		movie.AverageRating,
		movie.CreatedAt,
		movie.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ratings.ErrConflict
	}
	return nil
}

// Get fetches a movie by its identifier.
func (r *MoviesRepository) Get(ctx context.Context, id string) (domain.Movie, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id)
	movie, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ratings.ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// List returns all movies, newest first.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// Delete removes a movie record.
func (r *MoviesRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	return err
}

// ApplyAggregate overwrites the aggregate triple on a movie. This is a plain
// absolute write with no compare-and-swap: concurrent writers race and the
// last one wins, matching the engine's documented consistency model. A
// vanished movie row is not an error here.
func (r *MoviesRepository) ApplyAggregate(ctx context.Context, id string, agg domain.Aggregate, updatedAt time.Time) error {
	const query = `
        UPDATE movies
        SET rating_sum = $2, rating_count = $3, average_rating = $4, updated_at = $5
        WHERE id = $1
    `
	_, err := r.pool.Exec(ctx, query, id, agg.Sum, agg.Count, agg.Average, updatedAt)
	return err
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&movie.Year,
		&movie.PosterURL,
		&movie.Description,
		&movie.RatingSum,
		&movie.RatingCount,
		&movie.AverageRating,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
