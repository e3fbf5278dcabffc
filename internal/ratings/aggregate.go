package ratings

import (
	"math"

	"github.com/cinenote/cinenote-api/internal/domain"
)

// round2 rounds half away from zero to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// average derives the cached mean. It is nil exactly when count is zero;
// sum and count stay authoritative.
func average(sum, count int64) *float64 {
	if count == 0 {
		return nil
	}
	avg := round2(float64(sum) / float64(count))
	return &avg
}

// upsertAggregate recomputes the movie aggregate after a review create or
// edit. previousRating contributes nothing (zero) on a create; the count
// only grows when no prior review existed.
func upsertAggregate(movie domain.Movie, previousRating, newRating int, editing bool) domain.Aggregate {
	sum := movie.RatingSum - int64(previousRating) + int64(newRating)
	count := movie.RatingCount
	if !editing {
		count++
	}
	return domain.Aggregate{Sum: sum, Count: count, Average: average(sum, count)}
}

// deleteAggregate recomputes the movie aggregate after removing a review,
// flooring both fields at zero.
func deleteAggregate(movie domain.Movie, rating int) domain.Aggregate {
	sum := max64(0, movie.RatingSum-int64(rating))
	count := max64(0, movie.RatingCount-1)
	return domain.Aggregate{Sum: sum, Count: count, Average: average(sum, count)}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
