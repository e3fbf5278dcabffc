package domain

import "time"

// Movie represents the canonical movie entity.
//
// RatingSum and RatingCount are the authoritative aggregate fields;
// AverageRating is a cached derived value (nil whenever RatingCount is zero)
// and is only ever written through the ratings engine's update path.
type Movie struct {
	ID            string
	Title         string
	Year          int
	PosterURL     string
	Description   string
	RatingSum     int64
	RatingCount   int64
	AverageRating *float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Aggregate is the derived rating triple stored on a movie.
type Aggregate struct {
	Sum     int64
	Count   int64
	Average *float64
}
