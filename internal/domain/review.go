package domain

import "time"

// ReviewKey is the composite identity of a review. AuthorID is the
// authenticated subject id, so "review id" and "author id" are the same
// value: at most one review per (movie, user) pair, enforced by the key
// itself rather than by a uniqueness scan.
type ReviewKey struct {
	MovieID  string
	AuthorID string
}

// Review represents a single user's review of a movie.
type Review struct {
	MovieID     string
	AuthorID    string
	DisplayName string
	Rating      int
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key returns the review's composite identity.
func (r Review) Key() ReviewKey {
	return ReviewKey{MovieID: r.MovieID, AuthorID: r.AuthorID}
}
