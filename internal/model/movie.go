package model

import (
	"time"
)

// MovieSummary is a denormalized snapshot of a catalog entry taken at the
// moment it was added to a watchlist. The id is the external catalog's id,
// not a locally generated one. Later catalog updates do not propagate here.
type MovieSummary struct {
	ID           int64     `db:"movie_id" json:"id"`
	Title        string    `db:"title" json:"title"`
	PosterPath   string    `db:"poster_path" json:"poster_path"`
	BackdropPath string    `db:"backdrop_path" json:"backdrop_path"`
	ReleaseDate  string    `db:"release_date" json:"release_date"`
	VoteAverage  float64   `db:"vote_average" json:"vote_average"`
	Overview     string    `db:"overview" json:"overview"`
	AddedAt      time.Time `db:"added_at" json:"addedAt"`
}
