package entity

import "github.com/google/uuid"

type Movie struct {
	Record
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	ReleaseYear int       `db:"release_year"`
	GenreID     uuid.UUID `db:"genre_id"`
}

// MovieWithGenre is a movie joined with its genre name
type MovieWithGenre struct {
	Movie
	GenreName string `db:"genre_name"`
}

// MovieRating is one row of the top-rated projection
type MovieRating struct {
	MovieID     uuid.UUID `db:"movie_id"`
	Title       string    `db:"title"`
	ReleaseYear int       `db:"release_year"`
	Rate        float64   `db:"rate"`
}
