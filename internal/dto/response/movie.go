package response

import "cineclub/internal/data/entity"

type MovieListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ReleaseYear int    `json:"releaseYear"`
	GenreName   string `json:"genreName"`
}

type MovieDetail struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	ReleaseYear int     `json:"releaseYear"`
	GenreName   string  `json:"genreName"`
}

// TopRatedMovie keeps the field names of the legacy API; releaseDate is the
// release year.
type TopRatedMovie struct {
	MovieName   string  `json:"movieName"`
	ReleaseDate int     `json:"releaseDate"`
	Rate        float64 `json:"rate"`
}

func MovieToListItem(movie *entity.MovieWithGenre) MovieListItem {
	return MovieListItem{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		ReleaseYear: movie.ReleaseYear,
		GenreName:   movie.GenreName,
	}
}

func MovieToDetail(movie *entity.MovieWithGenre) MovieDetail {
	return MovieDetail{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		Description: movie.Description,
		ReleaseYear: movie.ReleaseYear,
		GenreName:   movie.GenreName,
	}
}

func RatingToTopRated(rating *entity.MovieRating) TopRatedMovie {
	return TopRatedMovie{
		MovieName:   rating.Title,
		ReleaseDate: rating.ReleaseYear,
		Rate:        rating.Rate,
	}
}
