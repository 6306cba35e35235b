package response

import (
	"time"

	"cineclub/internal/data/entity"
	"cineclub/pkg/utils"
)

// UnknownUsername labels reviews whose author can no longer be resolved
const UnknownUsername = "Unknown"

// MovieReview is one entry of GET /api/reviews/{movieId}. reviewDate is the
// latest of creation and edit time rendered in the display zone; the raw UTC
// instants are returned next to it.
type MovieReview struct {
	ID            string     `json:"id"`
	Review        string     `json:"review"`
	ReviewRate    *int       `json:"reviewRate"`
	ReviewDate    string     `json:"reviewDate"`
	ReviewDateUtc time.Time  `json:"reviewDateUtc"`
	Username      string     `json:"username"`
	CreatedAtUtc  time.Time  `json:"createdAtUtc"`
	UpdatedAtUtc  *time.Time `json:"updatedAtUtc"`
	Edited        bool       `json:"edited"`
}

type ReviewResponse struct {
	ID            string     `json:"id"`
	MovieID       string     `json:"movieId"`
	MovieTitle    string     `json:"movieTitle,omitempty"`
	UserID        string     `json:"userId"`
	Username      string     `json:"username"`
	Content       string     `json:"content"`
	Rating        *int       `json:"rating"`
	CreatedAtUtc  time.Time  `json:"createdAtUtc"`
	UpdatedAtUtc  *time.Time `json:"updatedAtUtc"`
	DisplayDate   string     `json:"displayDate"`
	DisplayDateTz string     `json:"displayTimezone"`
	Version       int        `json:"version"`
}

func usernameOrUnknown(username string) string {
	if username == "" {
		return UnknownUsername
	}
	return username
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func MovieReviewToResponse(review *entity.Review, username string, loc *time.Location) MovieReview {
	last := review.LastActivity().UTC()

	return MovieReview{
		ID:            review.ID.String(),
		Review:        review.Content,
		ReviewRate:    review.Rating,
		ReviewDate:    utils.FormatLocal(last, loc),
		ReviewDateUtc: last,
		Username:      usernameOrUnknown(username),
		CreatedAtUtc:  review.CreatedAtUtc.UTC(),
		UpdatedAtUtc:  utcPtr(review.UpdatedAtUtc),
		Edited:        review.UpdatedAtUtc != nil,
	}
}

func ReviewToResponse(review *entity.Review, movieTitle, username string, loc *time.Location) ReviewResponse {
	if loc == nil {
		loc = time.UTC
	}

	return ReviewResponse{
		ID:            review.ID.String(),
		MovieID:       review.MovieID.String(),
		MovieTitle:    movieTitle,
		UserID:        review.UserID.String(),
		Username:      usernameOrUnknown(username),
		Content:       review.Content,
		Rating:        review.Rating,
		CreatedAtUtc:  review.CreatedAtUtc.UTC(),
		UpdatedAtUtc:  utcPtr(review.UpdatedAtUtc),
		DisplayDate:   utils.FormatLocal(review.LastActivity(), loc),
		DisplayDateTz: loc.String(),
		Version:       review.Version,
	}
}
