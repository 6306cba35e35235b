package request

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// CreateReviewRequest carries the user-editable review fields. A client
// supplied creation time is not part of it and is never honoured.
type CreateReviewRequest struct {
	MovieID string `json:"movieId" validate:"required,uuid"`
	Content string `json:"content" validate:"required,max=2000"`
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
}

// UpdateReviewRequest replaces content and rating. Version is the value the
// client read; when omitted the currently stored version is used.
type UpdateReviewRequest struct {
	ID      string `json:"id,omitempty" validate:"omitempty,uuid"`
	Content string `json:"content" validate:"required,max=2000"`
	Rating  *int   `json:"rating,omitempty" validate:"omitempty,min=1,max=10"`
	Version *int   `json:"version,omitempty" validate:"omitempty,min=1"`
}

func (r *CreateReviewRequest) BindForm(values url.Values) error {
	r.MovieID = formValue(values, "movieId", "MovieId")
	r.Content = formValue(values, "content", "Content")

	rating, err := optionalInt(values, "rating", "Rating")
	if err != nil {
		return err
	}
	r.Rating = rating
	return nil
}

func (r *UpdateReviewRequest) BindForm(values url.Values) error {
	r.ID = formValue(values, "id", "Id")
	r.Content = formValue(values, "content", "Content")

	rating, err := optionalInt(values, "rating", "Rating")
	if err != nil {
		return err
	}
	r.Rating = rating

	version, err := optionalInt(values, "version", "Version")
	if err != nil {
		return err
	}
	r.Version = version
	return nil
}

// form posts from the browser pages use PascalCase names
func formValue(values url.Values, keys ...string) string {
	for _, key := range keys {
		if v, ok := values[key]; ok && len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
	}
	return ""
}

func optionalInt(values url.Values, keys ...string) (*int, error) {
	raw := formValue(values, keys...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a whole number", keys[0])
	}
	return &n, nil
}
