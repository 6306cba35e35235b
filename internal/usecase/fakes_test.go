package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cineclub/internal/data/entity"
	"cineclub/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repositories shared by the service tests.

type fakeMovieRepo struct {
	movies      []*entity.MovieWithGenre
	ratings     []*entity.MovieRating
	searchCalls int
}

func (f *fakeMovieRepo) add(title string, year int, genre string) *entity.MovieWithGenre {
	m := &entity.MovieWithGenre{GenreName: genre}
	m.ID = uuid.New()
	m.Title = title
	m.ReleaseYear = year
	f.movies = append(f.movies, m)
	return m
}

func (f *fakeMovieRepo) Create(ctx context.Context, movie *entity.Movie) error {
	f.movies = append(f.movies, &entity.MovieWithGenre{Movie: *movie})
	return nil
}

func (f *fakeMovieRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.MovieWithGenre, error) {
	for _, m := range f.movies {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMovieRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	m, _ := f.FindByID(ctx, id)
	return m != nil, nil
}

func (f *fakeMovieRepo) FindAll(ctx context.Context) ([]*entity.MovieWithGenre, error) {
	out := append([]*entity.MovieWithGenre(nil), f.movies...)
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeMovieRepo) Search(ctx context.Context, term string, limit int) ([]*entity.MovieWithGenre, error) {
	f.searchCalls++
	all, _ := f.FindAll(ctx)
	var out []*entity.MovieWithGenre
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(term)) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMovieRepo) TopRated(ctx context.Context) ([]*entity.MovieRating, error) {
	return f.ratings, nil
}

func (f *fakeMovieRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.movies)), nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]entity.Review
	movies  *fakeMovieRepo

	// beforeUpdate runs inside Update before the version check
	beforeUpdate func(id uuid.UUID)
	// beforeCreateFirst runs inside CreateFirst before the duplicate check
	beforeCreateFirst func(review *entity.Review)
}

func newFakeReviewRepo(movies *fakeMovieRepo) *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]entity.Review), movies: movies}
}

func (f *fakeReviewRepo) title(movieID uuid.UUID) string {
	m, _ := f.movies.FindByID(context.Background(), movieID)
	if m == nil {
		return ""
	}
	return m.Title
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) CreateFirst(ctx context.Context, review *entity.Review) error {
	if f.beforeCreateFirst != nil {
		f.beforeCreateFirst(review)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == review.UserID && r.MovieID == review.MovieID {
			return repository.ErrDuplicate
		}
	}
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeReviewRepo) count(movieID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reviews {
		if r.MovieID == movieID {
			n++
		}
	}
	return n
}

func (f *fakeReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeReviewRepo) FindWithMovie(ctx context.Context, id uuid.UUID) (*entity.ReviewWithMovie, error) {
	r, _ := f.FindByID(ctx, id)
	if r == nil {
		return nil, nil
	}
	return &entity.ReviewWithMovie{Review: *r, MovieTitle: f.title(r.MovieID)}, nil
}

func (f *fakeReviewRepo) FindByMovieID(ctx context.Context, movieID uuid.UUID) ([]*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Review
	for _, r := range f.reviews {
		if r.MovieID == movieID {
			r := r
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAtUtc.After(out[j].CreatedAtUtc) })
	return out, nil
}

func (f *fakeReviewRepo) FindAll(ctx context.Context) ([]*entity.ReviewWithMovie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.ReviewWithMovie
	for _, r := range f.reviews {
		out = append(out, &entity.ReviewWithMovie{Review: r, MovieTitle: f.title(r.MovieID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovieTitle < out[j].MovieTitle })
	return out, nil
}

func (f *fakeReviewRepo) FindByUserAndMovie(ctx context.Context, userID, movieID uuid.UUID) (*entity.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == userID && r.MovieID == movieID {
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *entity.Review) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate(review.ID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.reviews[review.ID]
	if !ok || stored.Version != review.Version {
		return repository.ErrVersionConflict
	}
	stored.Content = review.Content
	stored.Rating = review.Rating
	stored.UpdatedAtUtc = review.UpdatedAtUtc
	stored.Version++
	f.reviews[review.ID] = stored
	review.Version = stored.Version
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[id]; !ok {
		return fmt.Errorf("review %s: %w", id, repository.ErrNotFound)
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r, _ := f.FindByID(ctx, id)
	return r != nil, nil
}

func (f *fakeReviewRepo) remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reviews, id)
}

type fakeUserRepo struct {
	users       map[uuid.UUID]*entity.User
	findByID    int
	findByIDErr error
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	f.findByID++
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	f.users[user.ID] = user
	return nil
}

func newUser(name string, role entity.UserRole) *entity.User {
	u := &entity.User{Username: name, Email: name + "@example.com", Role: role, IsActive: true}
	u.ID = uuid.New()
	return u
}

type fakeUsernameCache struct {
	entries map[uuid.UUID]string
	getErr  error
	sets    int
}

func newFakeUsernameCache() *fakeUsernameCache {
	return &fakeUsernameCache{entries: make(map[uuid.UUID]string)}
}

func (c *fakeUsernameCache) Get(ctx context.Context, id uuid.UUID) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	name, ok := c.entries[id]
	return name, ok, nil
}

func (c *fakeUsernameCache) Set(ctx context.Context, id uuid.UUID, username string) error {
	c.sets++
	c.entries[id] = username
	return nil
}

var errBoom = errors.New("boom")

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) FindValidSession(ctx context.Context, token uuid.UUID) (*entity.Session, error) {
	s, ok := f.sessions[token]
	if !ok || !s.Active(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionRepo) Revoke(ctx context.Context, token uuid.UUID) error {
	s, ok := f.sessions[token]
	if !ok || s.RevokedAt != nil {
		return fmt.Errorf("session: %w", repository.ErrNotFound)
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (f *fakeSessionRepo) CleanExpiredSessions(ctx context.Context) (int64, error) {
	var n int64
	for token, s := range f.sessions {
		if !s.Active(time.Now()) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}
