package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"cineclub/internal/data/entity"
	"cineclub/internal/data/repository"
	"cineclub/internal/dto/request"
	"cineclub/internal/dto/response"
	"cineclub/pkg/metrics"

	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"
)

var (
	testNow = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	testLoc = time.FixedZone("UTC+3", 3*60*60)
)

type reviewFixture struct {
	svc     *reviewService
	movies  *fakeMovieRepo
	reviews *fakeReviewRepo
	users   *fakeUserRepo

	movie *entity.MovieWithGenre
	alice *entity.User
	bob   *entity.User
	admin *entity.User
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	f := &reviewFixture{movies: &fakeMovieRepo{}}
	f.reviews = newFakeReviewRepo(f.movies)
	f.alice = newUser("alice", entity.RoleMember)
	f.bob = newUser("bob", entity.RoleMember)
	f.admin = newUser("root", entity.RoleAdmin)
	f.users = newFakeUserRepo(f.alice, f.bob, f.admin)
	f.movie = f.movies.add("Inception", 2010, "Science Fiction")

	repo := &repository.Repository{Movie: f.movies, Review: f.reviews, User: f.users}
	identity := NewIdentityProvider(f.users, zap.NewNop())
	f.svc = NewReviewService(repo, identity, testLoc, zap.NewNop()).(*reviewService)
	f.svc.now = func() time.Time { return testNow }
	return f
}

// seed stores a review directly, bypassing the service.
func (f *reviewFixture) seed(author *entity.User, content string, created time.Time) entity.Review {
	r := entity.Review{
		ID:           uuid.New(),
		Content:      content,
		CreatedAtUtc: created,
		UserID:       author.ID,
		MovieID:      f.movie.ID,
		Version:      1,
	}
	f.reviews.reviews[r.ID] = r
	return r
}

func intPtr(n int) *int { return &n }

func TestReviewService_CreateReview(t *testing.T) {
	tests := []struct {
		name      string
		actor     func(f *reviewFixture) uuid.UUID
		req       func(f *reviewFixture) *request.CreateReviewRequest
		wantErr   error
		wantField string
	}{
		{
			name:  "valid review",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "Great", Rating: intPtr(8)}
			},
		},
		{
			name:  "rating is optional",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "No score"}
			},
		},
		{
			name:  "unknown movie",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: uuid.NewString(), Content: "Great"}
			},
			wantErr: ErrMovieNotFound,
		},
		{
			name:  "rating out of range",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "Great", Rating: intPtr(11)}
			},
			wantErr:   ErrValidation,
			wantField: "rating",
		},
		{
			name:  "empty content",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: f.movie.ID.String()}
			},
			wantErr:   ErrValidation,
			wantField: "content",
		},
		{
			name:  "anonymous",
			actor: func(f *reviewFixture) uuid.UUID { return uuid.Nil },
			req: func(f *reviewFixture) *request.CreateReviewRequest {
				return &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "Great"}
			},
			wantErr: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			req := tt.req(f)

			got, err := f.svc.CreateReview(context.Background(), tt.actor(f), req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateReview() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantField != "" {
					var verr *ValidationError
					if !errors.As(err, &verr) {
						t.Fatalf("error %v is not a *ValidationError", err)
					}
					if _, ok := verr.Fields[tt.wantField]; !ok {
						t.Errorf("validation fields = %v, want key %q", verr.Fields, tt.wantField)
					}
				}
				if len(f.reviews.reviews) != 0 {
					t.Errorf("review stored despite error")
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateReview() error = %v", err)
			}
			if got.Version != 1 {
				t.Errorf("Version = %d, want 1", got.Version)
			}
			if !got.CreatedAtUtc.Equal(testNow) {
				t.Errorf("CreatedAtUtc = %v, want server time %v", got.CreatedAtUtc, testNow)
			}
			if got.UpdatedAtUtc != nil {
				t.Errorf("UpdatedAtUtc = %v, want nil for a new review", got.UpdatedAtUtc)
			}
			if got.Username != "alice" || got.MovieTitle != "Inception" {
				t.Errorf("got username %q title %q", got.Username, got.MovieTitle)
			}
			if got.DisplayDate != "02.01.2024 13:00" {
				t.Errorf("DisplayDate = %q, want local time", got.DisplayDate)
			}
		})
	}
}

func TestReviewService_CreateReviewOncePerMovie(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	req := &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "First"}

	first, err := f.svc.CreateReview(ctx, f.alice.ID, req)
	if err != nil {
		t.Fatalf("first CreateReview() error = %v", err)
	}

	_, err = f.svc.CreateReview(ctx, f.alice.ID, &request.CreateReviewRequest{
		MovieID: f.movie.ID.String(),
		Content: "Second",
		Rating:  intPtr(2),
	})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("second CreateReview() error = %v, want ErrAlreadyReviewed", err)
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("duplicate should be reported as a validation failure")
	}

	stored := f.reviews.reviews[uuid.MustParse(first.ID)]
	if stored.Content != "First" || stored.Rating != nil || stored.Version != 1 || stored.UpdatedAtUtc != nil {
		t.Errorf("original review changed: %+v", stored)
	}
	if n := f.reviews.count(f.movie.ID); n != 1 {
		t.Errorf("stored reviews after rejected duplicate = %d, want 1", n)
	}

	// another user is unaffected
	if _, err := f.svc.CreateReview(ctx, f.bob.ID, req); err != nil {
		t.Fatalf("CreateReview() for bob error = %v", err)
	}

	// administrators may post more than one
	for i := 0; i < 2; i++ {
		if _, err := f.svc.CreateReview(ctx, f.admin.ID, req); err != nil {
			t.Fatalf("admin CreateReview() #%d error = %v", i+1, err)
		}
	}

	if n := f.reviews.count(f.movie.ID); n != 4 {
		t.Errorf("stored reviews = %d, want 4", n)
	}
}

func TestReviewService_CreateReviewConcurrentDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		author    func(f *reviewFixture) *entity.User
		wantErr   error
		wantCount int
	}{
		{"member loses the race", func(f *reviewFixture) *entity.User { return f.alice }, ErrAlreadyReviewed, 1},
		{"admin still posts", func(f *reviewFixture) *entity.User { return f.admin }, nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			author := tt.author(f)

			// a competing request commits between the lookup and the insert
			f.reviews.beforeCreateFirst = func(*entity.Review) {
				f.reviews.beforeCreateFirst = nil
				f.seed(author, "Competing", testNow)
			}

			req := &request.CreateReviewRequest{MovieID: f.movie.ID.String(), Content: "Mine"}
			_, err := f.svc.CreateReview(context.Background(), author.ID, req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateReview() error = %v, want %v", err, tt.wantErr)
			}
			if n := f.reviews.count(f.movie.ID); n != tt.wantCount {
				t.Errorf("stored reviews = %d, want %d", n, tt.wantCount)
			}
		})
	}
}

func TestReviewService_UpdateReview(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *reviewFixture) uuid.UUID
		req     func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest
		setup   func(f *reviewFixture, r entity.Review)
		wantErr error
	}{
		{
			name:  "owner edits",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{ID: r.ID.String(), Content: "Edited", Rating: intPtr(6), Version: intPtr(1)}
			},
		},
		{
			name:  "admin edits someone else's review",
			actor: func(f *reviewFixture) uuid.UUID { return f.admin.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Moderated"}
			},
		},
		{
			name:  "stranger is forbidden",
			actor: func(f *reviewFixture) uuid.UUID { return f.bob.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Hijacked"}
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "stranger with invalid body is still forbidden",
			actor: func(f *reviewFixture) uuid.UUID { return f.bob.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{}
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "owner with invalid body",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Edited", Rating: intPtr(0)}
			},
			wantErr: ErrValidation,
		},
		{
			name:  "body id differs from path",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{ID: uuid.NewString(), Content: "Edited"}
			},
			wantErr: ErrNotFound,
		},
		{
			name:  "stale version",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Edited", Version: intPtr(1)}
			},
			setup: func(f *reviewFixture, r entity.Review) {
				r.Version = 2
				f.reviews.reviews[r.ID] = r
			},
			wantErr: ErrEditConflict,
		},
		{
			name:  "row deleted during edit",
			actor: func(f *reviewFixture) uuid.UUID { return f.alice.ID },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Edited"}
			},
			setup: func(f *reviewFixture, r entity.Review) {
				f.reviews.beforeUpdate = f.reviews.remove
			},
			wantErr: ErrNotFound,
		},
		{
			name:  "anonymous",
			actor: func(f *reviewFixture) uuid.UUID { return uuid.Nil },
			req: func(f *reviewFixture, r entity.Review) *request.UpdateReviewRequest {
				return &request.UpdateReviewRequest{Content: "Edited"}
			},
			wantErr: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			r := f.seed(f.alice, "Original", testNow.Add(-48*time.Hour))
			if tt.setup != nil {
				tt.setup(f, r)
			}

			got, err := f.svc.UpdateReview(context.Background(), tt.actor(f), r.ID.String(), tt.req(f, r))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateReview() error = %v, want %v", err, tt.wantErr)
				}
				if stored, ok := f.reviews.reviews[r.ID]; ok && stored.Content != "Original" {
					t.Errorf("content changed to %q despite error", stored.Content)
				}
				return
			}

			if err != nil {
				t.Fatalf("UpdateReview() error = %v", err)
			}
			if got.Version != 2 {
				t.Errorf("Version = %d, want 2", got.Version)
			}
			if got.UpdatedAtUtc == nil || !got.UpdatedAtUtc.Equal(testNow) {
				t.Errorf("UpdatedAtUtc = %v, want %v", got.UpdatedAtUtc, testNow)
			}
			if !got.CreatedAtUtc.Equal(r.CreatedAtUtc) {
				t.Errorf("CreatedAtUtc changed to %v", got.CreatedAtUtc)
			}
			if got.Username != "alice" {
				t.Errorf("Username = %q, the author must not change", got.Username)
			}
			if got.DisplayDate != "02.01.2024 13:00" {
				t.Errorf("DisplayDate = %q, want edit time", got.DisplayDate)
			}
		})
	}
}

func TestReviewService_DeleteReview(t *testing.T) {
	tests := []struct {
		name    string
		actor   func(f *reviewFixture) uuid.UUID
		id      func(r entity.Review) string
		wantErr error
	}{
		{"owner", func(f *reviewFixture) uuid.UUID { return f.alice.ID }, func(r entity.Review) string { return r.ID.String() }, nil},
		{"admin", func(f *reviewFixture) uuid.UUID { return f.admin.ID }, func(r entity.Review) string { return r.ID.String() }, nil},
		{"stranger", func(f *reviewFixture) uuid.UUID { return f.bob.ID }, func(r entity.Review) string { return r.ID.String() }, ErrForbidden},
		{"missing", func(f *reviewFixture) uuid.UUID { return f.alice.ID }, func(r entity.Review) string { return uuid.NewString() }, ErrNotFound},
		{"malformed id", func(f *reviewFixture) uuid.UUID { return f.alice.ID }, func(r entity.Review) string { return "42" }, ErrNotFound},
		{"anonymous", func(f *reviewFixture) uuid.UUID { return uuid.Nil }, func(r entity.Review) string { return r.ID.String() }, ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReviewFixture(t)
			r := f.seed(f.alice, "Original", testNow)

			err := f.svc.DeleteReview(context.Background(), tt.actor(f), tt.id(r))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DeleteReview() error = %v, want %v", err, tt.wantErr)
			}

			_, stillThere := f.reviews.reviews[r.ID]
			if tt.wantErr == nil && stillThere {
				t.Errorf("review still stored after delete")
			}
			if tt.wantErr != nil && !stillThere {
				t.Errorf("review removed despite error")
			}
		})
	}
}

func TestReviewService_ListMovieReviews(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	ghost := newUser("ghost", entity.RoleMember) // never stored
	f.seed(f.alice, "oldest", testNow.Add(-3*time.Hour))
	f.seed(f.bob, "middle", testNow.Add(-2*time.Hour))
	f.seed(f.alice, "newest", testNow.Add(-1*time.Hour))
	f.seed(ghost, "orphan", testNow.Add(-4*time.Hour))

	f.users.findByID = 0
	items, err := f.svc.ListMovieReviews(ctx, f.movie.ID.String())
	if err != nil {
		t.Fatalf("ListMovieReviews() error = %v", err)
	}

	wantOrder := []string{"newest", "middle", "oldest", "orphan"}
	if len(items) != len(wantOrder) {
		t.Fatalf("got %d reviews, want %d", len(items), len(wantOrder))
	}
	for i, want := range wantOrder {
		if items[i].Review != want {
			t.Errorf("items[%d].Review = %q, want %q", i, items[i].Review, want)
		}
	}
	if items[3].Username != response.UnknownUsername {
		t.Errorf("orphan username = %q, want %q", items[3].Username, response.UnknownUsername)
	}
	if items[0].ReviewDate != "02.01.2024 12:00" {
		t.Errorf("ReviewDate = %q", items[0].ReviewDate)
	}
	if !items[0].ReviewDateUtc.Equal(testNow.Add(-time.Hour)) {
		t.Errorf("ReviewDateUtc = %v", items[0].ReviewDateUtc)
	}
	// alice, bob and ghost are each looked up once
	if f.users.findByID != 3 {
		t.Errorf("user lookups = %d, want 3", f.users.findByID)
	}

	for _, id := range []string{uuid.NewString(), "nope"} {
		if _, err := f.svc.ListMovieReviews(ctx, id); !errors.Is(err, ErrMovieNotFound) {
			t.Errorf("ListMovieReviews(%q) error = %v, want ErrMovieNotFound", id, err)
		}
	}
}

func TestReviewService_CreateThenList(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateReview(ctx, f.bob.ID, &request.CreateReviewRequest{
		MovieID: f.movie.ID.String(),
		Content: "Dreams within dreams",
		Rating:  intPtr(9),
	})
	if err != nil {
		t.Fatalf("CreateReview() error = %v", err)
	}

	items, err := f.svc.ListMovieReviews(ctx, f.movie.ID.String())
	if err != nil {
		t.Fatalf("ListMovieReviews() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d reviews, want 1", len(items))
	}
	got := items[0]
	if got.ID != created.ID || got.Review != "Dreams within dreams" || got.ReviewRate == nil || *got.ReviewRate != 9 {
		t.Errorf("listed review = %+v", got)
	}
	if got.Username != "bob" || got.Edited {
		t.Errorf("username %q edited %v", got.Username, got.Edited)
	}
}

func TestReviewService_GetReviewForEdit(t *testing.T) {
	f := newReviewFixture(t)
	r := f.seed(f.alice, "Mine", testNow)
	ctx := context.Background()

	if _, err := f.svc.GetReviewForEdit(ctx, f.alice.ID, r.ID.String()); err != nil {
		t.Errorf("owner GetReviewForEdit() error = %v", err)
	}
	if _, err := f.svc.GetReviewForDelete(ctx, f.admin.ID, r.ID.String()); err != nil {
		t.Errorf("admin GetReviewForDelete() error = %v", err)
	}
	if _, err := f.svc.GetReviewForEdit(ctx, f.bob.ID, r.ID.String()); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger GetReviewForEdit() error = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.GetReview(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReview(missing) error = %v, want ErrNotFound", err)
	}
	if errors.Is(ErrNotFound, ErrMovieNotFound) {
		t.Errorf("a missing review must not read as a missing movie")
	}
}

func TestReviewService_ListReviewsPropagatesIdentityErrors(t *testing.T) {
	f := newReviewFixture(t)
	f.seed(f.alice, "x", testNow)
	f.users.findByIDErr = errBoom

	if _, err := f.svc.ListReviews(context.Background()); !errors.Is(err, errBoom) {
		t.Errorf("ListReviews() error = %v, want wrapped errBoom", err)
	}
}

func mutationCount(t *testing.T, operation, outcome string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.ReviewMutations.WithLabelValues(operation, outcome).Write(&m); err != nil {
		t.Fatalf("read review mutation counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestReviewService_RecordsMutationOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("delete missing", func(t *testing.T) {
		f := newReviewFixture(t)
		before := mutationCount(t, "delete", "not_found")
		if err := f.svc.DeleteReview(ctx, f.alice.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("DeleteReview() error = %v, want ErrNotFound", err)
		}
		if got := mutationCount(t, "delete", "not_found") - before; got != 1 {
			t.Errorf("delete/not_found increased by %v, want 1", got)
		}
	})

	t.Run("edit of vanished row", func(t *testing.T) {
		f := newReviewFixture(t)
		r := f.seed(f.alice, "Original", testNow)
		f.reviews.beforeUpdate = f.reviews.remove
		before := mutationCount(t, "update", "not_found")

		_, err := f.svc.UpdateReview(ctx, f.alice.ID, r.ID.String(), &request.UpdateReviewRequest{Content: "Edited"})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("UpdateReview() error = %v, want ErrNotFound", err)
		}
		if got := mutationCount(t, "update", "not_found") - before; got != 1 {
			t.Errorf("update/not_found increased by %v, want 1", got)
		}
	})

	t.Run("edit conflict", func(t *testing.T) {
		f := newReviewFixture(t)
		r := f.seed(f.alice, "Original", testNow)
		f.reviews.beforeUpdate = func(id uuid.UUID) {
			stored := f.reviews.reviews[id]
			stored.Version++
			f.reviews.reviews[id] = stored
		}
		before := mutationCount(t, "update", "conflict")

		_, err := f.svc.UpdateReview(ctx, f.alice.ID, r.ID.String(), &request.UpdateReviewRequest{Content: "Edited"})
		if !errors.Is(err, ErrEditConflict) {
			t.Fatalf("UpdateReview() error = %v, want ErrEditConflict", err)
		}
		if got := mutationCount(t, "update", "conflict") - before; got != 1 {
			t.Errorf("update/conflict increased by %v, want 1", got)
		}
	})
}
