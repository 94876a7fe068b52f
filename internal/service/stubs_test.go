package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return nil, models.NewNotFoundError("User", id) },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	existsFn  func(context.Context, uint) (bool, error)
	listFn    func(context.Context) ([]models.PostView, error)
	getViewFn func(context.Context, uint) (*models.PostView, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.PostView, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) GetView(ctx context.Context, id uint) (*models.PostView, error) {
	return s.getViewFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		existsFn:  func(_ context.Context, _ uint) (bool, error) { return true, nil },
		listFn:    func(_ context.Context) ([]models.PostView, error) { return []models.PostView{}, nil },
		getViewFn: func(_ context.Context, id uint) (*models.PostView, error) { return &models.PostView{ID: id}, nil },
	}
}

func missingPostRepo() *postRepoStub {
	repo := noopPostRepo()
	repo.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
	return repo
}

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	upsertFn func(context.Context, uint, uint, models.ReactionKind) error
	countsFn func(context.Context, uint) (models.ReactionCounts, error)
	getFn    func(context.Context, uint, uint) (models.ReactionKind, error)
}

func (s *reactionRepoStub) Upsert(ctx context.Context, userID, postID uint, kind models.ReactionKind) error {
	return s.upsertFn(ctx, userID, postID, kind)
}
func (s *reactionRepoStub) Counts(ctx context.Context, postID uint) (models.ReactionCounts, error) {
	return s.countsFn(ctx, postID)
}
func (s *reactionRepoStub) Get(ctx context.Context, userID, postID uint) (models.ReactionKind, error) {
	return s.getFn(ctx, userID, postID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		upsertFn: func(_ context.Context, _, _ uint, _ models.ReactionKind) error { return nil },
		countsFn: func(_ context.Context, _ uint) (models.ReactionCounts, error) { return models.ReactionCounts{}, nil },
		getFn:    func(_ context.Context, _, _ uint) (models.ReactionKind, error) { return "", nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getViewFn    func(context.Context, uint) (*models.CommentView, error)
	listByPostFn func(context.Context, uint) ([]models.CommentView, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetView(ctx context.Context, id uint) (*models.CommentView, error) {
	return s.getViewFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getViewFn:    func(_ context.Context, id uint) (*models.CommentView, error) { return &models.CommentView{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]models.CommentView, error) { return []models.CommentView{}, nil },
	}
}

// fakeHasher prefixes passwords instead of running bcrypt.
type fakeHasher struct {
	err error
}

func (h fakeHasher) Hash(plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h fakeHasher) Verify(plaintext, storedHash string) bool {
	return storedHash == "hashed:"+plaintext
}

type fakeTokens struct {
	err error
}

func (f fakeTokens) Issue(userID uint, username string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + username, nil
}

// imageStoreStub is a stub for ImageStore.
type imageStoreStub struct {
	saveFn   func(string, io.Reader) (string, error)
	removed  []string
	removeFn func(string) error
}

func (s *imageStoreStub) Save(name string, r io.Reader) (string, error) {
	return s.saveFn(name, r)
}

func (s *imageStoreStub) Remove(name string) error {
	s.removed = append(s.removed, name)
	if s.removeFn != nil {
		return s.removeFn(name)
	}
	return nil
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
