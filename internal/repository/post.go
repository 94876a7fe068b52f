package repository

import (
	"context"

	"socialfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and the feed.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]models.PostView, error)
	GetView(ctx context.Context, id uint) (*models.PostView, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, finish := instrument(ctx, "PostRepository.Create", "insert", "posts")
	defer finish(&err)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (_ bool, err error) {
	ctx, finish := instrument(ctx, "PostRepository.Exists", "select", "posts")
	defer finish(&err)

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

const postViewColumns = `posts.id, posts.user_id, users.username, posts.postname, posts.content,
	COALESCE(posts.image, '') AS image, posts.created_at,
	COALESCE(SUM(CASE WHEN likes_dislikes.action = 'like' THEN 1 ELSE 0 END), 0) AS likes,
	COALESCE(SUM(CASE WHEN likes_dislikes.action = 'dislike' THEN 1 ELSE 0 END), 0) AS dislikes`

// feedQuery joins each post with its author and reaction totals.
func (r *postRepository) feedQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Select(postViewColumns).
		Joins("JOIN users ON users.id = posts.user_id").
		Joins("LEFT JOIN likes_dislikes ON likes_dislikes.post_id = posts.id").
		Group("posts.id, posts.user_id, users.username, posts.postname, posts.content, posts.image, posts.created_at")
}

// List returns every post, newest first.
func (r *postRepository) List(ctx context.Context) (_ []models.PostView, err error) {
	ctx, finish := instrument(ctx, "PostRepository.List", "select", "posts")
	defer finish(&err)

	views := make([]models.PostView, 0)
	if err := r.feedQuery(ctx).
		Order("posts.created_at DESC, posts.id DESC").
		Scan(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (r *postRepository) GetView(ctx context.Context, id uint) (_ *models.PostView, err error) {
	ctx, finish := instrument(ctx, "PostRepository.GetView", "select", "posts")
	defer finish(&err)

	var views []models.PostView
	if err := r.feedQuery(ctx).
		Where("posts.id = ?", id).
		Scan(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(views) == 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	return &views[0], nil
}
