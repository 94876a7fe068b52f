package repository

import (
	"context"

	"socialfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetView(ctx context.Context, id uint) (*models.CommentView, error)
	ListByPost(ctx context.Context, postID uint) ([]models.CommentView, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (err error) {
	ctx, finish := instrument(ctx, "CommentRepository.Create", "insert", "comments")
	defer finish(&err)

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("comments").
		Select("comments.id, comments.post_id, comments.user_id, users.username, comments.comment, comments.created_at").
		Joins("JOIN users ON users.id = comments.user_id")
}

func (r *commentRepository) GetView(ctx context.Context, id uint) (_ *models.CommentView, err error) {
	ctx, finish := instrument(ctx, "CommentRepository.GetView", "select", "comments")
	defer finish(&err)

	var views []models.CommentView
	if err := r.viewQuery(ctx).Where("comments.id = ?", id).Scan(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(views) == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return &views[0], nil
}

// ListByPost returns the comments on postID, newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint) (_ []models.CommentView, err error) {
	ctx, finish := instrument(ctx, "CommentRepository.ListByPost", "select", "comments")
	defer finish(&err)

	views := make([]models.CommentView, 0)
	if err := r.viewQuery(ctx).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&views).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}
