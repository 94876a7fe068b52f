package repository

import (
	"context"
	"errors"
	"time"

	"socialfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository persists one like/dislike per (user, post).
type ReactionRepository interface {
	Upsert(ctx context.Context, userID, postID uint, kind models.ReactionKind) error
	Counts(ctx context.Context, postID uint) (models.ReactionCounts, error)
	Get(ctx context.Context, userID, postID uint) (models.ReactionKind, error)
}

type reactionRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewReactionRepository returns a new ReactionRepository implementation.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db, now: time.Now}
}

// Upsert writes kind for (userID, postID) in a single statement, replacing
// any previous reaction by the same user on the same post.
func (r *reactionRepository) Upsert(ctx context.Context, userID, postID uint, kind models.ReactionKind) (err error) {
	ctx, finish := instrument(ctx, "ReactionRepository.Upsert", "upsert", "likes_dislikes")
	defer finish(&err)

	now := r.now()
	reaction := models.Reaction{
		UserID:    userID,
		PostID:    postID,
		Action:    kind,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"action", "updated_at"}),
		}).
		Create(&reaction).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Counts aggregates reactions on postID. A post without reactions yields zeros.
func (r *reactionRepository) Counts(ctx context.Context, postID uint) (_ models.ReactionCounts, err error) {
	ctx, finish := instrument(ctx, "ReactionRepository.Counts", "select", "likes_dislikes")
	defer finish(&err)

	var counts models.ReactionCounts
	if err := r.db.WithContext(ctx).
		Model(&models.Reaction{}).
		Select(
			"COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0) AS likes, "+
				"COALESCE(SUM(CASE WHEN action = ? THEN 1 ELSE 0 END), 0) AS dislikes",
			models.ReactionLike, models.ReactionDislike,
		).
		Where("post_id = ?", postID).
		Scan(&counts).Error; err != nil {
		return models.ReactionCounts{}, models.NewInternalError(err)
	}
	return counts, nil
}

// Get returns the user's current reaction on the post, or "" when none.
func (r *reactionRepository) Get(ctx context.Context, userID, postID uint) (_ models.ReactionKind, err error) {
	ctx, finish := instrument(ctx, "ReactionRepository.Get", "select", "likes_dislikes")
	defer finish(&err)

	var reaction models.Reaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Take(&reaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", models.NewInternalError(err)
	}
	return reaction.Action, nil
}
