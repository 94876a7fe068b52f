package service

import (
	"context"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"
)

type ReactionService struct {
	reactionRepo repository.ReactionRepository
	postRepo     repository.PostRepository
}

func NewReactionService(reactionRepo repository.ReactionRepository, postRepo repository.PostRepository) *ReactionService {
	return &ReactionService{reactionRepo: reactionRepo, postRepo: postRepo}
}

// SetReaction records kind as the user's only reaction on the post.
func (s *ReactionService) SetReaction(ctx context.Context, userID, postID uint, kind models.ReactionKind) error {
	if userID == 0 || postID == 0 {
		return models.NewValidationError("Invalid user or post ID")
	}
	if !kind.Valid() {
		return models.NewValidationError("Reaction must be 'like' or 'dislike'")
	}
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return err
	}

	if err := s.reactionRepo.Upsert(ctx, userID, postID, kind); err != nil {
		return err
	}
	observability.ReactionsTotal.WithLabelValues(string(kind)).Inc()
	return nil
}

// CountReactions returns the like and dislike totals for a post.
func (s *ReactionService) CountReactions(ctx context.Context, postID uint) (models.ReactionCounts, error) {
	if postID == 0 {
		return models.ReactionCounts{}, models.NewValidationError("Invalid post ID")
	}
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return models.ReactionCounts{}, err
	}
	return s.reactionRepo.Counts(ctx, postID)
}

// GetUserReaction returns the user's reaction on the post, "" if none.
func (s *ReactionService) GetUserReaction(ctx context.Context, userID, postID uint) (models.ReactionKind, error) {
	if userID == 0 || postID == 0 {
		return "", models.NewValidationError("Invalid user or post ID")
	}
	if err := requirePost(ctx, s.postRepo, postID); err != nil {
		return "", err
	}
	return s.reactionRepo.Get(ctx, userID, postID)
}

// requirePost returns NOT_FOUND when postID does not exist.
func requirePost(ctx context.Context, posts repository.PostRepository, postID uint) error {
	ok, err := posts.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
