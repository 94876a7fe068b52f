package service

import (
	"context"
	"errors"
	"testing"

	"socialfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReactionService_SetReaction_Validation(t *testing.T) {
	t.Parallel()
	reactions := noopReactionRepo()
	reactions.upsertFn = func(context.Context, uint, uint, models.ReactionKind) error {
		t.Fatal("upsert must not run for invalid input")
		return nil
	}
	svc := NewReactionService(reactions, noopPostRepo())
	ctx := context.Background()

	assertValidationError(t, svc.SetReaction(ctx, 0, 1, models.ReactionLike))
	assertValidationError(t, svc.SetReaction(ctx, 1, 0, models.ReactionLike))
	assertValidationError(t, svc.SetReaction(ctx, 1, 1, "love"))
}

func TestReactionService_SetReaction_UnknownPost(t *testing.T) {
	t.Parallel()
	svc := NewReactionService(noopReactionRepo(), missingPostRepo())

	err := svc.SetReaction(context.Background(), 1, 99, models.ReactionDislike)
	assertCode(t, err, models.CodeNotFound)
}

func TestReactionService_SetReaction_Upserts(t *testing.T) {
	t.Parallel()
	var gotUser, gotPost uint
	var gotKind models.ReactionKind
	reactions := noopReactionRepo()
	reactions.upsertFn = func(_ context.Context, userID, postID uint, kind models.ReactionKind) error {
		gotUser, gotPost, gotKind = userID, postID, kind
		return nil
	}
	svc := NewReactionService(reactions, noopPostRepo())

	require.NoError(t, svc.SetReaction(context.Background(), 4, 5, models.ReactionDislike))
	assert.Equal(t, uint(4), gotUser)
	assert.Equal(t, uint(5), gotPost)
	assert.Equal(t, models.ReactionDislike, gotKind)
}

func TestReactionService_PropagatesStoreErrors(t *testing.T) {
	t.Parallel()
	posts := noopPostRepo()
	posts.existsFn = func(context.Context, uint) (bool, error) {
		return false, models.NewInternalError(errors.New("db down"))
	}
	svc := NewReactionService(noopReactionRepo(), posts)

	assertCode(t, svc.SetReaction(context.Background(), 1, 1, models.ReactionLike), models.CodeInternal)
	_, err := svc.CountReactions(context.Background(), 1)
	assertCode(t, err, models.CodeInternal)
}

func TestReactionService_CountReactions(t *testing.T) {
	t.Parallel()
	reactions := noopReactionRepo()
	reactions.countsFn = func(_ context.Context, postID uint) (models.ReactionCounts, error) {
		return models.ReactionCounts{Likes: 3, Dislikes: 1}, nil
	}
	svc := NewReactionService(reactions, noopPostRepo())
	ctx := context.Background()

	counts, err := svc.CountReactions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionCounts{Likes: 3, Dislikes: 1}, counts)

	_, err = svc.CountReactions(ctx, 0)
	assertValidationError(t, err)

	_, err = NewReactionService(reactions, missingPostRepo()).CountReactions(ctx, 1)
	assertCode(t, err, models.CodeNotFound)
}

func TestReactionService_GetUserReaction(t *testing.T) {
	t.Parallel()
	reactions := noopReactionRepo()
	reactions.getFn = func(_ context.Context, userID, _ uint) (models.ReactionKind, error) {
		if userID == 1 {
			return models.ReactionLike, nil
		}
		return "", nil
	}
	svc := NewReactionService(reactions, noopPostRepo())
	ctx := context.Background()

	kind, err := svc.GetUserReaction(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionLike, kind)

	kind, err = svc.GetUserReaction(ctx, 2, 1)
	require.NoError(t, err)
	assert.Empty(t, kind)
}
