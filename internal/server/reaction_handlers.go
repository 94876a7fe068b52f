package server

import (
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /like/:postId
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.react(c, models.ReactionLike, "Post liked successfully!")
}

// DislikePost handles POST /dislike/:postId
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.react(c, models.ReactionDislike, "Post disliked successfully!")
}

func (s *Server) react(c *fiber.Ctx, kind models.ReactionKind, message string) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	var req reactionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	userID, err := actingUser(c, req.UserID)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.reactionService.SetReaction(c.UserContext(), userID, postID, kind); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": message})
}

// GetReactionCounts handles GET /likes/:postId
func (s *Server) GetReactionCounts(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	counts, err := s.reactionService.CountReactions(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(counts)
}

// GetMyReaction handles GET /post/:id/reaction. reaction is null when the
// caller has not reacted.
func (s *Server) GetMyReaction(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, _ := middleware.UserIDFromLocals(c)

	kind, err := s.reactionService.GetUserReaction(c.UserContext(), userID, postID)
	if err != nil {
		return respondError(c, err)
	}

	var reaction interface{}
	if kind != "" {
		reaction = kind
	}
	return c.JSON(fiber.Map{"post_id": postID, "reaction": reaction})
}
