package server

import (
	"socialfeed/internal/middleware"
	"socialfeed/internal/models"
	"socialfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if posts == nil {
		posts = []models.PostView{}
	}
	return c.JSON(posts)
}

// GetPost handles GET /post/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /post (multipart: postname, content, optional image).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return respondError(c, models.NewUnauthorizedError("Access denied. No token provided"))
	}

	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}

	in := service.CreatePostInput{
		UserID:  userID,
		Title:   req.Postname,
		Content: req.Content,
	}

	// A missing image part (or a non-multipart body) means a text-only post.
	if fh, err := c.FormFile("image"); err == nil {
		if fh.Size > s.uploads.MaxBytes() {
			return respondError(c, models.NewValidationError("Image is too large"))
		}
		f, err := fh.Open()
		if err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		defer func() { _ = f.Close() }()
		in.Image = &service.ImageUpload{Filename: fh.Filename, Content: f}
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully!",
		"postId":  post.ID,
		"image":   post.Image,
	})
}
