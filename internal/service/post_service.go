package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"socialfeed/internal/models"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"
	"socialfeed/internal/storage"
)

const (
	maxTitleLen   = 255
	maxContentLen = 50000
)

// ImageStore persists uploaded images and returns their stored names.
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Remove(storedName string) error
}

type PostService struct {
	postRepo repository.PostRepository
	images   ImageStore
	logger   *slog.Logger
}

// ImageUpload is an image attached to a new post.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
	Image   *ImageUpload
}

func NewPostService(postRepo repository.PostRepository, images ImageStore) *PostService {
	return &PostService{postRepo: postRepo, images: images, logger: slog.Default()}
}

// WithLogger sets the logger used for upload cleanup failures.
func (s *PostService) WithLogger(l *slog.Logger) *PostService {
	if l != nil {
		s.logger = l
	}
	return s
}

// CreatePost stores a post and its optional image. The image is removed again
// if the post row cannot be written.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user ID")
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("Post title and content are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("Post title too long (max 255 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return nil, models.NewValidationError("Post content too long (max 50000 characters)")
	}

	post := &models.Post{
		UserID:   in.UserID,
		Postname: title,
		Content:  content,
	}

	if in.Image != nil {
		if s.images == nil {
			return nil, models.NewInternalError(errors.New("image store not configured"))
		}
		stored, err := s.images.Save(in.Image.Filename, in.Image.Content)
		if err != nil {
			return nil, mapUploadError(err)
		}
		post.Image = stored
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if post.Image != "" {
			if rmErr := s.images.Remove(post.Image); rmErr != nil {
				s.logger.WarnContext(ctx, "failed to remove orphaned upload",
					slog.String("file", post.Image),
					slog.String("error", rmErr.Error()))
			}
		}
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(strconv.FormatBool(post.Image != "")).Inc()
	return post, nil
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return models.NewValidationError("Only JPG, PNG, GIF and WebP images are allowed")
	case errors.Is(err, storage.ErrInvalidImage):
		return models.NewValidationError("Uploaded file is not a valid image")
	case errors.Is(err, storage.ErrTooLarge):
		return models.NewValidationError("Image is too large")
	default:
		return models.NewInternalError(err)
	}
}

// ListPosts returns the whole feed, newest first.
func (s *PostService) ListPosts(ctx context.Context) ([]models.PostView, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.PostView, error) {
	if id == 0 {
		return nil, models.NewValidationError("Invalid post ID")
	}
	return s.postRepo.GetView(ctx, id)
}
