// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"socialfeed/internal/auth"
	"socialfeed/internal/models"
	"socialfeed/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password every seeded user can log in with.
const DemoPassword = "password123"

var usernameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Options tune how the factory builds rows.
type Options struct {
	// DryRun assigns synthetic ids and skips every write.
	DryRun bool
	// MaxDays spreads post timestamps over the last MaxDays days.
	MaxDays int
	// BcryptCost is passed to the password hasher; low values speed up tests.
	BcryptCost int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db        *gorm.DB
	opts      Options
	reactions repository.ReactionRepository
	rng       *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// hashed once; every demo user shares DemoPassword
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	f := &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
	if db != nil {
		f.reactions = repository.NewReactionRepository(db)
	}
	return f
}

func (f *Factory) hashedPassword() (string, error) {
	if f.passwordHash != "" {
		return f.passwordHash, nil
	}
	hashed, err := auth.NewPasswordHasher(f.opts.BcryptCost).Hash(DemoPassword)
	if err != nil {
		return "", err
	}
	f.passwordHash = hashed
	return hashed, nil
}

// BuildUser returns an unsaved user with a username that passes registration rules.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	name := strings.TrimLeft(usernameUnsafe.ReplaceAllString(gofakeit.Username(), ""), "-")
	if len(name) > 24 {
		name = name[:24]
	}
	name = fmt.Sprintf("%s%d", name, gofakeit.Number(100, 99999))

	user := &models.User{
		Username: name,
		Email:    strings.ToLower(name) + "@example.com",
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if user.Password == "" {
		hashed, err := f.hashedPassword()
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		user.Password = hashed
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post for user with a created_at spread over the
// last MaxDays days. It does not persist it.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)

	age := time.Duration(daysBack)*24*time.Hour +
		time.Duration(hoursBack)*time.Hour + time.Duration(minsBack)*time.Minute

	post := &models.Post{
		UserID:    user.ID,
		Postname:  strings.TrimSuffix(gofakeit.Sentence(5), "."),
		Content:   gofakeit.Paragraph(1, 3, 8, "\n"),
		CreatedAt: time.Now().Add(-age),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("User").Create(&posts).Error
}

// CreatePost constructs and persists a sample `models.Post` for the given user.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.CreatePostsBatch([]*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(user *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		UserID:    user.ID,
		PostID:    post.ID,
		Comment:   gofakeit.Sentence(8),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.rng.Intn(72*60)) * time.Minute),
	}
	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Omit("User", "Post").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// React records kind as user's reaction to post through the same upsert the
// API uses, so reseeding never duplicates a (user, post) pair.
func (f *Factory) React(ctx context.Context, user *models.User, post *models.Post, kind models.ReactionKind) error {
	if f.opts.DryRun {
		return nil
	}
	return f.reactions.Upsert(ctx, user.ID, post.ID, kind)
}
