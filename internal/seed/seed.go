package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialfeed/internal/models"

	"gorm.io/gorm"
)

// SeedOptions configures a seeding run.
type SeedOptions struct {
	NumUsers int
	NumPosts int
	// MaxCommentsPerPost caps the random number of comments on each post.
	MaxCommentsPerPost int
	// ReactionRate is the chance (0..1) that a given user reacts to a given post.
	ReactionRate float64
	ShouldClean  bool
}

// Summary reports what a seeding run created.
type Summary struct {
	Users     int
	Posts     int
	Comments  int
	Reactions int
}

// Seeder fills the database with demo users, posts, comments and reactions.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder returns a seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll deletes every row the API owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("Clearing existing data...")
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, likes_dislikes, posts, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"comments", "likes_dislikes", "posts", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Seed creates a demo account plus opts.NumUsers-1 random users, spreads
// opts.NumPosts posts across them and adds comments and reactions.
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (*Summary, error) {
	start := time.Now()
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("%d users created", len(users))

	posts, err := s.createPosts(users, opts.NumPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("%d posts created", len(posts))

	summary := &Summary{Users: len(users), Posts: len(posts)}
	if err := s.createEngagement(ctx, users, posts, opts, summary); err != nil {
		return nil, err
	}

	log.Printf("Seeding completed in %s: %d comments, %d reactions",
		time.Since(start).Round(time.Millisecond), summary.Comments, summary.Reactions)
	return summary, nil
}

func (s *Seeder) createUsers(count int) ([]*models.User, error) {
	if count <= 0 {
		return nil, nil
	}
	users := make([]*models.User, 0, count)

	demo, err := s.factory.CreateUser(func(u *models.User) {
		u.Username = "demo"
		u.Email = "demo@example.com"
	})
	if err != nil {
		return nil, fmt.Errorf("create demo user: %w", err)
	}
	users = append(users, demo)

	for attempts := 0; len(users) < count; attempts++ {
		if attempts >= count*3 {
			return nil, fmt.Errorf("gave up after %d attempts with %d of %d users", attempts, len(users), count)
		}
		u, err := s.factory.CreateUser()
		if err != nil {
			// Random usernames can collide; skip and draw again.
			log.Printf("Skipping user: %v", err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) createPosts(users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 || count <= 0 {
		return nil, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Seeder) createEngagement(ctx context.Context, users []*models.User, posts []*models.Post, opts SeedOptions, summary *Summary) error {
	rng := s.factory.rng
	for _, post := range posts {
		if opts.MaxCommentsPerPost > 0 {
			for n := rng.Intn(opts.MaxCommentsPerPost + 1); n > 0; n-- {
				author := users[rng.Intn(len(users))]
				if _, err := s.factory.CreateComment(author, post); err != nil {
					return fmt.Errorf("create comment on post %d: %w", post.ID, err)
				}
				summary.Comments++
			}
		}

		for _, u := range users {
			if rng.Float64() >= opts.ReactionRate {
				continue
			}
			kind := models.ReactionLike
			if rng.Intn(4) == 0 {
				kind = models.ReactionDislike
			}
			if err := s.factory.React(ctx, u, post, kind); err != nil {
				return fmt.Errorf("react to post %d: %w", post.ID, err)
			}
			summary.Reactions++
		}
	}
	return nil
}
