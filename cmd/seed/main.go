// Command seed fills the database with demo users, posts, comments and reactions.
package main

import (
	"context"
	"flag"
	"log"

	"socialfeed/internal/bootstrap"
	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	reactionRate := flag.Float64("reactions", 0.3, "Chance that a user reacts to a post (0..1)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Build data without writing it")
	flag.Parse()

	log.Printf("Target: %d users, %d posts, clean=%v, dry-run=%v", *numUsers, *numPosts, *shouldClean, *dryRun)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	ctx := context.Background()
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: !*dryRun})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = database.Close(db) }()
	if redisClient != nil {
		_ = redisClient.Close()
	}

	s := seed.NewSeeder(db, seed.Options{DryRun: *dryRun, BcryptCost: cfg.BcryptCost})
	summary, err := s.Seed(ctx, seed.SeedOptions{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		ReactionRate:       *reactionRate,
		ShouldClean:        *shouldClean && !*dryRun,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("All done: %d users, %d posts, %d comments, %d reactions",
		summary.Users, summary.Posts, summary.Comments, summary.Reactions)
	log.Printf("Log in as demo@example.com with password %s", seed.DemoPassword)
}
