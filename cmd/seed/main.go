// Command seed fills a database with demo posts, comments, likes, and
// flags so the feed has something to paginate during development.
package main

import (
	"context"
	"flag"
	"log"

	"pawfeed/internal/config"
	"pawfeed/internal/database"
	"pawfeed/internal/seed"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Posts, "posts", opts.Posts, "number of posts to create")
	flag.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "max comments per post")
	flag.IntVar(&opts.LikersPerPost, "likers", opts.LikersPerPost, "max like toggles per post")
	flag.IntVar(&opts.FlaggedPostPercent, "flagged", opts.FlaggedPostPercent, "percentage of posts to flag")
	flag.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed (0 = random)")
	sqlitePath := flag.String("sqlite", "", "seed a local SQLite file instead of the configured Postgres")
	flag.Parse()

	var db *gorm.DB
	var err error
	if *sqlitePath != "" {
		db, err = gorm.Open(sqlite.Open(*sqlitePath), &gorm.Config{Logger: database.NewGormLogger(logger.Warn)})
		if err == nil {
			err = db.AutoMigrate(database.PersistentModels()...)
		}
	} else {
		var cfg *config.Config
		cfg, err = config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		db, err = database.Connect(cfg)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if err := seed.Run(context.Background(), db, opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d posts", opts.Posts)
}
