package seed

import (
	"context"
	"fmt"
	"log/slog"

	"pawfeed/internal/identity"
	"pawfeed/internal/observability"
	"pawfeed/internal/repository"
	"pawfeed/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options controls seed volume.
type Options struct {
	Posts              int
	CommentsPerPost    int
	LikersPerPost      int
	FlaggedPostPercent int
	Seed               int64
}

// DefaultOptions returns sensible development defaults.
func DefaultOptions() Options {
	return Options{
		Posts:              40,
		CommentsPerPost:    4,
		LikersPerPost:      6,
		FlaggedPostPercent: 10,
		Seed:               0,
	}
}

// Run populates the database through the real services so every seeded
// document passed validation and the counters were maintained by the same
// transactions production uses.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	faker := gofakeit.New(opts.Seed)

	fixtures, err := LoadFixtures()
	if err != nil {
		return err
	}

	privileged := make(map[string]bool, len(fixtures.Moderators))
	for _, m := range fixtures.Moderators {
		privileged[m.ID] = true
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	provider := identity.Static{Privileged: privileged}

	postService := service.NewPostService(postRepo, nil)
	commentService := service.NewCommentService(commentRepo, postRepo, provider, nil)
	engagement := service.NewEngagementService(postRepo, nil)
	moderation := service.NewModerationService(postRepo, commentRepo, provider, nil)

	authors := make([]identity.Identity, 0, 12)
	for i := 0; i < 12; i++ {
		authors = append(authors, identity.Identity{
			ID:          fmt.Sprintf("seed-user-%02d", i),
			Email:       faker.Email(),
			DisplayName: faker.Name(),
		})
	}
	moderatorIdentities := make([]identity.Identity, 0, len(fixtures.Moderators))
	for _, m := range fixtures.Moderators {
		moderatorIdentities = append(moderatorIdentities, identity.Identity{
			ID:          m.ID,
			DisplayName: m.Name,
		})
	}

	for i := 0; i < opts.Posts; i++ {
		author := authors[faker.IntRange(0, len(authors)-1)]
		tag := fixtures.Tags[faker.IntRange(0, len(fixtures.Tags)-1)]
		content := fmt.Sprintf("%s #%s", faker.Sentence(faker.IntRange(8, 24)), tag)

		post, err := postService.CreatePost(ctx, service.CreatePostInput{
			Title:      faker.Sentence(faker.IntRange(3, 8)),
			Content:    content,
			IsQuestion: faker.IntRange(0, 4) == 0,
		}, author)
		if err != nil {
			return fmt.Errorf("seeding post %d: %w", i, err)
		}

		for j := 0; j < faker.IntRange(0, opts.CommentsPerPost); j++ {
			commenter := authors[faker.IntRange(0, len(authors)-1)]
			if faker.IntRange(0, 5) == 0 {
				commenter = moderatorIdentities[faker.IntRange(0, len(moderatorIdentities)-1)]
			}
			if _, err := commentService.CreateComment(ctx, service.CreateCommentInput{
				PostID: post.ID,
				Text:   faker.Sentence(faker.IntRange(5, 18)),
			}, commenter); err != nil {
				return fmt.Errorf("seeding comment on post %s: %w", post.ID, err)
			}
		}

		for j := 0; j < faker.IntRange(0, opts.LikersPerPost); j++ {
			liker := authors[faker.IntRange(0, len(authors)-1)]
			if _, err := engagement.ToggleLike(ctx, post.ID, liker); err != nil {
				return fmt.Errorf("seeding like on post %s: %w", post.ID, err)
			}
		}

		if faker.IntRange(0, 99) < opts.FlaggedPostPercent {
			reason := fixtures.FlagReasons[faker.IntRange(0, len(fixtures.FlagReasons)-1)]
			reporter := authors[faker.IntRange(0, len(authors)-1)]
			if _, err := moderation.FlagPost(ctx, post.ID, reason, reporter); err != nil {
				return fmt.Errorf("seeding flag on post %s: %w", post.ID, err)
			}
		}
	}

	observability.GlobalLogger.Info("seed complete", slog.Int("posts", opts.Posts))
	return nil
}
