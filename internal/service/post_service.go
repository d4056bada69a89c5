package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"pawfeed/internal/identity"
	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
	maxPollOpts   = 20

	questionViewLimit = 100
)

var hashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_]+`)

// PostService validates and assembles new posts.
type PostService struct {
	postRepo repository.PostRepository
	notifier notifications.Publisher
}

// CreatePostInput carries the fields for a new post.
type CreatePostInput struct {
	Title       string
	Content     string
	MediaRef    string
	IsQuestion  bool
	PollOptions []string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, notifier notifications.Publisher) *PostService {
	return &PostService{postRepo: postRepo, notifier: notifier}
}

// CreatePost validates the input, extracts hashtags into the tag set, and
// stores the post with a denormalized author snapshot.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput, actor identity.Identity) (*models.Post, error) {
	if actor.ID == "" {
		return nil, models.NewPermissionError("sign in to create posts")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" && strings.TrimSpace(in.MediaRef) == "" {
		return nil, models.NewValidationError("Content or an attachment is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	var pollOptions models.StringSet
	if len(in.PollOptions) > 0 {
		opts := make([]string, 0, len(in.PollOptions))
		for _, o := range in.PollOptions {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				opts = append(opts, trimmed)
			}
		}
		if len(opts) > maxPollOpts {
			return nil, models.NewValidationError("Poll cannot have more than 20 options")
		}
		pollOptions = models.NewStringSet(opts...)
		// Set semantics collapse duplicates; fewer than two distinct
		// options means the poll is malformed.
		if len(pollOptions) < 2 {
			return nil, models.NewValidationError("Poll must have at least two distinct options")
		}
	}

	post := &models.Post{
		Title:          strings.TrimSpace(in.Title),
		Content:        in.Content,
		MediaRef:       in.MediaRef,
		AuthorID:       actor.ID,
		AuthorName:     actor.DisplayName,
		AuthorPhotoRef: actor.PhotoRef,
		Tags:           ExtractTags(in.Content),
		IsQuestion:     in.IsQuestion,
		PollOptions:    pollOptions,
		Likes:          models.IdentitySet{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PublishChange(notifications.ChangeEvent{
			Kind:   notifications.EventPostCreated,
			PostID: post.ID,
			Post:   post,
			At:     time.Now().UTC(),
		})
	}
	return post, nil
}

// ExtractTags pulls #hashtag tokens out of content, strips the marker, and
// returns the set; the default tag is used when none are found.
func ExtractTags(content string) models.StringSet {
	matches := hashtagPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return models.NewStringSet(models.DefaultTag)
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, strings.TrimPrefix(m, "#"))
	}
	return models.NewStringSet(tags...)
}

// PendingQuestions is a view over question posts. The post itself is the
// single source of truth; status is derived from its moderation fields and
// nothing here has an independent lifecycle.
func (s *PostService) PendingQuestions(ctx context.Context) ([]models.ModerationQuestion, error) {
	posts, err := s.postRepo.QuestionPosts(ctx, questionViewLimit)
	if err != nil {
		return nil, err
	}
	questions := make([]models.ModerationQuestion, 0, len(posts))
	for _, p := range posts {
		questions = append(questions, models.ModerationQuestion{
			ID:        p.ID,
			PostID:    p.ID,
			Title:     p.Title,
			Content:   p.Content,
			AuthorID:  p.AuthorID,
			Status:    models.QuestionStatusOf(p),
			CreatedAt: p.CreatedAt,
		})
	}
	return questions, nil
}
