// Package service contains the engine's business logic.
package service

import (
	"context"
	"encoding/base64"
	"encoding/json"

	"pawfeed/internal/cache"
	"pawfeed/internal/models"
	"pawfeed/internal/observability"
	"pawfeed/internal/repository"
)

// PageSize is the fixed feed page size.
const PageSize = 10

// FeedPage is one fetched page. HasMore is a heuristic: a full page implies
// more may follow. Pagination has no snapshot isolation; posts inserted
// during a scroll session may be skipped or repeated.
type FeedPage struct {
	Items      []*models.Post         `json:"items"`
	NextCursor *repository.PageCursor `json:"next_cursor,omitempty"`
	HasMore    bool                   `json:"has_more"`
}

// FeedService fetches cursor-addressed feed pages.
type FeedService struct {
	postRepo repository.PostRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(postRepo repository.PostRepository) *FeedService {
	return &FeedService{postRepo: postRepo}
}

// FetchPage returns the page below cursor for the given tag filter, ordered
// by created_at desc. A nil cursor starts from the top (full reset); the
// first page is served cache-aside with a short TTL, since it is the page
// every client loads and the one mutations invalidate.
func (s *FeedService) FetchPage(ctx context.Context, tag string, cursor *repository.PageCursor) (*FeedPage, error) {
	if tag == "" {
		tag = models.TagAll
	}
	filter := "tag"
	if tag == models.TagAll {
		filter = "all"
	}
	defer observability.TrackFeedPage(filter)()

	if cursor == nil {
		page := &FeedPage{}
		err := cache.Aside(ctx, cache.FeedPageKey(tag), page, cache.FeedPageTTL, func() error {
			loaded, err := s.loadPage(ctx, tag, nil)
			if err != nil {
				return err
			}
			*page = *loaded
			return nil
		})
		if err != nil {
			return nil, err
		}
		return page, nil
	}
	return s.loadPage(ctx, tag, cursor)
}

func (s *FeedService) loadPage(ctx context.Context, tag string, cursor *repository.PageCursor) (*FeedPage, error) {
	items, err := s.postRepo.Page(ctx, tag, cursor, PageSize)
	if err != nil {
		return nil, err
	}

	page := &FeedPage{
		Items:   items,
		HasMore: len(items) == PageSize,
	}
	if len(items) > 0 {
		last := items[len(items)-1]
		page.NextCursor = &repository.PageCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}

// EncodeCursor renders a cursor as an opaque URL-safe token.
func EncodeCursor(c *repository.PageCursor) string {
	if c == nil {
		return ""
	}
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token is a
// nil cursor (first page).
func DecodeCursor(token string) (*repository.PageCursor, error) {
	if token == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, models.NewValidationError("malformed page cursor")
	}
	var c repository.PageCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, models.NewValidationError("malformed page cursor")
	}
	return &c, nil
}
