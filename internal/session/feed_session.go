package session

import (
	"context"
	"sync"

	"pawfeed/internal/identity"
	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/repository"
	"pawfeed/internal/service"
)

// Pager fetches feed pages; satisfied by service.FeedService.
type Pager interface {
	FetchPage(ctx context.Context, tag string, cursor *repository.PageCursor) (*service.FeedPage, error)
}

// Ledger toggles likes; satisfied by service.EngagementService.
type Ledger interface {
	ToggleLike(ctx context.Context, postID string, actor identity.Identity) (*repository.ToggleResult, error)
}

// likeState is the optimistic unit for a toggle: membership plus count move
// together.
type likeState struct {
	Liked bool
	Count int
}

// FeedSession is the in-memory feed of one client. Mutations from three
// sources — optimistic local writes, resolved transactions, and pushed
// change events — all flow through the same by-id reconciliation.
type FeedSession struct {
	mu     sync.Mutex
	pager  Pager
	ledger Ledger
	actor  identity.Identity

	tag     string
	items   []*models.Post
	cursor  *repository.PageCursor
	hasMore bool
	loaded  bool

	// generation invalidates in-flight fetches when the filter changes;
	// stale resolutions are dropped silently.
	generation uint64

	likes map[string]*Value[likeState]
}

// NewFeedSession creates a session over the given collaborators.
func NewFeedSession(pager Pager, ledger Ledger, actor identity.Identity) *FeedSession {
	return &FeedSession{
		pager:   pager,
		ledger:  ledger,
		actor:   actor,
		tag:     models.TagAll,
		hasMore: true,
		likes:   make(map[string]*Value[likeState]),
	}
}

// SetFilter switches the active tag filter and resets pagination. Any fetch
// already in flight resolves against a stale generation and is discarded.
func (s *FeedSession) SetFilter(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tag == "" {
		tag = models.TagAll
	}
	s.tag = tag
	s.reset()
}

// Refresh resets pagination for the current filter.
func (s *FeedSession) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *FeedSession) reset() {
	s.generation++
	s.items = nil
	s.cursor = nil
	s.hasMore = true
	s.loaded = false
}

// FetchNext loads the next page and appends it. On a store error the
// previously fetched items are retained unchanged and the retryable error
// is surfaced; a first-page failure leaves an empty (not nil) feed so the
// caller renders an empty list instead of crashing.
func (s *FeedSession) FetchNext(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore {
		s.mu.Unlock()
		return nil
	}
	gen := s.generation
	tag := s.tag
	cursor := s.cursor
	s.mu.Unlock()

	page, err := s.pager.FetchPage(ctx, tag, cursor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// Filter changed while the fetch was in flight.
		return nil
	}
	if err != nil {
		if !s.loaded {
			s.items = []*models.Post{}
		}
		return err
	}

	s.loaded = true
	s.cursor = page.NextCursor
	s.hasMore = page.HasMore
	for _, p := range page.Items {
		s.mergePost(p, true)
	}
	return nil
}

// Posts returns a snapshot of the feed with optimistic like state applied.
func (s *FeedSession) Posts() []*models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Post, len(s.items))
	for i, p := range s.items {
		view := *p
		if v, ok := s.likes[p.ID]; ok && v.State() == Optimistic {
			st := v.Get()
			view.LikeCount = st.Count
			view.Likes = cloneWithMembership(p.Likes, s.actor.ID, st.Liked)
		}
		out[i] = &view
	}
	return out
}

// HasMore reports whether another page may exist.
func (s *FeedSession) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// ToggleLike applies the optimistic flip, runs the transaction, and
// reconciles: authoritative state on success, rollback plus the surfaced
// error on failure. A NotFound discards all pending state for the post.
func (s *FeedSession) ToggleLike(ctx context.Context, postID string) error {
	s.mu.Lock()
	post := s.findLocked(postID)
	if post == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("post", postID)
	}
	v, ok := s.likes[postID]
	if !ok {
		v = &Value[likeState]{}
		v.Confirm(likeState{Liked: post.Likes.Has(s.actor.ID), Count: post.LikeCount})
		s.likes[postID] = v
	}
	before := v.Get()
	optimistic := likeState{Liked: !before.Liked}
	if optimistic.Liked {
		optimistic.Count = before.Count + 1
	} else {
		optimistic.Count = before.Count - 1
	}
	v.Apply(optimistic)
	s.mu.Unlock()

	result, err := s.ledger.ToggleLike(ctx, postID, s.actor)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if models.IsNotFound(err) {
			// The post is gone; drop it and every pending update on it.
			delete(s.likes, postID)
			s.removeLocked(postID)
			return err
		}
		v.Revert()
		return err
	}

	v.Confirm(likeState{Liked: result.Liked, Count: result.NewCount})
	if p := s.findLocked(postID); p != nil {
		p.LikeCount = result.NewCount
		p.Likes = cloneWithMembership(p.Likes, s.actor.ID, result.Liked)
	}
	return nil
}

// ApplyEvent merges a pushed change event into the feed by entity id.
func (s *FeedSession) ApplyEvent(event notifications.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch event.Kind {
	case notifications.EventPostCreated, notifications.EventPostUpdated:
		if event.Post == nil {
			return
		}
		if s.tag != models.TagAll && !event.Post.Tags.Has(s.tag) {
			s.removeLocked(event.Post.ID)
			return
		}
		s.mergePost(event.Post, false)
	case notifications.EventPostDeleted:
		delete(s.likes, event.PostID)
		s.removeLocked(event.PostID)
	case notifications.EventCommentAdded, notifications.EventCommentDeleted:
		// Comment counts arrive via post_updated; comment bodies belong to
		// the thread session.
	}
}

// mergePost replaces an existing entry in place or inserts the post at its
// ordering position (created_at desc, id desc). Never duplicates ids.
// Page merges pass allowAppend so fetched items extend the window; pushed
// creates that sort below the window are left for pagination instead.
func (s *FeedSession) mergePost(post *models.Post, allowAppend bool) {
	for i, p := range s.items {
		if p.ID == post.ID {
			s.items[i] = post
			return
		}
	}
	at := len(s.items)
	for i, p := range s.items {
		if post.CreatedAt.After(p.CreatedAt) ||
			(post.CreatedAt.Equal(p.CreatedAt) && post.ID > p.ID) {
			at = i
			break
		}
	}
	if !allowAppend && at == len(s.items) && s.hasMore && s.loaded {
		// Sorts below the fetched window; the next page will pick it up.
		return
	}
	s.items = append(s.items, nil)
	copy(s.items[at+1:], s.items[at:])
	s.items[at] = post
}

func (s *FeedSession) findLocked(postID string) *models.Post {
	for _, p := range s.items {
		if p.ID == postID {
			return p
		}
	}
	return nil
}

func (s *FeedSession) removeLocked(postID string) {
	for i, p := range s.items {
		if p.ID == postID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func cloneWithMembership(likes models.IdentitySet, identity string, member bool) models.IdentitySet {
	out := models.IdentitySet{}
	for k := range likes {
		out[k] = true
	}
	if member {
		out[identity] = true
	} else {
		delete(out, identity)
	}
	return out
}
