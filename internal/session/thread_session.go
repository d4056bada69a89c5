package session

import (
	"context"
	"sync"

	"pawfeed/internal/models"
	"pawfeed/internal/notifications"
	"pawfeed/internal/service"
)

// ThreadLister fetches a post's sorted comments; satisfied by
// service.CommentService.
type ThreadLister interface {
	ListThread(ctx context.Context, postID string) ([]*models.Comment, error)
}

// ThreadSession is the comment thread of the currently selected post.
// Selecting a different post bumps the generation so a fetch still in
// flight for the old post resolves stale and is discarded.
type ThreadSession struct {
	mu         sync.Mutex
	lister     ThreadLister
	postID     string
	comments   []*models.Comment
	generation uint64
}

// NewThreadSession creates a thread session.
func NewThreadSession(lister ThreadLister) *ThreadSession {
	return &ThreadSession{lister: lister}
}

// Select switches the session to a post, clearing the previous thread.
func (s *ThreadSession) Select(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postID == postID {
		return
	}
	s.postID = postID
	s.comments = nil
	s.generation++
}

// Fetch loads the thread for the selected post. Results for a post that is
// no longer selected are dropped silently.
func (s *ThreadSession) Fetch(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	postID := s.postID
	s.mu.Unlock()
	if postID == "" {
		return nil
	}

	comments, err := s.lister.ListThread(ctx, postID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}
	if err != nil {
		return err
	}
	s.comments = comments
	return nil
}

// Comments returns the current thread snapshot.
func (s *ThreadSession) Comments() []*models.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Comment, len(s.comments))
	copy(out, s.comments)
	return out
}

// AddLocal inserts a freshly created comment at the head of its block
// without refetching the thread.
func (s *ThreadSession) AddLocal(comment *models.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.PostID != s.postID {
		return
	}
	s.comments = service.MergeNew(s.comments, comment)
}

// ApplyEvent merges a pushed comment event for the selected post.
func (s *ThreadSession) ApplyEvent(event notifications.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.PostID != s.postID {
		return
	}
	switch event.Kind {
	case notifications.EventCommentAdded, notifications.EventCommentUpdated:
		if event.Comment != nil {
			s.comments = service.MergeRemote(s.comments, event.Comment)
		}
	case notifications.EventCommentDeleted:
		for i, c := range s.comments {
			if c.ID == event.CommentID {
				s.comments = append(s.comments[:i], s.comments[i+1:]...)
				return
			}
		}
	}
}
