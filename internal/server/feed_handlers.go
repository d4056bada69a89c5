package server

import (
	"pawfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type feedPageResponse struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func (s *Server) handleFeedPage(c *fiber.Ctx) error {
	cursor, err := service.DecodeCursor(c.Query("cursor"))
	if err != nil {
		return respondErr(c, err)
	}

	page, err := s.feedService.FetchPage(c.UserContext(), c.Query("tag"), cursor)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(feedPageResponse{
		Items:      page.Items,
		NextCursor: service.EncodeCursor(page.NextCursor),
		HasMore:    page.HasMore,
	})
}

func (s *Server) handleGetPost(c *fiber.Ctx) error {
	post, err := s.postRepo.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}
