package server

import (
	"pawfeed/internal/models"
	"pawfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListComments(c *fiber.Ctx) error {
	// Verify the parent exists so a deleted post yields 404, not an empty
	// thread.
	if _, err := s.postRepo.GetByID(c.UserContext(), c.Params("id")); err != nil {
		return respondErr(c, err)
	}
	comments, err := s.commentService.ListThread(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (s *Server) handleCreateComment(c *fiber.Ctx) error {
	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		PostID: c.Params("id"),
		Text:   req.Text,
	}, actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (s *Server) handleDeleteComment(c *fiber.Ctx) error {
	if err := s.moderationService.DeleteComment(c.UserContext(), c.Params("id"), actor(c)); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
