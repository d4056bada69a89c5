package server

import (
	"pawfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

type flagRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleFlagPost(c *fiber.Ctx) error {
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}
	post, err := s.moderationService.FlagPost(c.UserContext(), c.Params("id"), req.Reason, actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}

func (s *Server) handleResolvePost(c *fiber.Ctx) error {
	post, err := s.moderationService.ResolvePost(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(post)
}

func (s *Server) handleFlagComment(c *fiber.Ctx) error {
	var req flagRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}
	comment, err := s.moderationService.FlagComment(c.UserContext(), c.Params("id"), req.Reason, actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) handleResolveComment(c *fiber.Ctx) error {
	comment, err := s.moderationService.ResolveComment(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(comment)
}

func (s *Server) handlePendingQuestions(c *fiber.Ctx) error {
	questions, err := s.postService.PendingQuestions(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"questions": questions})
}
