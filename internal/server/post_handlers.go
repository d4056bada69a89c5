package server

import (
	"pawfeed/internal/models"
	"pawfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	MediaRef    string   `json:"media_ref"`
	IsQuestion  bool     `json:"is_question"`
	PollOptions []string `json:"poll_options"`
}

func (s *Server) handleCreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		MediaRef:    req.MediaRef,
		IsQuestion:  req.IsQuestion,
		PollOptions: req.PollOptions,
	}, actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

func (s *Server) handleDeletePost(c *fiber.Ctx) error {
	if err := s.moderationService.DeletePost(c.UserContext(), c.Params("id"), actor(c)); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleToggleLike(c *fiber.Ctx) error {
	result, err := s.engagementService.ToggleLike(c.UserContext(), c.Params("id"), actor(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

func (s *Server) handleHasLiked(c *fiber.Ctx) error {
	liked, err := s.engagementService.HasLiked(c.UserContext(), actor(c), c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

func (s *Server) handleShare(c *fiber.Ctx) error {
	if err := s.engagementService.Share(c.UserContext(), c.Params("id"), actor(c)); err != nil {
		return respondErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
