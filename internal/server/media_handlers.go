package server

import (
	"bytes"
	"io"
	"net/http"

	"pawfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxUploadBytes = 10 << 20

// handleUploadMedia stores an uploaded file and returns the URL a post can
// carry in its media list.
func (s *Server) handleUploadMedia(c *fiber.Ctx) error {
	if s.uploader == nil {
		return respondErr(c, models.NewValidationError("Media uploads are not enabled"))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return respondErr(c, models.NewValidationError("No file uploaded"))
	}
	if file.Size > maxUploadBytes {
		return respondErr(c, models.NewValidationError("File too large (max 10MB)"))
	}

	src, err := file.Open()
	if err != nil {
		return respondErr(c, models.NewValidationError("Unable to read uploaded file"))
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return respondErr(c, models.NewValidationError("Unable to read uploaded file"))
	}
	head = head[:n]
	if !allowedMediaType(http.DetectContentType(head)) {
		return respondErr(c, models.NewValidationError("Unsupported media type"))
	}

	ref, err := s.uploader.Upload(c.UserContext(), io.MultiReader(bytes.NewReader(head), src), file.Filename)
	if err != nil {
		return respondErr(c, models.NewTransientError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": ref})
}

func allowedMediaType(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "video/mp4":
		return true
	}
	return false
}
