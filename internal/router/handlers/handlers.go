package handlers

import (
	"CommentWall/internal/models"
	"CommentWall/internal/service"
	"CommentWall/internal/storage"
	"context"
	"encoding/json"
	"errors"
	"github.com/spf13/afero"
	"github.com/wb-go/wbf/ginext"
	"go.uber.org/zap"
	"io"
	"net/http"
	"strconv"
	"time"
)

// multipartOverhead is allowed on top of the image limit for form boundaries and headers.
const multipartOverhead = 64 * 1024

type CommentService interface {
	CreateComment(ctx context.Context, cr models.CommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, limit int) ([]*models.Comment, error)
	UploadImage(ctx context.Context, name string, r io.Reader) (string, error)
	Health(ctx context.Context) error
}

type ImageOpener interface {
	Open(name string) (afero.File, error)
}

type CommentHandler struct {
	service  CommentService
	images   ImageOpener
	maxBytes int64
}

func NewCommentHandler(service CommentService, images ImageOpener, maxBytes int64) *CommentHandler {
	return &CommentHandler{service: service, images: images, maxBytes: maxBytes}
}

func (h *CommentHandler) CreateComment(c *ginext.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	log.Debug("Creating comment")
	commentRequest := &models.CommentRequest{}
	if err := json.NewDecoder(c.Request.Body).Decode(commentRequest); err != nil {
		log.Error("Failed to decode request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ginext.H{"error": "Invalid request body"})
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), *commentRequest)
	if err != nil {
		if errors.Is(err, service.ErrInvalidComment) {
			log.Warn("Invalid comment", zap.Error(err))
			c.JSON(http.StatusBadRequest, ginext.H{"error": err.Error()})
			return
		}
		log.Error("Failed to create comment", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ginext.H{"error": "Failed to create comment"})
		return
	}
	log.Debug("Created comment", zap.Int64("id", comment.ID))
	c.JSON(http.StatusCreated, ginext.H{"comment": comment})
}

func (h *CommentHandler) ListComments(c *ginext.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		log.Warn("Invalid limit", zap.String("limit", c.Query("limit")))
		c.JSON(http.StatusBadRequest, ginext.H{"error": "Invalid limit"})
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), limit)
	if err != nil {
		log.Error("Failed to list comments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ginext.H{"error": "Failed to get comments"})
		return
	}
	c.JSON(http.StatusOK, ginext.H{"comments": comments})
}

func (h *CommentHandler) UploadImage(c *ginext.Context) {
	log := c.MustGet("logger").(*zap.Logger)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("Upload body too large", zap.Error(err))
			c.JSON(http.StatusRequestEntityTooLarge, ginext.H{"error": storage.ErrImageTooLarge.Error()})
			return
		}
		log.Warn("Missing upload file", zap.Error(err))
		c.JSON(http.StatusBadRequest, ginext.H{"error": "File is required"})
		return
	}
	if fh.Size > h.maxBytes {
		log.Warn("Upload too large", zap.String("name", fh.Filename), zap.Int64("size", fh.Size))
		c.JSON(http.StatusRequestEntityTooLarge, ginext.H{"error": storage.ErrImageTooLarge.Error()})
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.Error("Failed to open upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, ginext.H{"error": "Invalid file"})
		return
	}
	defer f.Close()

	url, err := h.service.UploadImage(c.Request.Context(), fh.Filename, f)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, ginext.H{"error": storage.ErrImageTooLarge.Error()})
		return
	case errors.Is(err, storage.ErrNotAnImage), errors.Is(err, storage.ErrEmptyImage):
		c.JSON(http.StatusUnsupportedMediaType, ginext.H{"error": "File is not an image"})
		return
	default:
		log.Error("Failed to upload image", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ginext.H{"error": "Failed to upload image"})
		return
	}
	log.Debug("Uploaded image", zap.String("url", url))
	c.JSON(http.StatusCreated, ginext.H{"url": url})
}

func (h *CommentHandler) GetImage(c *ginext.Context) {
	name := c.Param("name")
	f, err := h.images.Open(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ginext.H{"error": "Image not found"})
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Header("X-Content-Type-Options", "nosniff")
	http.ServeContent(c.Writer, c.Request, name, modTime, f)
}

func (h *CommentHandler) Health(c *ginext.Context) {
	if err := h.service.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ginext.H{
			"status": "error",
			"error":  "Database connection failed",
		})
		return
	}
	c.JSON(http.StatusOK, ginext.H{"status": "healthy"})
}
