package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/profile-service/internal/core/domain"
	"github.com/duynhne/profile-service/middleware"
)

// ProfileService is the aggregate service the handlers delegate to.
type ProfileService interface {
	Create(ctx context.Context, req domain.ProfileCreateRequest) error
	Get(ctx context.Context, id int64) (*domain.Profile, error)
	GetAll(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, req domain.ProfileUpdateRequest) error
	Delete(ctx context.Context, id int64) error
}

// ProfileHandler handles HTTP requests for profile operations
type ProfileHandler struct {
	service ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(service ProfileService) *ProfileHandler {
	return &ProfileHandler{
		service: service,
	}
}

// RegisterRoutes mounts the profile endpoints under /profile.
func RegisterRoutes(r gin.IRouter, h *ProfileHandler) {
	profile := r.Group("/profile")
	{
		profile.POST("/create", h.Create)
		profile.GET("/get", h.Get)
		profile.GET("/getAll", h.GetAll)
		profile.PUT("/update", h.Update)
		profile.DELETE("/delete", h.Delete)
	}
}

func startRequestSpan(c *gin.Context) (context.Context, trace.Span) {
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
}

// Create handles POST /profile/create
func (h *ProfileHandler) Create(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	zapLogger := middleware.GetLoggerFromGinContext(c)

	var req domain.ProfileCreateRequest
	if issues := bindJSON(c, &req); issues != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		zapLogger.Warn("Invalid request", zap.Int("issues", len(issues)))
		respondValidation(c, issues)
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	if err := h.service.Create(ctx, req); err != nil {
		h.fail(c, span, zapLogger, "Failed to create profile", err)
		return
	}

	zapLogger.Info("Profile created", zap.Int("contacts", len(req.Contacts)))
	c.Status(http.StatusCreated)
}

// Get handles GET /profile/get?id=
func (h *ProfileHandler) Get(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	zapLogger := middleware.GetLoggerFromGinContext(c)

	id, ok := queryID(c)
	if !ok {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	profile, err := h.service.Get(ctx, id)
	if err != nil {
		h.fail(c, span, zapLogger, "Failed to get profile", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetAll handles GET /profile/getAll
func (h *ProfileHandler) GetAll(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	zapLogger := middleware.GetLoggerFromGinContext(c)

	profiles, err := h.service.GetAll(ctx)
	if err != nil {
		h.fail(c, span, zapLogger, "Failed to list profiles", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profiles})
}

// Update handles PUT /profile/update
func (h *ProfileHandler) Update(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	zapLogger := middleware.GetLoggerFromGinContext(c)

	var req domain.ProfileUpdateRequest
	if issues := bindJSON(c, &req); issues != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		zapLogger.Warn("Invalid request", zap.Int("issues", len(issues)))
		respondValidation(c, issues)
		return
	}
	span.SetAttributes(
		attribute.Bool("request.valid", true),
		attribute.Int64("user.id", req.User.ID),
	)

	if err := h.service.Update(ctx, req); err != nil {
		h.fail(c, span, zapLogger, "Failed to update profile", err)
		return
	}

	zapLogger.Info("Profile updated", zap.Int64("user_id", req.User.ID))
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /profile/delete?id=
func (h *ProfileHandler) Delete(c *gin.Context) {
	ctx, span := startRequestSpan(c)
	defer span.End()
	zapLogger := middleware.GetLoggerFromGinContext(c)

	id, ok := queryID(c)
	if !ok {
		span.SetAttributes(attribute.Bool("request.valid", false))
		return
	}
	span.SetAttributes(attribute.Int64("user.id", id))

	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(c, span, zapLogger, "Failed to delete profile", err)
		return
	}

	zapLogger.Info("Profile deleted", zap.Int64("user_id", id))
	c.Status(http.StatusNoContent)
}

// fail maps a service error to its response. Not-found is expected traffic and is not
// recorded on the span.
func (h *ProfileHandler) fail(c *gin.Context, span trace.Span, zapLogger *zap.Logger, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		zapLogger.Info(msg, zap.Error(err))
		respondNotFound(c)
	default:
		middleware.RecordError(span, err)
		zapLogger.Error(msg, zap.Error(err))
		respondInternal(c)
	}
}

// queryID reads the numeric id query parameter, answering 400 when it is missing or malformed.
func queryID(c *gin.Context) (int64, bool) {
	raw, present := c.GetQuery("id")
	if !present {
		respondValidation(c, []Issue{{Message: msgRequired, Path: []any{"id"}}})
		return 0, false
	}
	if raw == "" {
		respondValidation(c, []Issue{{Message: msgIDRequired, Path: []any{"id"}}})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		msg := fmt.Sprintf(msgInvalidType, typeName("number"), typeName("string"))
		respondValidation(c, []Issue{{Message: msg, Path: []any{"id"}}})
		return 0, false
	}
	return id, true
}
