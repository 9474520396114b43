package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/middleware"
	"github.com/skipvault/skipvault-go/internal/model"
	"github.com/skipvault/skipvault-go/internal/service"
	"github.com/skipvault/skipvault-go/pkg/hash"
)

type SegmentHandler struct {
	cfg    *config.Config
	submit *service.SubmitService
	lookup *service.SegmentService
}

func NewSegmentHandler(cfg *config.Config, submit *service.SubmitService, lookup *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{cfg: cfg, submit: submit, lookup: lookup}
}

// Submit handles POST /api/segments
func (h *SegmentHandler) Submit(c fiber.Ctx) error {
	var req model.SubmitRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.VideoID = videoID

	userID, errMsg := middleware.ValidateUserID(req.UserID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.UserID = userID

	ipHash := hash.HashIP(c.IP(), h.cfg.AddressSalt)

	resp, err := h.submit.Submit(c.Context(), &req, ipHash)
	if err != nil {
		return submitError(c, err)
	}

	for _, seg := range resp.Segments {
		if Metrics.SubmissionsTotal != nil {
			Metrics.SubmissionsTotal.WithLabelValues(seg.Category).Inc()
		}
	}

	// Events go out after the response is finalized; the dispatcher queue
	// never blocks and its failures never reach the client.
	defer h.submit.NotifyCommitted(&req, resp)

	return c.JSON(resp)
}

func submitError(c fiber.Ctx, err error) error {
	var vErr *model.ValidationError
	var sErr *model.StorageError
	switch {
	case errors.Is(err, model.ErrDuplicate):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, model.ErrActiveWarning):
		return middleware.ErrorResponse(c, fiber.StatusForbidden, "ACTIVE_WARNING", err.Error())
	case errors.As(err, &vErr):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "REJECTED", vErr.Reason)
	case errors.As(err, &sErr):
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "STORAGE_ERROR",
			"Failed to store segment "+sErr.UUID)
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit segments")
	}
}

// GetByHashPrefix handles GET /api/segments/:hashPrefix
func (h *SegmentHandler) GetByHashPrefix(c fiber.Ctx) error {
	prefix, errMsg := middleware.ValidateHashPrefix(c.Params("hashPrefix"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PREFIX", errMsg)
	}

	groups, err := h.lookup.LookupByHashPrefix(c.Context(), prefix)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup segments")
	}
	if len(groups) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No segments matching prefix")
	}
	return c.JSON(groups)
}

// GetByVideoID handles GET /api/segments?videoID=X&categories=a,b
func (h *SegmentHandler) GetByVideoID(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(fiber.Query[string](c, "videoID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var categories []string
	if raw := fiber.Query[string](c, "categories"); raw != "" {
		for _, cat := range strings.Split(raw, ",") {
			cat = strings.TrimSpace(cat)
			if !h.cfg.CategoryAllowed(cat) {
				return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_CATEGORY",
					"Invalid category filter: "+cat)
			}
			categories = append(categories, cat)
		}
	}

	resp, err := h.lookup.LookupByVideo(c.Context(), videoID, categories)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup segments")
	}
	return c.JSON(resp)
}

// Viewed handles POST /api/segments/viewed
func (h *SegmentHandler) Viewed(c fiber.Ctx) error {
	var req struct {
		UUID string `json:"UUID"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	uuid, errMsg := middleware.ValidateUUID(req.UUID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.lookup.RecordView(c.Context(), uuid); err != nil {
		if errors.Is(err, model.ErrSegmentNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "NOT_FOUND", "Segment not found")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record view")
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetLocks handles GET /api/locks?videoID=X
func (h *SegmentHandler) GetLocks(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(fiber.Query[string](c, "videoID"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	categories, err := h.lookup.LockedCategories(c.Context(), videoID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup locks")
	}
	return c.JSON(fiber.Map{"videoID": videoID, "categories": categories})
}
