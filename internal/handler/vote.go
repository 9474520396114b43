package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/skipvault/skipvault-go/internal/config"
	"github.com/skipvault/skipvault-go/internal/middleware"
	"github.com/skipvault/skipvault-go/internal/model"
	"github.com/skipvault/skipvault-go/internal/service"
	"github.com/skipvault/skipvault-go/pkg/hash"
)

type VoteHandler struct {
	cfg *config.Config
	svc *service.VoteService
}

func NewVoteHandler(cfg *config.Config, svc *service.VoteService) *VoteHandler {
	return &VoteHandler{cfg: cfg, svc: svc}
}

// Cast handles POST /api/votes. Responds 200 for applied votes and for
// silent no-ops alike; only the documented lock/warning cases return 403.
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	uuid, errMsg := middleware.ValidateUUID(req.UUID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.UUID = uuid

	userID, errMsg := middleware.ValidateUserID(req.UserID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.UserID = userID

	ipHash := hash.HashIP(c.IP(), h.cfg.AddressSalt)

	err := h.svc.Cast(c.Context(), req, ipHash)
	if Metrics.VotesTotal != nil {
		outcome := "applied"
		if err != nil {
			outcome = "rejected"
		}
		Metrics.VotesTotal.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.Is(err, model.ErrSegmentNotFound):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "NOT_FOUND", "Segment not found")
		case errors.Is(err, model.ErrLockedDownvote):
			return middleware.ErrorResponse(c, fiber.StatusForbidden, "LOCKED", err.Error())
		case errors.Is(err, model.ErrActiveWarning):
			return middleware.ErrorResponse(c, fiber.StatusForbidden, "ACTIVE_WARNING", err.Error())
		case errors.As(err, &vErr):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "REJECTED", vErr.Reason)
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process vote")
		}
	}

	return c.JSON(fiber.Map{"success": true})
}
