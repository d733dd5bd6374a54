package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/splitkaro/billscan/internal/config"
	"github.com/splitkaro/billscan/internal/database"
	"github.com/splitkaro/billscan/internal/middleware"
	"github.com/splitkaro/billscan/internal/models"
	"github.com/splitkaro/billscan/internal/services"
)

// SplitHandler handles bill-splitting endpoints
type SplitHandler struct {
	db       *database.DB
	cfg      *config.Config
	splitter *services.SplitterService
}

// NewSplitHandler creates a new split handler
func NewSplitHandler(db *database.DB, cfg *config.Config, splitter *services.SplitterService) *SplitHandler {
	return &SplitHandler{
		db:       db,
		cfg:      cfg,
		splitter: splitter,
	}
}

// SplitReceipt computes and stores a split of a scanned receipt
func (h *SplitHandler) SplitReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	receiptID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt id")
	}

	var req models.SplitRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	stored, err := h.db.GetReceiptByID(c.Context(), receiptID)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to retrieve receipt")
	}
	if stored.UserID != userID {
		return Error(c, fiber.StatusNotFound, "receipt not found")
	}

	receipt := &models.Receipt{
		Items:         stored.Items,
		Subtotal:      stored.Subtotal,
		Tax:           stored.Tax,
		ServiceCharge: stored.ServiceCharge,
		Total:         stored.Total,
	}

	split, err := h.splitter.Split(receiptID, receipt, &req)
	if err != nil {
		if errors.Is(err, services.ErrNoParticipants) || errors.Is(err, services.ErrInvalidAssignment) {
			return Error(c, fiber.StatusBadRequest, err.Error())
		}
		return Error(c, fiber.StatusBadRequest, "failed to compute split")
	}

	saved, err := h.db.CreateSplit(c.Context(), userID, uuid.NewString(), split)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to save split")
	}

	return Success(c, saved)
}

// ListSplits returns all splits computed for one of the user's receipts
func (h *SplitHandler) ListSplits(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	receiptID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt id")
	}

	stored, err := h.db.GetReceiptByID(c.Context(), receiptID)
	if err != nil || stored.UserID != userID {
		return Error(c, fiber.StatusNotFound, "receipt not found")
	}

	splits, err := h.db.ListSplitsForReceipt(c.Context(), receiptID)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list splits")
	}

	return Success(c, splits)
}

// GetSharedSplit returns a split by its public share token (no auth)
func (h *SplitHandler) GetSharedSplit(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return Error(c, fiber.StatusBadRequest, "share token is required")
	}

	split, err := h.db.GetSplitByToken(c.Context(), token)
	if err != nil {
		if errors.Is(err, database.ErrSplitNotFound) {
			return Error(c, fiber.StatusNotFound, "split not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to retrieve split")
	}

	return Success(c, split.Split)
}
