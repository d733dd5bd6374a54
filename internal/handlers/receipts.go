package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/splitkaro/billscan/internal/config"
	"github.com/splitkaro/billscan/internal/database"
	"github.com/splitkaro/billscan/internal/middleware"
	"github.com/splitkaro/billscan/internal/models"
	"github.com/splitkaro/billscan/internal/ocr"
	"github.com/splitkaro/billscan/internal/services"
)

// ReceiptHandler handles receipt scanning and retrieval endpoints
type ReceiptHandler struct {
	db      *database.DB
	cfg     *config.Config
	storage *services.StorageService
	scanner *services.ScannerService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(
	db *database.DB,
	cfg *config.Config,
	storage *services.StorageService,
	scanner *services.ScannerService,
) *ReceiptHandler {
	return &ReceiptHandler{
		db:      db,
		cfg:     cfg,
		storage: storage,
		scanner: scanner,
	}
}

// ScanReceipt accepts an uploaded receipt image, runs the OCR extraction
// pipeline, and persists the structured result.
func (h *ReceiptHandler) ScanReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "image file is required")
	}

	contentType := file.Header.Get("Content-Type")
	if !isValidImageType(contentType) {
		return Error(c, fiber.StatusBadRequest, "invalid image type. Supported: JPEG, PNG, WebP")
	}

	if file.Size > 10*1024*1024 {
		return Error(c, fiber.StatusBadRequest, "file too large. Maximum size is 10MB")
	}

	src, err := file.Open()
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}
	defer src.Close()

	imageBytes, err := io.ReadAll(src)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to read file")
	}

	// Run the extraction pipeline before touching storage; a receipt we
	// cannot read at all should not leave an orphaned image behind.
	receipt, err := h.scanner.ScanImage(c.Context(), imageBytes)
	if err != nil {
		if errors.Is(err, ocr.ErrExtractionFailed) {
			return Error(c, fiber.StatusUnprocessableEntity, "could not read any text from the image")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to process image")
	}

	s3Key := generateObjectKey(userID, file.Filename)
	if err := h.storage.Upload(c.Context(), s3Key, bytes.NewReader(imageBytes), file.Size, contentType); err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to store image")
	}

	stored, err := h.db.CreateReceipt(c.Context(), &models.CreateReceiptRequest{
		UserID:           userID,
		S3Bucket:         h.storage.GetBucketName(),
		S3Key:            s3Key,
		OriginalFilename: file.Filename,
		ContentType:      contentType,
		Receipt:          receipt,
	})
	if err != nil {
		if deleteErr := h.storage.Delete(c.Context(), s3Key); deleteErr != nil {
			log.Printf("Warning: Failed to clean up object %s after receipt creation failure: %v", s3Key, deleteErr)
		}
		return Error(c, fiber.StatusInternalServerError, "failed to save receipt")
	}

	return Success(c, stored)
}

// ListReceipts returns a paginated list of the user's receipts, optionally
// filtered by receipt type and scan date range.
func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	params := &models.ReceiptListParams{
		UserID: userID,
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}

	if rtype := c.Query("type"); rtype != "" {
		params.ReceiptType = &rtype
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.Add(24 * time.Hour)
			params.To = &end
		}
	}

	if params.Limit < 1 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	receipts, total, err := h.db.ListReceipts(c.Context(), params)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to list receipts")
	}

	return SuccessWithMeta(c, receipts, total, params.Limit, params.Offset)
}

// GetReceipt returns a single receipt with a presigned image URL
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt id")
	}

	receipt, err := h.db.GetReceiptByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to retrieve receipt")
	}
	if receipt.UserID != userID {
		return Error(c, fiber.StatusNotFound, "receipt not found")
	}

	return Success(c, receipt)
}

// GetReceiptImage redirects to a presigned URL for the stored image
func (h *ReceiptHandler) GetReceiptImage(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt id")
	}

	receipt, err := h.db.GetReceiptByID(c.Context(), id)
	if err != nil || receipt.UserID != userID {
		return Error(c, fiber.StatusNotFound, "receipt not found")
	}
	if receipt.S3Key == "" {
		return Error(c, fiber.StatusNotFound, "no image stored for this receipt")
	}

	url, err := h.storage.GetPresignedURL(c.Context(), receipt.S3Key, 1*time.Hour)
	if err != nil {
		return Error(c, fiber.StatusInternalServerError, "failed to generate image URL")
	}

	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

// DeleteReceipt removes a receipt, its items, and the stored image
func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid receipt id")
	}

	s3Key, err := h.db.DeleteReceipt(c.Context(), id, userID)
	if err != nil {
		if errors.Is(err, database.ErrReceiptNotFound) {
			return Error(c, fiber.StatusNotFound, "receipt not found")
		}
		return Error(c, fiber.StatusInternalServerError, "failed to delete receipt")
	}

	if s3Key != "" {
		if err := h.storage.Delete(c.Context(), s3Key); err != nil {
			log.Printf("Warning: Failed to delete object %s for receipt %d: %v", s3Key, id, err)
		}
	}

	return Success(c, fiber.Map{"deleted": id})
}

func isValidImageType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/jpg", "image/png", "image/webp":
		return true
	}
	return false
}

func generateObjectKey(userID int, filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("receipts/%d/%s%s", userID, uuid.NewString(), ext)
}
