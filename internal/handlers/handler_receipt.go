package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/pravaha-app/expense_backend/internal/core/ports/services"
	"github.com/pravaha-app/expense_backend/internal/dto"
	"github.com/pravaha-app/expense_backend/internal/middleware"
)

// receiptHandler handles receipt scanning requests.
type receiptHandler struct {
	extractor portssvc.ReceiptExtractorSvc
}

func newReceiptHandler(ex portssvc.ReceiptExtractorSvc) *receiptHandler {
	return &receiptHandler{extractor: ex}
}

func registerReceiptRoutes(rg *gin.RouterGroup, extractor portssvc.ReceiptExtractorSvc) {
	h := newReceiptHandler(extractor)

	receipts := rg.Group("/receipts")
	{
		receipts.POST("/scan", h.scanReceipt)
	}
}

// scanReceipt godoc
// @Summary Scan a receipt image
// @Description Extracts suggested expense fields (amount, currency, category) from a receipt image. Extraction is best effort: when nothing can be read an empty suggestion set is returned, never an error.
// @Tags receipts
// @Accept  json
// @Produce  json
// @Param   receipt body dto.ScanReceiptRequest true "Base64-encoded receipt image"
// @Success 200 {object} dto.ReceiptSuggestion
// @Failure 400 {object} ErrorResponse "Invalid image payload"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /receipts/scan [post]
func (h *receiptHandler) scanReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ScanReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image must be valid base64"})
		return
	}

	suggestion, err := h.extractor.Extract(c.Request.Context(), image)
	if err != nil {
		// Extraction failure degrades to an empty suggestion set.
		logger.Warn("Receipt extraction failed", slog.String("error", err.Error()))
		c.JSON(http.StatusOK, dto.ReceiptSuggestion{})
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
