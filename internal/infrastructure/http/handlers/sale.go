package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/commands"
	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/response"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

type SaleHandler struct {
	createSale *commands.CreateSaleHandler
	saleRepo   ports.SaleRepository
	logger     *logger.Logger
}

func NewSaleHandler(createSale *commands.CreateSaleHandler, saleRepo ports.SaleRepository, log *logger.Logger) *SaleHandler {
	return &SaleHandler{
		createSale: createSale,
		saleRepo:   saleRepo,
		logger:     log,
	}
}

type CreateSaleRequest struct {
	ClientID string                  `json:"client_id"`
	SaleDate string                  `json:"sale_date,omitempty"`
	Items    []CreateSaleRequestItem `json:"items"`
}

type CreateSaleRequestItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *SaleHandler) HandleCreateSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	validationErrors := make(map[string]string)
	if req.ClientID == "" {
		validationErrors["client_id"] = "Client ID is required"
	}

	var saleDate time.Time
	if req.SaleDate != "" {
		var err error
		saleDate, err = time.Parse(time.RFC3339, req.SaleDate)
		if err != nil {
			validationErrors["sale_date"] = "Invalid sale_date time format (use RFC3339)"
		}
	}

	if len(validationErrors) > 0 {
		response.WriteValidationError(w, "Validation failed", validationErrors)
		return
	}

	cmd := commands.CreateSaleCommand{
		ClientID: req.ClientID,
		SaleDate: saleDate,
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, commands.SaleLineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	resp, err := h.createSale.Handle(ctx, cmd)
	if err != nil {
		monitoring.RecordSaleRejected(rejectionReason(err))
		response.WriteDomainError(w, err)
		return
	}

	monitoring.RecordSaleCommitted(resp.TotalCents, len(resp.Items))
	response.WriteCreated(w, resp)
}

func (h *SaleHandler) HandleGetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	saleID := strings.TrimPrefix(r.URL.Path, "/sales/")

	if saleID == "" || strings.Contains(saleID, "/") {
		http.NotFound(w, r)
		return
	}

	s, err := h.saleRepo.GetSaleByID(ctx, saleID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrSaleNotFound) {
			h.logger.Error("Failed to get sale", "error", err.Error(), "sale_id", saleID)
		}
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, commands.NewCreateSaleResponse(s))
}

func (h *SaleHandler) HandleListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := paginationParams(r, 100)

	sales, err := h.saleRepo.ListSales(ctx, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list sales", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]*commands.CreateSaleResponse, 0, len(sales))
	for _, s := range sales {
		responses = append(responses, commands.NewCreateSaleResponse(s))
	}

	response.WriteSuccess(w, responses)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrNoItems), errors.Is(err, domainErrors.ErrInvalidQuantity):
		return "invalid_request"
	case errors.Is(err, domainErrors.ErrClientNotFound):
		return "client_not_found"
	case errors.Is(err, domainErrors.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domainErrors.ErrTransactionFailed):
		return "transaction_failed"
	default:
		return "internal"
	}
}

func paginationParams(r *http.Request, defaultLimit int) (int, int) {
	limit := defaultLimit
	offset := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}
