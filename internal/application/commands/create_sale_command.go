package commands

import (
	"context"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/use_cases"
	"github.com/brenobaldassim/cpsm-service/internal/domain/sale"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

type CreateSaleCommand struct {
	ClientID string
	Items    []SaleLineItem
	SaleDate time.Time
}

type SaleLineItem struct {
	ProductID string
	Quantity  int
}

type SaleItemResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type CreateSaleResponse struct {
	ID         string             `json:"id"`
	ClientID   string             `json:"client_id"`
	ClientName string             `json:"client_name"`
	SaleDate   time.Time          `json:"sale_date"`
	TotalCents int64              `json:"total_cents"`
	Items      []SaleItemResponse `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

type CreateSaleHandler struct {
	createSaleUseCase *use_cases.CreateSaleUseCase
	log               *logger.Logger
}

func NewCreateSaleHandler(
	createSaleUseCase *use_cases.CreateSaleUseCase,
	log *logger.Logger,
) *CreateSaleHandler {
	return &CreateSaleHandler{
		createSaleUseCase: createSaleUseCase,
		log:               log,
	}
}

func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (*CreateSaleResponse, error) {
	lines := make([]sale.LineItemRequest, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		lines = append(lines, sale.LineItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.createSaleUseCase.Execute(ctx, use_cases.CreateSaleInput{
		ClientID: cmd.ClientID,
		Items:    lines,
		SaleDate: cmd.SaleDate,
	})
	if err != nil {
		h.log.Error("Create sale failed", "error", err.Error(), "client_id", cmd.ClientID)
		return nil, err
	}

	return NewCreateSaleResponse(result), nil
}

func NewCreateSaleResponse(s *sale.Sale) *CreateSaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			Quantity:      item.Quantity,
			PriceCents:    item.PriceCents,
			SubtotalCents: item.SubtotalCents,
		})
	}

	return &CreateSaleResponse{
		ID:         s.ID,
		ClientID:   s.ClientID,
		ClientName: s.ClientName,
		SaleDate:   s.SaleDate,
		TotalCents: s.TotalCents,
		Items:      items,
		CreatedAt:  s.CreatedAt,
	}
}
