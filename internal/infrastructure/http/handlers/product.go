package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/response"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/generator"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

const productCacheTTL = 5 * time.Minute

type ProductHandler struct {
	productRepo ports.ProductRepository
	cache       ports.Cache
	idGen       *generator.IDGenerator
	logger      *logger.Logger
}

func NewProductHandler(productRepo ports.ProductRepository, cache ports.Cache, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		productRepo: productRepo,
		cache:       cache,
		idGen:       generator.NewIDGenerator(),
		logger:      log,
	}
}

type ProductResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	StockQty   int    `json:"stock_qty"`
}

type ProductRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	StockQty   int    `json:"stock_qty"`
}

func newProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		StockQty:   p.StockQty,
	}
}

func (h *ProductHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := paginationParams(r, 100)

	products, err := h.productRepo.ListProducts(ctx, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, newProductResponse(p))
	}

	response.WriteSuccess(w, responses)
}

func (h *ProductHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := strings.TrimPrefix(r.URL.Path, "/products/")

	if productID == "" || strings.Contains(productID, "/") {
		http.NotFound(w, r)
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.GetProduct(ctx, productID); err != nil {
			h.logger.Warn("Product cache read failed", "error", err, "product_id", productID)
		} else if cached != nil {
			response.WriteSuccess(w, newProductResponse(cached))
			return
		}
	}

	p, err := h.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrProductNotFound) {
			h.logger.Error("Failed to get product", "error", err.Error(), "product_id", productID)
		}
		response.WriteDomainError(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetProduct(ctx, p, productCacheTTL); err != nil {
			h.logger.Warn("Product cache write failed", "error", err, "product_id", productID)
		}
	}

	response.WriteSuccess(w, newProductResponse(p))
}

func (h *ProductHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	p, err := catalog.NewProduct(h.idGen.GenerateProductID(), req.Name, req.PriceCents, req.StockQty)
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{"product": err.Error()})
		return
	}

	if err := h.productRepo.CreateProduct(ctx, p); err != nil {
		h.logger.Error("Failed to create product", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteCreated(w, newProductResponse(p))
}

// HandleUpdateProduct edits the current catalog entry. Existing sales keep
// the prices captured when they were committed; only future sales see the
// new values.
func (h *ProductHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := strings.TrimPrefix(r.URL.Path, "/products/")

	if productID == "" || strings.Contains(productID, "/") {
		http.NotFound(w, r)
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	p, err := h.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	validationErrors := make(map[string]string)
	if req.Name == "" {
		validationErrors["name"] = "Name is required"
	}
	if req.PriceCents < 0 {
		validationErrors["price_cents"] = "Price cannot be negative"
	}
	if req.StockQty < 0 {
		validationErrors["stock_qty"] = "Stock cannot be negative"
	}
	if len(validationErrors) > 0 {
		response.WriteValidationError(w, "Validation failed", validationErrors)
		return
	}

	p.Name = req.Name
	p.PriceCents = req.PriceCents
	p.StockQty = req.StockQty

	if err := h.productRepo.UpdateProduct(ctx, p); err != nil {
		h.logger.Error("Failed to update product", "error", err.Error(), "product_id", productID)
		response.WriteDomainError(w, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateProduct(ctx, productID); err != nil {
			h.logger.Warn("Product cache invalidation failed", "error", err, "product_id", productID)
		}
	}

	response.WriteSuccess(w, newProductResponse(p))
}
