package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrNoItems: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "At least one item is required",
	},
	domainErrors.ErrInvalidQuantity: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Item quantities must be positive integers",
	},
	domainErrors.ErrClientNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Client not found",
	},
	domainErrors.ErrProductNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "One or more products not found",
	},
	domainErrors.ErrSaleNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Sale not found",
	},
	domainErrors.ErrInsufficientStock: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Insufficient stock",
	},
	domainErrors.ErrRateLimited: {
		HTTPStatus: http.StatusTooManyRequests,
		Status:     StatusTooManyRequests,
		Message:    "Too many requests",
	},
	domainErrors.ErrTransactionFailed: {
		HTTPStatus: http.StatusInternalServerError,
		Status:     StatusInternalError,
		Message:    "Transaction failed",
	},
}

// InsufficientStockResponse carries the full per-line shortage breakdown so
// the UI can render every correction at once.
type InsufficientStockResponse struct {
	BaseResponse
	Status    Status                       `json:"status"`
	Error     string                       `json:"error"`
	Shortages []domainErrors.StockShortage `json:"shortages"`
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message, err.Error())
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error", err.Error())
}

func WriteDomainError(w http.ResponseWriter, err error) {
	var stockErr *domainErrors.InsufficientStockError
	if errors.As(err, &stockErr) {
		WriteJSON(w, http.StatusConflict, &InsufficientStockResponse{
			BaseResponse: BaseResponse{Message: "Insufficient stock"},
			Status:       StatusConflict,
			Error:        stockErr.Error(),
			Shortages:    stockErr.Shortages,
		})
		return
	}

	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
