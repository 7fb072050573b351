package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
	"github.com/brenobaldassim/cpsm-service/internal/domain/client"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/http/response"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/generator"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

type ClientHandler struct {
	clientRepo ports.ClientRepository
	idGen      *generator.IDGenerator
	logger     *logger.Logger
}

func NewClientHandler(clientRepo ports.ClientRepository, log *logger.Logger) *ClientHandler {
	return &ClientHandler{
		clientRepo: clientRepo,
		idGen:      generator.NewIDGenerator(),
		logger:     log,
	}
}

type ClientResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type ClientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func newClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:    c.ID,
		Name:  c.Name,
		Email: c.Email,
	}
}

func (h *ClientHandler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, offset := paginationParams(r, 100)

	clients, err := h.clientRepo.ListClients(ctx, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list clients", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	responses := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		responses = append(responses, newClientResponse(c))
	}

	response.WriteSuccess(w, responses)
}

func (h *ClientHandler) HandleGetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := strings.TrimPrefix(r.URL.Path, "/clients/")

	if clientID == "" || strings.Contains(clientID, "/") {
		http.NotFound(w, r)
		return
	}

	c, err := h.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrClientNotFound) {
			h.logger.Error("Failed to get client", "error", err.Error(), "client_id", clientID)
		}
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, newClientResponse(c))
}

func (h *ClientHandler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	c, err := client.NewClient(h.idGen.GenerateClientID(), req.Name, req.Email)
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{"client": err.Error()})
		return
	}

	if err := h.clientRepo.CreateClient(ctx, c); err != nil {
		h.logger.Error("Failed to create client", "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteCreated(w, newClientResponse(c))
}

func (h *ClientHandler) HandleUpdateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientID := strings.TrimPrefix(r.URL.Path, "/clients/")

	if clientID == "" || strings.Contains(clientID, "/") {
		http.NotFound(w, r)
		return
	}

	var req ClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body", err.Error())
		return
	}

	c, err := h.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	if req.Name == "" {
		response.WriteValidationError(w, "Validation failed", map[string]string{"name": "Name is required"})
		return
	}

	c.Name = req.Name
	c.Email = req.Email

	if err := h.clientRepo.UpdateClient(ctx, c); err != nil {
		h.logger.Error("Failed to update client", "error", err.Error(), "client_id", clientID)
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, newClientResponse(c))
}
