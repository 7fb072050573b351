package ports

import (
	"context"

	"github.com/brenobaldassim/cpsm-service/internal/domain/client"
)

type ClientRepository interface {
	GetClientByID(ctx context.Context, id string) (*client.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error)
	CreateClient(ctx context.Context, c *client.Client) error
	UpdateClient(ctx context.Context, c *client.Client) error
}
