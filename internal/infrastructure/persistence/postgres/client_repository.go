package postgres

import (
	"context"
	"database/sql"

	"github.com/brenobaldassim/cpsm-service/internal/domain/client"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(conn *Connection) *ClientRepository {
	return &ClientRepository{
		db: conn.GetDB(),
	}
}

func (r *ClientRepository) GetClientByID(ctx context.Context, id string) (*client.Client, error) {
	query := `
		SELECT id, name, email, created_at
		FROM clients
		WHERE id = $1
	`

	var c client.Client
	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "clients", query, id)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrClientNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *ClientRepository) ListClients(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	query := `
		SELECT id, name, email, created_at
		FROM clients
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "clients", query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}

	return clients, rows.Err()
}

func (r *ClientRepository) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := monitoring.InstrumentExec(ctx, r.db, "INSERT", "clients", query,
		c.ID, c.Name, c.Email, c.CreatedAt,
	)

	return err
}

func (r *ClientRepository) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $2, email = $3
		WHERE id = $1
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "clients", query,
		c.ID, c.Name, c.Email,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrClientNotFound
	}

	return nil
}
