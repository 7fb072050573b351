package client

import (
	"errors"
	"time"
)

// Client is the buyer side of a sale. The sale engine only needs the
// identifier; name and email exist for the management endpoints.
type Client struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

func NewClient(id, name, email string) (*Client, error) {
	if id == "" {
		return nil, errors.New("client id cannot be empty")
	}

	if name == "" {
		return nil, errors.New("client name cannot be empty")
	}

	return &Client{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}, nil
}
