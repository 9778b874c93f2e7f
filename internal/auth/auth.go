package auth

import (
	"context"
	"log/slog"

	"ShopChat/internal/api"
	"ShopChat/internal/session"
)

// Client handles registration and login against the backend and keeps the
// session store in sync.
type Client struct {
	api    *api.Client
	store  *session.Store
	logger *slog.Logger
}

// NewClient creates an auth client.
func NewClient(apiClient *api.Client, store *session.Store, logger *slog.Logger) *Client {
	return &Client{api: apiClient, store: store, logger: logger}
}

// Register creates an account. The password confirmation is checked locally
// before any request is issued. Success does not log the user in; the caller
// should switch to the login flow.
func (c *Client) Register(ctx context.Context, username, password, confirm string) error {
	if password != confirm {
		return &api.ValidationError{Reason: "Passwords do not match."}
	}

	if err := c.api.Register(ctx, username, password); err != nil {
		return err
	}

	return nil
}

// Login authenticates and saves the resulting session. The session store is
// only written after the wire layer has verified the response carries the
// full token/user id/username triple.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	data, err := c.api.Login(ctx, username, password)
	if err != nil {
		return session.Session{}, err
	}

	sess := session.Session{
		UserID:   data.UserID.String(),
		Username: data.Username,
		Token:    data.Token,
	}

	if err := c.store.Save(sess); err != nil {
		c.logger.Error("failed to save session", "error", err)
		return session.Session{}, err
	}

	return sess, nil
}

// Logout clears the stored session.
func (c *Client) Logout() error {
	return c.store.Clear()
}
