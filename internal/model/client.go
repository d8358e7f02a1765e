package model

import "time"

// Client is the customer an intervention or invoice belongs to.
type Client struct {
	ID        string    `json:"id"`
	ArtisanID string    `json:"artisan_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SetKey sets the database key for this client.
func (c *Client) SetKey(key string) {
	c.ID = IDFromKey(PrefixClient, key)
}

// GetKey returns the database key for this client.
func (c *Client) GetKey() string {
	return GenerateKey(PrefixClient, c.ID)
}
