package api

import (
	"context"
	"net/http"
	"sort"
)

// Item is one requestable supply.
type Item struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	CategoryKey  string `json:"category_key"`
	CategoryName string `json:"category_name"`
}

// Category groups items under a display name.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

type itemsReply struct {
	Categories map[string][]Item `json:"categories"`
}

// Items lists supplies grouped by category, categories sorted by name.
func (c *Client) Items(ctx context.Context) ([]Category, error) {
	var reply itemsReply
	if err := c.do(ctx, http.MethodGet, "/api/items/", nil, &reply); err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(reply.Categories))
	for name, items := range reply.Categories {
		out = append(out, Category{Name: name, Items: items})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SupplyRequest is a request for items on behalf of a user.
type SupplyRequest struct {
	Items    []int64 `json:"items"`
	UserID   int64   `json:"userId"`
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
}

// SupplyReceipt is the backend acknowledgement of a SupplyRequest.
type SupplyReceipt struct {
	RequestID  int64  `json:"requestId"`
	EmailSent  bool   `json:"emailSent"`
	EmailError string `json:"emailError"`
}

// RequestSupplies submits r. At least one item is required.
func (c *Client) RequestSupplies(ctx context.Context, r SupplyRequest) (*SupplyReceipt, error) {
	if len(r.Items) == 0 {
		return nil, ErrNoItems
	}
	var receipt SupplyReceipt
	if err := c.do(ctx, http.MethodPost, "/api/supplies/request/", r, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
