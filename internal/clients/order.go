package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/skawashin1122/bento-app-project/internal/order"
)

type OrderClient struct {
	base *Client
}

func NewOrderClient(base *Client) *OrderClient {
	return &OrderClient{base: base}
}

// CreateOrder implements order.Creator. Any 2xx is success (the backend
// answers 201).
func (c *OrderClient) CreateOrder(ctx context.Context, req order.Request) (order.Result, error) {
	resp, err := c.base.DoJSON(ctx, http.MethodPost, "/api/orders", req)
	if err != nil {
		return order.Result{}, fmt.Errorf("%s: %w", FallbackSubmitMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return order.Result{}, fmt.Errorf("%s: read body: %w", FallbackSubmitMessage, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(errorDetail(body))
		if msg == "" {
			msg = FallbackSubmitMessage
		}
		return order.Result{}, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var out order.Result
	if err := json.Unmarshal(body, &out); err != nil {
		return order.Result{}, fmt.Errorf("%s: decode response: %w", FallbackSubmitMessage, err)
	}
	return out, nil
}

// ListOrders implements order.Lister.
func (c *OrderClient) ListOrders(ctx context.Context) ([]order.Result, error) {
	resp, err := c.base.Do(ctx, http.MethodGet, "/api/orders", nil)
	if err != nil {
		return nil, &FetchError{Resource: "orders", Err: err}
	}
	defer resp.Body.Close()

	orders := []order.Result{}
	if err := decodeList("orders", resp, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
