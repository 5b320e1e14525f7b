package clients

import (
	"context"
	"net/http"

	"github.com/skawashin1122/bento-app-project/internal/menu"
)

type MenuClient struct {
	base *Client
}

func NewMenuClient(base *Client) *MenuClient {
	return &MenuClient{base: base}
}

// ListMenus implements menu.Lister.
func (c *MenuClient) ListMenus(ctx context.Context) ([]menu.Item, error) {
	resp, err := c.base.Do(ctx, http.MethodGet, "/api/menus", nil)
	if err != nil {
		return nil, &FetchError{Resource: "menus", Err: err}
	}
	defer resp.Body.Close()

	items := []menu.Item{}
	if err := decodeList("menus", resp, &items); err != nil {
		return nil, err
	}
	return items, nil
}
