package clients

// API bundles the typed clients of the bento backend. It satisfies
// session.Backend.
type API struct {
	*MenuClient
	*OrderClient
}

func NewAPI(base *Client) *API {
	return &API{MenuClient: NewMenuClient(base), OrderClient: NewOrderClient(base)}
}
