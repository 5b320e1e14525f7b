package menu

// Item is one entry of the backend menu. Price is in the smallest currency
// unit (yen).
type Item struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description,omitempty"`
}
