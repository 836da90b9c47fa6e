package domain

import "time"

// Cart is one document per user. Lines reference products by ID only;
// prices are resolved at view time.
type Cart struct {
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Items     []CartItem `json:"items" dynamodbav:"items"`
	UpdatedAt time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CartItem struct {
	ProductID string `json:"product_id" dynamodbav:"product_id"`
	Quantity  int    `json:"quantity" dynamodbav:"quantity"`
}

// CartLine is a resolved cart item with its product and line total.
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Total    int64    `json:"total_cents"`
}

// CartShopGroup groups resolved lines under their owning shop.
type CartShopGroup struct {
	ShopID   string     `json:"shop_id"`
	ShopName string     `json:"shop_name"`
	Items    []CartLine `json:"items"`
	Subtotal int64      `json:"subtotal_cents"`
}

// CartView is the response shape for the grouped cart.
// GrandTotal always equals the sum of the group subtotals.
type CartView struct {
	GroupedByShop []CartShopGroup `json:"grouped_by_shop"`
	GrandTotal    int64           `json:"grand_total_cents"`
}
