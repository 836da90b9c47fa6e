package domain

import "time"

type Product struct {
	ProductID   string    `json:"id" dynamodbav:"product_id"`
	ShopID      string    `json:"shop_id" dynamodbav:"shop_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	PriceCents  int64     `json:"price_cents" dynamodbav:"price_cents"`
	ImageKey    string    `json:"image_key,omitempty" dynamodbav:"image_key"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gt=0"`
}
