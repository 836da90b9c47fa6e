package domain

import "time"

type Shop struct {
	ShopID      string    `json:"id" dynamodbav:"shop_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Category    string    `json:"category" dynamodbav:"category"`
	Address     string    `json:"address" dynamodbav:"address"`
	Description string    `json:"description" dynamodbav:"description"`
	Location    string    `json:"location" dynamodbav:"location"`
	OwnerID     string    `json:"owner_id" dynamodbav:"owner_id"`
	Approved    bool      `json:"approved" dynamodbav:"approved"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`

	// Owner is populated on list/detail reads, never persisted.
	Owner *User `json:"owner,omitempty" dynamodbav:"-"`
}

// CreateShopRequest is the admin payload creating an owner account and its
// shop in one call.
type CreateShopRequest struct {
	Name  string          `json:"name" validate:"required"`
	Email string          `json:"email" validate:"required,email"`
	Phone *string         `json:"phone"`
	Shop  ShopDescription `json:"shop" validate:"required"`
}

type ShopDescription struct {
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Address     string `json:"address" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type UpdateShopRequest struct {
	Name        *string `json:"name"`
	Category    *string `json:"category"`
	Address     *string `json:"address"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}
