package domain

import "time"

// Role names stored on the user record and carried in JWT claims.
const (
	RoleAdmin     = "admin"
	RoleCustomer  = "customer"
	RoleShopOwner = "shop_owner"
)

// ShopRequest tracks the shop-onboarding sub-state on a user record.
// Admin-created shop owners get requested and accepted back-filled in one step.
type ShopRequest struct {
	Requested bool   `json:"requested" dynamodbav:"requested"`
	Accepted  bool   `json:"accepted" dynamodbav:"accepted"`
	ShopID    string `json:"shop_id,omitempty" dynamodbav:"shop_id"`
}

type User struct {
	UserID         string      `json:"id" dynamodbav:"user_id"`
	Name           string      `json:"name" dynamodbav:"name"`
	Email          string      `json:"email" dynamodbav:"email"`
	Phone          *string     `json:"phone" dynamodbav:"phone"`
	PasswordHash   string      `json:"-" dynamodbav:"password_hash"`
	Role           string      `json:"role" dynamodbav:"role"`
	ShopRequest    ShopRequest `json:"shop_request" dynamodbav:"shop_request"`
	EmailConfirmed bool        `json:"email_confirmed" dynamodbav:"email_confirmed"`
	PhoneConfirmed bool        `json:"phone_confirmed" dynamodbav:"phone_confirmed"`
	AuthProvider   string      `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "local" | "google"
	GoogleSub      string      `json:"-"                       dynamodbav:"google_sub"`
	Enable         bool        `json:"enable" dynamodbav:"enable"`
	CreatedAt      time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time   `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
}
