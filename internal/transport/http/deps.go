package http

import (
	"github.com/go-bazaar-nosql/internal/infrastructure/dynamo"
	"github.com/go-bazaar-nosql/internal/infrastructure/google"
	jwtinfra "github.com/go-bazaar-nosql/internal/infrastructure/jwt"
	s3infra "github.com/go-bazaar-nosql/internal/infrastructure/s3"
	"github.com/go-bazaar-nosql/internal/infrastructure/smtp"
	"github.com/go-bazaar-nosql/internal/infrastructure/sns"
	"github.com/go-bazaar-nosql/internal/otpcache"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	ShopRepo    *dynamo.ShopRepo
	ProductRepo *dynamo.ProductRepo
	CartRepo    *dynamo.CartRepo
	SessionRepo *dynamo.SessionRepo

	S3Store        *s3infra.Store
	Mailer         smtp.Mailer
	SMSSender      sns.SMSSender
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *google.Verifier
	OTPCache       *otpcache.Store
}
