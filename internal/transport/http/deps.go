package http

import (
	"github.com/easymotion-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/easymotion-api/internal/infrastructure/jwt"
	s3infra "github.com/easymotion-api/internal/infrastructure/s3"
	"github.com/easymotion-api/internal/infrastructure/smtp"
	"github.com/easymotion-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	CourseRepo       *dynamo.CourseRepo
	SubscriptionRepo *dynamo.SubscriptionRepo
	CategoryRepo     *dynamo.CategoryRepo
	NotificationRepo *dynamo.NotificationRepo
	ImageRepo        *dynamo.ImageRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
}
