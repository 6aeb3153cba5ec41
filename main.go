package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vaultline/escrowbackend/auth"
	"github.com/vaultline/escrowbackend/config"
	"github.com/vaultline/escrowbackend/controllers"
	"github.com/vaultline/escrowbackend/database"
	"github.com/vaultline/escrowbackend/email"
	"github.com/vaultline/escrowbackend/middleware"
	"github.com/vaultline/escrowbackend/social"
	"github.com/vaultline/escrowbackend/stores"
	"github.com/vaultline/escrowbackend/utils"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	client := database.Connect(ctx, cfg.MongoURI)
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Println("mongo disconnect:", err)
		}
	}()
	db := client.Database(cfg.DatabaseName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal(err)
	}

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, db.Collection("users"), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal(err)
	}

	users := stores.NewUserStore(db.Collection("users"))
	orgs := stores.NewOrganizationStore(db.Collection("organizations"))
	sessions := stores.NewSessionStore(db.Collection("sessions"))
	tokens := stores.NewAuthTokenStore(db.Collection("auth_tokens"))

	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	issuer := auth.NewIssuer(codec, sessions, users)
	mail := email.NewMailer(email.NewSMTPSender(cfg), cfg.AppBaseURL)

	googleVerifier := social.NewGoogleVerifier(cfg.GoogleClientID)
	facebookVerifier := social.NewFacebookVerifier(http.DefaultClient)
	xVerifier := social.NewXVerifier(http.DefaultClient)

	r := gin.New()
	v := utils.NewImageValidator()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-refresh-token"},
		ExposeHeaders:    []string{"Content-Length", middleware.RenewedAccessTokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.ErrorHandler())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	r.POST("/auth/signup", controllers.Signup(users, orgs, tokens, mail, cfg))
	r.POST("/auth/login", controllers.Login(users, issuer, mail, cfg))
	r.POST("/auth/verify-otp", controllers.VerifyOTP(users, issuer, cfg))
	r.POST("/auth/refresh", controllers.Refresh(codec, sessions))
	r.POST("/auth/logout", controllers.Logout(codec, sessions))
	r.POST("/auth/forgot-password", controllers.ForgotPassword(users, tokens, mail, cfg))
	r.POST("/auth/reset-password", controllers.ResetPassword(users, tokens, sessions))
	r.GET("/auth/verify-email", controllers.VerifyEmail(users, orgs, tokens, mail))

	r.POST("/auth/google", controllers.GoogleLogin(users, codec, mail, googleVerifier, cfg))
	r.POST("/auth/facebook", controllers.FacebookLogin(users, codec, mail, facebookVerifier, cfg))
	r.POST("/auth/x", controllers.XLogin(users, codec, mail, xVerifier, cfg))

	r.POST("/auth/organization/signup", controllers.OrganizationSignup(orgs, users, tokens, mail, cfg))
	r.POST("/auth/organization/login", controllers.OrganizationLogin(orgs, issuer, cfg))

	me := r.Group("/users/me")
	me.Use(middleware.Authenticate(codec, sessions), middleware.RequireUser())
	{
		me.POST("/password", controllers.ChangeMyPassword(users, sessions))
		me.POST("/picture", controllers.UploadProfilePicture(users, v, cfg))
	}

	log.Println("Listening on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
