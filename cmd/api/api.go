package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ppangmap/docs" //this is required to generate swagger docs
	"ppangmap/internal/auth"
	"ppangmap/internal/mailer"
	"ppangmap/internal/notifications"
	"ppangmap/internal/oauth"
	"ppangmap/internal/ratelimiter"
	"ppangmap/internal/sharecode"
	"ppangmap/internal/store"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	oauth         *oauth.Manager
	push          notifications.PushSender
	shareCodes    *sharecode.Codec
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	auth        authConfig
	oauth       oauthConfig
	mail        mailConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type oauthConfig struct {
	google providerConfig
	kakao  providerConfig
}

type providerConfig struct {
	clientID     string
	clientSecret string
	redirectURL  string
}

type mailConfig struct {
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	//Set a timeout value on the request context (ctx), that will signal through ctx.Done() that the request has timed out and further processing should be stopped
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Ops endpoint: prunes tokens that Expo delivery receipts flagged as
		// DeviceNotRegistered
		r.With(app.BasicAuthMiddleware()).Post("/push-tokens/bulk-remove", app.bulkRemovePushTokensHandler)

		// Shared cart links resolve without a session
		r.Get("/c/{code}", app.resolveShareCodeHandler)

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", app.listCartsHandler)
			r.Get("/{cartID}", app.getCartHandler)
			r.Get("/{cartID}/reviews", app.getCartReviewsHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Post("/", app.createCartHandler)
				r.Delete("/{cartID}", app.deleteCartHandler)
				r.Post("/{cartID}/photos", app.uploadCartPhotoHandler)
				r.Delete("/{cartID}/photos", app.deleteCartPhotoHandler) // DELETE /carts/{cartID}/photos?photo_url={url}
				r.Post("/{cartID}/reviews", app.createCartReviewHandler)
				r.Delete("/{cartID}/reviews/{reviewID}", app.deleteCartReviewHandler)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Put("/", app.updateUserHandler)
			r.Post("/push-token", app.savePushTokenHandler)
			r.Delete("/push-token", app.removePushTokenHandler)
			r.Post("/logout", app.logoutHandler)
		})

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/oauth/{provider}", app.oauthExchangeHandler)
			r.With(app.AuthTokenMiddleware).Get("/session", app.sessionHandler)

			// Cookie-based flavor of the same session for web clients
			r.Route("/web", func(r chi.Router) {
				r.Post("/token", app.createTokenCookieHandler)
				r.Post("/refresh", app.refreshTokenCookieHandler)
				r.Post("/logout", app.logoutCookieHandler)
				r.Get("/session", app.webSessionHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
