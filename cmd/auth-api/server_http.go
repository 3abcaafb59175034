package main

import (
	"context"
	"net/http"
	"time"

	config "github.com/NordCoder/Authly/internal/config/auth-api"
	"github.com/NordCoder/Authly/internal/domain/session"
	"github.com/NordCoder/Authly/internal/httpmw"
	pg "github.com/NordCoder/Authly/internal/repository/postgres"
	"github.com/NordCoder/Authly/internal/services/auth-api/auth"
	userapi "github.com/NordCoder/Authly/internal/services/auth-api/user"
	"github.com/NordCoder/Authly/internal/token"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func buildHTTPServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, db *pg.DB, store session.Store) (*http.Server, error) {
	signer, err := token.NewSigner(token.Config{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, err
	}

	users := pg.NewUserRepo(db)
	uc := auth.NewUsecase(users, store, signer)

	authHandler := auth.NewHandler(uc, auth.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Path:   cfg.Auth.CookiePath,
		Domain: cfg.Auth.CookieDomain,
		Secure: cfg.App.Production(),
		MaxAge: cfg.Auth.RefreshTTL,
	}, logger)
	userHandler := userapi.NewHandler(users, logger)

	r := mux.NewRouter()
	r.HandleFunc("/", rootHandler(cfg)).Methods(http.MethodGet)
	authHandler.Mount(r)

	protected := r.PathPrefix("/users").Subrouter()
	protected.Use(auth.Authenticate(uc.VerifyAccess, logger))
	userHandler.Mount(protected)

	var handler http.Handler = otelhttp.NewHandler(r, "auth-api")
	if cfg.RateLimit.Enable {
		rl := httpmw.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
		rl.StartCleanup(ctx)
		handler = rl.Handler(handler)
	}
	handler = httpmw.SecurityHeaders(handler)
	handler = httpmw.CORS(cfg.CORS.AllowedOrigins)(handler)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}, nil
}

func rootHandler(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"API is live","status":"ok","version":"` +
			cfg.App.Version + `","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	}
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}
