package main

import (
	"context"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/generates"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/models"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/go-oauth2/oauth2/v4/store"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"kondecoracao/common"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type authSvc struct {
	logger      *zap.SugaredLogger
	oauthServer *server.Server
	userDb      *gorm.DB
	producer    common.EventProducer
}

func main() {
	logger := common.NewLogger("auth", true)
	logger.Info("Starting Kondecoracao.Auth service")

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %s", err)
	}
	if !cfg.devel {
		logger = common.NewLogger("auth", false)
	}

	db, err := common.OpenDatabase(cfg.db, logger)
	if err != nil {
		logger.Fatalf("Failed to open database: %s", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		logger.Fatalf("Failed to migrate database: %s", err)
	}

	producer, closeProducer, err := common.NewEventProducer(cfg.kafka, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka Producer: %s", err)
	}
	defer closeProducer()

	app := &authSvc{
		logger:   logger,
		userDb:   db,
		producer: producer,
	}
	app.oauthServer = newOAuthServer(cfg, app)

	e := common.GetNewEcho(logger)
	reg := common.NewRegistry()
	common.UseMetrics(e, reg, reg, "auth")
	app.routes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := common.RunServer(ctx, e, cfg.server, logger); err != nil {
		logger.Errorf("Server failed: %s", err)
	}
}

// newOAuthServer builds password grant server issuing JWT access tokens, kept in memory
func newOAuthServer(cfg *authConfig, app *authSvc) *server.Server {
	manager := manage.NewDefaultManager()
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    cfg.tokenTTL,
		RefreshTokenExp:   7 * 24 * time.Hour,
		IsGenerateRefresh: true,
	})
	manager.MustTokenStorage(store.NewMemoryTokenStore())
	manager.MapAccessGenerate(generates.NewJWTAccessGenerate("", []byte(cfg.jwtKey), jwt.SigningMethodHS512))

	clientStore := store.NewClientStore()
	_ = clientStore.Set(cfg.clientID, &models.Client{
		ID:     cfg.clientID,
		Secret: cfg.clientSecret,
		Domain: cfg.clientDomain,
	})
	manager.MapClientStorage(clientStore)

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(true)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetPasswordAuthorizationHandler(app.checkPassword)

	srv.SetInternalErrorHandler(func(err error) (re *errors.Response) {
		app.logger.Errorf("Internal Error: %s", err.Error())
		return
	})
	srv.SetResponseErrorHandler(func(re *errors.Response) {
		app.logger.Infof("Response Error: %s", re.Error.Error())
	})
	return srv
}
