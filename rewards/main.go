package main

import (
	"context"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"
)

type rewardsSvc struct {
	logger         *zap.SugaredLogger
	db             *gorm.DB
	authServer     string
	authHttpClient *http.Client
	producer       common.EventProducer
	roles          *cache.Cache
	metrics        *rewardsMetrics
	location       *time.Location
	adminEmails    map[string]bool
	now            func() time.Time
}

func main() {
	logger := common.NewLogger("rewards", true)
	logger.Info("Starting Kondecoracao.Rewards service")

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %s", err)
	}
	if !cfg.devel {
		logger = common.NewLogger("rewards", false)
	}

	db, err := common.OpenDatabase(cfg.db, logger)
	if err != nil {
		logger.Fatalf("Failed to open database: %s", err)
	}
	if err := db.AutoMigrate(&Profile{}, &Bonification{}, &Withdrawal{}); err != nil {
		logger.Fatalf("Failed to migrate database: %s", err)
	}

	producer, closeProducer, err := common.NewEventProducer(cfg.kafka, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka Producer: %s", err)
	}
	defer closeProducer()

	reg := common.NewRegistry()
	app := &rewardsSvc{
		logger:         logger,
		db:             db,
		authServer:     cfg.authServer,
		authHttpClient: &http.Client{Timeout: cfg.authTimeout},
		producer:       producer,
		roles:          cache.New(cfg.roleCacheTTL, 2*cfg.roleCacheTTL),
		metrics:        newRewardsMetrics(reg),
		location:       cfg.location,
		adminEmails:    cfg.adminEmails,
		now:            time.Now,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.kafka != "" {
		consumer, err := common.NewKafkaConsumer(cfg.kafka, "Rewards", []string{schema.TopicUserLifecycle})
		if err != nil {
			logger.Fatalf("Failed to initialize Kafka Consumer: %s", err)
		}
		go app.startReadingNotification(ctx, consumer)
	}

	e := common.GetNewEcho(logger)
	common.UseMetrics(e, reg, reg, "rewards")
	app.routes(e)

	if err := common.RunServer(ctx, e, cfg.server, logger); err != nil {
		logger.Errorf("Server failed: %s", err)
	}
}
