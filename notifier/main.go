package main

import (
	"context"
	"go.uber.org/zap"
	"kondecoracao/common"
	"kondecoracao/schema"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

type notifierSvc struct {
	logger *zap.SugaredLogger
	relay  *relay
	appURL string
}

func main() {
	logger := common.NewLogger("notifier", true)
	logger.Info("Starting Kondecoracao.Notifier service")

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %s", err)
	}
	if !cfg.devel {
		logger = common.NewLogger("notifier", false)
	}
	if cfg.webhookURL == "" && cfg.whatsappToken == "" {
		logger.Warn("Neither WEBHOOK_URL nor WHATSAPP_TOKEN is set, notifications go nowhere")
	}

	reg := common.NewRegistry()
	app := &notifierSvc{
		logger: logger,
		relay: &relay{
			logger:          logger,
			client:          &http.Client{Timeout: cfg.timeout},
			webhookURL:      cfg.webhookURL,
			whatsappAPI:     cfg.whatsappAPI,
			whatsappToken:   cfg.whatsappToken,
			whatsappPhoneID: cfg.whatsappPhoneID,
			whatsappTo:      cfg.whatsappTo,
			deliveries:      newRelayMetrics(reg),
		},
		appURL: cfg.appURL,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.kafka != "" {
		consumer, err := common.NewKafkaConsumer(cfg.kafka, "Notifier",
			[]string{schema.TopicBonificationLifecycle, schema.TopicWithdrawalLifecycle})
		if err != nil {
			logger.Fatalf("Failed to initialize Kafka Consumer: %s", err)
		}
		go app.startReadingNotification(ctx, consumer)
	}

	e := common.GetNewEcho(logger)
	common.UseMetrics(e, reg, reg, "notifier")
	app.routes(e)

	if err := common.RunServer(ctx, e, cfg.server, logger); err != nil {
		logger.Errorf("Server failed: %s", err)
	}
}
