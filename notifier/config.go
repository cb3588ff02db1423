package main

import (
	"kondecoracao/common"
	"time"
)

type notifierConfig struct {
	server          string
	devel           bool
	kafka           string
	webhookURL      string
	whatsappAPI     string
	whatsappToken   string
	whatsappPhoneID string
	whatsappTo      string
	appURL          string
	timeout         time.Duration
}

// loadConfig reads notifier.yaml and env, channel settings are also read from their plain names (WEBHOOK_URL, ...)
func loadConfig() (*notifierConfig, error) {
	v, err := common.NewConfig("notifier")
	if err != nil {
		return nil, err
	}
	v.SetDefault("devel", true)
	v.SetDefault("kafka", "")
	v.SetDefault("notifier.server", ":7002")
	v.SetDefault("notifier.timeout", 10*time.Second)
	v.SetDefault("notifier.whatsapp.api", "https://graph.facebook.com/v18.0")

	bindings := map[string]string{
		"notifier.webhook.url":       "WEBHOOK_URL",
		"notifier.whatsapp.token":    "WHATSAPP_TOKEN",
		"notifier.whatsapp.phone_id": "WHATSAPP_PHONE_ID",
		"notifier.whatsapp.to":       "WHATSAPP_TO",
		"notifier.app.url":           "NEXT_PUBLIC_APP_URL",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "KONDE_"+env, env); err != nil {
			return nil, err
		}
	}

	return &notifierConfig{
		server:          v.GetString("notifier.server"),
		devel:           v.GetBool("devel"),
		kafka:           v.GetString("kafka"),
		webhookURL:      v.GetString("notifier.webhook.url"),
		whatsappAPI:     v.GetString("notifier.whatsapp.api"),
		whatsappToken:   v.GetString("notifier.whatsapp.token"),
		whatsappPhoneID: v.GetString("notifier.whatsapp.phone_id"),
		whatsappTo:      v.GetString("notifier.whatsapp.to"),
		appURL:          v.GetString("notifier.app.url"),
		timeout:         v.GetDuration("notifier.timeout"),
	}, nil
}
