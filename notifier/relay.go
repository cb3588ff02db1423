package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"net/http"
	"strings"
)

const (
	channelWebhook  = "webhook"
	channelWhatsApp = "whatsapp"
)

// relay delivers notification payloads to generic webhook and WhatsApp Cloud API.
// Channels without configuration are skipped, failures are not retried.
type relay struct {
	logger          *zap.SugaredLogger
	client          *http.Client
	webhookURL      string
	whatsappAPI     string
	whatsappToken   string
	whatsappPhoneID string
	whatsappTo      string
	deliveries      *prometheus.CounterVec
}

func newRelayMetrics(reg prometheus.Registerer) *prometheus.CounterVec {
	return promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "kondecoracao",
		Subsystem: "notifier",
		Name:      "deliveries_total",
		Help:      "Notification deliveries by channel and outcome",
	}, []string{"channel", "outcome"})
}

// send forwards payload as is to webhook and sends its message as WhatsApp text
func (r *relay) send(ctx context.Context, payload map[string]interface{}) map[string]ChannelResult {
	results := map[string]ChannelResult{}

	if r.webhookURL != "" {
		results[channelWebhook] = r.record(channelWebhook, r.sendWebhook(ctx, payload))
	}

	to := stringField(payload, "to")
	if to == "" {
		to = r.whatsappTo
	}
	if r.whatsappToken != "" && r.whatsappPhoneID != "" && to != "" {
		text := stringField(payload, "message")
		if text == "" {
			text = fmt.Sprintf("Evento: %s", stringField(payload, "type"))
		}
		results[channelWhatsApp] = r.record(channelWhatsApp, r.sendWhatsApp(ctx, to, text))
	}
	return results
}

func (r *relay) record(channel string, result ChannelResult) ChannelResult {
	outcome := "ok"
	if !result.OK {
		outcome = "failed"
		r.logger.Warnf("Delivery to %s failed: status %d %s", channel, result.Status, result.Error)
	}
	r.deliveries.WithLabelValues(channel, outcome).Inc()
	return result
}

func (r *relay) sendWebhook(ctx context.Context, payload map[string]interface{}) ChannelResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return ChannelResult{Error: err.Error()}
	}
	resp, err := r.post(ctx, r.webhookURL, "", body)
	if err != nil {
		return ChannelResult{Error: err.Error()}
	}
	_ = resp.Body.Close()
	return ChannelResult{OK: isSuccess(resp.StatusCode), Status: resp.StatusCode}
}

func (r *relay) sendWhatsApp(ctx context.Context, to, text string) ChannelResult {
	body, err := json.Marshal(whatsappMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsappText{Body: text},
	})
	if err != nil {
		return ChannelResult{Error: err.Error()}
	}
	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(r.whatsappAPI, "/"), r.whatsappPhoneID)
	resp, err := r.post(ctx, url, r.whatsappToken, body)
	if err != nil {
		return ChannelResult{Error: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var answer interface{}
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return ChannelResult{Error: fmt.Sprintf("bad answer with status %d: %s", resp.StatusCode, err)}
	}
	return ChannelResult{OK: isSuccess(resp.StatusCode), Status: resp.StatusCode, Body: answer}
}

func (r *relay) post(ctx context.Context, url, bearer string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return r.client.Do(req)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
