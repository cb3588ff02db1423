package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/labstack/echo/v4"
	"io"
	"kondecoracao/common"
	"net/http"
	"strings"
)

// dbEventType is the type webhook consumers key database change notifications on
const dbEventType = "SUPABASE_EVENT"

func (svc *notifierSvc) routes(e *echo.Echo) {
	e.POST("/api/notify", svc.notify)
	e.POST("/api/webhooks/events", svc.dbEvent)
}

// notify relays {type, message, to}, malformed body is relayed as {}
func (svc *notifierSvc) notify(c echo.Context) error {
	payload := readPayload(c)
	results := svc.relay.send(c.Request().Context(), payload)
	return c.JSON(http.StatusOK, NotifyResponse{OK: true, Results: results})
}

// dbEvent renders database change into message and relays it, unknown changes go with empty message
func (svc *notifierSvc) dbEvent(c echo.Context) error {
	payload := readPayload(c)

	var ev DBEvent
	if b, err := json.Marshal(payload); err == nil {
		_ = json.Unmarshal(b, &ev)
	}
	message := renderDBEvent(ev)
	if message == "" {
		svc.logger.Debugf("No message for %s on %s", ev.Type, ev.Table)
	}

	notification := map[string]interface{}{
		"type":    dbEventType,
		"message": message,
		"event":   payload,
	}
	if err := svc.forward(c, notification); err != nil {
		svc.logger.Errorf("Failed to relay %s on %s: %s", ev.Type, ev.Table, err)
	}
	return c.JSON(http.StatusOK, common.FromKeysAndValues("ok", true))
}

// forward posts notification to /api/notify of app when configured, relays in process otherwise
func (svc *notifierSvc) forward(c echo.Context, notification map[string]interface{}) error {
	if svc.appURL == "" {
		svc.relay.send(c.Request().Context(), notification)
		return nil
	}
	body, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/api/notify", strings.TrimRight(svc.appURL, "/"))
	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := svc.relay.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("notify answered %d", resp.StatusCode)
	}
	return nil
}

// readPayload returns JSON object of body, or empty object
func readPayload(c echo.Context) map[string]interface{} {
	payload := map[string]interface{}{}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return payload
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return map[string]interface{}{}
	}
	return payload
}
