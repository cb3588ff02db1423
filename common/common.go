package common

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"io"
	"math/big"
	"os"
	"strings"
	"time"
)

// FromKeysAndValues produces map from list of keys and values
func FromKeysAndValues(vals ...interface{}) map[string]interface{} {
	r := map[string]interface{}{}
	if len(vals) >= 2 && len(vals)%2 == 0 {
		for i := 0; i < len(vals); i = i + 2 {
			r[fmt.Sprint(vals[i])] = vals[i+1]
		}
	}
	return r
}

const digitBytes = "0123456789"
const letterBytes = "abcdefghijklmnopqrstuvwxyz"
const digitLetterBytes = digitBytes + letterBytes

// GenerateRandomString returns string containing N symbols: lowercase latins and digits
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(digitLetterBytes)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = digitLetterBytes[idx.Int64()]
	}
	return string(b)
}

// GenerateCouponCode returns code like KLC-AB12-CD34
func GenerateCouponCode() string {
	return fmt.Sprintf("KLC-%s-%s", couponChunk(), couponChunk())
}

// GenerateAmountCouponCode returns code tagged with amount, like KAL-150-AB12-CD34
func GenerateAmountCouponCode(amount int) string {
	return fmt.Sprintf("KAL-%d-%s-%s", amount, couponChunk(), couponChunk())
}

func couponChunk() string {
	return strings.ToUpper(GenerateRandomString(4))
}

// ReadJSON reads body of request and unmarshals it to v
func ReadJSON(c echo.Context, v interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to process body: %w", err)
	}
	return nil
}

func GetNewEcho(logger *zap.SugaredLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Infow("request",
				"date", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
				"url", v.URI,
				"status", v.Status,
				"ip", v.RemoteIP,
				"latency_human", v.Latency.String(),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	return e
}

func GetZapCore(forDevel bool) zapcore.Core {
	allLevels := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		if forDevel {
			return true
		}
		return lvl > zapcore.DebugLevel
	})

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	var cores []zapcore.Core
	consoleOutput := zapcore.Lock(os.Stderr)
	stdoutSyncer := zapcore.AddSync(consoleOutput)
	cores = append(cores, zapcore.NewCore(consoleEncoder, stdoutSyncer, allLevels))

	return zapcore.NewTee(cores...)
}

// NewLogger returns sugared logger for the service, named after it
func NewLogger(service string, forDevel bool) *zap.SugaredLogger {
	return zap.New(GetZapCore(forDevel)).Named(service).Sugar()
}

func EnsureServerProtocol(server string) string {
	server = strings.ToLower(server)
	if strings.HasPrefix(server, "https://") || strings.HasPrefix(server, "http://") {
		return server
	}
	if strings.HasPrefix(server, "localhost") || strings.HasPrefix(server, "127.0.0.1") {
		return fmt.Sprintf("http://%s", server)
	}
	return fmt.Sprintf("https://%s", server)
}
