package controllers

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/karage/integrations/internal/pkg/cache"
	"github.com/karage/integrations/internal/pkg/integrations/sms"
	"github.com/karage/integrations/internal/pkg/principal"
)

const (
	otpTTL    = 5 * time.Minute
	otpDigits = 6
)

// OTPStore holds issued one-time codes until they expire or are consumed.
type OTPStore interface {
	Set(key, value string, ttl time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
}

// cacheOTPStore backs OTPStore with the shared Redis cache.
type cacheOTPStore struct{}

func (cacheOTPStore) Set(key, value string, ttl time.Duration) error { return cache.Set(key, value, ttl) }
func (cacheOTPStore) Get(key string) (string, error)                 { return cache.Get(key) }
func (cacheOTPStore) Delete(key string) error                        { return cache.Delete(key) }

// SmsController serves the OTP endpoints.
type SmsController struct {
	codes OTPStore
}

// NewSmsController creates the OTP controller on the shared Redis cache.
func NewSmsController() *SmsController {
	return &SmsController{codes: cacheOTPStore{}}
}

type sendOTPRequest struct {
	Phone string `json:"Phone"`
}

// HandleSendOTP generates a one-time code, stores it with a short TTL and
// delivers it through the SMS gateway.
func (sc *SmsController) HandleSendOTP(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req sendOTPRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.Phone == "" {
		return badRequest(c, "Phone is required")
	}

	code, err := generateOTP(otpDigits)
	if err != nil {
		return internalError(c, "Failed to generate code")
	}

	if err := sc.codes.Set(otpCacheKey(req.Phone), code, otpTTL); err != nil {
		return internalError(c, "Failed to store code")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	client := sms.NewClientFromEnv()
	result := client.SendMessage(ctx, req.Phone, "Your Karage verification code is "+code)
	if result == nil {
		_ = sc.codes.Delete(otpCacheKey(req.Phone))
		return upstreamError(c, "SMS delivery failed")
	}

	return c.JSON(fiber.Map{"ok": true, "message_id": result.MessageID})
}

type verifyOTPRequest struct {
	Phone string `json:"Phone"`
	Code  string `json:"Code"`
}

// HandleVerifyOTP checks a submitted code against the stored value. A
// matching code is consumed so it cannot be replayed.
func (sc *SmsController) HandleVerifyOTP(c *fiber.Ctx) error {
	p := principal.Get(c)
	if !p.IsResolved {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	var req verifyOTPRequest
	if err := parseJSONBody(c, &req); err != nil {
		return err
	}
	if req.Phone == "" || req.Code == "" {
		return badRequest(c, "Phone and Code are required")
	}

	stored, err := sc.codes.Get(otpCacheKey(req.Phone))
	if err != nil || stored == "" || stored != req.Code {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid or expired code"})
	}

	_ = sc.codes.Delete(otpCacheKey(req.Phone))
	return c.JSON(fiber.Map{"ok": true, "verified": true})
}

func otpCacheKey(phone string) string {
	return "otp:" + phone
}

func generateOTP(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
