package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/healthassist/whatsapp-gateway/internal/config"
	"github.com/healthassist/whatsapp-gateway/internal/dispatcher"
	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/webhook"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
}

func errorJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, errorBody{ErrorCode: code, Message: message})
}

type webhookResponse struct {
	Status           string   `json:"status"`
	ProcessedEntries int      `json:"processed_entries"`
	Errors           []string `json:"errors,omitempty"`
}

// verifyWebhookHandler answers Meta's GET verification handshake. The
// challenge echoes back verbatim when the mode and token match.
func verifyWebhookHandler(cfg config.WhatsAppConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		mode := c.QueryParam("hub.mode")
		challenge := c.QueryParam("hub.challenge")
		token := c.QueryParam("hub.verify_token")

		// Bare GET without parameters: report readiness.
		if mode == "" && challenge == "" && token == "" {
			return c.JSON(http.StatusOK, map[string]any{
				"message": "WhatsApp webhook endpoint. Use POST for messages or GET with verification parameters.",
				"status":  "ready",
				"configuration": map[string]bool{
					"verify_token_configured":   cfg.VerifyToken != "",
					"webhook_secret_configured": cfg.SignatureCheckEnabled(),
				},
			})
		}

		if mode == "" || challenge == "" || token == "" {
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_VERIFICATION_INCOMPLETE", "missing required verification parameters")
		}

		if cfg.VerifyToken == "" {
			log.Errorf("webhook verification attempted but no verify token configured")
			return errorJSON(c, http.StatusInternalServerError,
				"WEBHOOK_VERIFICATION_NOT_CONFIGURED", "webhook verification not configured")
		}

		if mode != "subscribe" || token != cfg.VerifyToken {
			log.Warnf("webhook verification failed: mode=%s", mode)
			return errorJSON(c, http.StatusForbidden,
				"WEBHOOK_VERIFICATION_FAILED", "invalid verify token or mode")
		}

		// Meta sends an integer challenge; reject anything else.
		if _, err := strconv.Atoi(challenge); err != nil {
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_VERIFICATION_INVALID_CHALLENGE", "invalid challenge format")
		}

		return c.String(http.StatusOK, challenge)
	}
}

// receiveWebhookHandler runs the inbound pipeline: signature check on
// the raw bytes, JSON decode, envelope validation, then dispatch.
// Partial success still returns 200; only total failure maps to 500.
func receiveWebhookHandler(cfg config.WhatsAppConfig, disp *dispatcher.Dispatcher) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Raw bytes must be captured before any JSON parsing: the
		// signature covers the exact wire payload.
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_BODY_UNREADABLE", "could not read request body")
		}

		sig := c.Request().Header.Get(webhook.SignatureHeader)
		ok, err := webhook.VerifySignature(body, sig, cfg.WebhookSecret)
		if err != nil {
			if errors.Is(err, webhook.ErrInvalidSignatureFormat) {
				log.Warnf("webhook signature format invalid")
			}
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_SIGNATURE_INVALID", "webhook signature verification failed")
		}
		if !ok {
			log.Warnf("webhook signature verification failed")
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_SIGNATURE_INVALID", "webhook signature verification failed")
		}
		if !cfg.SignatureCheckEnabled() {
			log.Warnf("webhook accepted WITHOUT signature verification (no secret configured)")
		}

		if len(body) == 0 {
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_PAYLOAD_INVALID", "empty webhook payload")
		}

		var env model.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			log.Warnf("invalid webhook JSON: %v", err)
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_INVALID_JSON", "invalid JSON format in webhook payload")
		}

		if err := webhook.ValidateEnvelope(env); err != nil {
			log.Warnf("webhook payload validation failed: %v", err)
			return errorJSON(c, http.StatusBadRequest,
				"WEBHOOK_PAYLOAD_INVALID", "invalid webhook payload: "+err.Error())
		}

		report := disp.ProcessEnvelope(c.Request().Context(), env)

		if report.AllFailed() {
			return c.JSON(http.StatusInternalServerError, errorBody{
				ErrorCode: "WEBHOOK_PROCESSING_FAILED",
				Message:   "all webhook entries failed to process",
				Details:   map[string]any{"errors": report.Errors},
			})
		}

		return c.JSON(http.StatusOK, webhookResponse{
			Status:           "received",
			ProcessedEntries: report.ProcessedEntries,
			Errors:           report.Errors,
		})
	}
}
