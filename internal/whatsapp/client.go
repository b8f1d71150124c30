package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/healthassist/whatsapp-gateway/internal/config"
	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// MaxMessageLength is the Cloud API hard limit for a text body.
const MaxMessageLength = 4096

// Client sends single outbound messages to the WhatsApp Cloud API and
// classifies each HTTP outcome into a typed DeliveryResult. It never
// retries on its own; retry policy belongs to Sender.
type Client struct {
	http          *resty.Client
	apiBase       string
	phoneNumberID string
	accessToken   string
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:          httpClient,
		apiBase:       strings.TrimRight(cfg.APIBaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
	}
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send delivers one message. Input and configuration validation happen
// before any network traffic; a violation short-circuits with the
// matching error kind and HTTPStatus 0.
func (c *Client) Send(ctx context.Context, to, text string) model.DeliveryResult {
	to = strings.TrimSpace(to)
	text = strings.TrimSpace(text)

	if to == "" {
		return failure(model.ErrKindValidation, 0, "missing recipient phone number")
	}
	if text == "" {
		return failure(model.ErrKindValidation, 0, "missing message content")
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return failure(model.ErrKindValidation, 0,
			fmt.Sprintf("message too long: %d characters (max %d)", n, MaxMessageLength))
	}

	if c.accessToken == "" || c.phoneNumberID == "" {
		return failure(model.ErrKindConfiguration, 0, "whatsapp api credentials not configured")
	}

	var parsed sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.accessToken).
		SetBody(sendRequest{
			MessagingProduct: "whatsapp",
			To:               to,
			Text:             sendText{Body: text},
		}).
		SetResult(&parsed).
		Post(c.apiBase + "/" + c.phoneNumberID + "/messages")
	if err != nil {
		return failure(classifyTransportError(err), 0, err.Error())
	}

	status := resp.StatusCode()
	switch {
	case status == 200:
		result := model.DeliveryResult{Succeeded: true, HTTPStatus: status, Attempts: 1}
		if len(parsed.Messages) > 0 {
			result.MessageID = parsed.Messages[0].ID
		}
		return result

	case status == 400:
		return failure(model.ErrKindBadRequest, status, "bad request: "+truncate(resp.String(), 200))

	case status == 401:
		return failure(model.ErrKindAuthentication, status, "authentication failed, check access token")

	case status == 403:
		return failure(model.ErrKindForbidden, status, "access forbidden, check permissions")

	case status == 429:
		result := failure(model.ErrKindRateLimited, status, "rate limit exceeded")
		result.RetryAfter = parseRetryAfter(resp.Header().Get("Retry-After"))
		return result

	case status >= 500:
		return failure(model.ErrKindServerError, status, fmt.Sprintf("server error: %d", status))

	default:
		return failure(model.ErrKindUnexpected, status, fmt.Sprintf("unexpected response: %d", status))
	}
}

func failure(kind model.ErrorKind, status int, msg string) model.DeliveryResult {
	return model.DeliveryResult{
		HTTPStatus: status,
		ErrorKind:  kind,
		Err:        msg,
		Attempts:   1,
	}
}

// classifyTransportError maps network-layer failures onto the timeout
// and connection kinds. Neither is retried by the wrapping sender per
// current policy; they surface immediately.
func classifyTransportError(err error) model.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrKindTimeout
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return model.ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrKindTimeout
	}

	return model.ErrKindConnection
}

func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
