package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/broadcast"
	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type alertRequest struct {
	Message  string `json:"message" validate:"required,min=1,max=1000"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type alertResponse struct {
	Success              bool     `json:"success"`
	UsersTargeted        int      `json:"users_targeted"`
	SuccessfulDeliveries int      `json:"successful_deliveries"`
	FailedDeliveries     int      `json:"failed_deliveries"`
	MessageID            string   `json:"message_id"`
	Errors               []string `json:"errors,omitempty"`
}

func broadcastAlertHandler(coord *broadcast.Coordinator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req alertRequest
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "ALERT_INVALID_BODY", "bad request")
		}
		if err := c.Validate(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "ALERT_INVALID_BODY", err.Error())
		}
		if strings.TrimSpace(req.Message) == "" {
			return errorJSON(c, http.StatusBadRequest, "ALERT_INVALID_BODY", "message cannot be empty or whitespace only")
		}

		summary, err := coord.Broadcast(
			c.Request().Context(),
			strings.TrimSpace(req.Message),
			model.ParseAlertPriority(req.Priority),
		)
		if err != nil {
			log.Errorf("alert broadcast failed: %v", err)
			return errorJSON(c, http.StatusInternalServerError,
				"ALERT_BROADCAST_FAILED", "internal server error during alert broadcast")
		}

		return c.JSON(http.StatusOK, alertResponse{
			Success:              true,
			UsersTargeted:        summary.Targeted,
			SuccessfulDeliveries: summary.Succeeded,
			FailedDeliveries:     summary.Failed,
			MessageID:            summary.ID,
			Errors:               summary.Errors,
		})
	}
}

func adminStatsHandler(store repository.UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		total, active, err := store.Counts(c.Request().Context())
		if err != nil {
			log.Errorf("stats query failed: %v", err)
			return errorJSON(c, http.StatusInternalServerError, "STATS_FAILED", "failed to retrieve statistics")
		}

		return c.JSON(http.StatusOK, map[string]any{
			"user_statistics": map[string]int64{
				"total_users":    total,
				"active_users":   active,
				"inactive_users": total - active,
			},
		})
	}
}

type adminUser struct {
	PhoneNumber  string    `json:"phone_number"`
	FirstSeen    time.Time `json:"first_seen"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int64     `json:"message_count"`
	IsActive     bool      `json:"is_active"`
}

func adminUsersHandler(store repository.UserStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		users, err := store.ListActive(c.Request().Context())
		if err != nil {
			log.Errorf("user list query failed: %v", err)
			return errorJSON(c, http.StatusInternalServerError, "USERS_FAILED", "failed to retrieve user list")
		}

		out := make([]adminUser, 0, len(users))
		for _, u := range users {
			out = append(out, adminUser{
				PhoneNumber:  maskPhone(u.PhoneNumber),
				FirstSeen:    u.FirstSeen,
				LastActivity: u.LastActivity,
				MessageCount: u.MessageCount,
				IsActive:     u.IsActive,
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"users":       out,
			"total_count": len(out),
		})
	}
}

func listDeliveriesHandler(deliveries repository.DeliveriesRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		if deliveries == nil {
			return errorJSON(c, http.StatusServiceUnavailable, "DELIVERY_LOG_DISABLED", "delivery log is not configured")
		}

		limit := 50
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		var st model.DeliveryStatus
		if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
			tmp := model.DeliveryStatus(raw)
			if tmp.Valid() {
				st = tmp
			}
		}

		recipient := strings.TrimSpace(c.QueryParam("recipient"))

		recs, err := deliveries.List(c.Request().Context(), recipient, st, limit, offset)
		if err != nil {
			log.Errorf("clickhouse list failed: %v", err)
			return errorJSON(c, http.StatusInternalServerError, "REPORT_FAILED", "query failed")
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(recs),
			"results": recs,
		})
	}
}

// maskPhone hides the middle of a number for admin displays, keeping
// the country prefix and last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 6 {
		return phone
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) < 8 {
			return phone
		}
		return phone[:3] + "****" + phone[len(phone)-4:]
	}

	return "******" + phone[len(phone)-4:]
}
