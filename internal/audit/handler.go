package audit

import (
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type AuditLogResponse struct {
	ID          uint               `json:"id"`
	CreatedAt   string             `json:"createdAt"`
	UserID      string             `json:"userId"`
	UserName    string             `json:"userName"`
	EntityType  string             `json:"entityType"`
	EntityID    string             `json:"entityId"`
	Action      models.AuditAction `json:"action"`
	Description string             `json:"description"`
	Before      string             `json:"before"`
	After       string             `json:"after"`
}

// GET /api/admin/audit-logs?entityType=brand&entityId=...&limit=50
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.WithContext(c.UserContext()).Model(&models.AuditLog{})

		if et := c.Query("entityType"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}
		if eid := c.Query("entityId"); eid != "" {
			dbq = dbq.Where("entity_id = ?", eid)
		}

		limit := c.QueryInt("limit", defaultLimit)
		if limit <= 0 || limit > maxLimit {
			limit = defaultLimit
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "audit logs could not be listed")
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			res = append(res, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				UserID:      l.UserID,
				UserName:    l.UserName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      l.Action,
				Description: l.Description,
				Before:      l.BeforeData,
				After:       l.AfterData,
			})
		}
		return c.JSON(res)
	}
}
