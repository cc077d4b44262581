package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"autocatalog-backend/internal/auth"
	"autocatalog-backend/internal/database"
	"autocatalog-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LogOptions struct {
	UserID      string
	UserName    string
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func encode(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// clip cuts s to at most n runes, matching how varchar(n) counts.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func WriteLog(ctx context.Context, opts LogOptions) error {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    clip(opts.UserName, 100),
		EntityType:  opts.EntityType,
		EntityID:    clip(opts.EntityID, models.AuditEntityIDSize),
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  encode(opts.Before),
		AfterData:   encode(opts.After),
	}
	if err := database.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("writing audit log: %w", err)
	}
	return nil
}

// Record writes an audit entry for the user of the current request. A
// failure is logged and never fails the request.
func Record(c *fiber.Ctx, entityType, entityID string, action models.AuditAction, description string, before, after any) {
	opts := LogOptions{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		Before:      before,
		After:       after,
	}
	if u := auth.CurrentUser(c); u != nil {
		opts.UserID = u.ID
		opts.UserName = u.Username
	}
	if err := WriteLog(c.UserContext(), opts); err != nil {
		zap.L().Warn("audit log not written",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}
}
