// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/redaid/internal/app/store/audit"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category of events.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// ValidMode reports whether s is one of the Mode constants.
func ValidMode(s string) bool {
	switch s {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Admin controls user management and blog moderation events.
	Admin string
	// Donation controls donation-request lifecycle events.
	Donation string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
// A nil *Logger is valid and records nothing.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.String("actor", event.Actor),
		zap.String("ip", event.IP),
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String(k, v))
	}
	l.zapLog.Info("audit event", fields...)
}

// Log records event according to the category's configured mode. Storage
// failures are logged and swallowed; auditing never fails a request.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAdmin:
		setting = l.config.Admin
	case audit.CategoryDonation:
		setting = l.config.Donation
	default:
		setting = ModeAll
	}

	if setting == ModeOff {
		return
	}
	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// fromRequest fills the who and where of an event from r.
func fromRequest(r *http.Request, category, eventType, targetID string, details map[string]string) audit.Event {
	sub, _ := auth.CurrentSubject(r)
	return audit.Event{
		Category:  category,
		EventType: eventType,
		Actor:     sub.Email,
		TargetID:  targetID,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Details:   details,
	}
}

// --- Admin Events ---

// UserUpdated logs an admin edit of a user. Role and status changes get
// their own event types; other fields are listed in fields_changed.
func (l *Logger) UserUpdated(ctx context.Context, r *http.Request, userID primitive.ObjectID, role, status *string, fieldsChanged []string) {
	if l == nil {
		return
	}
	if role != nil {
		l.Log(ctx, fromRequest(r, audit.CategoryAdmin, audit.EventUserRoleChanged, userID.Hex(),
			map[string]string{"role": *role}))
	}
	if status != nil {
		l.Log(ctx, fromRequest(r, audit.CategoryAdmin, audit.EventUserStatusChanged, userID.Hex(),
			map[string]string{"status": *status}))
	}
	if len(fieldsChanged) > 0 {
		l.Log(ctx, fromRequest(r, audit.CategoryAdmin, audit.EventUserUpdated, userID.Hex(),
			map[string]string{"fields_changed": strings.Join(fieldsChanged, ",")}))
	}
}

// BlogStatusChanged logs a blog being published or unpublished.
func (l *Logger) BlogStatusChanged(ctx context.Context, r *http.Request, blogID primitive.ObjectID, status string) {
	l.Log(ctx, fromRequest(r, audit.CategoryAdmin, audit.EventBlogStatusChanged, blogID.Hex(),
		map[string]string{"status": status}))
}

// BlogDeleted logs a blog removal.
func (l *Logger) BlogDeleted(ctx context.Context, r *http.Request, blogID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.CategoryAdmin, audit.EventBlogDeleted, blogID.Hex(), nil))
}

// --- Donation Events ---

// RequestStatusChanged logs an explicit status transition.
func (l *Logger) RequestStatusChanged(ctx context.Context, r *http.Request, requestID primitive.ObjectID, status string) {
	l.Log(ctx, fromRequest(r, audit.CategoryDonation, audit.EventRequestStatusChanged, requestID.Hex(),
		map[string]string{"status": status}))
}

// RequestAccepted logs a donor committing to a request.
func (l *Logger) RequestAccepted(ctx context.Context, r *http.Request, requestID primitive.ObjectID, donorEmail string) {
	l.Log(ctx, fromRequest(r, audit.CategoryDonation, audit.EventRequestAccepted, requestID.Hex(),
		map[string]string{"donor_email": donorEmail}))
}

// RequestDeleted logs a donation request removal.
func (l *Logger) RequestDeleted(ctx context.Context, r *http.Request, requestID primitive.ObjectID) {
	l.Log(ctx, fromRequest(r, audit.CategoryDonation, audit.EventRequestDeleted, requestID.Hex(), nil))
}
