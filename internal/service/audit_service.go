package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/events"
)

// AuditService records account events in the structured log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventProfileCreated, a.handleProfileCreated)
	a.dispatcher.Subscribe(events.EventProfileUpdated, a.handleProfileUpdated)
	a.dispatcher.Subscribe(events.EventRoleChanged, a.handleRoleChanged)
	a.dispatcher.Subscribe(events.EventSessionIssued, a.handleSession)
	a.dispatcher.Subscribe(events.EventSessionRevoked, a.handleSession)
}

func (a *AuditService) handleProfileCreated(_ context.Context, event events.Event) error {
	a.logger.Info("ProfileCreated", eventFields(event)...)
	return nil
}

func (a *AuditService) handleProfileUpdated(_ context.Context, event events.Event) error {
	fields := eventFields(event)
	if payload, ok := event.Payload.(events.ProfileUpdatedPayload); ok && payload.MirrorFailed {
		a.logger.Warn("ProfileUpdated", append(fields, zap.Bool("mirror_failed", true))...)
		return nil
	}
	a.logger.Info("ProfileUpdated", fields...)
	return nil
}

func (a *AuditService) handleRoleChanged(_ context.Context, event events.Event) error {
	a.logger.Info("RoleChanged", append(eventFields(event), zap.Any("payload", event.Payload))...)
	return nil
}

func (a *AuditService) handleSession(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type), append(eventFields(event), zap.Any("payload", event.Payload))...)
	return nil
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.String("actor_id", event.ActorID),
	}
}
