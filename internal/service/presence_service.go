package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"workspace-service/internal/avatar"
	"workspace-service/internal/config"
	"workspace-service/internal/domain"
	"workspace-service/internal/metrics"
	"workspace-service/internal/notify"
	"workspace-service/internal/repository"
	"workspace-service/internal/response"
)

const (
	maxIDLength   = 128
	maxNameLength = 64
)

var (
	ErrInvalidWorkspace = errors.New("invalid workspace id")
	ErrInvalidSession   = errors.New("invalid session id")
)

// Clock returns the current time. Presence timestamps always come from it.
type Clock func() time.Time

// PresenceService defines the heartbeat, online-set and reaping operations
type PresenceService interface {
	Heartbeat(ctx context.Context, workspaceID, session, userName string) error
	ListOnline(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error)
	Reap(ctx context.Context, workspaceID string) (int64, error)
	ReapAll(ctx context.Context) (int64, error)
	Remove(ctx context.Context, workspaceID, session string) error
	Subscribe(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error)
}

// presenceServiceImpl is the implementation of PresenceService
type presenceServiceImpl struct {
	repo     repository.PresenceRepository
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	cfg      config.PresenceConfig
	now      Clock
}

// NewPresenceService creates a new instance of PresenceService. A nil clock
// uses the UTC wall clock.
func NewPresenceService(
	repo repository.PresenceRepository,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
	cfg config.PresenceConfig,
	clock Clock,
) PresenceService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &presenceServiceImpl{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		now:      clock,
	}
}

// Heartbeat upserts the session's record with the server's current time
func (s *presenceServiceImpl) Heartbeat(ctx context.Context, workspaceID, session, userName string) error {
	if err := validateIDs(workspaceID, session); err != nil {
		return err
	}

	now := s.now()
	record := &domain.PresenceRecord{
		WorkspaceID: workspaceID,
		UserSession: session,
		UserName:    NormalizeName(userName, session),
		LastSeen:    now,
		CreatedAt:   now,
	}

	if err := s.repo.Upsert(ctx, record); err != nil {
		s.metrics.RecordHeartbeat(false)
		s.logger.Warn("Failed to record heartbeat",
			zap.String("workspace_id", workspaceID),
			zap.String("session", session),
			zap.Error(err),
		)
		return response.WrapAppError(response.ErrCodeInternal, "Failed to record heartbeat", err)
	}
	s.metrics.RecordHeartbeat(true)

	s.publish(ctx, notify.Event{
		Topic:       notify.TopicPresence,
		Type:        notify.EventHeartbeat,
		WorkspaceID: workspaceID,
		Session:     session,
		OccurredAt:  now,
	})
	return nil
}

// ListOnline returns sessions seen within the liveness window, oldest join first
func (s *presenceServiceImpl) ListOnline(ctx context.Context, workspaceID string) ([]domain.OnlineUser, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}

	since := s.now().Add(-s.cfg.UserTimeout)
	records, err := s.repo.FindOnline(ctx, workspaceID, since)
	if err != nil {
		s.logger.Warn("Failed to read online users",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return nil, response.WrapAppError(response.ErrCodeInternal, "Failed to read online users", err)
	}

	users := make([]domain.OnlineUser, 0, len(records))
	for _, r := range records {
		users = append(users, domain.OnlineUser{
			UserSession: r.UserSession,
			UserName:    r.UserName,
		})
	}
	s.metrics.ObserveOnlineSet(len(users))
	return users, nil
}

// Reap deletes a workspace's records older than the staleness window
func (s *presenceServiceImpl) Reap(ctx context.Context, workspaceID string) (int64, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return 0, err
	}

	now := s.now()
	deleted, err := s.repo.DeleteStale(ctx, workspaceID, now.Add(-s.cfg.StaleTimeout))
	if err != nil {
		s.logger.Warn("Failed to reap stale presence",
			zap.String("workspace_id", workspaceID),
			zap.Error(err),
		)
		return 0, response.WrapAppError(response.ErrCodeInternal, "Failed to reap stale presence", err)
	}

	if deleted > 0 {
		s.metrics.AddReaped(deleted)
		s.logger.Debug("Reaped stale presence",
			zap.String("workspace_id", workspaceID),
			zap.Int64("deleted", deleted),
		)
		s.publish(ctx, notify.Event{
			Topic:       notify.TopicPresence,
			Type:        notify.EventReaped,
			WorkspaceID: workspaceID,
			OccurredAt:  now,
		})
	}
	return deleted, nil
}

// ReapAll sweeps every workspace and notifies the ones that lost records
func (s *presenceServiceImpl) ReapAll(ctx context.Context) (int64, error) {
	now := s.now()
	before := now.Add(-s.cfg.StaleTimeout)

	workspaces, err := s.repo.FindStaleWorkspaces(ctx, before)
	if err != nil {
		return 0, response.WrapAppError(response.ErrCodeInternal, "Failed to find stale workspaces", err)
	}
	if len(workspaces) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteStaleAll(ctx, before)
	if err != nil {
		return 0, response.WrapAppError(response.ErrCodeInternal, "Failed to reap stale presence", err)
	}
	s.metrics.AddReaped(deleted)

	for _, ws := range workspaces {
		s.publish(ctx, notify.Event{
			Topic:       notify.TopicPresence,
			Type:        notify.EventReaped,
			WorkspaceID: ws,
			OccurredAt:  now,
		})
	}
	return deleted, nil
}

// Remove deletes the session's own record. Removing an absent record is not an error.
func (s *presenceServiceImpl) Remove(ctx context.Context, workspaceID, session string) error {
	if err := validateIDs(workspaceID, session); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, workspaceID, session)
	if err != nil {
		s.logger.Warn("Failed to remove presence",
			zap.String("workspace_id", workspaceID),
			zap.String("session", session),
			zap.Error(err),
		)
		return response.WrapAppError(response.ErrCodeInternal, "Failed to remove presence", err)
	}

	if deleted > 0 {
		s.publish(ctx, notify.Event{
			Topic:       notify.TopicPresence,
			Type:        notify.EventLeft,
			WorkspaceID: workspaceID,
			Session:     session,
			OccurredAt:  s.now(),
		})
	}
	return nil
}

func (s *presenceServiceImpl) Subscribe(ctx context.Context, workspaceID string, handler notify.Handler) (notify.Unsubscribe, error) {
	if err := validateWorkspace(workspaceID); err != nil {
		return nil, err
	}
	return s.notifier.Subscribe(ctx, workspaceID, handler)
}

// publish is best effort: subscribers poll, so a lost event only delays a refresh
func (s *presenceServiceImpl) publish(ctx context.Context, event notify.Event) {
	err := s.notifier.Publish(ctx, event)
	s.metrics.RecordNotifierEvent(event.Topic, event.Type, err)
	if err != nil {
		s.logger.Warn("Failed to publish presence event",
			zap.String("workspace_id", event.WorkspaceID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

func validateWorkspace(workspaceID string) error {
	if workspaceID == "" || len(workspaceID) > maxIDLength {
		return response.WrapAppError(response.ErrCodeValidation, "Invalid workspace id", ErrInvalidWorkspace)
	}
	return nil
}

func validateIDs(workspaceID, session string) error {
	if err := validateWorkspace(workspaceID); err != nil {
		return err
	}
	if session == "" || len(session) > maxIDLength {
		return response.WrapAppError(response.ErrCodeValidation, "Invalid session id", ErrInvalidSession)
	}
	return nil
}

// NormalizeName trims and caps a display name, falling back to the
// session-derived placeholder.
func NormalizeName(name, session string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return avatar.DisplayName(name, session)
}
