package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwalitptl/admin-security/internal/model"
	"github.com/jwalitptl/admin-security/internal/policy"
	"github.com/jwalitptl/admin-security/internal/repository"
	apperrors "github.com/jwalitptl/admin-security/pkg/errors"
	"github.com/jwalitptl/admin-security/pkg/logger"
	"github.com/jwalitptl/admin-security/pkg/messaging"
	"github.com/jwalitptl/admin-security/pkg/metrics"
)

// Metric label values
const (
	AudienceUser  = "user"
	AudienceAdmin = "admin"
)

// ParametersUpdatedEvent is the message type published after a parameter change.
const ParametersUpdatedEvent = "parameters_updated"

type SecurityServicer interface {
	GetParameters(ctx context.Context) (map[string]interface{}, error)
	UpdateParameters(ctx context.Context, actor string, submitted map[string]string) error
	EnableAdvanced(ctx context.Context, actor string) error
	DisableAdvanced(ctx context.Context, actor string) error
	ValidateUserPassword(ctx context.Context, userID int, raw string) (policy.Outcome, error)
	ValidateAdminPassword(ctx context.Context, raw string) (policy.Outcome, error)
	ChangePassword(ctx context.Context, userID int, raw string) (policy.Outcome, *time.Time, error)
	ExpiryDates(ctx context.Context) (*model.ExpiryResponse, error)
	CheckAccess(ctx context.Context, login string) (bool, error)
}

// Dependencies groups the collaborators of the Service.
type Dependencies struct {
	Engine      *policy.Engine
	Parameters  policy.ParameterStore
	History     repository.PasswordHistoryRepository
	Accounts    repository.AccountRepository
	Connections repository.ConnectionLogRepository
	Broker      messaging.Broker
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
	Defaults    policy.Defaults
	// Channel receives invalidation events. Empty disables publishing.
	Channel string
}

type Service struct {
	engine      *policy.Engine
	params      policy.ParameterStore
	history     repository.PasswordHistoryRepository
	accounts    repository.AccountRepository
	connections repository.ConnectionLogRepository
	broker      messaging.Broker
	metrics     *metrics.Metrics
	logger      *logger.Logger
	defaults    policy.Defaults
	channel     string
}

func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New("adminsec")
	}
	return &Service{
		engine:      deps.Engine,
		params:      deps.Parameters,
		history:     deps.History,
		accounts:    deps.Accounts,
		connections: deps.Connections,
		broker:      deps.Broker,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		defaults:    deps.Defaults,
		channel:     deps.Channel,
	}
}

func (s *Service) snapshot(ctx context.Context) (policy.Snapshot, error) {
	snap, err := s.engine.LoadSnapshot(ctx, s.params)
	if err != nil {
		return policy.Snapshot{}, fmt.Errorf("failed to load security parameters: %w", err)
	}
	return snap, nil
}

func (s *Service) GetParameters(ctx context.Context) (map[string]interface{}, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.View(), nil
}

func (s *Service) UpdateParameters(ctx context.Context, actor string, submitted map[string]string) error {
	for name := range submitted {
		if !policy.IsKnown(name) {
			return apperrors.BadRequest(fmt.Sprintf("unknown parameter %q", name), nil)
		}
	}
	if err := s.engine.ApplyUpdate(ctx, s.params, submitted); err != nil {
		return fmt.Errorf("failed to update security parameters: %w", err)
	}
	s.changed(ctx, actor, "update")
	return nil
}

func (s *Service) EnableAdvanced(ctx context.Context, actor string) error {
	if err := s.engine.EnableAdvanced(ctx, s.params, s.defaults); err != nil {
		return fmt.Errorf("failed to enable advanced parameters: %w", err)
	}
	s.changed(ctx, actor, "enable_advanced")
	return nil
}

func (s *Service) DisableAdvanced(ctx context.Context, actor string) error {
	if err := s.engine.DisableAdvanced(ctx, s.params); err != nil {
		return fmt.Errorf("failed to disable advanced parameters: %w", err)
	}
	s.changed(ctx, actor, "disable_advanced")
	return nil
}

// changed records a parameter change and tells other instances to drop their
// cached parameters. Publishing is best effort.
func (s *Service) changed(ctx context.Context, actor, operation string) {
	s.metrics.ParameterUpdates.WithLabelValues(operation).Inc()
	s.logger.Info("security parameters changed", "actor", actor, "operation", operation)

	if s.broker == nil || s.channel == "" {
		return
	}
	msg := messaging.Message{
		Type:    ParametersUpdatedEvent,
		Payload: map[string]string{"operation": operation, "actor": actor},
	}
	if err := s.broker.Publish(ctx, s.channel, msg); err != nil {
		s.logger.Error(err, "failed to publish parameter invalidation", "operation", operation)
	}
}

func (s *Service) ValidateUserPassword(ctx context.Context, userID int, raw string) (policy.Outcome, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return policy.Valid, err
	}
	outcome, err := s.engine.ValidateForEndUser(ctx, snap, s.history, raw, userID)
	if err != nil {
		return policy.Valid, fmt.Errorf("failed to validate password: %w", err)
	}
	s.metrics.PasswordValidations.WithLabelValues(AudienceUser, outcome.String()).Inc()
	return outcome, nil
}

func (s *Service) ValidateAdminPassword(ctx context.Context, raw string) (policy.Outcome, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return policy.Valid, err
	}
	outcome := s.engine.ValidateForAdmin(snap, raw)
	s.metrics.PasswordValidations.WithLabelValues(AudienceAdmin, outcome.String()).Inc()
	return outcome, nil
}

// ChangePassword validates raw for the user and, when valid, stores it encoded
// with its expiry date. The returned time is nil when passwords do not expire.
func (s *Service) ChangePassword(ctx context.Context, userID int, raw string) (policy.Outcome, *time.Time, error) {
	if _, err := s.accounts.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return policy.Valid, nil, apperrors.NotFound("account", err)
		}
		return policy.Valid, nil, fmt.Errorf("failed to get account: %w", err)
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return policy.Valid, nil, err
	}

	outcome, err := s.engine.ValidateForEndUser(ctx, snap, s.history, raw, userID)
	if err != nil {
		return policy.Valid, nil, fmt.Errorf("failed to validate password: %w", err)
	}
	if !outcome.IsValid() {
		s.metrics.PasswordChanges.WithLabelValues(outcome.String()).Inc()
		return outcome, nil, nil
	}

	encoded, err := s.engine.EncodePassword(snap, raw)
	if err != nil {
		return policy.Valid, nil, err
	}

	now := s.engine.Now()
	var expiresAt *time.Time
	if t, ok := policy.PasswordExpiry(snap, now); ok {
		expiresAt = &t
	}

	if err := s.accounts.UpdatePassword(ctx, userID, encoded, now, expiresAt); err != nil {
		return policy.Valid, nil, fmt.Errorf("failed to store password: %w", err)
	}

	s.metrics.PasswordChanges.WithLabelValues(outcome.String()).Inc()
	s.logger.Info("password changed", "user_id", userID)
	return outcome, expiresAt, nil
}

func (s *Service) ExpiryDates(ctx context.Context) (*model.ExpiryResponse, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	now := s.engine.Now()
	resp := &model.ExpiryResponse{}
	if t, ok := policy.PasswordExpiry(snap, now); ok {
		resp.PasswordExpiresAt = &t
	}
	if t, ok := policy.AccountExpiry(snap, now); ok {
		resp.AccountExpiresAt = &t
	}
	return resp, nil
}

// CheckAccess reports whether login is locked out by recent failed attempts.
func (s *Service) CheckAccess(ctx context.Context, login string) (bool, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return false, err
	}
	locked, err := s.engine.AccessLocked(ctx, snap, s.connections, login)
	if err != nil {
		return false, fmt.Errorf("failed to check access: %w", err)
	}
	if locked {
		s.metrics.AccessLockouts.Inc()
		s.logger.Warn("login locked out", "login", login)
	}
	return locked, nil
}
