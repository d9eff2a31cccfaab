// audit/service.go
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidAuditLog = errors.New("invalid audit log")
	ErrInvalidQuery    = errors.New("invalid audit query")
)

// MaxQuerySpan caps the time range of one QueryLogs call.
const MaxQuerySpan = 31 * 24 * time.Hour

type Service interface {
	LogMutation(ctx context.Context, log AuditLog) error
	QueryLogs(ctx context.Context, from, to time.Time, kind, entityID string) ([]AuditLog, error)
}

type service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, validate: validator.New(), now: time.Now}
}

// LogMutation stores log; a zero timestamp is stamped with the current time.
func (s *service) LogMutation(ctx context.Context, log AuditLog) error {
	if err := s.validate.Struct(log); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAuditLog, err)
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = s.now().UTC()
	}
	return s.repo.LogMutation(ctx, log)
}

func (s *service) QueryLogs(ctx context.Context, from, to time.Time, kind, entityID string) ([]AuditLog, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to %s is before from %s", ErrInvalidQuery, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	if to.Sub(from) > MaxQuerySpan {
		return nil, fmt.Errorf("%w: range exceeds %s", ErrInvalidQuery, MaxQuerySpan)
	}
	logs, err := s.repo.QueryLogs(ctx, from, to, kind, entityID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []AuditLog{}
	}
	return logs, nil
}
