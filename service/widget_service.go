// service/widget_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/util"
)

// IWidgetService defines the interface for widget operations
type IWidgetService interface {
	CreateWidget(ctx context.Context, widget model.Widget, creatorID string) (*model.Widget, error)
	BulkCreateWidgets(ctx context.Context, widgets []model.Widget, creatorID string) ([]*model.Widget, error)
	UpdateWidget(ctx context.Context, widget model.Widget, updaterID string) (*model.Widget, error)
	DeleteWidget(ctx context.Context, widgetID string, deleterID string) error
	GetWidget(ctx context.Context, widgetID string) (*model.Widget, error)
	GetWidgetByName(ctx context.Context, name string) (*model.Widget, error)
	ListWidgets(ctx context.Context, widgetIDs []string) ([]model.Widget, error)
	CountWidgets(ctx context.Context, status string) (int64, error)
	LikeWidget(ctx context.Context, widgetID, userID string) error
	UnlikeWidget(ctx context.Context, widgetID, userID string) error
	LikedWidgets(ctx context.Context, userID string, widgetIDs []string) (map[string]bool, error)
}

// WidgetService handles business logic for widget operations. Reads go
// through the caches; writes go to the stores, whose lifecycle hooks keep
// the caches coherent.
type WidgetService struct {
	widgets        *EntityCache[model.Widget]
	widgetWriter   dao.EntityWriter[model.Widget]
	likes          *AssociationCache[model.WidgetLike]
	likeWriter     dao.EntityWriter[model.WidgetLike]
	validationUtil *util.ValidationUtil
}

var _ IWidgetService = &WidgetService{}

const bulkConcurrency = 10

// NewWidgetService creates a new instance of WidgetService
func NewWidgetService(
	widgets *EntityCache[model.Widget],
	widgetWriter dao.EntityWriter[model.Widget],
	likes *AssociationCache[model.WidgetLike],
	likeWriter dao.EntityWriter[model.WidgetLike],
	validationUtil *util.ValidationUtil,
) *WidgetService {
	return &WidgetService{
		widgets:        widgets,
		widgetWriter:   widgetWriter,
		likes:          likes,
		likeWriter:     likeWriter,
		validationUtil: validationUtil,
	}
}

// CreateWidget handles the creation of a new widget
func (s *WidgetService) CreateWidget(ctx context.Context, widget model.Widget, creatorID string) (*model.Widget, error) {
	if widget.ID == "" {
		widget.ID = uuid.NewString()
	}
	if widget.OwnerID == "" {
		widget.OwnerID = creatorID
	}
	if widget.Status == "" {
		widget.Status = model.WidgetDraft
	}
	if err := s.validationUtil.ValidateWidget(widget); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, widget.Name, widget.ID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	widget.CreatedAt = now
	widget.UpdatedAt = now

	created, err := s.widgetWriter.Insert(ctx, widget)
	if err != nil {
		logger.Error("Error creating widget", zap.Error(err), zap.String("creatorID", creatorID))
		return nil, err
	}

	logger.Info("Widget created successfully", zap.String("widgetID", created.ID), zap.String("creatorID", creatorID))
	return &created, nil
}

// BulkCreateWidgets creates widgets in parallel. The first failure cancels
// the remaining creations; widgets already created are kept.
func (s *WidgetService) BulkCreateWidgets(ctx context.Context, widgets []model.Widget, creatorID string) ([]*model.Widget, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)
	created := make([]*model.Widget, len(widgets))

	for i, widget := range widgets {
		i, widget := i, widget
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			w, err := s.CreateWidget(ctx, widget, creatorID)
			if err != nil {
				return err
			}
			created[i] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Bulk widget creation failed", zap.Error(err), zap.Int("requested", len(widgets)))
		return nil, err
	}
	return created, nil
}

// UpdateWidget handles updates to an existing widget
func (s *WidgetService) UpdateWidget(ctx context.Context, widget model.Widget, updaterID string) (*model.Widget, error) {
	existing, err := s.widgets.GetOrNotFound(ctx, widget.ID)
	if err != nil {
		return nil, err
	}
	if widget.OwnerID == "" {
		widget.OwnerID = existing.OwnerID
	}
	if widget.Status == "" {
		widget.Status = existing.Status
	}
	if err := s.validationUtil.ValidateWidget(widget); err != nil {
		return nil, err
	}
	if widget.Name != existing.Name {
		if err := s.ensureNameFree(ctx, widget.Name, widget.ID); err != nil {
			return nil, err
		}
	}

	widget.CreatedAt = existing.CreatedAt
	widget.UpdatedAt = time.Now().UTC()

	updated, err := s.widgetWriter.Update(ctx, widget)
	if err != nil {
		logger.Error("Error updating widget", zap.Error(err), zap.String("widgetID", widget.ID), zap.String("updaterID", updaterID))
		return nil, fmt.Errorf("failed to update widget: %w", err)
	}

	logger.Info("Widget updated successfully", zap.String("widgetID", widget.ID), zap.String("updaterID", updaterID))
	return &updated, nil
}

// DeleteWidget handles the deletion of a widget
func (s *WidgetService) DeleteWidget(ctx context.Context, widgetID string, deleterID string) error {
	existing, err := s.widgets.GetOrNotFound(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := s.widgetWriter.Delete(ctx, existing); err != nil {
		logger.Error("Error deleting widget", zap.Error(err), zap.String("widgetID", widgetID), zap.String("deleterID", deleterID))
		return fmt.Errorf("failed to delete widget: %w", err)
	}

	logger.Info("Widget deleted successfully", zap.String("widgetID", widgetID), zap.String("deleterID", deleterID))
	return nil
}

func (s *WidgetService) GetWidget(ctx context.Context, widgetID string) (*model.Widget, error) {
	widget, err := s.widgets.GetOrNotFound(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	return &widget, nil
}

func (s *WidgetService) GetWidgetByName(ctx context.Context, name string) (*model.Widget, error) {
	widget, err := s.widgets.FirstOrNotFound(ctx, model.Predicate{"name": name})
	if err != nil {
		return nil, err
	}
	return &widget, nil
}

func (s *WidgetService) ListWidgets(ctx context.Context, widgetIDs []string) ([]model.Widget, error) {
	return s.widgets.GetMany(ctx, widgetIDs)
}

// CountWidgets counts all widgets, or those in one status.
func (s *WidgetService) CountWidgets(ctx context.Context, status string) (int64, error) {
	if status == "" {
		return s.widgets.FilterCount(ctx, nil)
	}
	return s.widgets.FilterCount(ctx, model.Predicate{"status": status})
}

// LikeWidget is idempotent: liking twice keeps one like.
func (s *WidgetService) LikeWidget(ctx context.Context, widgetID, userID string) error {
	like := model.WidgetLike{WidgetID: widgetID, UserID: userID}
	if err := s.validationUtil.ValidateWidgetLike(like); err != nil {
		return err
	}
	if _, err := s.widgets.GetOrNotFound(ctx, widgetID); err != nil {
		return err
	}
	_, found, err := s.likes.Get(ctx, userID, widgetID)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	like.CreatedAt = time.Now().UTC()
	if _, err := s.likeWriter.Insert(ctx, like); err != nil {
		// A concurrent like of the same pair won the insert.
		if errors.Is(err, echo_errors.ErrEntityConflict) {
			return nil
		}
		if _, found, lookupErr := s.likes.Get(ctx, userID, widgetID); lookupErr == nil && found {
			return nil
		}
		logger.Error("Error liking widget", zap.Error(err), zap.String("widgetID", widgetID), zap.String("userID", userID))
		return err
	}
	return nil
}

func (s *WidgetService) UnlikeWidget(ctx context.Context, widgetID, userID string) error {
	like, found, err := s.likes.Get(ctx, userID, widgetID)
	if err != nil {
		return err
	}
	if !found {
		return &echo_errors.NotFoundError{Kind: model.WidgetLikeSchema.Kind, Key: model.CompositeKey(widgetID, userID)}
	}
	if err := s.likeWriter.Delete(ctx, like); err != nil && !errors.Is(err, echo_errors.ErrNotFound) {
		logger.Error("Error unliking widget", zap.Error(err), zap.String("widgetID", widgetID), zap.String("userID", userID))
		return err
	}
	return nil
}

// LikedWidgets reports, for each of widgetIDs, whether userID liked it.
func (s *WidgetService) LikedWidgets(ctx context.Context, userID string, widgetIDs []string) (map[string]bool, error) {
	rows, err := s.likes.BatchGet(ctx, userID, widgetIDs)
	if err != nil {
		return nil, err
	}
	liked := make(map[string]bool, len(widgetIDs))
	for _, id := range widgetIDs {
		_, liked[id] = rows[id]
	}
	return liked, nil
}

func (s *WidgetService) ensureNameFree(ctx context.Context, name, widgetID string) error {
	other, found, err := s.widgets.FilterFirst(ctx, model.Predicate{"name": name})
	if err != nil {
		return err
	}
	if found && other.ID != widgetID {
		return fmt.Errorf("widget %q: %w", name, echo_errors.ErrEntityConflict)
	}
	return nil
}
