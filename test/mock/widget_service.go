// test/mock/widget_service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// MockWidgetService is a mock implementation of service.IWidgetService
type MockWidgetService struct {
	mock.Mock
}

func (m *MockWidgetService) widget(args mock.Arguments) (*model.Widget, error) {
	w, _ := args.Get(0).(*model.Widget)
	return w, args.Error(1)
}

func (m *MockWidgetService) CreateWidget(ctx context.Context, widget model.Widget, creatorID string) (*model.Widget, error) {
	return m.widget(m.Called(ctx, widget, creatorID))
}

func (m *MockWidgetService) BulkCreateWidgets(ctx context.Context, widgets []model.Widget, creatorID string) ([]*model.Widget, error) {
	args := m.Called(ctx, widgets, creatorID)
	created, _ := args.Get(0).([]*model.Widget)
	return created, args.Error(1)
}

func (m *MockWidgetService) UpdateWidget(ctx context.Context, widget model.Widget, updaterID string) (*model.Widget, error) {
	return m.widget(m.Called(ctx, widget, updaterID))
}

func (m *MockWidgetService) DeleteWidget(ctx context.Context, widgetID string, deleterID string) error {
	return m.Called(ctx, widgetID, deleterID).Error(0)
}

func (m *MockWidgetService) GetWidget(ctx context.Context, widgetID string) (*model.Widget, error) {
	return m.widget(m.Called(ctx, widgetID))
}

func (m *MockWidgetService) GetWidgetByName(ctx context.Context, name string) (*model.Widget, error) {
	return m.widget(m.Called(ctx, name))
}

func (m *MockWidgetService) ListWidgets(ctx context.Context, widgetIDs []string) ([]model.Widget, error) {
	args := m.Called(ctx, widgetIDs)
	widgets, _ := args.Get(0).([]model.Widget)
	return widgets, args.Error(1)
}

func (m *MockWidgetService) CountWidgets(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWidgetService) LikeWidget(ctx context.Context, widgetID, userID string) error {
	return m.Called(ctx, widgetID, userID).Error(0)
}

func (m *MockWidgetService) UnlikeWidget(ctx context.Context, widgetID, userID string) error {
	return m.Called(ctx, widgetID, userID).Error(0)
}

func (m *MockWidgetService) LikedWidgets(ctx context.Context, userID string, widgetIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, userID, widgetIDs)
	liked, _ := args.Get(0).(map[string]bool)
	return liked, args.Error(1)
}
