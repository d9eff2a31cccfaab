// service/services.go
package service

import (
	"gorm.io/gorm"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/util"
)

type Services struct {
	Widget    IWidgetService
	RateLimit *RateLimitService
}

// InitializeServices builds the stores and caches of every kind and
// registers their cache hooks on lifecycle.
func InitializeServices(
	db *gorm.DB,
	deps CacheDeps,
	lifecycle *dao.Lifecycle,
	validationUtil *util.ValidationUtil,
) *Services {
	widgetStore := dao.NewGormStore[model.Widget](db, model.WidgetSchema, lifecycle, deps.Metrics)
	likeStore := dao.NewGormStore[model.WidgetLike](db, model.WidgetLikeSchema, lifecycle, deps.Metrics)

	widgets := NewEntityCache[model.Widget](widgetStore, deps)
	widgets.RegisterHooks(lifecycle)
	likes := NewAssociationCache[model.WidgetLike](likeStore, deps)
	likes.RegisterHooks(lifecycle)

	return &Services{
		Widget:    NewWidgetService(widgets, widgetStore, likes, likeStore, validationUtil),
		RateLimit: NewRateLimitService(deps.Backend, deps.Keys, deps.Metrics),
	}
}
