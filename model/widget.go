// model/widget.go
package model

import "time"

const (
	WidgetDraft    = "draft"
	WidgetLive     = "live"
	WidgetArchived = "archived"
)

type Widget struct {
	ID        string    `json:"id" msgpack:"id" gorm:"primaryKey;size:64" validate:"max=64"`
	Name      string    `json:"name" msgpack:"name" gorm:"size:128;uniqueIndex" validate:"required,max=128"`
	OwnerID   string    `json:"owner_id" msgpack:"owner_id" gorm:"size:64;index" validate:"required,max=64"`
	Status    string    `json:"status" msgpack:"status" gorm:"size:32;index" validate:"oneof=draft live archived"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt time.Time `json:"updated_at" msgpack:"updated_at"`
}

var WidgetSchema = Schema{
	Kind:       "widget",
	PrimaryKey: "id",
	Version:    1,
	UniqueKeys: [][]string{{"name"}},
}

func (Widget) TableName() string { return "widgets" }

func (w Widget) PrimaryKey() string { return w.ID }

func (w Widget) KeyConditions() map[string]any {
	return map[string]any{"id": w.ID}
}

func (w Widget) Fields() map[string]any {
	return map[string]any{
		"id":         w.ID,
		"name":       w.Name,
		"owner_id":   w.OwnerID,
		"status":     w.Status,
		"created_at": w.CreatedAt,
		"updated_at": w.UpdatedAt,
	}
}

// WidgetLike records that a user liked a widget.
type WidgetLike struct {
	WidgetID  string    `json:"widget_id" msgpack:"widget_id" gorm:"primaryKey;size:64;autoIncrement:false" validate:"required,max=64"`
	UserID    string    `json:"user_id" msgpack:"user_id" gorm:"primaryKey;size:64;autoIncrement:false" validate:"required,max=64"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

var WidgetLikeSchema = Schema{
	Kind:          "widget_like",
	Version:       1,
	OwnerColumn:   "user_id",
	SubjectColumn: "widget_id",
}

func (WidgetLike) TableName() string { return "widget_likes" }

func (l WidgetLike) PrimaryKey() string { return CompositeKey(l.WidgetID, l.UserID) }

func (l WidgetLike) KeyConditions() map[string]any {
	return map[string]any{"widget_id": l.WidgetID, "user_id": l.UserID}
}

func (l WidgetLike) Fields() map[string]any {
	return map[string]any{
		"widget_id":  l.WidgetID,
		"user_id":    l.UserID,
		"created_at": l.CreatedAt,
	}
}

func (l WidgetLike) OwnerKey() string { return l.UserID }

func (l WidgetLike) SubjectKey() string { return l.WidgetID }
