package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dev-mohitbeniwal/echo-cache/dao"
	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	"github.com/dev-mohitbeniwal/echo-cache/model"
	"github.com/dev-mohitbeniwal/echo-cache/util"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Widget{}, &model.WidgetLike{}))
	return db
}

func newWidgetServices(t *testing.T) (*Services, *fixture) {
	t.Helper()
	f := newFixture(t)
	return InitializeServices(openTestDB(t), f.deps, dao.NewLifecycle(), util.NewValidationUtil()), f
}

func TestWidgetScenario(t *testing.T) {
	svcs, f := newWidgetServices(t)
	ctx := context.Background()

	created, err := svcs.Widget.CreateWidget(ctx, model.Widget{ID: "1", Name: "a"}, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", created.OwnerID)
	assert.Equal(t, model.WidgetDraft, created.Status)

	got, err := svcs.Widget.GetWidget(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)
	assert.True(t, f.mr.Exists(f.getKey("1")))

	_, err = svcs.Widget.UpdateWidget(ctx, model.Widget{ID: "1", Name: "b"}, "u1")
	require.NoError(t, err)

	got, err = svcs.Widget.GetWidget(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name)
	assert.Equal(t, model.WidgetDraft, got.Status)

	_, err = svcs.Widget.GetWidgetByName(ctx, "a")
	assert.True(t, errors.Is(err, echo_errors.ErrNotFound))

	byName, err := svcs.Widget.GetWidgetByName(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "1", byName.ID)
}

func TestWidgetListIsIdempotent(t *testing.T) {
	svcs, _ := newWidgetServices(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := svcs.Widget.CreateWidget(ctx, model.Widget{ID: name, Name: name, Status: model.WidgetLive}, "u1")
		require.NoError(t, err)
	}

	ids := []string{"c", "zz", "a"}
	first, err := svcs.Widget.ListWidgets(ctx, ids)
	require.NoError(t, err)
	second, err := svcs.Widget.ListWidgets(ctx, ids)
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Name, second[i].Name)
		assert.True(t, first[i].CreatedAt.Equal(second[i].CreatedAt))
	}
	assert.Equal(t, "c", first[0].ID)
	assert.Equal(t, "a", first[1].ID)
}

func TestWidgetCounts(t *testing.T) {
	svcs, _ := newWidgetServices(t)
	ctx := context.Background()
	_, err := svcs.Widget.CreateWidget(ctx, model.Widget{Name: "a", Status: model.WidgetLive}, "u1")
	require.NoError(t, err)

	total, err := svcs.Widget.CountWidgets(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	for _, name := range []string{"b", "c"} {
		_, err := svcs.Widget.CreateWidget(ctx, model.Widget{Name: name}, "u1")
		require.NoError(t, err)
	}
	total, err = svcs.Widget.CountWidgets(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	drafts, err := svcs.Widget.CountWidgets(ctx, model.WidgetDraft)
	require.NoError(t, err)
	assert.Equal(t, int64(2), drafts)
}

func TestWidgetConflictsAndValidation(t *testing.T) {
	svcs, _ := newWidgetServices(t)
	ctx := context.Background()
	_, err := svcs.Widget.CreateWidget(ctx, model.Widget{ID: "1", Name: "a"}, "u1")
	require.NoError(t, err)
	_, err = svcs.Widget.CreateWidget(ctx, model.Widget{ID: "2", Name: "b"}, "u1")
	require.NoError(t, err)

	_, err = svcs.Widget.CreateWidget(ctx, model.Widget{Name: "a"}, "u1")
	assert.True(t, errors.Is(err, echo_errors.ErrEntityConflict))

	_, err = svcs.Widget.UpdateWidget(ctx, model.Widget{ID: "2", Name: "a"}, "u1")
	assert.True(t, errors.Is(err, echo_errors.ErrEntityConflict))

	_, err = svcs.Widget.CreateWidget(ctx, model.Widget{Name: "c", Status: "bogus"}, "u1")
	assert.True(t, errors.Is(err, echo_errors.ErrInvalidEntityData))

	_, err = svcs.Widget.UpdateWidget(ctx, model.Widget{ID: "404", Name: "x"}, "u1")
	assert.True(t, errors.Is(err, echo_errors.ErrNotFound))
}

func TestWidgetDelete(t *testing.T) {
	svcs, f := newWidgetServices(t)
	ctx := context.Background()
	_, err := svcs.Widget.CreateWidget(ctx, model.Widget{ID: "1", Name: "a"}, "u1")
	require.NoError(t, err)
	_, err = svcs.Widget.GetWidget(ctx, "1")
	require.NoError(t, err)

	require.NoError(t, svcs.Widget.DeleteWidget(ctx, "1", "u1"))
	assert.False(t, f.mr.Exists(f.getKey("1")))

	_, err = svcs.Widget.GetWidget(ctx, "1")
	assert.True(t, errors.Is(err, echo_errors.ErrNotFound))
	assert.True(t, errors.Is(svcs.Widget.DeleteWidget(ctx, "1", "u1"), echo_errors.ErrNotFound))
}

func TestWidgetLikes(t *testing.T) {
	svcs, _ := newWidgetServices(t)
	ctx := context.Background()
	for _, id := range []string{"w1", "w2", "w3"} {
		_, err := svcs.Widget.CreateWidget(ctx, model.Widget{ID: id, Name: "name-" + id}, "u1")
		require.NoError(t, err)
	}

	require.NoError(t, svcs.Widget.LikeWidget(ctx, "w1", "u2"))
	require.NoError(t, svcs.Widget.LikeWidget(ctx, "w1", "u2"))
	require.NoError(t, svcs.Widget.LikeWidget(ctx, "w3", "u2"))
	assert.True(t, errors.Is(svcs.Widget.LikeWidget(ctx, "nope", "u2"), echo_errors.ErrNotFound))

	liked, err := svcs.Widget.LikedWidgets(ctx, "u2", []string{"w1", "w2", "w3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"w1": true, "w2": false, "w3": true}, liked)

	require.NoError(t, svcs.Widget.UnlikeWidget(ctx, "w1", "u2"))
	assert.True(t, errors.Is(svcs.Widget.UnlikeWidget(ctx, "w1", "u2"), echo_errors.ErrNotFound))

	liked, err = svcs.Widget.LikedWidgets(ctx, "u2", []string{"w1", "w3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"w1": false, "w3": true}, liked)
}

// lateLikeWriter lets another writer insert the same like first, so the
// caller's insert hits the primary key.
type lateLikeWriter struct {
	dao.EntityWriter[model.WidgetLike]
}

func (w *lateLikeWriter) Insert(ctx context.Context, like model.WidgetLike) (model.WidgetLike, error) {
	if _, err := w.EntityWriter.Insert(ctx, like); err != nil {
		return like, err
	}
	return w.EntityWriter.Insert(ctx, like)
}

func TestLikeWidgetLosingInsertRaceSucceeds(t *testing.T) {
	f := newFixture(t)
	db := openTestDB(t)
	lc := dao.NewLifecycle()
	widgetStore := dao.NewGormStore[model.Widget](db, model.WidgetSchema, lc, f.metrics)
	likeStore := dao.NewGormStore[model.WidgetLike](db, model.WidgetLikeSchema, lc, f.metrics)
	widgets := NewEntityCache[model.Widget](widgetStore, f.deps)
	widgets.RegisterHooks(lc)
	likes := NewAssociationCache[model.WidgetLike](likeStore, f.deps)
	likes.RegisterHooks(lc)
	svc := NewWidgetService(widgets, widgetStore, likes, &lateLikeWriter{EntityWriter: likeStore}, util.NewValidationUtil())
	ctx := context.Background()

	_, err := svc.CreateWidget(ctx, model.Widget{ID: "w1", Name: "gear"}, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.LikeWidget(ctx, "w1", "u2"))

	liked, err := svc.LikedWidgets(ctx, "u2", []string{"w1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"w1": true}, liked)
}

func TestBulkCreateWidgets(t *testing.T) {
	svcs, _ := newWidgetServices(t)
	ctx := context.Background()

	created, err := svcs.Widget.BulkCreateWidgets(ctx, []model.Widget{{Name: "a"}, {Name: "b"}, {Name: "c"}}, "u1")
	require.NoError(t, err)
	require.Len(t, created, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, created[i].Name)
		assert.NotEmpty(t, created[i].ID)
	}

	total, err := svcs.Widget.CountWidgets(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	_, err = svcs.Widget.BulkCreateWidgets(ctx, []model.Widget{{Name: "d"}, {Name: "e", Status: "bogus"}}, "u1")
	assert.True(t, errors.Is(err, echo_errors.ErrInvalidEntityData))
}
