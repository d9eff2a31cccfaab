// dao/gorm_store.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	echo_errors "github.com/dev-mohitbeniwal/echo-cache/errors"
	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
	"github.com/dev-mohitbeniwal/echo-cache/metrics"
	"github.com/dev-mohitbeniwal/echo-cache/model"
)

// GormStore is the relational store of one entity kind.
type GormStore[T model.Entity] struct {
	db        *gorm.DB
	schema    model.Schema
	lifecycle *Lifecycle
	metrics   *metrics.Collector
}

var (
	_ EntityStore[model.Widget]          = (*GormStore[model.Widget])(nil)
	_ EntityWriter[model.Widget]         = (*GormStore[model.Widget])(nil)
	_ AssociationStore[model.WidgetLike] = (*GormStore[model.WidgetLike])(nil)
)

func NewGormStore[T model.Entity](db *gorm.DB, schema model.Schema, lifecycle *Lifecycle, collector *metrics.Collector) *GormStore[T] {
	return &GormStore[T]{db: db, schema: schema, lifecycle: lifecycle, metrics: collector}
}

func (s *GormStore[T]) Schema() model.Schema {
	return s.schema
}

func (s *GormStore[T]) done(op string, start time.Time, fields ...zap.Field) {
	duration := time.Since(start)
	s.metrics.ObserveStore(s.schema.Kind, op, duration)
	if !logger.Enabled(zapcore.DebugLevel) {
		return
	}
	logger.Debug("Entity store call",
		append(fields,
			zap.String("kind", s.schema.Kind),
			zap.String("op", op),
			zap.Duration("duration", duration))...)
}

func (s *GormStore[T]) fail(op string, err error) error {
	logger.Error("Entity store call failed",
		zap.Error(err),
		zap.String("kind", s.schema.Kind),
		zap.String("op", op))
	return fmt.Errorf("%s %s: %w: %w", op, s.schema.Kind, echo_errors.ErrDatabaseOperation, err)
}

func (s *GormStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	start := time.Now()
	var item T
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: s.schema.PrimaryKey}, Value: id}).
		Take(&item).Error
	s.done("get", start, zap.String("id", id))

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, false, nil
	}
	if err != nil {
		return item, false, s.fail("get", err)
	}
	return item, true, nil
}

func (s *GormStore[T]) GetIn(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	var items []T
	err := s.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: s.schema.PrimaryKey}, Values: toValues(ids)}).
		Find(&items).Error
	s.done("get_in", start, zap.Int("ids", len(ids)), zap.Int("found", len(items)))
	if err != nil {
		return nil, s.fail("get_in", err)
	}
	return items, nil
}

func (s *GormStore[T]) FindFirst(ctx context.Context, pred model.Predicate) (T, bool, error) {
	var item T
	if len(pred) == 0 {
		return item, false, fmt.Errorf("find first %s: %w", s.schema.Kind, echo_errors.ErrPredicateNotUnique)
	}
	start := time.Now()
	err := s.db.WithContext(ctx).Where(map[string]interface{}(pred)).Take(&item).Error
	s.done("find_first", start, zap.String("predicate", pred.Discriminator()))

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, false, nil
	}
	if err != nil {
		return item, false, s.fail("find_first", err)
	}
	return item, true, nil
}

func (s *GormStore[T]) Count(ctx context.Context, pred model.Predicate) (int64, error) {
	start := time.Now()
	var n int64
	q := s.db.WithContext(ctx).Model(new(T))
	if len(pred) > 0 {
		q = q.Where(map[string]interface{}(pred))
	}
	err := q.Count(&n).Error
	s.done("count", start, zap.String("predicate", pred.Discriminator()))
	if err != nil {
		return 0, s.fail("count", err)
	}
	return n, nil
}

func (s *GormStore[T]) FindPairs(ctx context.Context, ownerID string, subjectIDs []string) ([]T, error) {
	if s.schema.OwnerColumn == "" || s.schema.SubjectColumn == "" {
		return nil, fmt.Errorf("%s is not an association kind", s.schema.Kind)
	}
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	start := time.Now()
	var items []T
	err := s.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: s.schema.OwnerColumn}, Value: ownerID}).
		Where(clause.IN{Column: clause.Column{Name: s.schema.SubjectColumn}, Values: toValues(subjectIDs)}).
		Find(&items).Error
	s.done("find_pairs", start, zap.String("owner", ownerID), zap.Int("subjects", len(subjectIDs)))
	if err != nil {
		return nil, s.fail("find_pairs", err)
	}
	return items, nil
}

func (s *GormStore[T]) Insert(ctx context.Context, item T) (T, error) {
	start := time.Now()
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return item, fmt.Errorf("insert %s %s: %w", s.schema.Kind, item.PrimaryKey(), echo_errors.ErrEntityConflict)
		}
		return item, s.fail("insert", err)
	}
	s.done("insert", start, zap.String("id", item.PrimaryKey()))

	s.lifecycle.FireInsert(ctx, s.schema.Kind, item)
	return item, nil
}

func (s *GormStore[T]) Update(ctx context.Context, item T) (T, error) {
	start := time.Now()
	var old, updated T
	conds := item.KeyConditions()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(conds).Take(&old).Error; err != nil {
			return err
		}
		if err := tx.Model(new(T)).Where(conds).Select("*").Omit("created_at").Updates(&item).Error; err != nil {
			return err
		}
		return tx.Where(conds).Take(&updated).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, &echo_errors.NotFoundError{Kind: s.schema.Kind, Key: item.PrimaryKey()}
	}
	if err != nil {
		return item, s.fail("update", err)
	}
	s.done("update", start, zap.String("id", item.PrimaryKey()))

	s.lifecycle.FireUpdate(ctx, s.schema.Kind, old, updated, ChangedFields(old, updated))
	return updated, nil
}

func (s *GormStore[T]) Delete(ctx context.Context, item T) error {
	start := time.Now()
	var old T
	conds := item.KeyConditions()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(conds).Take(&old).Error; err != nil {
			return err
		}
		return tx.Where(conds).Delete(new(T)).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &echo_errors.NotFoundError{Kind: s.schema.Kind, Key: item.PrimaryKey()}
	}
	if err != nil {
		return s.fail("delete", err)
	}
	s.done("delete", start, zap.String("id", item.PrimaryKey()))

	s.lifecycle.FireDelete(ctx, s.schema.Kind, old)
	return nil
}

func toValues(ids []string) []interface{} {
	values := make([]interface{}, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return values
}
