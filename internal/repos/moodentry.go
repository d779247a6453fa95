package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type MoodEntryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entry *types.MoodEntry) (*types.MoodEntry, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.MoodEntry, error)
	// GetSince returns entries with date >= since ("YYYY-MM-DD"), newest first
	// when newestFirst is set, oldest first otherwise.
	GetSince(ctx context.Context, tx *gorm.DB, userID, since string, newestFirst bool) ([]*types.MoodEntry, error)
	GetAll(ctx context.Context, tx *gorm.DB, userID string) ([]*types.MoodEntry, error)
	GetChatSourcedSince(ctx context.Context, tx *gorm.DB, userID, since string) ([]*types.MoodEntry, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error)
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type moodEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMoodEntryRepo(db *gorm.DB, baseLog *logger.Logger) MoodEntryRepo {
	return &moodEntryRepo{db: db, log: baseLog.With("repo", "MoodEntryRepo")}
}

func (mr *moodEntryRepo) Create(ctx context.Context, tx *gorm.DB, entry *types.MoodEntry) (*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (mr *moodEntryRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var entry types.MoodEntry
	if err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (mr *moodEntryRepo) GetSince(ctx context.Context, tx *gorm.DB, userID, since string, newestFirst bool) ([]*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	order := "date ASC, created_at ASC"
	if newestFirst {
		order = "date DESC, created_at DESC"
	}
	var results []*types.MoodEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order(order).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moodEntryRepo) GetAll(ctx context.Context, tx *gorm.DB, userID string) ([]*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.MoodEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moodEntryRepo) GetChatSourcedSince(ctx context.Context, tx *gorm.DB, userID, since string) ([]*types.MoodEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.MoodEntry
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND source = ?", userID, since, types.MoodSourceChat).
		Order("date ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *moodEntryRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.MoodEntry{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (mr *moodEntryRepo) Delete(ctx context.Context, tx *gorm.DB, userID string, id uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.MoodEntry{})
	return res.RowsAffected, res.Error
}

func (mr *moodEntryRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.MoodEntry{}).Error
}
