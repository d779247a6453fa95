package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/esaha/esaha-backend/internal/logger"
	"github.com/esaha/esaha-backend/internal/types"
)

type ChatSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.ChatSession, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, userID, sessionID string) (*types.ChatSession, error)
	UpdateTitle(ctx context.Context, tx *gorm.DB, userID, sessionID, title string) (int64, error)
	Touch(ctx context.Context, tx *gorm.DB, userID, sessionID string) error
	IncrementMessageCount(ctx context.Context, tx *gorm.DB, userID, sessionID string) error
	DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error
}

type chatSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatSessionRepo(db *gorm.DB, baseLog *logger.Logger) ChatSessionRepo {
	return &chatSessionRepo{db: db, log: baseLog.With("repo", "ChatSessionRepo")}
}

func (sr *chatSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ChatSession) (*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (sr *chatSessionRepo) GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.ChatSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *chatSessionRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, userID, sessionID string) (*types.ChatSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var session types.ChatSession
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (sr *chatSessionRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, userID, sessionID, title string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.ChatSession{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Updates(map[string]any{"title": title, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

func (sr *chatSessionRepo) Touch(ctx context.Context, tx *gorm.DB, userID, sessionID string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ChatSession{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Update("updated_at", time.Now().UTC()).Error
}

func (sr *chatSessionRepo) IncrementMessageCount(ctx context.Context, tx *gorm.DB, userID, sessionID string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ChatSession{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Update("message_count", gorm.Expr("message_count + 1")).Error
}

func (sr *chatSessionRepo) DeleteByUserID(ctx context.Context, tx *gorm.DB, userID string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.ChatSession{}).Error
}
