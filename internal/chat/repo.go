package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetk3436/medassist/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo persists chats, messages, stream handles and votes.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// CountUserMessages counts user-role messages across the user's chats since
// the given instant.
func (r *Repo) CountUserMessages(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN chats ON chats.id = messages.chat_id").
		Where("chats.user_id = ? AND messages.role = ? AND messages.created_at >= ?", userID, models.RoleUser, since).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count messages of %s: %w", userID, err)
	}
	return n, nil
}

func (r *Repo) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).First(&chat, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat %s: %w", id, err)
	}
	return &chat, nil
}

func (r *Repo) CreateChat(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("create chat %s: %w", chat.ID, err)
	}
	return nil
}

func (r *Repo) ListChats(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Chat, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Chat{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count chats: %w", err)
	}
	chats := []models.Chat{}
	err := q.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&chats).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list chats: %w", err)
	}
	return chats, total, nil
}

func (r *Repo) SetVisibility(ctx context.Context, id uuid.UUID, v models.Visibility) error {
	err := r.db.WithContext(ctx).Model(&models.Chat{}).Where("id = ?", id).Update("visibility", v).Error
	if err != nil {
		return fmt.Errorf("set visibility of %s: %w", id, err)
	}
	return nil
}

// DeleteChat removes the chat together with its votes, messages and stream
// handles and returns the deleted row.
func (r *Repo) DeleteChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&chat, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&models.Stream{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Chat{}, "id = ?", id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete chat %s: %w", id, err)
	}
	return &chat, nil
}

func (r *Repo) SaveMessages(ctx context.Context, msgs ...*models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(msgs).Error; err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	return nil
}

// Messages returns the chat's messages oldest first.
func (r *Repo) Messages(ctx context.Context, chatID uuid.UUID) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at ASC").Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("load messages of %s: %w", chatID, err)
	}
	return msgs, nil
}

func (r *Repo) CreateStream(ctx context.Context, chatID uuid.UUID) (*models.Stream, error) {
	s := &models.Stream{ChatID: chatID}
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, fmt.Errorf("create stream for %s: %w", chatID, err)
	}
	return s, nil
}

func (r *Repo) LatestStream(ctx context.Context, chatID uuid.UUID) (*models.Stream, error) {
	var s models.Stream
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at DESC").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoStreams
	}
	if err != nil {
		return nil, fmt.Errorf("latest stream of %s: %w", chatID, err)
	}
	return &s, nil
}

func (r *Repo) Votes(ctx context.Context, chatID uuid.UUID) ([]models.Vote, error) {
	votes := []models.Vote{}
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("load votes of %s: %w", chatID, err)
	}
	return votes, nil
}

// Vote inserts or flips the vote on a message.
func (r *Repo) Vote(ctx context.Context, chatID, messageID uuid.UUID, up bool) error {
	v := models.Vote{ChatID: chatID, MessageID: messageID, IsUpvoted: up}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_upvoted"}),
	}).Create(&v).Error
	if err != nil {
		return fmt.Errorf("vote on %s: %w", messageID, err)
	}
	return nil
}
