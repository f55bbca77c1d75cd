package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/pkg/log"
)

// systemUserEmail identifies the account that owns auto-created rooms.
const systemUserEmail = "system@quadchat.local"

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var model UserModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (s *GormStore) CreateUser(ctx context.Context, user *domain.User) error {
	l := log.Ctx(ctx)

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	model := UserToModel(user)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create user")
		return err
	}
	l.Debug().Str(log.FieldUserID, user.ID).Msg("user created")
	return nil
}

func (s *GormStore) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	var model RoomModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (s *GormStore) EnsureGeneralRoom(ctx context.Context, name string) (*domain.Room, error) {
	l := log.Ctx(ctx)

	var model RoomModel
	err := s.db.WithContext(ctx).First(&model, "name = ?", name).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	creator, err := s.ensureSystemUser(ctx)
	if err != nil {
		return nil, err
	}

	room := &domain.Room{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  "General chat room for all users",
		CreatedBy:    creator.ID,
		Participants: []string{creator.ID},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(RoomToModel(room)).Error; err != nil {
		return nil, err
	}

	l.Info().Str(log.FieldRoomID, room.ID).Str("room_name", name).Msg("general room created")
	return room, nil
}

func (s *GormStore) ensureSystemUser(ctx context.Context) (*domain.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "email = ?", systemUserEmail).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Name:      "System",
		Email:     systemUserEmail,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(UserToModel(user)).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GormStore) AddParticipant(ctx context.Context, roomID, userID string) error {
	var model RoomModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", roomID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return result.Error
	}

	if model.ToDomain().HasParticipant(userID) {
		return nil
	}

	model.Participants = append(model.Participants, userID)
	return s.db.WithContext(ctx).Model(&model).Update("participants", model.Participants).Error
}

func (s *GormStore) SaveRoomMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(MessageToModel(msg)).Error
}

func (s *GormStore) ListRoomMessages(ctx context.Context, roomID string, limit int) ([]domain.Message, error) {
	if limit < 1 {
		limit = 50
	}

	var models []MessageModel
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[len(models)-1-i] = *model.ToDomain()
	}
	return messages, nil
}

func (s *GormStore) SaveDirectMessage(ctx context.Context, msg *domain.DirectMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(DirectMessageToModel(msg)).Error
}

func (s *GormStore) ListDirectMessages(ctx context.Context, userA, userB string, limit int) ([]domain.DirectMessage, error) {
	if limit < 1 {
		limit = 50
	}

	var models []DirectMessageModel
	err := s.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]domain.DirectMessage, len(models))
	for i, model := range models {
		messages[len(models)-1-i] = *model.ToDomain()
	}
	return messages, nil
}

func (s *GormStore) MarkRead(ctx context.Context, recipientID, senderID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&DirectMessageModel{}).
		Where("recipient_id = ? AND sender_id = ? AND read = ?", recipientID, senderID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (s *GormStore) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&DirectMessageModel{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}
