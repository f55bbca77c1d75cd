package store

import (
	"time"

	"github.com/snigenigmatic/QuadChat/internal/domain"
	"github.com/snigenigmatic/QuadChat/pkg/database"
)

// UserModel is the GORM model for users.
type UserModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

func UserToModel(u *domain.User) *UserModel {
	return &UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// RoomModel is the GORM model for rooms.
type RoomModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	Description  string
	CreatedBy    string
	Participants database.StringArray `gorm:"type:text"`
	CreatedAt    time.Time
}

func (RoomModel) TableName() string { return "rooms" }

func (m *RoomModel) ToDomain() *domain.Room {
	return &domain.Room{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		CreatedBy:    m.CreatedBy,
		Participants: m.Participants,
		CreatedAt:    m.CreatedAt,
	}
}

func RoomToModel(r *domain.Room) *RoomModel {
	return &RoomModel{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		CreatedBy:    r.CreatedBy,
		Participants: r.Participants,
		CreatedAt:    r.CreatedAt,
	}
}

// MessageModel is the GORM model for room messages.
type MessageModel struct {
	ID          string    `gorm:"primaryKey"`
	RoomID      string    `gorm:"index;not null"`
	SenderID    string    `gorm:"index;not null"`
	SenderName  string
	SenderEmail string
	Content     string    `gorm:"not null"`
	ContentType string    `gorm:"default:text"`
	CreatedAt   time.Time `gorm:"index"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		ID:          m.ID,
		RoomID:      m.RoomID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		SenderEmail: m.SenderEmail,
		Content:     m.Content,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}

func MessageToModel(msg *domain.Message) *MessageModel {
	return &MessageModel{
		ID:          msg.ID,
		RoomID:      msg.RoomID,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		SenderEmail: msg.SenderEmail,
		Content:     msg.Content,
		ContentType: msg.ContentType,
		CreatedAt:   msg.CreatedAt,
	}
}

// DirectMessageModel is the GORM model for direct messages.
type DirectMessageModel struct {
	ID          string    `gorm:"primaryKey"`
	SenderID    string    `gorm:"index:idx_dm_pair;not null"`
	SenderName  string
	RecipientID string    `gorm:"index:idx_dm_pair;not null"`
	Content     string    `gorm:"not null"`
	ContentType string    `gorm:"default:text"`
	Read        bool      `gorm:"default:false;index"`
	CreatedAt   time.Time `gorm:"index"`
}

func (DirectMessageModel) TableName() string { return "direct_messages" }

func (m *DirectMessageModel) ToDomain() *domain.DirectMessage {
	return &domain.DirectMessage{
		ID:          m.ID,
		SenderID:    m.SenderID,
		SenderName:  m.SenderName,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		ContentType: m.ContentType,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

func DirectMessageToModel(msg *domain.DirectMessage) *DirectMessageModel {
	return &DirectMessageModel{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		SenderName:  msg.SenderName,
		RecipientID: msg.RecipientID,
		Content:     msg.Content,
		ContentType: msg.ContentType,
		Read:        msg.Read,
		CreatedAt:   msg.CreatedAt,
	}
}

// Models returns all GORM models for auto-migration.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&RoomModel{},
		&MessageModel{},
		&DirectMessageModel{},
	}
}
