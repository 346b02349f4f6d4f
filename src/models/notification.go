package models

import (
	"time"

	"frs/src/types"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID                `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`
	Channel     types.ChannelType        `json:"channel"`
	Recipient   string                   `json:"recipient"`
	UserID      *uint                    `gorm:"index" json:"user_id,omitempty"`
	MessageType types.NotificationKind   `json:"message_type"`
	Subject     string                   `json:"subject,omitempty"`
	Body        string                   `json:"body"`
	Payload     *types.JSONB             `gorm:"type:jsonb" json:"payload,omitempty"`
	Status      types.NotificationStatus `gorm:"index" json:"status"`
	RetryCount  int                      `json:"retry_count"`
	SentAt      *time.Time               `json:"sent_at,omitempty"`

	types.Timestamps
}
