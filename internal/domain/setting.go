package domain

import "time"

const SettingsKey = "settings"

// AdminSetting is the single record holding the launch video URL pushed to
// open stream connections. A nil YoutubeURL means no video is set.
type AdminSetting struct {
	ID         string    `json:"-" bson:"_id" gorm:"primaryKey;size:32"`
	YoutubeURL *string   `json:"youtubeUrl" bson:"youtube_url" gorm:"size:512"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

func (AdminSetting) TableName() string {
	return "admin_settings"
}
