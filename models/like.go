package models

import (
	"time"
)

type LikeTargetType string

const (
	LikeTargetPost    LikeTargetType = "post"
	LikeTargetComment LikeTargetType = "comment"
)

func (t LikeTargetType) Valid() bool {
	return t == LikeTargetPost || t == LikeTargetComment
}

type Like struct {
	ID         string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     string         `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target"`
	User       *UserSummary   `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	TargetID   string         `json:"target_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_target;index:idx_like_target"`
	TargetType LikeTargetType `json:"target_type" gorm:"type:varchar(16);not null;uniqueIndex:idx_like_user_target;index:idx_like_target"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
