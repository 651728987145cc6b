package models

import (
	"time"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusSpam     CommentStatus = "spam"
)

func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected, CommentStatusSpam:
		return true
	}
	return false
}

type Comment struct {
	ID              string        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content         string        `json:"content" gorm:"size:2000;not null"`
	AuthorID        string        `json:"author_id" gorm:"type:uuid;not null;index"`
	Author          *UserSummary  `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	PostID          string        `json:"post_id" gorm:"type:uuid;not null;index"`
	ParentCommentID *string       `json:"parent_comment_id" gorm:"type:uuid;index"`
	Replies         []*Comment    `json:"replies" gorm:"foreignKey:ParentCommentID;constraint:OnDelete:CASCADE"`
	Status          CommentStatus `json:"status" gorm:"type:varchar(16);not null;default:'approved';index"`
	LikesCount      int           `json:"likes_count" gorm:"not null;default:0"`
	IsEdited        bool          `json:"is_edited" gorm:"not null;default:false"`
	EditedAt        *time.Time    `json:"edited_at"`
	Mentions        []UserSummary `json:"mentions" gorm:"many2many:comment_mentions;joinForeignKey:CommentID;joinReferences:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ReplyIDs lists the ids of the loaded replies in order.
func (c *Comment) ReplyIDs() []string {
	ids := make([]string, 0, len(c.Replies))
	for _, r := range c.Replies {
		ids = append(ids, r.ID)
	}
	return ids
}

// SummarizeReplies marks the loaded replies as one level deep. Every list is
// non-nil so replies always encode as an array.
func (c *Comment) SummarizeReplies() {
	if c.Replies == nil {
		c.Replies = []*Comment{}
	}
	for _, r := range c.Replies {
		if r.Replies == nil {
			r.Replies = []*Comment{}
		}
	}
}

type CommentFilter struct {
	PostID   string
	AuthorID string
	// ParentCommentID nil selects top level comments only.
	ParentCommentID *string
	Status          CommentStatus
	Page            int
	Limit           int
	SortBy          string
	SortOrder       string
}
