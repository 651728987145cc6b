package models

import (
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

type Post struct {
	ID            string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title         string       `json:"title" gorm:"size:200;not null"`
	Slug          string       `json:"slug" gorm:"uniqueIndex;not null"`
	Content       string       `json:"content" gorm:"type:text;not null"`
	ContentHTML   string       `json:"content_html,omitempty" gorm:"-"`
	Excerpt       string       `json:"excerpt" gorm:"size:500"`
	Status        PostStatus   `json:"status" gorm:"type:varchar(16);not null;default:'draft';index"`
	AuthorID      string       `json:"author_id" gorm:"type:uuid;not null;index"`
	Author        *UserSummary `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Tags          []Tag        `json:"tags" gorm:"many2many:post_tags;constraint:OnDelete:CASCADE"`
	FeaturedImage string       `json:"featured_image"`
	LikesCount    int          `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int          `json:"comments_count" gorm:"not null;default:0"`
	PublishedAt   *time.Time   `json:"published_at" gorm:"index"`
	Comments      []*Comment   `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// SetStatus applies a status change. PublishedAt is stamped on the first
// transition into published and never moves afterwards.
func (p *Post) SetStatus(status PostStatus, now time.Time) {
	p.Status = status
	if status == PostStatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

func (p *Post) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// PostFilter drives every post listing: the public feed, author pages and search.
type PostFilter struct {
	Status   PostStatus
	AuthorID string
	Tags     []string
	Search   string
	// ViewerID widens a listing without a status filter to the viewer's own drafts.
	ViewerID  string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}
