package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PostTypeText  = "text"
	PostTypeImage = "image"
	PostTypeVideo = "video"
)

const (
	VisibilityPublic      = "public"
	VisibilityConnections = "connections"
	VisibilityPrivate     = "private"
)

type Post struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Type       string         `gorm:"not null;default:'text';column:type" json:"type"`
	Body       string         `gorm:"column:body" json:"body"`
	MediaURL   string         `gorm:"column:media_url" json:"media_url,omitempty"`
	Topics     datatypes.JSON `gorm:"type:jsonb;column:topics" json:"topics"`
	Visibility string         `gorm:"not null;default:'public';index;column:visibility" json:"visibility"`

	Lat     *float64 `gorm:"column:lat" json:"lat,omitempty"`
	Lon     *float64 `gorm:"column:lon" json:"lon,omitempty"`
	City    string   `gorm:"column:city" json:"city,omitempty"`
	Country string   `gorm:"column:country" json:"country,omitempty"`

	// Raw engagement counters, bumped by the interaction write path.
	ViewCount    int64 `gorm:"not null;default:0;column:view_count" json:"view_count"`
	LikeCount    int64 `gorm:"not null;default:0;column:like_count" json:"like_count"`
	CommentCount int64 `gorm:"not null;default:0;column:comment_count" json:"comment_count"`
	ShareCount   int64 `gorm:"not null;default:0;column:share_count" json:"share_count"`
	SaveCount    int64 `gorm:"not null;default:0;column:save_count" json:"save_count"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Post) TableName() string { return "post" }

// TopicList decodes the post's topic keywords, returning nil on absent or
// malformed data.
func (p *Post) TopicList() []string {
	if p == nil || len(p.Topics) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(p.Topics, &out); err != nil {
		return nil
	}
	return out
}

// SetTopicList encodes keywords into the Topics column.
func (p *Post) SetTopicList(topics []string) {
	if topics == nil {
		topics = []string{}
	}
	raw, err := json.Marshal(topics)
	if err != nil {
		return
	}
	p.Topics = datatypes.JSON(raw)
}

// AgeHours is the post age in hours relative to now.
func (p *Post) AgeHours(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours()
}

// EngagementCount is the weighted raw counter sum used by the popularity and
// trending candidate sources.
func (p *Post) EngagementCount() int64 {
	return p.LikeCount + 2*p.CommentCount + 3*p.ShareCount + 2*p.SaveCount
}
