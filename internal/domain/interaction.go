package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TargetTypePost = "post"
	TargetTypeUser = "user"
)

const (
	InteractionView    = "view"
	InteractionLike    = "like"
	InteractionComment = "comment"
	InteractionShare   = "share"
	InteractionSave    = "save"
	InteractionClick   = "click"
	InteractionFollow  = "follow"
	InteractionHide    = "hide"
	InteractionReport  = "report"

	// InteractionShown is recorded once per surfaced feed item so that
	// future context reflects what was actually served.
	InteractionShown = "recommendation_shown"
)

type InteractionMetadata struct {
	DwellTime    *float64 `json:"dwell_time,omitempty"`
	ScrollDepth  *float64 `json:"scroll_depth,omitempty"`
	DeviceType   string   `json:"device_type,omitempty"`
	FeedPosition *int     `json:"feed_position,omitempty"`
	TimeOfDay    int      `json:"time_of_day"`
	DayOfWeek    int      `json:"day_of_week"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
}

// InteractionRecord is append-only. Rows are never mutated after creation;
// pruning happens via an external retention job.
type InteractionRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	TargetType      string         `gorm:"not null;column:target_type" json:"target_type"`
	TargetID        uuid.UUID      `gorm:"type:uuid;not null;index;column:target_id" json:"target_id"`
	InteractionType string         `gorm:"not null;column:interaction_type" json:"interaction_type"`
	Metadata        datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt       time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (InteractionRecord) TableName() string { return "interaction_record" }

func (r *InteractionRecord) DecodedMetadata() *InteractionMetadata {
	if r == nil || len(r.Metadata) == 0 {
		return nil
	}
	var md InteractionMetadata
	if err := json.Unmarshal(r.Metadata, &md); err != nil {
		return nil
	}
	return &md
}

func (r *InteractionRecord) SetMetadata(md *InteractionMetadata) {
	if md == nil {
		r.Metadata = datatypes.JSON([]byte("{}"))
		return
	}
	raw, err := json.Marshal(md)
	if err != nil {
		r.Metadata = datatypes.JSON([]byte("{}"))
		return
	}
	r.Metadata = datatypes.JSON(raw)
}

// ValidInteractionType reports whether t is an accepted interaction type.
func ValidInteractionType(t string) bool {
	switch t {
	case InteractionView, InteractionLike, InteractionComment, InteractionShare,
		InteractionSave, InteractionClick, InteractionFollow, InteractionHide,
		InteractionReport, InteractionShown:
		return true
	}
	return false
}
