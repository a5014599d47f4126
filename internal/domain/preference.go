package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxTopicAffinities caps the per-user topic list; new topics past the cap
// are dropped, not evicted.
const MaxTopicAffinities = 100

type TopicAffinity struct {
	Keyword   string  `json:"keyword"`
	Score     float64 `json:"score"`
	Frequency int64   `json:"frequency"`
}

type PostTypeAffinity struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

type HourActivity struct {
	Hour     int     `json:"hour"`
	Activity float64 `json:"activity"`
}

type DayActivity struct {
	Day      int     `json:"day"`
	Activity float64 `json:"activity"`
}

// PreferenceRecord is the per-user heuristic preference model. It is created
// lazily with zeroed defaults and mutated only by the preference learner.
type PreferenceRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:user_id" json:"user_id"`

	TopicAffinities    datatypes.JSON `gorm:"type:jsonb;column:topic_affinities" json:"topic_affinities"`
	PostTypeAffinities datatypes.JSON `gorm:"type:jsonb;column:post_type_affinities" json:"post_type_affinities"`
	ActiveHours        datatypes.JSON `gorm:"type:jsonb;column:active_hours" json:"active_hours"`
	ActiveDays         datatypes.JSON `gorm:"type:jsonb;column:active_days" json:"active_days"`

	SocialWeight   float64 `gorm:"not null;default:1;column:social_weight" json:"social_weight"`
	LocationWeight float64 `gorm:"not null;default:1;column:location_weight" json:"location_weight"`
	RecencyWeight  float64 `gorm:"not null;default:1;column:recency_weight" json:"recency_weight"`

	LastUpdated time.Time `gorm:"not null;default:now();column:last_updated" json:"last_updated"`
}

func (PreferenceRecord) TableName() string { return "preference_record" }

// NewDefaultPreferenceRecord builds the zeroed record created on first
// access: empty affinities, zero-filled activity histograms, neutral weights.
func NewDefaultPreferenceRecord(userID uuid.UUID) *PreferenceRecord {
	hours := make([]HourActivity, 24)
	for i := range hours {
		hours[i] = HourActivity{Hour: i}
	}
	days := make([]DayActivity, 7)
	for i := range days {
		days[i] = DayActivity{Day: i}
	}
	p := &PreferenceRecord{
		ID:             uuid.New(),
		UserID:         userID,
		SocialWeight:   1,
		LocationWeight: 1,
		RecencyWeight:  1,
		LastUpdated:    time.Now().UTC(),
	}
	p.SetTopics(nil)
	p.SetPostTypes(nil)
	p.SetHours(hours)
	p.SetDays(days)
	return p
}

func (p *PreferenceRecord) Topics() []TopicAffinity {
	var out []TopicAffinity
	if len(p.TopicAffinities) > 0 {
		_ = json.Unmarshal(p.TopicAffinities, &out)
	}
	return out
}

func (p *PreferenceRecord) SetTopics(list []TopicAffinity) {
	if list == nil {
		list = []TopicAffinity{}
	}
	raw, _ := json.Marshal(list)
	p.TopicAffinities = datatypes.JSON(raw)
}

func (p *PreferenceRecord) PostTypes() []PostTypeAffinity {
	var out []PostTypeAffinity
	if len(p.PostTypeAffinities) > 0 {
		_ = json.Unmarshal(p.PostTypeAffinities, &out)
	}
	return out
}

func (p *PreferenceRecord) SetPostTypes(list []PostTypeAffinity) {
	if list == nil {
		list = []PostTypeAffinity{}
	}
	raw, _ := json.Marshal(list)
	p.PostTypeAffinities = datatypes.JSON(raw)
}

func (p *PreferenceRecord) Hours() []HourActivity {
	out := make([]HourActivity, 0, 24)
	if len(p.ActiveHours) > 0 {
		_ = json.Unmarshal(p.ActiveHours, &out)
	}
	if len(out) != 24 {
		out = make([]HourActivity, 24)
		for i := range out {
			out[i] = HourActivity{Hour: i}
		}
	}
	return out
}

func (p *PreferenceRecord) SetHours(list []HourActivity) {
	raw, _ := json.Marshal(list)
	p.ActiveHours = datatypes.JSON(raw)
}

func (p *PreferenceRecord) Days() []DayActivity {
	out := make([]DayActivity, 0, 7)
	if len(p.ActiveDays) > 0 {
		_ = json.Unmarshal(p.ActiveDays, &out)
	}
	if len(out) != 7 {
		out = make([]DayActivity, 7)
		for i := range out {
			out[i] = DayActivity{Day: i}
		}
	}
	return out
}

func (p *PreferenceRecord) SetDays(list []DayActivity) {
	raw, _ := json.Marshal(list)
	p.ActiveDays = datatypes.JSON(raw)
}

// TopicScore returns the affinity score for a keyword, zero when untracked.
func (p *PreferenceRecord) TopicScore(keyword string) float64 {
	for _, t := range p.Topics() {
		if t.Keyword == keyword {
			return t.Score
		}
	}
	return 0
}

// PostTypeScore returns the affinity score for a post type, zero when
// untracked.
func (p *PreferenceRecord) PostTypeScore(postType string) float64 {
	for _, t := range p.PostTypes() {
		if t.Type == postType {
			return t.Score
		}
	}
	return 0
}
