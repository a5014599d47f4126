package domain

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestDefaultPreferenceRecordShape(t *testing.T) {
	p := NewDefaultPreferenceRecord(uuid.New())

	if len(p.Hours()) != 24 {
		t.Fatalf("hours = %d, want 24", len(p.Hours()))
	}
	if len(p.Days()) != 7 {
		t.Fatalf("days = %d, want 7", len(p.Days()))
	}
	if len(p.Topics()) != 0 || len(p.PostTypes()) != 0 {
		t.Fatal("new record must start with empty affinities")
	}
	if p.SocialWeight != 1 || p.LocationWeight != 1 || p.RecencyWeight != 1 {
		t.Fatalf("weights %v/%v/%v, want neutral 1s", p.SocialWeight, p.LocationWeight, p.RecencyWeight)
	}
}

func TestHistogramsSelfHealFromBadData(t *testing.T) {
	p := NewDefaultPreferenceRecord(uuid.New())
	p.ActiveHours = datatypes.JSON([]byte(`[{"hour":0,"activity":0.5}]`))
	p.ActiveDays = datatypes.JSON([]byte(`not json`))

	if got := len(p.Hours()); got != 24 {
		t.Fatalf("truncated hours healed to %d entries, want 24", got)
	}
	if got := len(p.Days()); got != 7 {
		t.Fatalf("malformed days healed to %d entries, want 7", got)
	}
}

func TestTopicAndTypeScoreLookups(t *testing.T) {
	p := NewDefaultPreferenceRecord(uuid.New())
	p.SetTopics([]TopicAffinity{{Keyword: "golang", Score: 0.7, Frequency: 3}})
	p.SetPostTypes([]PostTypeAffinity{{Type: PostTypeVideo, Score: 0.2}})

	if got := p.TopicScore("golang"); got != 0.7 {
		t.Fatalf("topic score = %v, want 0.7", got)
	}
	if got := p.TopicScore("unknown"); got != 0 {
		t.Fatalf("unknown topic score = %v, want 0", got)
	}
	if got := p.PostTypeScore(PostTypeVideo); got != 0.2 {
		t.Fatalf("post type score = %v, want 0.2", got)
	}
}

func TestPostTopicListRoundTrip(t *testing.T) {
	p := &Post{}
	if got := p.TopicList(); got != nil {
		t.Fatalf("empty topics = %v, want nil", got)
	}
	p.SetTopicList([]string{"a", "b"})
	got := p.TopicList()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("round trip = %v", got)
	}
}

func TestGeoDistance(t *testing.T) {
	nyc := GeoPoint{Lat: 40.7128, Lon: -74.0060}
	la := GeoPoint{Lat: 34.0522, Lon: -118.2437}

	d := nyc.DistanceKm(la)
	if d < 3900 || d > 4000 {
		t.Fatalf("NYC-LA distance = %v km, want ~3940", d)
	}
	if self := nyc.DistanceKm(nyc); self > 1e-9 {
		t.Fatalf("self distance = %v, want 0", self)
	}
}
