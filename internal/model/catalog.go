package model

import "time"

// Driver is a racing driver, unique by car number
type Driver struct {
	ID          string    `json:"id" db:"id"`
	Number      int       `json:"number" db:"number"`
	Name        string    `json:"name" db:"name"`
	Team        string    `json:"team" db:"team"`
	TeamColor   string    `json:"team_color" db:"team_color"`
	CountryCode string    `json:"country_code" db:"country_code"`
	HeadshotURL string    `json:"headshot_url" db:"headshot_url"`
	NameAcronym string    `json:"name_acronym" db:"name_acronym"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Race is a single session of a meeting, unique by session key
type Race struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"` // "<location> - <session_name>"
	Location   string    `json:"location" db:"location"`
	Season     int       `json:"season" db:"season"`
	RaceDate   time.Time `json:"race_date" db:"race_date"`
	SessionKey int       `json:"session_key" db:"session_key"`
	MeetingKey int       `json:"meeting_key" db:"meeting_key"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Clip is one team radio recording
type Clip struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	AudioURL   string    `json:"audio_url" db:"audio_url"`
	DriverID   string    `json:"driver_id" db:"driver_id"`
	RaceID     *string   `json:"race_id,omitempty" db:"race_id"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
	Duration   int       `json:"duration" db:"duration"` // seconds, unknown at ingest
	Transcript *string   `json:"transcript,omitempty" db:"transcript"`
	IsPremium  bool      `json:"is_premium" db:"is_premium"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HasTranscript reports whether the clip carries a non-empty transcript.
func (c *Clip) HasTranscript() bool {
	return c.Transcript != nil && *c.Transcript != ""
}

// Category is a taxonomy label, unique by name
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ClipTag links a clip to a category
type ClipTag struct {
	ClipID     string    `json:"clip_id" db:"clip_id"`
	CategoryID string    `json:"category_id" db:"category_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TranscriptFilter selects clips by transcript state
type TranscriptFilter int

const (
	TranscriptAny     TranscriptFilter = iota
	TranscriptMissing                  // NULL or empty string
	TranscriptPresent                  // non-empty
)

// ClipQuery is the typed selector for clip scans
type ClipQuery struct {
	ID            string // when set, other filters are ignored
	Transcript    TranscriptFilter
	ExcludeTagged bool
	NewestFirst   bool // created_at DESC, otherwise id ASC for stable paging
	Limit         int  // 0 means no limit
	Offset        int
}
