package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generation modes recorded in the history
const (
	ModeMelody = "melody"
	ModePitch  = "pitch"
	ModeScale  = "scale"
)

// Run is one recorded generation
type Run struct {
	ID   string `gorm:"primaryKey;type:text" json:"id"`
	Mode string `gorm:"not null;index" json:"mode"`

	// Inputs
	Seed       int64    `gorm:"index" json:"seed"`
	Scale      string   `json:"scale"`
	Key        string   `json:"key"`
	Octave     int      `json:"octave"`
	ScaleUsage float64  `json:"scale_usage"`
	BeatBudget float64  `json:"beat_budget"`
	Tempo      int      `json:"tempo"`
	Directions []string `gorm:"serializer:json" json:"directions,omitempty"`
	Times      []string `gorm:"serializer:json" json:"times,omitempty"`
	Pitches    []string `gorm:"serializer:json" json:"pitches,omitempty"`

	// Outputs
	NoteCount int      `json:"note_count"`
	Size      int64    `json:"size"`
	SHA256    string   `gorm:"column:sha256;index" json:"sha256"`
	Locations []string `gorm:"serializer:json" json:"locations"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the table name stable
func (Run) TableName() string {
	return "runs"
}

// BeforeCreate assigns an id to new runs
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
