package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recording stores metadata for a saved studio recording. The audio bytes
// themselves live wherever FilePath points.
type Recording struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    *uint          `json:"user_id" gorm:"index"`
	Filename  string         `json:"filename" gorm:"not null"`
	FilePath  string         `json:"file_path" gorm:"not null"`
	Duration  *int           `json:"duration"`
	Meta      datatypes.JSON `json:"meta,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Recording) TableName() string { return "recordings" }

// RecordingRequest is the POST /api/recordings payload. Meta is free-form
// (mime type, size, ...) and stored as-is.
type RecordingRequest struct {
	UserID   *uint          `json:"userId"`
	Filename string         `json:"filename"`
	FilePath string         `json:"filePath"`
	Duration *int           `json:"duration"`
	Meta     datatypes.JSON `json:"meta"`
}

// ToRecording converts the request into the persistence struct.
func (r RecordingRequest) ToRecording() Recording {
	rec := Recording{
		UserID:   r.UserID,
		Filename: r.Filename,
		FilePath: r.FilePath,
		Duration: r.Duration,
	}
	if len(r.Meta) > 0 && string(r.Meta) != "null" {
		rec.Meta = r.Meta
	}
	return rec
}

type RecordingResponse struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
	FilePath string `json:"filePath"`
	Duration *int   `json:"duration"`
}

type RecordingListResponse struct {
	Recordings []Recording `json:"recordings"`
}
