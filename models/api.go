package models

import "time"

// CreateSessionResponse returns a new merge session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// PickRequest selects an item for a slot of a session.
type PickRequest struct {
	Slot   Slot   `json:"slot"`
	Source Source `json:"source"`
	ItemID string `json:"item_id"`
	Cancel bool   `json:"cancel"`
}

// PickResponse reports what a pick did.
type PickResponse struct {
	Status string    `json:"status"` // "loaded", "cancelled", "ignored", "unavailable"
	Asset  *AssetRef `json:"asset,omitempty"`
	Dialog *Dialog   `json:"dialog,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// SessionResponse lists the filled slots of a session.
type SessionResponse struct {
	SessionID   string    `json:"session_id"`
	FirstVideo  *AssetRef `json:"first_video,omitempty"`
	SecondVideo *AssetRef `json:"second_video,omitempty"`
	Audio       *AssetRef `json:"audio,omitempty"`
	Merging     bool      `json:"merging"`
}

// MergeResponse returns the export job ID.
type MergeResponse struct {
	JobID  string       `json:"job_id"`
	Status ExportStatus `json:"status"`
}

// StatusResponse returns current export progress.
type StatusResponse struct {
	Status    ExportStatus `json:"status"`
	Progress  float64      `json:"progress"`
	VideoURL  *string      `json:"video_url,omitempty"`
	Dialog    *Dialog      `json:"dialog,omitempty"`
	Error     *string      `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LibraryItemResponse is the JSON view of a library item.
type LibraryItemResponse struct {
	ID        string    `json:"id"`
	Kind      MediaKind `json:"kind"`
	Title     string    `json:"title"`
	Duration  float64   `json:"duration"`
	Size      int64     `json:"size"`
	Origin    string    `json:"origin"`
	PlayURL   string    `json:"play_url"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthorizationRequest answers the library authorization prompt.
type AuthorizationRequest struct {
	Status AuthorizationStatus `json:"status"`
}

// AuthorizationResponse reports the subject's grant.
type AuthorizationResponse struct {
	Subject string              `json:"subject"`
	Status  AuthorizationStatus `json:"status"`
}

// RecordResponse reports the outcome of ingesting a captured movie.
type RecordResponse struct {
	ItemID string  `json:"item_id,omitempty"`
	Dialog *Dialog `json:"dialog"`
}
