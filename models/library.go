package models

import "time"

// Library item origins.
const (
	OriginRecorded = "recorded"
	OriginMerged   = "merged"
	OriginImported = "imported"
)

// LibraryItem is a file stored in the media library.
type LibraryItem struct {
	ID         string `gorm:"primaryKey;size:36"`
	Kind       string `gorm:"size:16;index"`
	Title      string
	Path       string
	DurationMs int64
	Size       int64
	Origin     string `gorm:"size:16"`
	CreatedAt  time.Time
}

func (i LibraryItem) MediaKind() MediaKind {
	if k := MediaKinds.Parse(i.Kind); k != nil {
		return *k
	}
	return MediaKindVideo
}

func (i LibraryItem) Duration() time.Duration {
	return time.Duration(i.DurationMs) * time.Millisecond
}

// LibraryGrant is the stored answer of a subject to the library
// authorization prompt.
type LibraryGrant struct {
	Subject   string `gorm:"primaryKey;size:128"`
	Status    string `gorm:"size:16"`
	UpdatedAt time.Time
}

func (g LibraryGrant) AuthorizationStatus() AuthorizationStatus {
	if s := AuthorizationStatuses.Parse(g.Status); s != nil {
		return *s
	}
	return AuthorizationNotDetermined
}
