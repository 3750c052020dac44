package models

import (
	"encoding/json"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
)

var (
	ErrUnknownValue = merry.Sentinel("unknown enum value")
)

// MediaKind is the kind of media an asset or track carries.
type MediaKind enum.Member[string]

var (
	MediaKindVideo = MediaKind{Value: "video"}
	MediaKindAudio = MediaKind{Value: "audio"}
	MediaKinds     = enum.New(MediaKindVideo, MediaKindAudio)
)

//goland:noinspection GoMixedReceiverTypes
func (k MediaKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (k *MediaKind) UnmarshalJSON(value []byte) error {
	return unmarshalMember(value, MediaKinds.Parse, k)
}

// Source is where a picker looks for media.
type Source enum.Member[string]

var (
	SourceCamera       = Source{Value: "camera"}
	SourceSavedAlbum   = Source{Value: "saved_album"}
	SourceAudioLibrary = Source{Value: "audio_library"}
	Sources            = enum.New(SourceCamera, SourceSavedAlbum, SourceAudioLibrary)
)

//goland:noinspection GoMixedReceiverTypes
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (s *Source) UnmarshalJSON(value []byte) error {
	return unmarshalMember(value, Sources.Parse, s)
}

// Slot names which part of a merge a picked asset fills.
type Slot enum.Member[string]

var (
	SlotFirstVideo  = Slot{Value: "first_video"}
	SlotSecondVideo = Slot{Value: "second_video"}
	SlotAudio       = Slot{Value: "audio"}
	Slots           = enum.New(SlotFirstVideo, SlotSecondVideo, SlotAudio)
)

//goland:noinspection GoMixedReceiverTypes
func (s Slot) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (s *Slot) UnmarshalJSON(value []byte) error {
	return unmarshalMember(value, Slots.Parse, s)
}

// Kind returns the media kind the slot accepts.
//
//goland:noinspection GoMixedReceiverTypes
func (s Slot) Kind() MediaKind {
	if s == SlotAudio {
		return MediaKindAudio
	}
	return MediaKindVideo
}

// ExportStatus is the state of an export job. Running is the only
// non-terminal state.
type ExportStatus enum.Member[string]

var (
	ExportStatusRunning   = ExportStatus{Value: "running"}
	ExportStatusCompleted = ExportStatus{Value: "completed"}
	ExportStatusFailed    = ExportStatus{Value: "failed"}
	ExportStatusCancelled = ExportStatus{Value: "cancelled"}
	ExportStatuses        = enum.New(ExportStatusRunning, ExportStatusCompleted, ExportStatusFailed, ExportStatusCancelled)
)

//goland:noinspection GoMixedReceiverTypes
func (s ExportStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (s *ExportStatus) UnmarshalJSON(value []byte) error {
	return unmarshalMember(value, ExportStatuses.Parse, s)
}

//goland:noinspection GoMixedReceiverTypes
func (s ExportStatus) String() string {
	return s.Value
}

// IsTerminal reports whether the status can no longer change.
//
//goland:noinspection GoMixedReceiverTypes
func (s ExportStatus) IsTerminal() bool {
	return s == ExportStatusCompleted || s == ExportStatusFailed || s == ExportStatusCancelled
}

// AuthorizationStatus mirrors a media library permission prompt.
type AuthorizationStatus enum.Member[string]

var (
	AuthorizationNotDetermined = AuthorizationStatus{Value: "not_determined"}
	AuthorizationAuthorized    = AuthorizationStatus{Value: "authorized"}
	AuthorizationDenied        = AuthorizationStatus{Value: "denied"}
	AuthorizationStatuses      = enum.New(AuthorizationNotDetermined, AuthorizationAuthorized, AuthorizationDenied)
)

//goland:noinspection GoMixedReceiverTypes
func (s AuthorizationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

//goland:noinspection GoMixedReceiverTypes
func (s *AuthorizationStatus) UnmarshalJSON(value []byte) error {
	return unmarshalMember(value, AuthorizationStatuses.Parse, s)
}

func unmarshalMember[M any](value []byte, parse func(string) *M, out *M) error {
	var stringValue string
	if err := json.Unmarshal(value, &stringValue); err != nil {
		return err
	}
	member := parse(stringValue)
	if member == nil {
		return merry.Wrap(ErrUnknownValue, merry.AppendMessagef("%q", stringValue))
	}
	*out = *member
	return nil
}
