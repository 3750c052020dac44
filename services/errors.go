package services

import (
	"net/http"

	"github.com/ansel1/merry/v2"
)

var (
	ErrMissingAsset      = merry.Sentinel("both videos must be loaded before merging", merry.WithHTTPCode(http.StatusConflict))
	ErrNoVideoTrack      = merry.Sentinel("asset has no video track", merry.WithHTTPCode(http.StatusUnprocessableEntity))
	ErrNoAudioTrack      = merry.Sentinel("asset has no audio track", merry.WithHTTPCode(http.StatusUnprocessableEntity))
	ErrSourceUnavailable = merry.Sentinel("media source not available", merry.WithHTTPCode(http.StatusServiceUnavailable))
	ErrItemNotFound      = merry.Sentinel("media item not found", merry.WithHTTPCode(http.StatusNotFound))
	ErrMergeInProgress   = merry.Sentinel("a merge is already running for this session", merry.WithHTTPCode(http.StatusConflict))
	ErrSessionNotFound   = merry.Sentinel("session not found", merry.WithHTTPCode(http.StatusNotFound))
	ErrNotAuthorized     = merry.Sentinel("library access not authorized", merry.WithHTTPCode(http.StatusForbidden))
	ErrIncompatibleVideo = merry.Sentinel("video is not compatible with the library", merry.WithHTTPCode(http.StatusUnprocessableEntity))
	ErrUnsupportedMedia  = merry.Sentinel("unsupported media file", merry.WithHTTPCode(http.StatusUnsupportedMediaType))
)
