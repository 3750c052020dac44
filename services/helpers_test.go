package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"videoninja/db"
	"videoninja/models"
	"videoninja/utils"
)

type mockProber struct {
	mock.Mock
}

func (m *mockProber) Load(ctx context.Context, path string) (*models.AssetRef, error) {
	args := m.Called(ctx, path)
	asset, _ := args.Get(0).(*models.AssetRef)
	return asset, args.Error(1)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Status(ctx context.Context, subject string) (models.AuthorizationStatus, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(models.AuthorizationStatus), args.Error(1)
}

func (m *mockAuthorizer) Request(ctx context.Context, subject string) (models.AuthorizationStatus, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).(models.AuthorizationStatus), args.Error(1)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Save(ctx context.Context, subject, path string) (SaveResult, error) {
	args := m.Called(ctx, subject, path)
	return args.Get(0).(SaveResult), args.Error(1)
}

type renderFunc func(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error

func (f renderFunc) Render(ctx context.Context, args []string, total time.Duration, progress utils.ProgressCallback) error {
	return f(ctx, args, total, progress)
}

// writingRenderer pretends to encode by writing the output file.
func writingRenderer() renderFunc {
	return func(_ context.Context, args []string, _ time.Duration, progress utils.ProgressCallback) error {
		progress(utils.Progress{Percent: 50})
		return os.WriteFile(args[len(args)-1], []byte("movie"), 0644)
	}
}

func videoAsset(path string, d time.Duration) *models.AssetRef {
	return &models.AssetRef{
		ID:       filepath.Base(path),
		Path:     path,
		Kind:     models.MediaKindVideo,
		Duration: d,
		Tracks: []models.TrackInfo{
			{Index: 0, Kind: models.MediaKindVideo, Codec: "h264", Width: 1920, Height: 1080, Duration: d},
			{Index: 1, Kind: models.MediaKindAudio, Codec: "aac", Duration: d},
		},
	}
}

func audioAsset(path string, d time.Duration) *models.AssetRef {
	return &models.AssetRef{
		ID:       filepath.Base(path),
		Path:     path,
		Kind:     models.MediaKindAudio,
		Duration: d,
		Tracks:   []models.TrackInfo{{Index: 0, Kind: models.MediaKindAudio, Codec: "aac", Duration: d}},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open("sqlite", filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	return gdb
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func waitDone(t *testing.T, job *models.ExportJob) {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
}
