package cli

import (
	"fmt"

	"gorm.io/gorm"

	"videoninja/config"
	"videoninja/db"
	"videoninja/models"
	"videoninja/services"
	"videoninja/utils"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg *config.Config
	db  *gorm.DB

	prober   *services.ProbeService
	auth     *services.GrantAuthorizer
	library  *services.LibraryService
	exporter *services.ExportService
	picker   *services.PickerService
	merger   *services.MergeService
	sessions *services.SessionStore
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	if err := utils.EnsureDirs(cfg.DocumentsDir, cfg.LibraryDir, cfg.CaptureDir, cfg.AudioLibraryDir); err != nil {
		return nil, err
	}

	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	grant := models.AuthorizationStatuses.Parse(cfg.DefaultGrant)
	if grant == nil {
		return nil, fmt.Errorf("unknown default grant %q", cfg.DefaultGrant)
	}

	a := &app{cfg: cfg, db: gdb, sessions: services.NewSessionStore()}
	a.prober = services.NewProbeService(cfg.FFprobePath, cfg.ProbeCacheTTL)
	a.auth = services.NewGrantAuthorizer(gdb, *grant)
	a.library = services.NewLibraryService(gdb, cfg.LibraryDir, a.auth, a.prober)
	a.exporter = services.NewExportService(
		services.FFmpegRenderer{Path: cfg.FFmpegPath},
		utils.HighestQuality(cfg.VideoPreset, cfg.VideoCRF, cfg.AudioBitrate),
	)
	a.picker = services.NewPickerService(a.prober, map[models.Source]services.MediaSource{
		models.SourceCamera:       services.DirSource{Dir: cfg.CaptureDir, Kind: models.MediaKindVideo, Exts: utils.VideoExtensions},
		models.SourceSavedAlbum:   services.LibrarySource{Library: a.library, Kind: models.MediaKindVideo},
		models.SourceAudioLibrary: services.DirSource{Dir: cfg.AudioLibraryDir, Kind: models.MediaKindAudio, Exts: utils.AudioExtensions},
	})
	a.merger = services.NewMergeService(
		services.NewComposerService(),
		services.NewInstructionBuilder(cfg.FrameRate, models.RenderSize{Width: cfg.RenderWidth, Height: cfg.RenderHeight}),
		a.exporter,
		a.library,
		cfg.DocumentsDir,
	)
	return a, nil
}
