package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os/exec"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/google/uuid"

	"videoninja/models"
	"videoninja/utils"
)

// Prober loads asset references from files.
type Prober interface {
	Load(ctx context.Context, path string) (*models.AssetRef, error)
}

// Forgetter drops cached results for a path.
type Forgetter interface {
	Forget(path string)
}

// ProbeService probes files with ffprobe and caches the result per path.
// Files are assumed immutable while cached.
type ProbeService struct {
	ffprobePath string
	ttl         time.Duration
	cache       *cache.Cache[string, *models.AssetRef]
}

// NewProbeService creates a new probe service
func NewProbeService(ffprobePath string, ttl time.Duration) *ProbeService {
	return &ProbeService{
		ffprobePath: ffprobePath,
		ttl:         ttl,
		cache:       cache.New[string, *models.AssetRef](),
	}
}

// Load returns the asset reference for path.
func (ps *ProbeService) Load(ctx context.Context, path string) (*models.AssetRef, error) {
	if asset, ok := ps.cache.Get(path); ok {
		return asset, nil
	}

	id := uuid.New().String()
	result, err := utils.ProbeFile(ctx, ps.ffprobePath, path)
	var asset *models.AssetRef
	switch {
	case err == nil:
		asset = utils.ProbeResultToAsset(id, path, result)
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		log.Printf("[Probe] %s not found, reading container boxes of %s", ps.ffprobePath, path)
		asset, err = utils.ProbeContainer(id, path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	if len(asset.Tracks) == 0 {
		return nil, fmt.Errorf("%s has no audio or video tracks", path)
	}

	if ps.ttl > 0 {
		ps.cache.Set(path, asset, cache.WithExpiration(ps.ttl))
	}
	return asset, nil
}

// Forget drops a cached probe result.
func (ps *ProbeService) Forget(path string) {
	ps.cache.Delete(path)
}
