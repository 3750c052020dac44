package services

import (
	"videoninja/models"
)

// InstructionBuilder derives how the composed video tracks are drawn.
type InstructionBuilder struct {
	frameRate  int
	renderSize models.RenderSize
}

// NewInstructionBuilder creates a builder with a fixed frame rate and render size
func NewInstructionBuilder(frameRate int, renderSize models.RenderSize) *InstructionBuilder {
	return &InstructionBuilder{frameRate: frameRate, renderSize: renderSize}
}

// Build returns the video composition for two sequential tracks. The first
// layer is cut to zero opacity exactly when the first asset ends; the second
// keeps its default visibility.
func (ib *InstructionBuilder) Build(firstTrack *models.CompositionTrack, first *models.AssetRef, secondTrack *models.CompositionTrack, second *models.AssetRef) models.VideoComposition {
	firstInstruction := models.LayerInstruction{TrackID: firstTrack.ID}
	firstInstruction.SetOpacity(1, 0)
	firstInstruction.SetOpacity(0, first.Duration)

	secondInstruction := models.LayerInstruction{TrackID: secondTrack.ID}

	return models.VideoComposition{
		TimeRange:    models.TimeRange{Start: 0, Duration: first.Duration + second.Duration},
		Instructions: []models.LayerInstruction{firstInstruction, secondInstruction},
		FrameRate:    ib.frameRate,
		RenderSize:   ib.renderSize,
	}
}
