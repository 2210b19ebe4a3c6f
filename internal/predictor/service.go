package predictor

import (
	"context"

	"github.com/yourusername/rugby-predictor/internal/artifact"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// ArtifactSource returns the trained artifact of a league
type ArtifactSource interface {
	Get(ctx context.Context, leagueID int64) (*artifact.Artifact, error)
}

// Service resolves the league artifact and runs the predictor
type Service struct {
	artifacts ArtifactSource
	predictor *Predictor
}

// NewService creates a prediction service
func NewService(artifacts ArtifactSource, predictor *Predictor) *Service {
	return &Service{artifacts: artifacts, predictor: predictor}
}

// Predict resolves the requested league's artifact and predicts the fixture
func (s *Service) Predict(ctx context.Context, req Request) (*models.Prediction, error) {
	a, err := s.artifacts.Get(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}
	return s.predictor.Predict(ctx, a, req)
}
