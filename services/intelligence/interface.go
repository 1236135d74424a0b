// File: service/ai/interface.go
package ai

import (
	"context"

	"smartsched/models"
	"smartsched/utils"

	"go.uber.org/zap"
)

// Extractor turns a raw utterance into a structured signal. Implementations
// must be safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, text string) (models.UtteranceSignal, error)
}

// Service fronts the configured extractor with a keyword fallback, so an
// upstream model outage degrades extraction quality instead of failing the
// turn.
type Service struct {
	primary  Extractor
	fallback *KeywordExtractor
}

func NewService(primary Extractor) *Service {
	return &Service{primary: primary, fallback: NewKeywordExtractor()}
}

func (s *Service) Extract(ctx context.Context, text string) (models.UtteranceSignal, error) {
	if s.primary != nil {
		sig, err := s.primary.Extract(ctx, text)
		if err == nil {
			return sig, nil
		}
		utils.GetLogger().Warn("primary extractor failed, using keyword fallback", zap.Error(err))
	}
	return s.fallback.Extract(ctx, text)
}
