package matching

import (
	"time"

	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/filtering"
	"github.com/spigell/school-matcher/internal/logger"
	"github.com/spigell/school-matcher/internal/metrics"
	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// Engine runs the must-have pipeline and annotates the survivors. It holds no
// per-request state and may be shared between goroutines.
type Engine struct {
	pipeline  *filtering.Pipeline
	annotator *Annotator
	recorder  *metrics.Recorder
	logger    *zap.Logger
}

// NewEngine builds an engine over the default filters. recorder may be nil.
func NewEngine(log *zap.Logger, recorder *metrics.Recorder) *Engine {
	log = logger.WithFields(log)

	var stages filtering.StageRecorder
	if recorder != nil {
		stages = recorder
	}

	return &Engine{
		pipeline:  filtering.NewPipeline(log, stages),
		annotator: NewAnnotator(log),
		recorder:  recorder,
		logger:    log,
	}
}

// Evaluate filters pool by the must-have preferences of prefs and annotates
// each survivor with its nice-to-have matches and misses. It always returns a
// result, even for an empty pool.
func (e *Engine) Evaluate(pool []*schools.School, prefs *preferences.Preferences) *FilteringResult {
	started := time.Now()

	out := e.pipeline.Run(pool, prefs)
	result := Aggregate(out, prefs, e.annotator)

	e.recorder.ObserveEvaluation(len(result.SchoolMatches), time.Since(started))
	e.logger.Info("evaluation finished",
		zap.Int("must_have_count", result.MustHaveCount),
		zap.Int("total", result.TotalPossibleSchools),
		zap.Int("survivors", len(result.SchoolMatches)),
		zap.Int("strong_fits", len(result.StrongFits())),
	)
	return result
}

// CountMustHaveMatches returns how many schools of pool pass every must-have
// preference. Without must-haves this is the size of the pool.
func (e *Engine) CountMustHaveMatches(pool []*schools.School, prefs *preferences.Preferences) int {
	if prefs.MustHaveCount() == 0 {
		return len(pool)
	}
	return len(e.pipeline.Run(pool, prefs).Survivors)
}
