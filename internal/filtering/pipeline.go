package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

// StageRecorder receives one observation per executed stage.
type StageRecorder interface {
	ObserveStage(filter string, applied bool, dropped int)
}

// Pipeline runs filters over must-have preferences only.
type Pipeline struct {
	filters  []Filter
	logger   *zap.Logger
	recorder StageRecorder
}

// StageReport is the per-stage trace of one run.
type StageReport struct {
	Name    string
	Ran     bool
	Applied bool
	Reason  string
	Step    Step
}

// Outcome is the pre-annotation result of a pipeline run.
type Outcome struct {
	Survivors     []*schools.School
	MustHaveCount int
	Total         int
	// Summary maps every stage name to the number of schools it removed.
	Summary map[string]int
	Stages  []StageReport
}

// NewPipeline builds a pipeline over filters, or over Defaults when none are
// given. logger and recorder may be nil.
func NewPipeline(logger *zap.Logger, recorder StageRecorder, filters ...Filter) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(filters) == 0 {
		filters = Defaults()
	}
	return &Pipeline{filters: filters, logger: logger, recorder: recorder}
}

func (p *Pipeline) Filters() []Filter {
	return append([]Filter(nil), p.filters...)
}

// Run applies, in order, every filter with at least one must-have field, each
// stage consuming the survivors of the previous one. Filters see only the
// must-have criteria. pool is not modified.
func (p *Pipeline) Run(pool []*schools.School, prefs *preferences.Preferences) Outcome {
	out := Outcome{
		MustHaveCount: prefs.MustHaveCount(),
		Total:         len(pool),
		Summary:       make(map[string]int, len(p.filters)),
		Stages:        make([]StageReport, 0, len(p.filters)),
	}

	view := prefs.MustHaveView()
	current := append([]*schools.School(nil), pool...)

	for _, step := range p.filters {
		out.Summary[step.Name()] = 0

		if !hasMustHave(step, view) {
			p.logger.Debug("filter skipped",
				zap.String("name", step.Name()),
				zap.String("reason", "no must-have preferences"),
			)
			out.Stages = append(out.Stages, StageReport{
				Name:   step.Name(),
				Reason: notAppliedReason(step.Name()),
				Step:   Step{Initial: len(current), Left: len(current)},
			})
			continue
		}

		res := step.Apply(current, view)
		info := res.Step()

		p.logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Bool("applied", res.FilterApplied),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
		if p.recorder != nil {
			p.recorder.ObserveStage(step.Name(), res.FilterApplied, res.SchoolsFilteredOut)
		}

		out.Summary[step.Name()] = res.SchoolsFilteredOut
		out.Stages = append(out.Stages, StageReport{
			Name:    step.Name(),
			Ran:     true,
			Applied: res.FilterApplied,
			Reason:  res.Reason,
			Step:    info,
		})
		current = res.Schools
	}

	if current == nil {
		current = []*schools.School{}
	}
	out.Survivors = current
	return out
}

func hasMustHave(f Filter, prefs *preferences.Preferences) bool {
	for _, field := range f.Fields() {
		if prefs.IsMustHave(field) {
			return true
		}
	}
	return false
}
