package filtering

import (
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/school-matcher/internal/preferences"
	"github.com/spigell/school-matcher/internal/schools"
)

type stageCall struct {
	name    string
	applied bool
	dropped int
}

type fakeRecorder struct {
	calls []stageCall
}

func (r *fakeRecorder) ObserveStage(filter string, applied bool, dropped int) {
	r.calls = append(r.calls, stageCall{filter, applied, dropped})
}

func TestPipelineWithoutMustHavesKeepsPool(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	prefs := mustPrefs(t, allCriteria())

	out := NewPipeline(nil, nil).Run(pool, prefs)
	if out.MustHaveCount != 0 {
		t.Fatalf("expected no must-haves, got %d", out.MustHaveCount)
	}
	if out.Total != len(pool) {
		t.Fatalf("expected total %d, got %d", len(pool), out.Total)
	}
	equalNames(t, out.Survivors, names(pool)...)

	if len(out.Summary) != 5 {
		t.Fatalf("expected all five stages in summary, got %v", out.Summary)
	}
	for name, dropped := range out.Summary {
		if dropped != 0 {
			t.Fatalf("stage %s dropped %d without must-haves", name, dropped)
		}
	}
}

func TestPipelineRunsOnlyMustHaves(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	prefs := mustPrefs(t, allCriteria())
	prefs.SetMustHavesFromList([]string{"max_budget", "preferred_regions"})

	out := NewPipeline(nil, nil).Run(pool, prefs)

	// Stanford and Pomona exceed the budget and Unknown College has no
	// tuition; Texas A&M is outside the West.
	equalNames(t, out.Survivors, "UC Davis", "Oregon State University")

	if out.MustHaveCount != 2 {
		t.Fatalf("expected 2 must-haves, got %d", out.MustHaveCount)
	}
	if out.Summary["financial"] != 3 || out.Summary["geographic"] != 1 {
		t.Fatalf("unexpected summary: %v", out.Summary)
	}
	if out.Summary["academic"] != 0 || out.Summary["athletic"] != 0 || out.Summary["demographic"] != 0 {
		t.Fatalf("nice-to-have stages must not remove schools: %v", out.Summary)
	}
}

func TestPipelineOrderInvariance(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	prefs := mustPrefs(t, allCriteria())
	prefs.SetMustHavesFromList([]string{
		"min_academic_rating", "admit_rate_floor", "sat", "max_budget",
		"preferred_regions", "preferred_school_size", "min_athletics_rating",
	})

	baseline := sortedNames(NewPipeline(nil, nil).Run(pool, prefs).Survivors)

	orders := [][]Filter{
		{NewDemographic(), NewAthletic(), NewGeographic(), NewAcademic(), NewFinancial()},
		{NewGeographic(), NewFinancial(), NewDemographic(), NewAcademic(), NewAthletic()},
		{NewAthletic(), NewDemographic(), NewAcademic(), NewFinancial(), NewGeographic()},
	}
	for _, order := range orders {
		got := sortedNames(NewPipeline(nil, nil, order...).Run(pool, prefs).Survivors)
		if len(got) != len(baseline) {
			t.Fatalf("order changed survivors: %v vs %v", got, baseline)
		}
		for i := range got {
			if got[i] != baseline[i] {
				t.Fatalf("order changed survivors: %v vs %v", got, baseline)
			}
		}
	}

	// UC Davis is the only large, in-budget western school with the grades.
	if len(baseline) != 1 || baseline[0] != "UC Davis" {
		t.Fatalf("unexpected survivors: %v", baseline)
	}
}

func TestPipelineIsDeterministic(t *testing.T) {
	t.Parallel()

	pool := samplePool()
	prefs := mustPrefs(t, allCriteria())
	prefs.SetMustHavesFromList([]string{"min_academic_rating", "preferred_regions"})

	p := NewPipeline(nil, nil)
	first := p.Run(pool, prefs)
	second := p.Run(pool, prefs)

	equalNames(t, second.Survivors, names(first.Survivors)...)
	for k, v := range first.Summary {
		if second.Summary[k] != v {
			t.Fatalf("summary differs for %s: %d vs %d", k, v, second.Summary[k])
		}
	}
	if len(pool) != 6 {
		t.Fatalf("pipeline must not modify the input pool")
	}
}

func TestPipelineEmptyPool(t *testing.T) {
	t.Parallel()

	prefs := mustPrefs(t, preferences.Criteria{MaxBudget: floatPtr(1)})
	prefs.MakeMustHave("max_budget")

	out := NewPipeline(nil, nil).Run(nil, prefs)
	if out.Survivors == nil || len(out.Survivors) != 0 {
		t.Fatalf("expected empty non-nil survivors, got %v", out.Survivors)
	}
	if out.Total != 0 {
		t.Fatalf("expected total 0, got %d", out.Total)
	}
}

func TestPipelineLogsAndRecordsStages(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	recorder := &fakeRecorder{}

	prefs := mustPrefs(t, allCriteria())
	prefs.MakeMustHave("min_athletics_rating")

	out := NewPipeline(zap.New(core), recorder).Run(samplePool(), prefs)

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 1 {
		t.Fatalf("expected 1 filter step entry, got %d", len(steps))
	}
	ctx := steps[0].ContextMap()
	if ctx["name"] != "athletic" || ctx["applied"] != true {
		t.Fatalf("unexpected step fields: %v", ctx)
	}
	// Pomona (C) and Unknown College (no grade) fall below B.
	if ctx["dropped"] != int64(2) || ctx["initial"] != int64(6) || ctx["left"] != int64(4) {
		t.Fatalf("unexpected counts: %v", ctx)
	}

	if skipped := observed.FilterMessage("filter skipped").Len(); skipped != 4 {
		t.Fatalf("expected 4 skipped stages, got %d", skipped)
	}

	if len(recorder.calls) != 1 || recorder.calls[0] != (stageCall{"athletic", true, 2}) {
		t.Fatalf("unexpected recorder calls: %+v", recorder.calls)
	}

	if len(out.Stages) != 5 || !out.Stages[3].Ran || out.Stages[0].Ran {
		t.Fatalf("unexpected stage reports: %+v", out.Stages)
	}
}

func TestPipelinePlayingTimeMustHaveIsInert(t *testing.T) {
	t.Parallel()

	prefs := mustPrefs(t, preferences.Criteria{PlayingTimePriority: []string{"High"}})
	if !prefs.MakeMustHave("playing_time_priority") {
		t.Fatalf("expected playing_time_priority to be markable")
	}

	out := NewPipeline(nil, nil).Run(samplePool(), prefs)
	if len(out.Survivors) != 6 {
		t.Fatalf("playing_time_priority must not filter, got %d survivors", len(out.Survivors))
	}
	if out.Stages[3].Applied {
		t.Fatalf("athletic stage must report not applied")
	}
}

func sortedNames(list []*schools.School) []string {
	out := names(list)
	sort.Strings(out)
	return out
}
