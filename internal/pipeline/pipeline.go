package pipeline

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Stage is a single analysis transformation. Apply returns the dataset to
// continue with: on success a new dataset carrying its derived columns, on
// failure its best-effort fallback (at minimum the unmodified input). Stages
// never mutate their input.
type Stage interface {
	Name() string
	Apply(ds Dataset) (Dataset, error)
}

// Pipeline runs analysis stages in order and owns the degrade policy: a
// failed stage is logged at ERROR and the run continues with whatever
// dataset the stage handed back. A partial report beats failing the whole
// batch.
type Pipeline struct {
	stages []Stage
	log    zerolog.Logger
}

// New creates a pipeline executing the given stages sequentially.
func New(log zerolog.Logger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, log: log}
}

// Run executes all stages over the validated dataset.
func (p *Pipeline) Run(ds Dataset) Dataset {
	for _, stage := range p.stages {
		next, err := stage.Apply(ds)
		if err != nil {
			p.log.Error().
				Err(err).
				Str("stage", stage.Name()).
				Msg("Stage failed, continuing with degraded result")
		}
		ds = next
	}
	return ds
}

// NewAnalysisPipeline creates the standard two-stage pipeline: anomaly
// detection followed by ITC rule evaluation. The schema validator runs
// separately because its failure is the one that must halt processing.
func NewAnalysisPipeline(log zerolog.Logger, trees int, contamination float64, seed int64, highValue decimal.Decimal) *Pipeline {
	return New(log,
		&AnomalyStage{Trees: trees, Contamination: contamination, Seed: seed},
		&RuleStage{HighValueThreshold: highValue},
	)
}
