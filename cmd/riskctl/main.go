// riskctl is the command-line client for one-shot risk assessments.
// It runs the full two-stage engine in-process with an in-memory cache,
// so no server or external services are required.
package main

import (
	"github.com/scamshield/riskengine/internal/application/assessment"
	"github.com/scamshield/riskengine/internal/config"
	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	"github.com/scamshield/riskengine/internal/intelligence/dynaprobe"
	"github.com/scamshield/riskengine/internal/intelligence/staticmodel"
	"github.com/scamshield/riskengine/internal/interfaces/cli"
)

func main() {
	cli.Execute(buildEngine)
}

func buildEngine(cfg *config.Config, logger logging.Logger) (cli.Assessor, error) {
	scorer, err := staticmodel.NewScorerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := dynaprobe.NewRegistry()
	if cfg.Probe.Enabled {
		registry.Register(artifact.TypeLink, dynaprobe.NewFallbackProber(
			dynaprobe.NewBrowserProber(logger), dynaprobe.NewNetProber(logger), logger))
	}
	analyzer := dynaprobe.NewAnalyzer(registry, cfg.Probe, cfg.Rules, cfg.Model, logger)

	return assessment.NewEngine(assessment.Deps{
		Scorer:   scorer,
		Analyzer: analyzer,
		Logger:   logger,
	}, cfg.Cache, cfg.Probe)
}
