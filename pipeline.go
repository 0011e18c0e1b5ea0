package main

import (
	"log"
	"sync"

	"github.com/pkg/errors"
)

// VariantCaller is the pluggable variant-calling strategy. Call must
// leave the raw calls at p.VCF; the shared filter/consensus path runs
// afterwards regardless of strategy.
type VariantCaller interface {
	Name() string
	Call(pl *Pipeline, p *PathSet) error
	// FinalBAM names the alignment the flag summary should describe,
	// which differs when the strategy rewrites read groups.
	FinalBAM(p *PathSet) string
}

func newVariantCaller(name string) (VariantCaller, error) {
	switch name {
	case "gatk":
		return gatkCaller{}, nil
	case "bcftools":
		return bcftoolsCaller{}, nil
	}
	return nil, errors.Errorf("unknown variant caller %q, want gatk or bcftools", name)
}

// refBuild is the build-once-on-demand guard for artifacts shared
// between samples (bwa index, faidx index, sequence dictionary). The
// first sample to need an artifact builds it while later ones wait,
// then inherit the builder's error.
type refBuild struct {
	once sync.Once
	err  error
}

// Pipeline drives one sample at a time through the fixed stage order
// trim -> align -> variant-call -> metrics. Safe for concurrent use by
// multiple samples: path sets never overlap and shared reference work
// is serialized through oncePerRef.
type Pipeline struct {
	cfg    *Config
	runner *Runner
	caller VariantCaller

	mu   sync.Mutex
	refs map[string]*refBuild
}

func newPipeline(cfg *Config, runner *Runner, caller VariantCaller) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		runner: runner,
		caller: caller,
		refs:   make(map[string]*refBuild),
	}
}

func (pl *Pipeline) oncePerRef(key string, build func() error) error {
	pl.mu.Lock()
	rb, ok := pl.refs[key]
	if !ok {
		rb = &refBuild{}
		pl.refs[key] = rb
	}
	pl.mu.Unlock()
	rb.once.Do(func() { rb.err = build() })
	return rb.err
}

// RunSample runs the whole pipeline for one sample and returns its
// extracted stats. Any stage failure aborts the remaining stages for
// this sample only.
func (pl *Pipeline) RunSample(rec SampleRecord) (StatMap, error) {
	p, err := planPaths(rec, pl.cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	for _, stage := range []struct {
		name string
		run  func(*PathSet) error
	}{
		{"trim", pl.trim},
		{"align", pl.align},
		{"variant-call", pl.variantCall},
		{"metrics", pl.metrics},
	} {
		log.Printf("start %s[%s]", stage.name, rec.Sample)
		if err := stage.run(p); err != nil {
			return nil, errors.Wrapf(err, "sample %s: %s", rec.Sample, stage.name)
		}
		log.Printf("end %s[%s]", stage.name, rec.Sample)
	}
	stats, err := collectStats(p)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %s: extract", rec.Sample)
	}
	return stats, nil
}

func (pl *Pipeline) trim(p *PathSet) error {
	cmd, err := pl.cfg.trimmomaticCmd(p)
	if err != nil {
		return err
	}
	return cmd.run(pl.runner)
}

func (pl *Pipeline) align(p *PathSet) error {
	if err := pl.oncePerRef("index:"+p.Ref, func() error {
		cmd, err := pl.cfg.bwaIndexCmd(p.Ref)
		if err != nil {
			return err
		}
		if err := cmd.run(pl.runner); err != nil {
			return err
		}
		cmd, err = pl.cfg.samtoolsFaidxCmd(p.Ref)
		if err != nil {
			return err
		}
		return cmd.run(pl.runner)
	}); err != nil {
		return err
	}
	cmd, err := pl.cfg.bwaMemCmd(p)
	if err != nil {
		return err
	}
	return cmd.run(pl.runner)
}

func (pl *Pipeline) runAll(builds ...func() (command, error)) error {
	for _, build := range builds {
		cmd, err := build()
		if err != nil {
			return err
		}
		if err := cmd.run(pl.runner); err != nil {
			return err
		}
	}
	return nil
}

func (pl *Pipeline) variantCall(p *PathSet) error {
	// sort and index the alignment before any caller sees it
	if err := pl.runAll(
		func() (command, error) { return pl.cfg.samtoolsSortCmd(p) },
		func() (command, error) { return pl.cfg.samtoolsIndexCmd(p.BAM) },
	); err != nil {
		return err
	}

	if err := pl.caller.Call(pl, p); err != nil {
		return err
	}

	// filter, compress+index, consensus: common to both strategies
	return pl.runAll(
		func() (command, error) { return pl.cfg.bcftoolsFilterCmd(p) },
		func() (command, error) { return pl.cfg.tabixCmd(p.FilteredVCF) },
		func() (command, error) { return pl.cfg.consensusCmd(p) },
	)
}

func (pl *Pipeline) metrics(p *PathSet) error {
	return pl.runAll(
		func() (command, error) { return pl.cfg.bcftoolsStatsCmd(p) },
		func() (command, error) { return pl.cfg.picardWgsCmd(p) },
		func() (command, error) { return pl.cfg.picardSizeCmd(p) },
		func() (command, error) {
			return pl.cfg.samtoolsFlagstatCmd(pl.caller.FinalBAM(p), p.Flagstat)
		},
	)
}

// collectStats scrapes the three stage reports and merges them, later
// sources winning on name collisions (variant stats, then coverage
// metrics, then fragment-size metrics). Re-running it over a completed
// sample's files is deterministic and side-effect free.
func collectStats(p *PathSet) (StatMap, error) {
	vcfStats, err := extractVCFStats(p.VCFStats)
	if err != nil {
		return nil, err
	}
	wgs, err := extractMetricsReport(p.WgsMetrics)
	if err != nil {
		return nil, err
	}
	size, err := extractMetricsReport(p.SizeMetrics)
	if err != nil {
		return nil, err
	}
	stats := make(StatMap)
	stats.Update(vcfStats)
	stats.Update(wgs)
	stats.Update(size)
	return stats, nil
}

// gatkCaller is the toolkit-based strategy: sequence dictionary,
// read-group repair, then HaplotypeCaller.
type gatkCaller struct{}

func (gatkCaller) Name() string { return "gatk" }

func (gatkCaller) FinalBAM(p *PathSet) string { return p.ReadGroupBAM }

// readGroupArgs is the fixed read-group metadata HaplotypeCaller
// requires on the alignment.
var readGroupArgs = []string{
	"-RGID", "4",
	"-RGLB", "lib1",
	"-RGPL", "illumina",
	"-RGPU", "unit1",
	"-RGSM", "20",
}

func (g gatkCaller) Call(pl *Pipeline, p *PathSet) error {
	if err := pl.oncePerRef("dict:"+p.Ref, func() error {
		cmd, err := pl.cfg.gatkCmd("CreateSequenceDictionary",
			"-R", p.Ref, "-O", p.RefDict)
		if err != nil {
			return err
		}
		return cmd.run(pl.runner)
	}); err != nil {
		return err
	}

	return pl.runAll(
		func() (command, error) {
			args := append([]string{"-I", p.BAM, "-O", p.ReadGroupBAM},
				readGroupArgs...)
			return pl.cfg.gatkCmd("AddOrReplaceReadGroups", args...)
		},
		func() (command, error) { return pl.cfg.samtoolsIndexCmd(p.ReadGroupBAM) },
		func() (command, error) {
			return pl.cfg.gatkCmd("HaplotypeCaller",
				"-R", p.Ref, "-I", p.ReadGroupBAM, "-O", p.VCF)
		},
	)
}

// bcftoolsCaller is the simple strategy: per-base pileup, then
// bcftools call.
type bcftoolsCaller struct{}

func (bcftoolsCaller) Name() string { return "bcftools" }

func (bcftoolsCaller) FinalBAM(p *PathSet) string { return p.BAM }

func (b bcftoolsCaller) Call(pl *Pipeline, p *PathSet) error {
	return pl.runAll(
		func() (command, error) { return pl.cfg.mpileupCmd(p) },
		func() (command, error) { return pl.cfg.callCmd(p) },
	)
}
