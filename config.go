package main

import (
	"github.com/spf13/viper"
)

// ToolPaths locates the external executables the pipeline drives.
// Jar tools (trimmomatic, gatk, picard) are launched through Java.
type ToolPaths struct {
	Java        string
	Trimmomatic string
	BWA         string
	Samtools    string
	Bcftools    string
	GATK        string
	Picard      string
	Tabix       string
}

// TrimConfig holds the trimmomatic thresholds.
type TrimConfig struct {
	LeadScore     int
	TrailScore    int
	MinLen        int
	WindowSize    int
	WindowQuality int
	// ILLUMINACLIP seed-mismatches:palindrome-threshold:simple-threshold
	ClipSeedMismatches      int
	ClipPalindromeThreshold int
	ClipSimpleThreshold     int
}

// FilterConfig holds the variant filter thresholds.
type FilterConfig struct {
	MinQual           int
	MinDepth          int
	MinAlleleFraction float64
}

// MetricsConfig holds the picard CollectWgsMetrics options.
type MetricsConfig struct {
	CoverageCap   int
	FastAlgorithm bool
	SampleSize    int
}

// Config is built once at startup and passed by reference into the
// planner, runner and pipeline. Stage logic never reads viper directly.
type Config struct {
	BaseDir string
	Tools   ToolPaths
	Trim    TrimConfig
	Filter  FilterConfig
	Metrics MetricsConfig
}

// loadConfig reads fastseq.yaml from the working directory or
// ~/.config/ when present; every knob has a default matching the
// reference container layout, so no config file is required.
// A non-empty cfgFile overrides the search path.
func loadConfig(baseDir, cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("fastseq")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/")

	v.SetDefault("tools.java", "java")
	v.SetDefault("tools.trimmomatic", "/tools/trimmomatic/trimmomatic-0.38.jar")
	v.SetDefault("tools.bwa", "/tools/bwa/bwa")
	v.SetDefault("tools.samtools", "/tools/samtools/bin/samtools")
	v.SetDefault("tools.bcftools", "/tools/samtools/bin/bcftools")
	v.SetDefault("tools.gatk", "/gatk/gatk.jar")
	v.SetDefault("tools.picard", "/tools/picard/picard.jar")
	v.SetDefault("tools.tabix", "/usr/bin/tabix")

	v.SetDefault("trim.leadScore", 3)
	v.SetDefault("trim.trailScore", 3)
	v.SetDefault("trim.minLen", 50)
	v.SetDefault("trim.windowSize", 4)
	v.SetDefault("trim.windowQuality", 20)
	v.SetDefault("trim.clipSeedMismatches", 4)
	v.SetDefault("trim.clipPalindromeThreshold", 20)
	v.SetDefault("trim.clipSimpleThreshold", 10)

	v.SetDefault("filter.minQual", 20)
	v.SetDefault("filter.minDepth", 10)
	v.SetDefault("filter.minAlleleFraction", 0.7)

	v.SetDefault("metrics.coverageCap", 100000)
	v.SetDefault("metrics.fastAlgorithm", true)
	v.SetDefault("metrics.sampleSize", 5000)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if err := v.ReadInConfig(); err != nil {
		// defaults only when no config file is found
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		BaseDir: baseDir,
		Tools: ToolPaths{
			Java:        v.GetString("tools.java"),
			Trimmomatic: v.GetString("tools.trimmomatic"),
			BWA:         v.GetString("tools.bwa"),
			Samtools:    v.GetString("tools.samtools"),
			Bcftools:    v.GetString("tools.bcftools"),
			GATK:        v.GetString("tools.gatk"),
			Picard:      v.GetString("tools.picard"),
			Tabix:       v.GetString("tools.tabix"),
		},
		Trim: TrimConfig{
			LeadScore:               v.GetInt("trim.leadScore"),
			TrailScore:              v.GetInt("trim.trailScore"),
			MinLen:                  v.GetInt("trim.minLen"),
			WindowSize:              v.GetInt("trim.windowSize"),
			WindowQuality:           v.GetInt("trim.windowQuality"),
			ClipSeedMismatches:      v.GetInt("trim.clipSeedMismatches"),
			ClipPalindromeThreshold: v.GetInt("trim.clipPalindromeThreshold"),
			ClipSimpleThreshold:     v.GetInt("trim.clipSimpleThreshold"),
		},
		Filter: FilterConfig{
			MinQual:           v.GetInt("filter.minQual"),
			MinDepth:          v.GetInt("filter.minDepth"),
			MinAlleleFraction: v.GetFloat64("filter.minAlleleFraction"),
		},
		Metrics: MetricsConfig{
			CoverageCap:   v.GetInt("metrics.coverageCap"),
			FastAlgorithm: v.GetBool("metrics.fastAlgorithm"),
			SampleSize:    v.GetInt("metrics.sampleSize"),
		},
	}, nil
}
