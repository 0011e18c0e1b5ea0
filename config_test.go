package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("/data", "")
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.BaseDir)
	assert.Equal(t, "/tools/bwa/bwa", cfg.Tools.BWA)
	assert.Equal(t, "/gatk/gatk.jar", cfg.Tools.GATK)
	assert.Equal(t, 3, cfg.Trim.LeadScore)
	assert.Equal(t, 50, cfg.Trim.MinLen)
	assert.Equal(t, 20, cfg.Filter.MinQual)
	assert.Equal(t, 0.7, cfg.Filter.MinAlleleFraction)
	assert.Equal(t, 100000, cfg.Metrics.CoverageCap)
	assert.True(t, cfg.Metrics.FastAlgorithm)
	assert.Equal(t, 5000, cfg.Metrics.SampleSize)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	yaml := "tools:\n" +
		"  bwa: /opt/bwa\n" +
		"filter:\n" +
		"  minDepth: 25\n"
	path := writeFile(t, t.TempDir(), "fastseq.yaml", yaml)

	cfg, err := loadConfig("/data", path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bwa", cfg.Tools.BWA)
	assert.Equal(t, 25, cfg.Filter.MinDepth)
	// untouched keys keep defaults
	assert.Equal(t, "/tools/samtools/bin/samtools", cfg.Tools.Samtools)
}

func TestLoadConfigBadFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fastseq.yaml", "tools: [not a map\n")
	_, err := loadConfig("/data", path)
	assert.Error(t, err)
}
