package main

import (
	"fmt"

	"github.com/pkg/errors"
)

// javaHeap is passed to every jar tool except trimmomatic, matching
// the reference invocations.
const javaHeap = "-Xmx2048m"

// command is one external invocation, ready for the Runner. stdout
// names a redirect target for tools whose contract is "write to
// standard output"; empty means the output goes to the log.
type command struct {
	tool   string
	args   []string
	stdout string
}

func (c command) run(r *Runner) error {
	return r.Run(c.tool, c.args, c.stdout)
}

// requireFields rejects a command build when a needed field is empty, so a
// miswired path set fails before any process is spawned.
func requireFields(tool string, fields map[string]string) error {
	for name, val := range fields {
		if val == "" {
			return errors.Errorf("%s: required field %s is empty", tool, name)
		}
	}
	return nil
}

func (c *Config) trimmomaticCmd(p *PathSet) (command, error) {
	if err := requireFields("trimmomatic", map[string]string{
		"java":    c.Tools.Java,
		"jar":     c.Tools.Trimmomatic,
		"fwd":     p.FwdRead,
		"rev":     p.RevRead,
		"adapter": p.Adapter,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool: c.Tools.Java,
		args: []string{
			"-jar", c.Tools.Trimmomatic, "PE", "-phred33",
			p.FwdRead, p.RevRead,
			p.FwdTrimmed, p.FwdUnpaired,
			p.RevTrimmed, p.RevUnpaired,
			fmt.Sprintf("ILLUMINACLIP:%s:%d:%d:%d", p.Adapter,
				c.Trim.ClipSeedMismatches,
				c.Trim.ClipPalindromeThreshold,
				c.Trim.ClipSimpleThreshold),
			fmt.Sprintf("LEADING:%d", c.Trim.LeadScore),
			fmt.Sprintf("TRAILING:%d", c.Trim.TrailScore),
			fmt.Sprintf("SLIDINGWINDOW:%d:%d",
				c.Trim.WindowSize, c.Trim.WindowQuality),
			fmt.Sprintf("MINLEN:%d", c.Trim.MinLen),
		},
	}, nil
}

func (c *Config) bwaIndexCmd(ref string) (command, error) {
	if err := requireFields("bwa index", map[string]string{
		"bwa": c.Tools.BWA, "ref": ref,
	}); err != nil {
		return command{}, err
	}
	return command{tool: c.Tools.BWA, args: []string{"index", ref}}, nil
}

func (c *Config) bwaMemCmd(p *PathSet) (command, error) {
	if err := requireFields("bwa mem", map[string]string{
		"bwa": c.Tools.BWA, "ref": p.Ref,
		"fwd": p.FwdTrimmed, "rev": p.RevTrimmed,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.BWA,
		args:   []string{"mem", p.Ref, p.FwdTrimmed, p.RevTrimmed},
		stdout: p.SAM,
	}, nil
}

func (c *Config) samtoolsSortCmd(p *PathSet) (command, error) {
	if err := requireFields("samtools sort", map[string]string{
		"samtools": c.Tools.Samtools, "sam": p.SAM,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.Samtools,
		args:   []string{"sort", p.SAM},
		stdout: p.BAM,
	}, nil
}

func (c *Config) samtoolsIndexCmd(bam string) (command, error) {
	if err := requireFields("samtools index", map[string]string{
		"samtools": c.Tools.Samtools, "bam": bam,
	}); err != nil {
		return command{}, err
	}
	return command{tool: c.Tools.Samtools, args: []string{"index", bam}}, nil
}

func (c *Config) samtoolsFaidxCmd(ref string) (command, error) {
	if err := requireFields("samtools faidx", map[string]string{
		"samtools": c.Tools.Samtools, "ref": ref,
	}); err != nil {
		return command{}, err
	}
	return command{tool: c.Tools.Samtools, args: []string{"faidx", ref}}, nil
}

func (c *Config) samtoolsFlagstatCmd(bam, out string) (command, error) {
	if err := requireFields("samtools flagstat", map[string]string{
		"samtools": c.Tools.Samtools, "bam": bam,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.Samtools,
		args:   []string{"flagstat", bam},
		stdout: out,
	}, nil
}

func (c *Config) gatkCmd(subcommand string, kv ...string) (command, error) {
	if err := requireFields("gatk "+subcommand, map[string]string{
		"java": c.Tools.Java, "jar": c.Tools.GATK,
	}); err != nil {
		return command{}, err
	}
	args := []string{javaHeap, "-jar", c.Tools.GATK, subcommand}
	return command{tool: c.Tools.Java, args: append(args, kv...)}, nil
}

func (c *Config) mpileupCmd(p *PathSet) (command, error) {
	if err := requireFields("bcftools mpileup", map[string]string{
		"bcftools": c.Tools.Bcftools, "ref": p.Ref, "bam": p.BAM,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool: c.Tools.Bcftools,
		args: []string{"mpileup", "-f", p.Ref, "-O", "b",
			"-o", p.Pileup, p.BAM},
	}, nil
}

func (c *Config) callCmd(p *PathSet) (command, error) {
	if err := requireFields("bcftools call", map[string]string{
		"bcftools": c.Tools.Bcftools, "pileup": p.Pileup,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool: c.Tools.Bcftools,
		args: []string{"call", "-mv", "-O", "v", "-o", p.VCF, p.Pileup},
	}, nil
}

// filterExpr is the boolean predicate handed to bcftools filter,
// keeping calls with sufficient quality, depth and alternate allele
// fraction.
func (c *Config) filterExpr() string {
	return fmt.Sprintf(
		"QUAL>=%d && FORMAT/DP>=%d && (FORMAT/AD[*:1]/ FORMAT/DP)>=%g && FORMAT/AD[*:1] != '*'",
		c.Filter.MinQual, c.Filter.MinDepth, c.Filter.MinAlleleFraction)
}

func (c *Config) bcftoolsFilterCmd(p *PathSet) (command, error) {
	if err := requireFields("bcftools filter", map[string]string{
		"bcftools": c.Tools.Bcftools, "vcf": p.VCF,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.Bcftools,
		args:   []string{"filter", "-i", c.filterExpr(), "-Oz", p.VCF},
		stdout: p.FilteredVCF,
	}, nil
}

func (c *Config) tabixCmd(vcfgz string) (command, error) {
	if err := requireFields("tabix", map[string]string{
		"tabix": c.Tools.Tabix, "vcf": vcfgz,
	}); err != nil {
		return command{}, err
	}
	return command{tool: c.Tools.Tabix, args: []string{vcfgz}}, nil
}

func (c *Config) consensusCmd(p *PathSet) (command, error) {
	if err := requireFields("bcftools consensus", map[string]string{
		"bcftools": c.Tools.Bcftools, "ref": p.Ref, "vcf": p.FilteredVCF,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.Bcftools,
		args:   []string{"consensus", "-f", p.Ref, p.FilteredVCF},
		stdout: p.Consensus,
	}, nil
}

func (c *Config) bcftoolsStatsCmd(p *PathSet) (command, error) {
	if err := requireFields("bcftools stats", map[string]string{
		"bcftools": c.Tools.Bcftools, "vcf": p.FilteredVCF,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool:   c.Tools.Bcftools,
		args:   []string{"stats", p.FilteredVCF},
		stdout: p.VCFStats,
	}, nil
}

func (c *Config) picardWgsCmd(p *PathSet) (command, error) {
	if err := requireFields("picard CollectWgsMetrics", map[string]string{
		"java": c.Tools.Java, "jar": c.Tools.Picard,
		"bam": p.BAM, "ref": p.Ref,
	}); err != nil {
		return command{}, err
	}
	fast := "false"
	if c.Metrics.FastAlgorithm {
		fast = "true"
	}
	return command{
		tool: c.Tools.Java,
		args: []string{javaHeap, "-jar", c.Tools.Picard, "CollectWgsMetrics",
			fmt.Sprintf("COVERAGE_CAP=%d", c.Metrics.CoverageCap),
			fmt.Sprintf("USE_FAST_ALGORITHM=%s", fast),
			fmt.Sprintf("SAMPLE_SIZE=%d", c.Metrics.SampleSize),
			fmt.Sprintf("I=%s", p.BAM),
			fmt.Sprintf("R=%s", p.Ref),
			fmt.Sprintf("O=%s", p.WgsMetrics),
		},
	}, nil
}

func (c *Config) picardSizeCmd(p *PathSet) (command, error) {
	if err := requireFields("picard CollectInsertSizeMetrics", map[string]string{
		"java": c.Tools.Java, "jar": c.Tools.Picard, "bam": p.BAM,
	}); err != nil {
		return command{}, err
	}
	return command{
		tool: c.Tools.Java,
		args: []string{javaHeap, "-jar", c.Tools.Picard,
			"CollectInsertSizeMetrics",
			fmt.Sprintf("I=%s", p.BAM),
			fmt.Sprintf("H=%s", p.SizeHistogram),
			fmt.Sprintf("O=%s", p.SizeMetrics),
		},
	}, nil
}
