package main

import (
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	simple_util "github.com/liserjrqlxue/simple-util"
)

var (
	baseDir = flag.String(
		"base",
		"",
		"base directory; sheet paths are relative to it and results are placed in its Output subdirectory",
	)
	input = flag.String(
		"input",
		"",
		"sample sheet, comma-delimited (.tsv for tab-delimited)",
	)
	cfgFile = flag.String(
		"cfg",
		"",
		"config file (default fastseq.yaml in . or ~/.config/)",
	)
	callerName = flag.String(
		"caller",
		"gatk",
		"variant call strategy:[gatk|bcftools]",
	)
	threshold = flag.Int(
		"threshold",
		1,
		"max concurrent samples",
	)
	strict = flag.Bool(
		"strict",
		false,
		"stop launching samples after the first failure and exit nonzero",
	)
	logFile = flag.String(
		"log",
		"",
		"log file (default Output/fastseq.log)",
	)
)

// runBatch fans the samples out over threshold worker slots. Each
// sample runs its own pipeline in isolation; a failure is recorded and,
// in strict mode, stops further samples from launching (samples already
// running finish).
func runBatch(pl *Pipeline, records []SampleRecord, threshold int, strict bool) (map[string]StatMap, map[string]error) {
	throttle := make(chan bool, threshold)
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make(map[string]StatMap)
	failures := make(map[string]error)

	for _, rec := range records {
		throttle <- true
		mu.Lock()
		stop := strict && len(failures) > 0
		mu.Unlock()
		if stop {
			<-throttle
			break
		}
		wg.Add(1)
		go func(rec SampleRecord) {
			defer wg.Done()
			defer func() { <-throttle }()
			stats, err := pl.RunSample(rec)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("sample %s failed: %v", rec.Sample, err)
				failures[rec.Sample] = err
				return
			}
			results[rec.Sample] = stats
		}(rec)
	}
	wg.Wait()
	return results, failures
}

func main() {
	flag.Parse()
	if *baseDir == "" || *input == "" {
		flag.Usage()
		log.Printf("-base and -input required")
		os.Exit(0)
	}

	cfg, err := loadConfig(*baseDir, *cfgFile)
	simple_util.CheckErr(err)
	caller, err := newVariantCaller(*callerName)
	simple_util.CheckErr(err)

	// everything that can fail the whole run fails here, before any
	// sample starts
	records, err := parseSampleSheet(*input)
	simple_util.CheckErr(err)
	simple_util.CheckErr(validateInputs(records, cfg.BaseDir))
	simple_util.CheckErr(checkOutputCollisions(records, cfg.BaseDir))

	outRoot := filepath.Join(cfg.BaseDir, "Output")
	simple_util.CheckErr(os.MkdirAll(outRoot, 0755))

	if *logFile == "" {
		*logFile = filepath.Join(outRoot, "fastseq.log")
	}
	logF, err := os.Create(*logFile)
	simple_util.CheckErr(err)
	defer simple_util.DeferClose(logF)
	sink := io.MultiWriter(os.Stdout, logF)
	log.SetOutput(sink)
	log.SetFlags(log.Ldate | log.Ltime)
	log.Printf("Log file:%v", *logFile)

	// keep a copy of the sheet with the results for audit
	simple_util.CheckErr(simple_util.CopyFile(
		filepath.Join(outRoot, filepath.Base(*input)), *input))

	runner := &Runner{Sink: &Logger{
		Logger: log.New(sink, "[tool] ", log.Ldate|log.Ltime),
	}}
	pl := newPipeline(cfg, runner, caller)
	log.Printf("processing %d sample(s) with %s caller", len(records), caller.Name())

	results, failures := runBatch(pl, records, *threshold, *strict)

	for sample, ferr := range failures {
		log.Printf("sample %s excluded from final stats: %v", sample, ferr)
	}
	if *strict && len(failures) > 0 {
		log.Fatalf("aborting run: %d sample(s) failed", len(failures))
	}
	if len(results) == 0 {
		log.Fatalf("no sample completed, final stats not written")
	}

	order := make([]string, 0, len(records))
	for _, rec := range records {
		order = append(order, rec.Sample)
	}
	table := buildFinalTable(results, order)
	statsPath := filepath.Join(outRoot, "final_stats.csv")
	log.Printf("start writing final stats")
	simple_util.CheckErr(table.WriteCSV(statsPath))
	log.Printf("end writing final stats:%s", statsPath)
}
