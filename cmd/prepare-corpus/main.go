// Command prepare-corpus runs a processing pipeline over a raw text
// dataset and writes the processed dataset plus its statistics manifest.
//
// Usage:
//
//	prepare-corpus -input raw.csv -output clean.csv -max-grade 8 -keywords science,nature
//	prepare-corpus -input docs -output docs_clean -sqlite corpus.db -config run.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/annotate"
	"github.com/edulang/corpusprep/pkg/corpusprep/config"
	"github.com/edulang/corpusprep/pkg/corpusprep/pipeline"
	"github.com/edulang/corpusprep/pkg/corpusprep/stats"
	"github.com/edulang/corpusprep/pkg/corpusprep/store"
	"github.com/edulang/corpusprep/pkg/corpusprep/store/csvfile"
	"github.com/edulang/corpusprep/pkg/corpusprep/store/sqlite"
	"github.com/edulang/corpusprep/pkg/corpusprep/synonyms"
)

func main() {
	var (
		input      = flag.String("input", "", "Input dataset: CSV path, or table name with -sqlite (required)")
		output     = flag.String("output", "", "Output dataset: CSV path, or table name with -sqlite (required)")
		sqlitePath = flag.String("sqlite", "", "Store datasets in this SQLite database instead of CSV files")
		configPath = flag.String("config", "", "Pipeline config YAML (optional)")

		textColumn = flag.String("text-column", "", "Name of the text column")
		maxGrade   = flag.Float64("max-grade", 0, "Maximum Flesch-Kincaid grade to keep")
		keywords   = flag.String("keywords", "", "Comma-separated keywords; rows matching none are dropped")
		synPath    = flag.String("synonyms", "", "Synonym map path (JSON or CSV)")
		annMode    = flag.String("annotate", "", "Annotation mode: none or remote")
		apiKey     = flag.String("api-key", "", "Classification API key (falls back to CORPUSPREP_API_KEY)")
		model      = flag.String("model", "", "Classification model identifier")
		baseURL    = flag.String("base-url", "", "Classification endpoint URL")
	)
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.DefaultPipeline()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadPipeline(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Flags override config file values.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["text-column"] {
		cfg.TextColumn = *textColumn
	}
	if set["max-grade"] {
		cfg.MaxGrade = maxGrade
	}
	if set["keywords"] {
		cfg.Keywords = splitList(*keywords)
	}
	if set["synonyms"] {
		cfg.SynonymsMapPath = *synPath
	}
	if set["annotate"] {
		cfg.Annotate = *annMode
	}
	if set["api-key"] {
		cfg.APIKey = *apiKey
	}
	if set["model"] {
		cfg.Model = *model
	}
	if set["base-url"] {
		cfg.BaseURL = *baseURL
	}
	// The core never reads the environment; resolve the key here and
	// pass it in explicitly. An explicit value always wins.
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("CORPUSPREP_API_KEY")
	}
	if cfg.Annotate == config.AnnotateCustom {
		log.Fatal("Annotation mode custom is only available through the library API")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	st, err := openStore(ctx, *sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ds, err := st.ReadDataset(ctx, *input, cfg.TextColumn)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	log.Printf("Loaded %d rows with columns %v", ds.Rows(), ds.Columns())

	p, err := buildPipeline(cfg)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	out, report, err := p.Process(ctx, ds)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	for _, sc := range report.Stages {
		log.Printf("  %-20s %d rows", sc.Stage, sc.Rows)
	}
	if report.DegradedRecords > 0 {
		log.Printf("Warning: %d records degraded to %q during annotation",
			report.DegradedRecords, annotate.Unknown)
	}

	if err := st.WriteDataset(ctx, *output, out); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	if err := st.WriteStats(ctx, *output, stats.Compute(out, cfg.TextColumn)); err != nil {
		log.Fatalf("Failed to write stats: %v", err)
	}
	log.Printf("Run %s complete: %d -> %d rows, output %s",
		report.RunID, report.InputRows, report.OutputRows, *output)
}

func openStore(ctx context.Context, sqlitePath string) (store.Store, error) {
	if sqlitePath != "" {
		return sqlite.Open(ctx, sqlitePath)
	}
	return csvfile.New(), nil
}

func buildPipeline(cfg config.Pipeline) (*pipeline.Pipeline, error) {
	p := pipeline.New(cfg.TextColumn)
	if cfg.Normalize {
		p.AddNormalizer()
	}
	if len(cfg.Keywords) > 0 {
		p.AddKeywordFilter(cfg.Keywords)
	}
	if cfg.MaxGrade != nil {
		p.AddReadabilityFilter(*cfg.MaxGrade)
	}
	if cfg.SynonymsMapPath != "" {
		m, err := synonyms.Load(cfg.SynonymsMapPath)
		if err != nil {
			return nil, fmt.Errorf("load synonym map: %w", err)
		}
		p.AddSynonymMapper(synonyms.NewMapper(m))
	}
	if cfg.Dedup {
		p.AddDeduplicator()
	}
	if cfg.Annotate == config.AnnotateRemote {
		remote := annotate.NewRemote(annotate.RemoteConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
		})
		p.AddRemoteAnnotator(remote, cfg.Concurrency)
	}
	return p, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
