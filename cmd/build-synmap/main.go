// Command build-synmap builds a difficult-to-easy synonym map from a CEFR
// vocabulary index and a thesaurus, and writes the four build artifacts
// (map, mapping table, unmapped list, build stats) into an output directory.
//
// Usage:
//
//	build-synmap -cefr cefr.csv -thesaurus thesaurus.txt -out synmap/
//	build-synmap -config builder.yaml
package main

import (
	"flag"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/edulang/corpusprep/pkg/corpusprep/cefr"
	"github.com/edulang/corpusprep/pkg/corpusprep/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Builder config YAML (optional)")
		cefrPath   = flag.String("cefr", "", "CEFR vocabulary CSV (word, level, frequency)")
		thesPath   = flag.String("thesaurus", "", "Thesaurus file, one pipe-delimited entry per line")
		outDir     = flag.String("out", "", "Output directory for the build artifacts")
		easy       = flag.String("easy", "", "Comma-separated easy levels, e.g. A1,A2")
		difficult  = flag.String("difficult", "", "Comma-separated difficult levels, e.g. B2,C1,C2")
	)
	flag.Parse()

	cfg := config.DefaultBuilder()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadBuilder(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["cefr"] {
		cfg.CEFRPath = *cefrPath
	}
	if set["thesaurus"] {
		cfg.ThesaurusPath = *thesPath
	}
	if set["out"] {
		cfg.OutDir = *outDir
	}
	if set["easy"] {
		cfg.EasyLevels = splitLevels(*easy)
	}
	if set["difficult"] {
		cfg.DifficultLevels = splitLevels(*difficult)
	}
	if cfg.CEFRPath == "" || cfg.OutDir == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	idx, err := cefr.LoadIndex(cfg.CEFRPath)
	if err != nil {
		log.Fatalf("Failed to load CEFR index: %v", err)
	}
	log.Printf("Loaded %d graded words from %s", idx.Len(), cfg.CEFRPath)

	opts := cefr.BuildOptions{
		Seed:           cfg.Seed,
		AllowMultiword: cfg.AllowMultiword,
		AlphaOnly:      cfg.AlphaOnly,
		LemmaFallback:  cfg.LemmaFallback,
	}
	if opts.Easy, err = cefr.ParseLevels(joinLevels(cfg.EasyLevels)); err != nil {
		log.Fatalf("Invalid easy levels: %v", err)
	}
	if opts.Difficult, err = cefr.ParseLevels(joinLevels(cfg.DifficultLevels)); err != nil {
		log.Fatalf("Invalid difficult levels: %v", err)
	}
	if cfg.ThesaurusPath != "" {
		if opts.Source, err = cefr.LoadThesaurus(cfg.ThesaurusPath); err != nil {
			log.Fatalf("Failed to load thesaurus: %v", err)
		}
	}

	res, err := cefr.Build(idx, opts)
	if err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	if err := res.WriteArtifacts(cfg.OutDir); err != nil {
		log.Fatalf("Failed to write artifacts: %v", err)
	}

	s := res.Summary
	log.Printf("Mapped %d of %d difficult words (%.1f%%), %d unmapped",
		s.Mapped, s.Targets, s.MappedPercent, s.Unmapped)
	levels := make([]string, 0, len(s.PerLevel))
	for lvl := range s.PerLevel {
		levels = append(levels, lvl)
	}
	sort.Strings(levels)
	for _, lvl := range levels {
		c := s.PerLevel[lvl]
		log.Printf("  %s: %d mapped, %d unmapped", lvl, c.Mapped, c.Unmapped)
	}
	log.Printf("Artifacts written to %s", cfg.OutDir)
}

func splitLevels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinLevels(levels []string) string {
	return strings.Join(levels, ",")
}

