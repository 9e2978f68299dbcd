// Command generate runs course generation for every job in a JSON manifest and writes
// the results as JSON.
//
//	generate -manifest jobs.json -out results.json -concurrency 4
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"compliance-coursegen/internal/adapter/extractor"
	"compliance-coursegen/internal/adapter/generator"
	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"
	"compliance-coursegen/internal/logger"
	"compliance-coursegen/internal/service"

	"go.uber.org/zap"
)

func main() {
	manifestPath := flag.String("manifest", "", "path to a JSON array of batch jobs")
	outPath := flag.String("out", "", "where to write results (default stdout)")
	concurrency := flag.Int("concurrency", 4, "maximum pipelines in flight")
	configPath := flag.String("config", "", "directory holding config.yaml")
	flag.Parse()

	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "generate: -manifest is required")
		flag.Usage()
		os.Exit(2)
	}

	var cfgPaths []string
	if *configPath != "" {
		cfgPaths = append(cfgPaths, *configPath)
	}
	cfg, err := config.LoadConfig(cfgPaths...)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	jobs, err := readManifest(*manifestPath)
	if err != nil {
		log.Fatal("Failed to read manifest", zap.String("path", *manifestPath), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	textGenerator, closeGenerator, err := generator.New(ctx, cfg.LLM, log)
	if err != nil {
		log.Fatal("Failed to create text generator", zap.Error(err))
	}
	defer closeGenerator()

	var documents domain.TextExtractor
	if cfg.Extraction.DocumentAIProcessorID != "" {
		docAI, err := extractor.NewDocumentAI(ctx, cfg.Extraction, log)
		if err != nil {
			log.Fatal("Failed to create Document AI extractor", zap.Error(err))
		}
		defer docAI.Close()
		documents = docAI
	}
	var routerOpts []extractor.RouterOption
	if cfg.Extraction.DocumentAILayoutParser {
		routerOpts = append(routerOpts, extractor.WithDOCX())
	}
	textExtractor := extractor.NewRouter(extractor.NewPlainText(), documents, log, routerOpts...)

	courseGenerator := service.NewCourseGenerator(textGenerator, textExtractor, cfg, log)
	batch := service.NewBatchService(courseGenerator, loadDocument(filepath.Dir(*manifestPath)), *concurrency, log)

	outcomes, runErr := batch.Run(ctx, jobs)
	if err := writeOutcomes(*outPath, outcomes); err != nil {
		log.Fatal("Failed to write results", zap.Error(err))
	}
	if runErr != nil {
		log.Fatal("Batch run did not complete", zap.Error(runErr))
	}
}

func readManifest(path string) ([]service.BatchJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var jobs []service.BatchJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	for i := range jobs {
		if jobs[i].Name == "" {
			jobs[i].Name = fmt.Sprintf("job-%d", i+1)
		}
	}
	return jobs, nil
}

// loadDocument resolves relative document paths against the manifest directory.
func loadDocument(baseDir string) service.DocumentLoader {
	return func(ctx context.Context, path string) (*domain.SourceDocument, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewExtractionError("could not read "+filepath.Base(path), err)
		}
		return &domain.SourceDocument{
			FileName: filepath.Base(path),
			MimeType: extractor.DetectMimeType(data),
			Data:     data,
		}, nil
	}
}

func writeOutcomes(path string, outcomes []service.BatchOutcome) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}
