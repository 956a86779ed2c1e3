package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/buyerboard/finance-engine/internal/config"
	"github.com/buyerboard/finance-engine/internal/engine"
	"github.com/buyerboard/finance-engine/internal/server"
	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/normalize"
	"github.com/buyerboard/finance-engine/pkg/output"
	"github.com/buyerboard/finance-engine/pkg/projection"
	"github.com/buyerboard/finance-engine/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadRecords reads a JSON array of raw performance records.
func loadRecords(path string) ([]normalize.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}
	var records []normalize.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", path, err)
	}
	return records, nil
}

// loadSnapshot reads the YAML financial-resource snapshot.
func loadSnapshot(path string) (projection.Snapshot, error) {
	var snapshot projection.Snapshot
	if path == "" {
		return snapshot, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return snapshot, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}
	return snapshot, nil
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	recordsLocation := flag.String("records", "", "path to JSON performance records file")
	snapshotLocation := flag.String("snapshot", "", "path to YAML financial-resource snapshot file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP report API instead of a one-shot report")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		address := conf.Server.Address
		if address == "" {
			address = constants.DefaultServerAddress
		}
		handler := server.NewHandler(logger, conf, conf.Server.MaxUploadSizeBytes, version)
		logger.Info("serving report API",
			zap.String("op", "main"),
			zap.String("address", address),
		)
		if err := http.ListenAndServe(address, handler); err != nil {
			logger.Fatal("server stopped",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *recordsLocation == "" {
		logger.Fatal("a records file is required for a one-shot report",
			zap.String("op", "main"),
		)
	}

	records, err := loadRecords(*recordsLocation)
	if err != nil {
		logger.Fatal("failed to load records",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	snapshot, err := loadSnapshot(*snapshotLocation)
	if err != nil {
		logger.Fatal("failed to load snapshot",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Run the pipeline to get the Report.
	eng := engine.New(logger)
	report, err := eng.Run(engine.Input{
		Records:  records,
		Snapshot: snapshot,
	}, conf)
	if err != nil {
		logger.Fatal("failed to compute report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(report)
	case constants.OutputFormatCSV:
		output.CsvFormat(report)
	}
}
