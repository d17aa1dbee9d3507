package cmd

import (
	"context"
	"strings"

	"github.com/jce77/melodygen/pkg/config"
	"github.com/jce77/melodygen/pkg/history"
	"github.com/jce77/melodygen/pkg/logger"
	"github.com/jce77/melodygen/pkg/pattern"
	"github.com/jce77/melodygen/pkg/storage"
	"github.com/spf13/cobra"
)

// stringSetting returns the flag value when set on the command line and the
// config value otherwise
func stringSetting(cmd *cobra.Command, flag, key string, value string) string {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return config.GetString(key)
}

func intSetting(cmd *cobra.Command, flag, key string, value int) int {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return config.GetInt(key)
}

func floatSetting(cmd *cobra.Command, flag, key string, value float64) float64 {
	if cmd.Flags().Changed(flag) {
		return value
	}
	return config.GetFloat(key)
}

func newLoader() *pattern.Loader {
	return pattern.NewLoader(config.GetString("assets.dir"))
}

// buildSinks always writes locally and adds S3 when upload is requested
func buildSinks(ctx context.Context, upload bool) ([]storage.Sink, error) {
	sinks := []storage.Sink{storage.NewLocalSink(config.GetString("output.dir"))}
	if !upload {
		return sinks, nil
	}

	s3Sink, err := storage.NewS3Sink(ctx, storage.S3Options{
		Bucket:  config.GetString("output.s3_bucket"),
		Region:  config.GetString("output.s3_region"),
		Prefix:  config.GetString("output.s3_prefix"),
		BaseURL: config.GetString("output.s3_base_url"),
	})
	if err != nil {
		return nil, err
	}
	if err := s3Sink.CheckBucketAccess(ctx); err != nil {
		return nil, err
	}
	return append(sinks, s3Sink), nil
}

// openHistory opens the run catalogue, or returns nil when it is disabled or
// cannot be opened
func openHistory() *history.Store {
	if !config.GetBool("history.enabled") {
		return nil
	}
	store, err := history.Open(config.GetString("history.path"), verbose)
	if err != nil {
		logger.Warn("Run history unavailable", "error", err)
		return nil
	}
	return store
}

func closeHistory(store *history.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Warn("Failed to close run history", "error", err)
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
