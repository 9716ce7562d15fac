package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/dialect"
	"github.com/Jeanphaie/lk-invest/internal/importer"
	"github.com/Jeanphaie/lk-invest/internal/source"
	"github.com/Jeanphaie/lk-invest/internal/util"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopmonkeyus/go-common/logger"
	csys "github.com/shopmonkeyus/go-common/sys"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errAborted = errors.New("aborted")

func confirmTruncate(url string, tables []string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("\n🚨 WARNING 🚨"),
			huh.NewConfirm().
				Title(fmt.Sprintf("YOU ARE ABOUT TO DELETE EVERY ROW OF %s IN %s", strings.Join(tables, ", "), url)).
				Affirmative("Confirm").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	form.WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return confirmed, nil
}

func runImport(ctx context.Context, cancel context.CancelFunc, logger logger.Logger) error {
	dryRun := viper.GetBool("dry-run")
	truncate := viper.GetBool("truncate")
	onConflict, err := internal.ParseConflictPolicy(viper.GetString("on-conflict"))
	if err != nil {
		return err
	}
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	urlstr, err := loadDatabaseConfig().ConnectionURL()
	if err != nil {
		return err
	}
	masked, err := util.MaskURL(urlstr)
	if err != nil {
		return err
	}
	location := viper.GetString("source")
	if location == "" {
		return fmt.Errorf("required flag --source missing")
	}

	if truncate && !dryRun && !viper.GetBool("confirm") {
		confirmed, err := confirmTruncate(masked, manifest.Names())
		if err != nil {
			logger.Info("You may use --confirm to skip this prompt")
			return fmt.Errorf("error running form: %w", err)
		}
		if !confirmed {
			return errAborted
		}
	}

	src, err := source.New(ctx, location)
	if err != nil {
		return err
	}

	var db *sql.DB
	var d dialect.Dialect
	if dryRun {
		logger.Info("🚨 Dry run enabled")
		if d, _, err = dialect.ForURL(urlstr); err != nil {
			return err
		}
	} else {
		err = util.RunTaskWithSpinner(ctx, "Connecting to database...", viper.GetBool("debug"), func() error {
			db, d, err = dialect.Open(ctx, urlstr)
			return err
		})
		if err != nil {
			return fmt.Errorf("error connecting to %s: %w", masked, err)
		}
		defer db.Close()
		logger.Debug("connected to %s", masked)
	}

	metrics := internal.NewMetrics()
	runID := uuid.NewString()
	logger.Info("starting import %s from %s into %s", runID, src, masked)
	config := internal.ImporterConfig{
		Context:    ctx,
		RunID:      runID,
		Manifest:   manifest,
		DryRun:     dryRun,
		Truncate:   truncate,
		OnConflict: onConflict,
		Metrics:    metrics,
	}
	var result *importer.Result
	if viper.GetBool("progress") {
		err = util.RunWithProgress(ctx, cancel, func(progressbar *util.ProgressBar) error {
			config.Progress = progressbar.Tables
			result, err = importer.Run(logger, config, db, d, src)
			return err
		})
	} else {
		result, err = importer.Run(logger, config, db, d, src)
	}
	if fn := viper.GetString("metrics-file"); fn != "" {
		if werr := metrics.WriteTextfile(fn); werr != nil {
			logger.Warn("error writing metrics to %s: %s", fn, werr)
		}
	}
	if err != nil {
		return err
	}
	logger.Info("👋 Loaded %d rows into %d tables (%d skipped) in %v", result.Rows(), result.Count(importer.StatusImported), result.Count(importer.StatusSkipped), result.Duration.Round(time.Millisecond))
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the NDJSON export files into the database, one transaction per table",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger().WithPrefix("[import]")
		defer util.RecoverPanic(logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			select {
			case <-ctx.Done():
				return
			case <-csys.CreateShutdownChannel():
				logger.Info("interrupted, rolling back the current table")
				cancel()
				return
			}
		}()

		if err := runImport(ctx, cancel, logger); err != nil {
			if errors.Is(err, errAborted) {
				return
			}
			logger.Error("error running import: %s", err)
			cancel()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("source", "", "the export location: a directory, file:///dir or s3://bucket/prefix")
	importCmd.Flags().Bool("dry-run", false, "parse every file and log the statements without touching the database")
	importCmd.Flags().Bool("truncate", false, "delete the existing rows of each table before importing it")
	importCmd.Flags().Bool("confirm", false, "skip the truncate confirmation prompt")
	importCmd.Flags().String("on-conflict", "error", "what to do when a row already exists: error, skip or update")
	importCmd.Flags().Bool("progress", false, "show a progress bar")
	importCmd.Flags().String("metrics-file", "", "write the run metrics to this file in the prometheus text format")
}
