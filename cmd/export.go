package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/Jeanphaie/lk-invest/internal"
	"github.com/Jeanphaie/lk-invest/internal/dialect"
	"github.com/Jeanphaie/lk-invest/internal/exporter"
	"github.com/Jeanphaie/lk-invest/internal/util"
	"github.com/shopmonkeyus/go-common/logger"
	csys "github.com/shopmonkeyus/go-common/sys"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runExport(ctx context.Context, logger logger.Logger) error {
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
	dir := viper.GetString("dir")
	if dir == "" {
		return fmt.Errorf("required flag --dir missing")
	}
	var db *sql.DB
	var d dialect.Dialect
	err = util.RunTaskWithSpinner(ctx, "Connecting to database...", viper.GetBool("debug"), func() error {
		db, d, err = dialect.Open(ctx, urlstr)
		return err
	})
	if err != nil {
		return fmt.Errorf("error connecting to %s: %w", masked, err)
	}
	defer db.Close()
	logger.Info("exporting %d tables from %s to %s", len(manifest.Tables), masked, dir)
	_, err = exporter.Run(logger, internal.ExporterConfig{
		Context:  ctx,
		Manifest: manifest,
		Dir:      dir,
		Gzip:     viper.GetBool("gzip"),
	}, db, d)
	return err
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the manifest tables from the database as NDJSON files the import command can load",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger().WithPrefix("[export]")
		defer util.RecoverPanic(logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			select {
			case <-ctx.Done():
				return
			case <-csys.CreateShutdownChannel():
				cancel()
				return
			}
		}()

		if err := runExport(ctx, logger); err != nil {
			logger.Error("error running export: %s", err)
			cancel()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("dir", "", "the directory to write the export files to")
	exportCmd.Flags().Bool("gzip", false, "gzip the export files")
}
