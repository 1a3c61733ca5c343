package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"khosta-backend-go/internal/config"
	"khosta-backend-go/internal/logging"
)

var (
	cfg     config.Config
	logger  *zap.Logger
	logFile *logging.DailyFile
)

var rootCmd = &cobra.Command{
	Use:           "khosta",
	Short:         "Khosta records back end",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		var extra zapcore.WriteSyncer
		file, err := logging.OpenDailyFile(cfg.LogDir, cfg.LogRetentionDays)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file disabled: %v\n", err)
		} else {
			logFile = file
			extra = file
		}
		logger = logging.New(cfg.LogLevel, cfg.LogFormat, "khosta", extra)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, reportCmd)
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
