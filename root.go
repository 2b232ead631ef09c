package main

import (
	"os"

	"pdfclean/core/config"
	"pdfclean/core/logger"
	"pdfclean/core/pipeline"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded before any subcommand runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "pdfclean",
	Short: "Extract page-wise text and tables from PDF files",
	Long: `pdfclean extracts the text of every PDF page, drops the first and last
lines of each page as probable headers and footers, detects tables, and writes
the result as a JSON array of page records.

Run "pdfclean serve" for the browser upload interface or "pdfclean extract"
to process a single file from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		if err := config.Init(viper.GetViper(), cfgFile); err != nil {
			return err
		}
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded
		return logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfclean.yaml or ~/.config/pdfclean/pdfclean.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func newPipeline(c config.Config) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.FitzTextExtractor{},
		pipeline.NewTableExtractor(pipeline.TableConfig{
			MinRows:       c.Table.MinRows,
			MinCols:       c.Table.MinCols,
			MinConfidence: c.Table.MinConfidence,
		}),
	)
}
