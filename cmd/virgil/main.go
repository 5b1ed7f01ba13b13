package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gubarz/virgil/internal/config"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "virgil",
	Short: "Markdown code walkthroughs",
	Long: `Compile Markdown walkthroughs into walkthrough JSON and explore them.

A walkthrough is a titled, ordered list of steps that point at line ranges
in a repository, optionally comparing a base revision with the current one.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(convertCmd, validateCmd, commentCmd, baseCmd, treeCmd, viewCmd, serveCmd)

	rootCmd.PersistentFlags().StringP("output", "o", "", "Output mode: print, copy, file")
	rootCmd.PersistentFlags().Bool("print", false, "Print JSON (shorthand for -o print)")
	rootCmd.PersistentFlags().Bool("copy", false, "Copy JSON (shorthand for -o copy)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-git", false, "Do not read repository details from git")

	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
	}
}

// applyFlags folds the shorthand flags into the runtime config
func applyFlags(cmd *cobra.Command) {
	if p, _ := cmd.Flags().GetBool("print"); p {
		config.SetOutput("print")
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		config.SetOutput("copy")
	}
	if noGit, _ := cmd.Flags().GetBool("no-git"); noGit {
		config.SetInferGit(false)
	}
}

// newLogger returns the CLI logger: plain text on stderr
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.GetLogLevel()}))
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
