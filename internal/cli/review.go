package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dkathuria/codeaudit/internal/config"
	"github.com/dkathuria/codeaudit/internal/keypool"
	"github.com/dkathuria/codeaudit/internal/review"
)

var reviewFlagModel string

var reviewCmd = &cobra.Command{
	Use:   "review <files...>",
	Short: "Audit source files locally and print the reports",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runReview(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewFlagModel, "model", "", "Groq model name")
}

func runReview(paths []string) error {
	cfg, err := config.Load(map[string]string{"model": reviewFlagModel})
	if err != nil {
		return err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	log.SetOutput(os.Stderr)

	keys, err := newKeyManager(cfg, log)
	if err != nil {
		return err
	}
	engine := review.NewEngine(keys, log)

	heading := color.New(color.FgCyan, color.Bold)
	section := color.New(color.FgYellow)

	for i, path := range paths {
		code, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if i > 0 {
			// Independent files get independent rotation cycles.
			keys.Reset()
			fmt.Println()
		}

		state, err := engine.Run(context.Background(), string(code))
		if err != nil {
			var exhausted *keypool.ExhaustedError
			if errors.As(err, &exhausted) {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exitCode = ExitRuntimeError
			continue
		}

		heading.Printf("=== %s ===\n", path)
		section.Println("Audit report:")
		fmt.Println(state.FinalReport)
		section.Println("Corrected code:")
		fmt.Println(state.FixedCode)
	}
	return nil
}
