package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentgateway/chateval/internal/config"
	"github.com/agentgateway/chateval/internal/dataset"
	"github.com/agentgateway/chateval/internal/evalrun"
	"github.com/agentgateway/chateval/internal/gateway"
	"github.com/agentgateway/chateval/internal/judge"
	"github.com/agentgateway/chateval/internal/langfuse"
	"github.com/agentgateway/chateval/internal/logging"
)

// Execute runs the CLI.
func Execute() error {
	root := silenceUsageAndErrors(&cobra.Command{
		Use:   "evalrun",
		Short: "Evaluate the agent gateway with LLM-as-a-judge scoring.",
	})

	root.AddCommand(newRunCmd())
	root.AddCommand(newUploadDatasetCmd())

	executed, err := root.ExecuteC()
	if err != nil && shouldShowUsage(err) {
		target := executed
		if target == nil {
			target = root
		}
		_ = target.Usage()
	}
	return err
}

func newRunCmd() *cobra.Command {
	var gatewayURL string
	var datasetPath string
	var runName string
	var outputDir string

	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "run --gateway-url=<url> [--dataset=<path>] [--run-name=<name>]",
		Short: "Run the evaluation suite against a gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.LoadEval()
			cfg.GatewayURL = gatewayURL
			if datasetPath != "" {
				cfg.DatasetPath = datasetPath
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if runName == "" {
				runName = config.DefaultRunName(time.Now())
			}
			cfg.RunName = runName
			if err := cfg.Validate(); err != nil {
				return err
			}

			ds, err := dataset.Load(cfg.DatasetPath)
			if err != nil {
				return err
			}
			if err := dataset.Validate(ds); err != nil {
				return err
			}

			logger := logging.FromEnv()
			defer logger.Sync()

			runner := &evalrun.Runner{
				Gateway: gateway.NewClient(cfg.GatewayURL, cfg.AskTimeout),
				Judge: judge.NewClient(judge.Config{
					Endpoint:   cfg.Judge.Endpoint,
					APIKey:     cfg.Judge.APIKey,
					Deployment: cfg.Judge.Deployment,
					Timeout:    cfg.Judge.Timeout,
					MaxTokens:  cfg.Judge.MaxTokens,
					BaseURL:    cfg.Judge.BaseURL,
				}),
				Tracer: langfuse.New(langfuse.Config{
					Host:      cfg.Langfuse.Host,
					PublicKey: cfg.Langfuse.PublicKey,
					SecretKey: cfg.Langfuse.SecretKey,
				}),
				Logger:  logger,
				Out:     cmd.OutOrStdout(),
				RunName: cfg.RunName,
			}

			out := cmd.OutOrStdout()
			line := strings.Repeat("=", 60)
			fmt.Fprintf(out, "\n%s\n", line)
			fmt.Fprintf(out, "  AgentGateway Evaluation: %s\n", cfg.RunName)
			fmt.Fprintf(out, "  Dataset: %s\n", ds.Name)
			fmt.Fprintf(out, "  Items: %d\n", len(ds.Items))
			fmt.Fprintf(out, "%s\n\n", line)

			results := runner.Run(cmd.Context(), ds)
			stats := evalrun.Summarize(results)
			evalrun.PrintSummary(out, cfg.RunName, cfg.Langfuse.Host, stats)

			if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(cfg.OutputDir, fmt.Sprintf("results-%s.json", cfg.RunName))
			output := evalrun.NewOutput(cfg.RunName, cfg.GatewayURL, ds.Name, results, stats.Summary, time.Now())
			if err := evalrun.WriteOutput(path, output); err != nil {
				return err
			}
			fmt.Fprintf(out, "  Results saved to: %s\n\n", path)

			logger.Info("evaluation complete",
				zap.String("run_name", cfg.RunName),
				zap.Int("total", stats.Total),
				zap.Int("failed", stats.Failed),
				zap.Float64("average_overall_score", stats.AverageOverallScore),
			)
			return nil
		},
	})

	cmd.Flags().StringVar(&gatewayURL, "gateway-url", "", "gateway URL, e.g. http://localhost:8080 (required)")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to the dataset file")
	cmd.Flags().StringVar(&runName, "run-name", "", "name for this evaluation run")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for the results file")
	_ = cmd.MarkFlagRequired("gateway-url")
	return cmd
}

func newUploadDatasetCmd() *cobra.Command {
	var datasetPath string

	cmd := silenceUsageAndErrors(&cobra.Command{
		Use:   "upload-dataset [--dataset=<path>]",
		Short: "Upload the dataset to Langfuse for tracking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg := config.LoadEval()
			if datasetPath != "" {
				cfg.DatasetPath = datasetPath
			}
			if err := cfg.Langfuse.Validate(); err != nil {
				return err
			}

			ds, err := dataset.Load(cfg.DatasetPath)
			if err != nil {
				return err
			}
			if err := dataset.Validate(ds); err != nil {
				return err
			}

			store := langfuse.New(langfuse.Config{
				Host:      cfg.Langfuse.Host,
				PublicKey: cfg.Langfuse.PublicKey,
				SecretKey: cfg.Langfuse.SecretKey,
			})
			if err := evalrun.UploadDataset(cmd.Context(), store, ds, cfg.DatasetPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset %q created in Langfuse with %d items\n", ds.Name, len(ds.Items))
			return nil
		},
	})

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "path to the dataset file")
	return cmd
}

func silenceUsageAndErrors(cmd *cobra.Command) *cobra.Command {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd
}

func shouldShowUsage(err error) bool {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.HasPrefix(msg, "unknown command"),
		strings.HasPrefix(msg, "unknown flag"),
		strings.HasPrefix(msg, "unknown shorthand flag"),
		strings.Contains(msg, "required flag"),
		strings.Contains(msg, "flag needs an argument"),
		strings.HasPrefix(msg, "invalid argument"):
		return true
	}
	return strings.Contains(msg, "accepts") && strings.Contains(msg, "arg")
}
