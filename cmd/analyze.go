package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/change8/BiddingAssistant/api/schemas"
	"github.com/change8/BiddingAssistant/internal/extract"
	"github.com/change8/BiddingAssistant/internal/framework"
	"github.com/change8/BiddingAssistant/internal/observability"
	"github.com/change8/BiddingAssistant/internal/preprocess"
	"github.com/change8/BiddingAssistant/internal/rules"
	"github.com/change8/BiddingAssistant/internal/service"
)

// newAnalyzeCmd creates the `analyze` command: run one document through the
// rule engine or a whole-document analysis and print the job record.
func newAnalyzeCmd() *cobra.Command {
	var (
		textInput string
		mode      string
		async     bool
	)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a tender document from a file or from --text",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return viper.BindPFlag("rules.path", cmd.Flags().Lookup("rules"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg := appConfig

			if len(args) == 0 && strings.TrimSpace(textInput) == "" {
				return fmt.Errorf("provide a document file or --text")
			}

			retriever := buildRetriever(cfg)
			gateway, err := buildGateway(cfg, retriever, logger)
			if err != nil {
				return err
			}

			var analyze service.AnalyzeFunc
			switch mode {
			case "rules":
				// Bound in PreRunE, so the flag overrides the config file.
				path := viper.GetString("rules.path")
				if path == "" {
					return fmt.Errorf("rules mode needs a checklist file (--rules or rules.path)")
				}
				ruleSet, err := rules.LoadRules(path)
				if err != nil {
					return err
				}
				engine := rules.NewEngine(ruleSet, logger,
					rules.WithRetriever(retriever),
					rules.WithGateway(gateway),
					rules.WithSnippetWindow(cfg.Engine.SnippetWindow),
				)
				analyze = func(ctx context.Context, text string) (any, error) {
					return engine.Analyze(ctx, text), nil
				}
			case "adaptive":
				analyzer := framework.NewAnalyzer(gateway, nil, logger)
				analyze = func(ctx context.Context, text string) (any, error) {
					return analyzer.AnalyzeAdaptive(ctx, text)
				}
			case "framework":
				analyzer := framework.NewAnalyzer(gateway, nil, logger)
				analyze = func(ctx context.Context, text string) (any, error) {
					return analyzer.AnalyzeFramework(ctx, text, nil)
				}
			default:
				return fmt.Errorf("unknown mode %q (supported: rules, adaptive, framework)", mode)
			}

			jobStore, closeStore, err := buildStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			svc := service.NewService(jobStore, analyze,
				preprocess.NewNormalizer(), extract.NewPlainText(), logger)

			var scheduler service.Scheduler
			var wait *service.WaitScheduler
			if async {
				wait = service.NewWaitScheduler(cfg.Engine.AsyncWorkers)
				scheduler = wait.Schedule
			}

			job, submitErr := submit(ctx, svc, args, textInput, scheduler)
			if job == nil {
				return submitErr
			}

			if wait != nil {
				// Show the pending record, then block until the job finishes
				// so the process does not exit mid-analysis.
				if err := printJSON(cmd.OutOrStdout(), job); err != nil {
					return err
				}
				wait.Wait()
				job, err = svc.GetJob(ctx, job.JobID, true)
				if err != nil {
					return err
				}
			}

			if err := printJSON(cmd.OutOrStdout(), job); err != nil {
				return err
			}
			return submitErr
		},
	}

	analyzeCmd.Flags().StringVarP(&textInput, "text", "t", "", "analyze raw text instead of a file")
	analyzeCmd.Flags().StringVarP(&mode, "mode", "m", "rules", "analysis mode: rules, adaptive or framework")
	analyzeCmd.Flags().BoolVar(&async, "async", false, "submit the job to a background scheduler")
	analyzeCmd.Flags().String("rules", "", "rule checklist file (overrides rules.path)")
	return analyzeCmd
}

func submit(ctx context.Context, svc *service.Service, args []string, textInput string, scheduler service.Scheduler) (*schemas.Job, error) {
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		return svc.SubmitFile(ctx, f, filepath.Base(args[0]), "", nil, scheduler)
	}
	return svc.SubmitText(ctx, textInput, nil, scheduler)
}
