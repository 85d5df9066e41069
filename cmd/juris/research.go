package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jurissearch-backend/config"
	"jurissearch-backend/llm"
	"jurissearch-backend/repository"
	"jurissearch-backend/service"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Run one research session and print the briefing",
	Long: `Research validates the topic, queries the provider for won and lost
precedents plus grounding sources, summarizes the findings and prints a
Markdown strategy briefing. Sessions are kept in memory only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().Bool("json", false, "print the session as JSON instead of Markdown")
	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	asJSON, _ := cmd.Flags().GetBool("json")
	topic := strings.Join(args, " ")

	if err := service.ValidateTopic(topic); err != nil {
		return securityAlert(err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	config.LogLoaded(logger, cfg)

	ctx := cmd.Context()

	generator, err := llm.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize model provider: %w", err)
	}
	defer llm.Close(generator)

	svc := service.NewResearchService(
		service.ResearchWithStore(repository.NewMemorySessionRepository()),
		service.ResearchWithGenerator(generator, service.ClientOptionsFromConfig(cfg, service.NewLogFailureReporter(logger))...),
		service.ResearchWithLogger(logger),
	)

	session, err := svc.Research(ctx, topic)
	if err != nil {
		return securityAlert(err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(session)
	}

	if !session.HasResults() {
		fmt.Fprintln(out, session.Message)
		return nil
	}
	fmt.Fprint(out, service.RenderBriefing(session))
	return nil
}

func securityAlert(err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("security alert: %s", verr.Reason)
	}
	return err
}
