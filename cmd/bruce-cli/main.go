// Command bruce-cli runs the assistant operations from a terminal, using
// the same configuration, prompt overrides and model provider as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bruce/internal/catalog"
	"bruce/internal/config"
	"bruce/internal/domain/models"
	domainllm "bruce/internal/domain/services/llm"
	"bruce/internal/repository"
	serviceLLM "bruce/internal/service/llm"
	"bruce/internal/service/prompts"
	"bruce/internal/service/usage"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

const usageText = `usage: bruce-cli [flags] <command> [args]

commands:
  prompts                      show the effective instruction for each role
  ask <prompt>                 ask a free-form question
  summarize <description>      title an incident description
  sql <tasks|assets> <question>
                               generate advisory SQL for a question

flags:
`

type cli struct {
	catalog   *catalog.Catalog
	prompts   *prompts.Source
	assistant domainllm.AssistantService
	email     string
	out       io.Writer
}

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "report token usage for this user")
	provider := flag.String("provider", "", "override DEFAULT_PROVIDER (anthropic or lorem)")
	logDir := flag.String("log-dir", "logs", "directory for debug log files")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *provider != "" {
		cfg.DefaultProvider = *provider
	}

	logFile, err := config.SetupLogFile(*logDir, "bruce-cli", 10)
	if err != nil {
		fatalf("%v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	c, cleanup, err := setup(ctx, cfg, *email, logger)
	if err != nil {
		fatalf("%v", err)
	}
	defer cleanup()

	if err := c.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fatalf("%v", err)
	}
}

func setup(ctx context.Context, cfg *config.Config, email string, logger *slog.Logger) (*cli, func(), error) {
	cat, err := catalog.New()
	if err != nil {
		return nil, nil, err
	}

	store := repository.Open(ctx, cfg, logger)

	source := prompts.NewSource(store.Prompts, cat, cfg.AppID, cfg.StoreTimeout, nil, logger)
	tracker := usage.NewTracker(store.Usage, cfg.AppID, cfg.StoreTimeout, 1, nil, logger)

	// Model calls fail with a clear error later if no provider is configured.
	provider, err := serviceLLM.NewProviderFactory(cfg).Default()
	if err != nil {
		logger.Warn("model provider not configured", "error", err)
	}

	assistant := serviceLLM.NewAssistantService(provider, cat, source, tracker, serviceLLM.AssistantConfig{
		SmartModel: cfg.SmartModel,
		FastModel:  cfg.FastModel,
		Timeout:    cfg.LLMTimeout,
	}, nil, logger)

	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout+time.Second)
		defer cancel()
		if err := tracker.Close(closeCtx); err != nil {
			logger.Warn("usage update not flushed", "error", err)
		}
		store.Close()
	}

	return &cli{
		catalog:   cat,
		prompts:   source,
		assistant: assistant,
		email:     email,
		out:       os.Stdout,
	}, cleanup, nil
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "prompts":
		return c.showPrompts(ctx)
	case "ask":
		return c.ask(ctx, strings.Join(args, " "))
	case "summarize":
		return c.summarize(ctx, strings.Join(args, " "))
	case "sql":
		if len(args) < 2 {
			return fmt.Errorf("sql needs a target and a question")
		}
		return c.sql(ctx, models.Target(args[0]), strings.Join(args[1:], " "))
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (c *cli) showPrompts(ctx context.Context) error {
	overridden := make(map[models.Role]bool)
	for _, role := range c.prompts.Overridden(ctx) {
		overridden[role] = true
	}

	for _, role := range models.Roles() {
		source := colorGreen + "default" + colorReset
		if overridden[role] {
			source = colorYellow + "override " + c.catalog.StoreID(role) + colorReset
		}
		fmt.Fprintf(c.out, "%s== %s ==%s (%s)\n%s\n\n", colorCyan, role, colorReset, source, c.prompts.Get(ctx, role))
	}
	return nil
}

func (c *cli) ask(ctx context.Context, prompt string) error {
	resp, err := c.assistant.Ask(ctx, &models.AskRequest{Prompt: prompt, UserEmail: c.email})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, resp.Text)
	return nil
}

func (c *cli) summarize(ctx context.Context, description string) error {
	resp, err := c.assistant.Summarize(ctx, &models.SummarizeRequest{Description: description, UserEmail: c.email})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, resp.Title)
	return nil
}

func (c *cli) sql(ctx context.Context, target models.Target, question string) error {
	resp, err := c.assistant.GenerateSQL(ctx, &models.GenerateSQLRequest{
		Question:  question,
		Target:    target,
		UserEmail: c.email,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, resp.SQL)
	return nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, colorRed+"error: "+format+colorReset+"\n", args...)
	os.Exit(1)
}
