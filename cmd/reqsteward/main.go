package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reqsteward/reqsteward/internal/anthropic"
	"github.com/reqsteward/reqsteward/internal/common/vcs"
	"github.com/reqsteward/reqsteward/internal/config"
	"github.com/reqsteward/reqsteward/internal/github"
	"github.com/reqsteward/reqsteward/internal/logging"
	"github.com/reqsteward/reqsteward/internal/planner"
	"github.com/reqsteward/reqsteward/internal/tui"
	"github.com/reqsteward/reqsteward/internal/workflow"
)

func main() {
	// Initialize logger with default configuration
	logging.Initialize(nil)

	var tuiMode bool
	var logLevel string
	var logJSON bool

	rootCmd := &cobra.Command{
		Use:   "reqsteward",
		Short: "Shepherds requirement documents through stakeholder approval on GitHub",
		Long: `A CLI application with an optional colorblind-friendly TUI that publishes requirement
documents as GitHub issues, tracks stakeholder approvals in comments and reactions,
and promotes fully approved requirements to ready-for-development.`,
		Run: func(cmd *cobra.Command, args []string) {
			if tuiMode {
				runTUI()
				return
			}
			fmt.Println("Running in CLI mode. Use a subcommand or --help for available commands.")
			fmt.Println("Use --tui flag to launch in terminal user interface mode.")
		},
	}

	rootCmd.PersistentFlags().BoolVar(&tuiMode, "tui", false, "Run in Terminal User Interface mode")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Set logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Output logs in JSON format")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Logs go to stderr in TUI mode to avoid breaking the interface
		output := os.Stdout
		if tuiMode {
			output = os.Stderr
		}

		logging.Initialize(&logging.Config{
			Level:      logging.ParseLevel(logLevel),
			Output:     output,
			JSONFormat: logJSON,
		})

		logging.Info("Starting reqsteward", "version", "1.0.0")
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check stakeholder approval on a requirement issue (use --tui for interactive mode)",
		Long: `Evaluate the stakeholder approvals recorded on a requirement issue and apply the
resulting status transition: label changes plus a status comment.`,
		Run: func(cmd *cobra.Command, args []string) {
			if tuiMode {
				runTUIWithScreen(tui.ScreenCheck)
				return
			}
			runCheck(cmd)
		},
	}
	checkCmd.Flags().String("owner", "", "GitHub repository owner")
	checkCmd.Flags().String("repo", "", "GitHub repository name")
	checkCmd.Flags().Int("number", 0, "GitHub issue number")
	checkCmd.Flags().Bool("dry-run", false, "Evaluate without touching the issue")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Monitor pending requirement issues (use --tui for interactive mode)",
		Long: `Poll for open issues carrying the pending-review label and run the approval check
on each. Add --tui flag for interactive Terminal UI mode.`,
		Run: func(cmd *cobra.Command, args []string) {
			if tuiMode {
				runTUIWithScreen(tui.ScreenMonitor)
				return
			}
			runMonitor(cmd)
		},
	}
	monitorCmd.Flags().String("repo", "", "Repository to monitor (owner/repo format)")
	monitorCmd.Flags().Int("interval", 0, "Polling interval in minutes")
	monitorCmd.Flags().Bool("once", false, "Run a one-time check instead of continuous monitoring")

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Publish a requirements document as a pending-review issue",
		Long: `Read a markdown requirements document and open it as a GitHub issue with the
pending-review label. Stakeholders named in the document are @mentioned for review.`,
		Run: func(cmd *cobra.Command, args []string) {
			runPush(cmd)
		},
	}
	pushCmd.Flags().String("file", "", "Path to the requirements markdown file")
	pushCmd.Flags().String("owner", "", "GitHub repository owner")
	pushCmd.Flags().String("repo", "", "GitHub repository name")
	pushCmd.Flags().String("title", "", "Issue title (defaults to the document's H1 heading)")

	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Create Planner tasks from an approved requirement issue",
		Long: `Derive development tasks from the functional requirements and acceptance criteria
of an approved issue and create them in the configured Microsoft Planner plan.`,
		Run: func(cmd *cobra.Command, args []string) {
			runTasks(cmd)
		},
	}
	tasksCmd.Flags().String("owner", "", "GitHub repository owner")
	tasksCmd.Flags().String("repo", "", "GitHub repository name")
	tasksCmd.Flags().Int("number", 0, "GitHub issue number")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Review a requirement issue for gaps before sign-off",
		Long: `Summarize a requirement issue and its discussion, flag missing document sections,
and suggest clarifying questions reviewers should raise before approving.`,
		Run: func(cmd *cobra.Command, args []string) {
			runAnalyze(cmd)
		},
	}
	analyzeCmd.Flags().String("owner", "", "GitHub repository owner")
	analyzeCmd.Flags().String("repo", "", "GitHub repository name")
	analyzeCmd.Flags().Int("number", 0, "GitHub issue number")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or update configuration",
		Long:  `Write the reqsteward configuration file with GitHub, Anthropic and Planner credentials.`,
		Run: func(cmd *cobra.Command, args []string) {
			runConfig(cmd)
		},
	}
	configCmd.Flags().String("github-token", "", "GitHub API token")
	configCmd.Flags().String("github-user", "", "GitHub username")
	configCmd.Flags().String("anthropic-token", "", "Anthropic API token")
	configCmd.Flags().String("tenant-id", "", "Microsoft Graph tenant ID for Planner tasks")
	configCmd.Flags().String("client-id", "", "Microsoft Graph client ID")
	configCmd.Flags().String("client-secret", "", "Microsoft Graph client secret")
	configCmd.Flags().String("plan-id", "", "Planner plan ID")
	configCmd.Flags().String("bucket-id", "", "Planner bucket ID")
	configCmd.Flags().String("pending-label", "", "Label for issues awaiting approval")
	configCmd.Flags().String("approved-label", "", "Label for fully approved issues")
	configCmd.Flags().String("ready-label", "", "Label for issues ready for development")
	configCmd.Flags().Int("interval", 0, "Monitor polling interval in minutes")

	rootCmd.AddCommand(checkCmd, monitorCmd, pushCmd, tasksCmd, analyzeCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		logging.Error("Failed to execute command", "error", err)
		os.Exit(1)
	}
}

// runTUI launches the TUI application
func runTUI() {
	runTUIWithScreen(tui.ScreenMainMenu)
}

// runTUIWithScreen launches the TUI application with a specific initial screen
func runTUIWithScreen(screen tui.ScreenType) {
	var cfg *config.Config
	var err error

	logging.Initialize(&logging.Config{
		Level:      logging.LogLevelInfo,
		Output:     os.Stderr,
		JSONFormat: false,
	})

	// Continue with nil config; the TUI shows a warning instead
	if config.Exists() {
		cfg, err = config.Load()
		if err != nil {
			logging.Warn("Error loading configuration", "error", err)
		}
	}

	if err := tui.RunWithScreen(cfg, screen); err != nil {
		logging.Error("Failed to run TUI", "error", err)
		os.Exit(1)
	}
}

// mustLoadConfig loads the configuration or exits with a JSON error
func mustLoadConfig() *config.Config {
	if !config.Exists() {
		logging.Error("Configuration is required",
			"hint", "run 'reqsteward config' first to create a configuration")
		fmt.Fprintf(os.Stderr, "{\"status\": \"error\", \"message\": \"Configuration is required. Run 'reqsteward config' first to create a configuration.\"}\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		fmt.Fprintf(os.Stderr, "{\"status\": \"error\", \"message\": \"Error loading configuration: %s\"}\n", err)
		os.Exit(1)
	}

	return cfg
}

// issueCoords reads the --owner/--repo/--number flag triple
func issueCoords(cmd *cobra.Command) (string, string, int, error) {
	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	number, _ := cmd.Flags().GetInt("number")

	if owner == "" || repo == "" || number <= 0 {
		return "", "", 0, fmt.Errorf("missing required arguments: owner, repo and number")
	}
	return owner, repo, number, nil
}

// printJSON writes a JSON status object to stdout
func printJSON(payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "{\"status\": \"error\", \"message\": \"error formatting JSON response: %s\"}\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func fail(err error) {
	logging.Error("Command failed", "error", err)
	fmt.Fprintf(os.Stderr, "{\"status\": \"error\", \"message\": %q}\n", err.Error())
	os.Exit(1)
}

func runCheck(cmd *cobra.Command) {
	cfg := mustLoadConfig()

	owner, repo, number, err := issueCoords(cmd)
	if err != nil {
		fail(err)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	w := workflow.NewApprovalWorkflow(cfg, github.NewClient(cfg.GitHub.Token))
	w.DryRun = dryRun

	result, err := w.CheckIssue(owner, repo, number)
	if err != nil {
		fail(err)
	}

	printJSON(map[string]interface{}{
		"status":         "success",
		"run_id":         result.RunID,
		"issue":          fmt.Sprintf("%s/%s#%d", owner, repo, number),
		"fully_approved": result.Verdict.FullyApproved,
		"approved_by":    result.Verdict.ApprovedBy,
		"pending_by":     result.Verdict.PendingBy,
		"executed":       result.Executed,
		"dry_run":        dryRun,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

func runMonitor(cmd *cobra.Command) {
	cfg := mustLoadConfig()

	if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
		cfg.Monitor.RepoFilter = []string{repo}
	}
	if interval, _ := cmd.Flags().GetInt("interval"); interval > 0 {
		cfg.Monitor.PollInterval = interval
	}
	once, _ := cmd.Flags().GetBool("once")

	service := github.NewClient(cfg.GitHub.Token)
	w := workflow.NewApprovalWorkflow(cfg, service)

	monitor, err := vcs.NewMonitor(vcs.MonitorConfig{
		Config:    cfg,
		Service:   service,
		Processor: w,
	})
	if err != nil {
		fail(err)
	}

	if once {
		if err := monitor.CheckOnce(); err != nil {
			fail(err)
		}
		stats := monitor.GetStats()
		printJSON(map[string]interface{}{
			"status":           "success",
			"issues_processed": stats["issues_processed"],
			"timestamp":        time.Now().Format(time.RFC3339),
		})
		return
	}

	// Stop cleanly on interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info("Received signal, shutting down", "signal", sig.String())
		os.Exit(0)
	}()

	logging.Info("Starting continuous monitoring",
		"interval_minutes", cfg.Monitor.PollInterval,
		"pending_label", cfg.Labels.Pending)

	if err := monitor.Start(); err != nil {
		fail(err)
	}
}

func runPush(cmd *cobra.Command) {
	cfg := mustLoadConfig()

	file, _ := cmd.Flags().GetString("file")
	owner, _ := cmd.Flags().GetString("owner")
	repo, _ := cmd.Flags().GetString("repo")
	title, _ := cmd.Flags().GetString("title")

	if file == "" || owner == "" || repo == "" {
		fail(fmt.Errorf("missing required arguments: file, owner and repo"))
	}

	w := workflow.NewPushWorkflow(cfg, github.NewClient(cfg.GitHub.Token))
	result, err := w.PushFile(file, owner, repo, title)
	if err != nil {
		fail(err)
	}

	printJSON(map[string]interface{}{
		"status":       "success",
		"issue_number": result.Issue.Number,
		"issue_url":    result.Issue.URL,
		"stakeholders": result.Stakeholders,
		"notified":     result.Notified,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

func runTasks(cmd *cobra.Command) {
	cfg := mustLoadConfig()

	owner, repo, number, err := issueCoords(cmd)
	if err != nil {
		fail(err)
	}

	client, err := planner.NewClient(cfg)
	if err != nil {
		fail(err)
	}

	issue, err := github.NewClient(cfg.GitHub.Token).GetIssue(owner, repo, number)
	if err != nil {
		fail(err)
	}

	created, err := client.CreateTasksForIssue(context.Background(), issue)
	if err != nil {
		fail(err)
	}

	titles := make([]string, 0, len(created))
	for _, task := range created {
		titles = append(titles, task.Title)
	}

	printJSON(map[string]interface{}{
		"status":    "success",
		"issue":     fmt.Sprintf("%s/%s#%d", owner, repo, number),
		"tasks":     titles,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func runAnalyze(cmd *cobra.Command) {
	cfg := mustLoadConfig()

	owner, repo, number, err := issueCoords(cmd)
	if err != nil {
		fail(err)
	}

	issue, err := github.NewClient(cfg.GitHub.Token).GetIssueWithFeedback(owner, repo, number)
	if err != nil {
		fail(err)
	}

	analyzer := anthropic.NewAnalyzer(cfg)
	analysis, err := analyzer.AnalyzeIssue(issue)
	if err != nil {
		fail(err)
	}

	printJSON(map[string]interface{}{
		"status":           "success",
		"issue":            fmt.Sprintf("%s/%s#%d", owner, repo, number),
		"summary":          analysis.Summary,
		"missing_sections": analysis.MissingSections,
		"questions":        analysis.Questions,
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

func runConfig(cmd *cobra.Command) {
	configurator := config.NewConfigurator()

	if token, _ := cmd.Flags().GetString("github-token"); token != "" {
		configurator.SetGitHubToken(token)
	}
	if user, _ := cmd.Flags().GetString("github-user"); user != "" {
		configurator.SetGitHubUser(user)
	}
	if token, _ := cmd.Flags().GetString("anthropic-token"); token != "" {
		configurator.SetAnthropicToken(token)
	}

	tenantID, _ := cmd.Flags().GetString("tenant-id")
	clientID, _ := cmd.Flags().GetString("client-id")
	if tenantID != "" || clientID != "" {
		clientSecret, _ := cmd.Flags().GetString("client-secret")
		planID, _ := cmd.Flags().GetString("plan-id")
		bucketID, _ := cmd.Flags().GetString("bucket-id")
		configurator.SetPlanner(tenantID, clientID, clientSecret, planID, bucketID)
	}

	pending, _ := cmd.Flags().GetString("pending-label")
	approved, _ := cmd.Flags().GetString("approved-label")
	ready, _ := cmd.Flags().GetString("ready-label")
	if pending != "" || approved != "" || ready != "" {
		configurator.SetLabels(pending, approved, ready)
	}

	if interval, _ := cmd.Flags().GetInt("interval"); interval > 0 {
		configurator.SetMonitoringSettings(interval, nil)
	}

	if err := configurator.Save(); err != nil {
		fail(err)
	}

	printJSON(map[string]interface{}{
		"status":  "success",
		"message": "Configuration saved",
		"path":    config.GetConfigPath(),
	})
}
