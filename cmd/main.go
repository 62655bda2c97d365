package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/nextver/nextver"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Repo         string `short:"r" help:"Repository path (default: current directory)"`
	Config       string `short:"c" help:"Config file path (default: .nextver.yaml in the working directory)"`
	Pattern      string `short:"p" help:"Tag pattern with exactly one capture group (overrides config)"`
	FirstVersion string `help:"Version to use when no release exists yet (overrides config)"`
	Branch       bool   `short:"b" help:"Only consider tags reachable from HEAD (overrides config)"`
	Check        string `help:"Verify the given version has not been released, instead of printing one"`
	ReleaseDone  bool   `help:"Run post-release cleanup (removes the resolution cache)"`
	JSON         bool   `short:"j" help:"Output as JSON"`
	Debug        bool   `help:"Enable debug logging"`
	ShowVersion  bool   `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("nextver"),
		kong.Description("Compute the next release version from Git tag history"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}

	cfg, err := nextver.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	applyFlags(cfg, c)

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()

	provider, err := c.buildProvider(cfg, logger)
	if err != nil {
		return err
	}

	switch {
	case c.Check != "":
		if err := provider.BeforeRelease(c.Check); err != nil {
			return err
		}
		return c.output(map[string]string{"version": c.Check, "status": "unreleased"},
			c.Check+" has not been released")
	case c.ReleaseDone:
		return provider.AfterRelease()
	default:
		version, err := provider.ProvideVersion()
		if err != nil {
			return err
		}
		return c.output(map[string]string{"version": version}, version)
	}
}

func (c *CLI) buildProvider(cfg *nextver.Config, logger *zap.Logger) (*nextver.Provider, error) {
	repoPath := c.Repo
	if repoPath == "" {
		var err error
		repoPath, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := nextver.OpenRepository(repoPath)
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", repoPath, err)
	}

	// The cache file lives in the worktree root, not wherever the
	// command happened to run from.
	cacheRoot := repoPath
	if workTree, err := repo.Worktree(); err == nil {
		cacheRoot = workTree.Filesystem.Root()
	}

	return nextver.NewProvider(nextver.Options{
		VCS:             nextver.NewGitVCS(repo),
		Cache:           nextver.NewResolutionCache(cacheRoot),
		TagPattern:      cfg.TagPattern,
		FirstVersion:    cfg.FirstVersion,
		VersionByBranch: cfg.VersionByBranch,
		OverrideEnv:     cfg.OverrideEnv,
		Logger:          logger,
	})
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "nextver",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Printf("nextver version %s\n", Version)
	return nil
}

func (c *CLI) output(jsonValue map[string]string, plain string) error {
	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(jsonValue)
	}
	fmt.Println(plain)
	return nil
}

// applyFlags lets command-line flags override file-based configuration.
func applyFlags(cfg *nextver.Config, c *CLI) {
	if c.Pattern != "" {
		cfg.TagPattern = c.Pattern
	}
	if c.FirstVersion != "" {
		cfg.FirstVersion = c.FirstVersion
	}
	if c.Branch {
		cfg.VersionByBranch = true
	}
	if c.Debug {
		cfg.LogLevel = "debug"
	}
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
