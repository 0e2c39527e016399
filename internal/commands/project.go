package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/flujo-dev/flujo/internal/config"
	"github.com/flujo-dev/flujo/internal/logger"
	"github.com/flujo-dev/flujo/internal/period"
	"github.com/flujo-dev/flujo/internal/rules"
)

// project is a loaded flujo workspace: its root, config and rule table.
type project struct {
	Root   string
	Config *config.Config
	Rules  *rules.Table
	Log    zerolog.Logger
}

// loadProject resolves repoDir, loads its config and rule table, and
// attaches a logger to cmd's context.
func loadProject(cmd *cobra.Command, opts *globalOptions, repoDir string) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := loadConfig(root, opts.configPath)
	if err != nil {
		return nil, err
	}

	levelName := cfg.Log.Level
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	log := logger.New(level).With().Str("repo", root).Logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, log))

	table, err := rules.Resolve(root, cfg.Rules.Path, cfg.Rules.Variant)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	log.Debug().Str("rules", table.Name).Int("credit_rules", len(table.Credit)).Int("debit_rules", len(table.Debit)).Msg("rule table loaded")

	return &project{Root: root, Config: cfg, Rules: table, Log: log}, nil
}

func loadConfig(root, path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDir(root)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnvFile(filepath.Join(root, ".env")); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// exportPath returns where a run's main export goes: out when set, else
// <export.dir>/<stem>_<suffix>.<format> under the project root.
func (p *project) exportPath(out, input, suffix string) string {
	if out != "" {
		return out
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := p.Config.Export.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.Root, dir)
	}
	return filepath.Join(dir, stem+"_"+suffix+"."+p.Config.Export.Format)
}

// rel returns path relative to the project root when it lies inside it.
func (p *project) rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	r, err := filepath.Rel(p.Root, abs)
	if err != nil || outsideRoot(r) {
		return abs
	}
	return filepath.ToSlash(r)
}

func parseOpening(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --opening %q: %w", s, err)
	}
	return d, nil
}

func parseDateFlag(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := period.ParseDayFirst(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return &d, nil
}

func parseMonthFlag(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	m, err := period.ParseMonth(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, s, err)
	}
	return &m, nil
}

var errNotRepo = errors.New("not a git repository")
