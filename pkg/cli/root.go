// Package cli implements the hds command line on top of cobra.
package cli

import (
	"context"
	"fmt"
	"hds/pkg/common"
	"hds/pkg/config"
	"hds/pkg/disk"
	"hds/pkg/display"
	"hds/pkg/manifest"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	ConfigFile string
	DataDir    string
	LogLevel   string
	Verbose    bool
	Progress   string
}

// Managers holds the shared services a command runs against. They are
// built once the global flags are parsed.
type Managers struct {
	Disp         display.Display
	DiskMgr      disk.Manager
	SysCfg       config.ReadOnly
	Manifest     *manifest.Store
	SettingsPath string
}

// ledgerFileMode keeps the ledger readable by its owner only.
const ledgerFileMode = 0600

type app struct {
	flags      globalFlags
	initConfig func() (config.ReadOnly, error)
	mgr        *Managers
	result     *common.ExecutionResult
}

// Execute runs the hds command line with args and returns the result of the
// command that ran.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) (*common.ExecutionResult, error) {
	a := &app{initConfig: config.Init}
	return a.execute(ctx, args, stdout, stderr)
}

func (a *app) execute(ctx context.Context, args []string, stdout, stderr io.Writer) (*common.ExecutionResult, error) {
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	defer func() {
		if a.mgr != nil {
			a.mgr.Disp.Close()
		}
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		return nil, err
	}
	if a.result == nil {
		return &common.ExecutionResult{ExitCode: 0}, nil
	}
	return a.result, nil
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hds",
		Short:         "Download and load hierarchical forecasting datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigFile, "config", "", "settings file (default is $XDG_CONFIG_HOME/hds/config.yaml)")
	pf.StringVar(&a.flags.DataDir, "data-dir", "", "directory datasets are stored in")
	pf.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&a.flags.Progress, "progress", "", "progress display: line, bar or none")

	root.AddCommand(
		a.listCommand(),
		a.groupsCommand(),
		a.downloadCommand(),
		a.loadCommand(),
		a.fetchCommand(),
		a.diskCommand(),
		a.configCommand(),
		a.versionCommand(),
	)
	return root
}

// setup resolves configuration in order: defaults, settings file, flags.
func (a *app) setup(cmd *cobra.Command) error {
	sysCfg, err := a.initConfig()
	if err != nil {
		return fmt.Errorf("error initializing config: %w", err)
	}

	settingsPath := sysCfg.GetSettingsPath()
	if a.flags.ConfigFile != "" {
		settingsPath = a.flags.ConfigFile
	}
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	if a.flags.Progress != "" {
		settings.Progress = a.flags.Progress
	}
	if a.flags.LogLevel != "" {
		settings.LogLevel = a.flags.LogLevel
	}
	if a.flags.Verbose {
		settings.LogLevel = "debug"
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	w := sysCfg.Checkout()
	w.SetSettings(settings)
	if a.flags.DataDir != "" {
		w.SetDataDir(a.flags.DataDir)
	}
	sysCfg.Freeze()

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLevel(settings.LogLevel),
	})))

	disp := newDisplay(settings.Progress, cmd.OutOrStdout())
	disp.SetVerbose(a.flags.Verbose)

	ledger := manifest.Open(sysCfg.GetManifestPath(),
		manifest.WithFileMode(ledgerFileMode),
		manifest.WithClock(func() time.Time { return time.Now().UTC() }),
	)

	a.mgr = &Managers{
		Disp:         disp,
		DiskMgr:      disk.NewManager(sysCfg),
		SysCfg:       sysCfg,
		Manifest:     ledger,
		SettingsPath: settingsPath,
	}
	slog.Debug("Configuration loaded", "settings", settingsPath, "data", sysCfg.GetDataDir())
	return nil
}

// run adapts a handler to cobra and renders what it returns.
func (a *app) run(fn func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		res, err := fn(cmd.Context(), a.mgr, args)
		if err != nil {
			return err
		}
		if res != nil {
			a.mgr.Disp.RenderOutput(res.Output)
		}
		a.result = res
		return nil
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newDisplay(mode string, w io.Writer) display.Display {
	switch mode {
	case config.ProgressBar:
		return display.NewWriterBarDisplay(w)
	case config.ProgressNone:
		return quietDisplay{display.NewWriterDisplay(w)}
	default:
		return display.NewWriterDisplay(w)
	}
}

// quietDisplay prints command output but hides task progress.
type quietDisplay struct {
	display.Display
}

func (quietDisplay) StartTask(string) display.Task { return display.NopTask }
