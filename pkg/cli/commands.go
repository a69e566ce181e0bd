package cli

import (
	"context"
	"fmt"
	"hds/pkg/common"
	"hds/pkg/config"
	"hds/pkg/dataset"
	"hds/pkg/datasets"
	"hds/pkg/display"
	"hds/pkg/downloader"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available datasets",
		Args:  cobra.NoArgs,
		RunE:  a.run(runList),
	}
}

func (a *app) groupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "groups <dataset>",
		Short: "Show the groups of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  a.run(runGroups),
	}
}

func (a *app) downloadCommand() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "download <dataset>",
		Short: "Download the raw files of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
			return runDownload(ctx, mgr, args[0], group)
		}),
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "only this group")
	return cmd
}

func (a *app) loadCommand() *cobra.Command {
	var group string
	var head int
	cmd := &cobra.Command{
		Use:   "load <dataset>",
		Short: "Load a dataset and print its first observations",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
			return runLoad(ctx, mgr, args[0], group, head)
		}),
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "only this group")
	cmd.Flags().IntVarP(&head, "head", "n", 10, "number of observations to print, negative for all")
	return cmd
}

func (a *app) fetchCommand() *cobra.Command {
	var dir string
	var decompress bool
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download a single file, optionally unpacking it",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
			return runFetch(ctx, mgr, args[0], dir, decompress)
		}),
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "destination directory")
	cmd.Flags().BoolVarP(&decompress, "decompress", "x", false, "extract the downloaded archive")
	return cmd
}

func (a *app) diskCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disk",
		Short: "Inspect and clean local storage",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "info",
			Short: "Show disk usage per dataset",
			Args:  cobra.NoArgs,
			RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
				return mgr.DiskMgr.Info()
			}),
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove all downloaded datasets",
			Args:  cobra.NoArgs,
			RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
				return mgr.DiskMgr.CleanDir()
			}),
		},
	)
	return cmd
}

func (a *app) configCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
			return runConfigInit(mgr, force)
		}),
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE:  a.run(runConfigShow),
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
				mgr.Disp.Print(mgr.SettingsPath + "\n")
				return &common.ExecutionResult{ExitCode: 0}, nil
			}),
		},
	)
	return cmd
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
			mgr.Disp.Print(config.GetBuildInfo() + "\n")
			return &common.ExecutionResult{ExitCode: 0}, nil
		}),
	}
}

func runList(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
	table := &common.Table{Header: []string{"Dataset", "Groups", "Path"}}
	for _, d := range datasets.All() {
		groups := "-"
		if g, ok := d.(dataset.Grouped); ok {
			groups = strconv.Itoa(g.Groups().Len())
		}
		table.AddRow(d.Name(), groups, datasetPath(mgr, d))
	}
	return &common.ExecutionResult{
		Output: &common.Output{Table: table},
	}, nil
}

func runGroups(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
	d, err := datasets.Lookup(args[0])
	if err != nil {
		return nil, err
	}
	g, ok := d.(dataset.Grouped)
	if !ok {
		return nil, fmt.Errorf("dataset %s has no groups", d.Name())
	}

	table := &common.Table{Header: []string{"Group", "Freq", "Seasonality", "Horizon", "Series"}}
	for name, desc := range g.Groups().All() {
		table.AddRow(name, desc.Freq(),
			strconv.Itoa(desc.Seasonality()),
			strconv.Itoa(desc.Horizon()),
			humanize.Comma(int64(desc.NumSeries())))
	}
	return &common.ExecutionResult{
		Output: &common.Output{Table: table},
	}, nil
}

func runDownload(ctx context.Context, mgr *Managers, name, group string) (*common.ExecutionResult, error) {
	d, err := datasets.Lookup(name)
	if err != nil {
		return nil, err
	}

	task := mgr.Disp.StartTask(d.Name())
	defer task.Done()

	if err := d.DownloadData(ctx, mgr.SysCfg.GetDatasetDir(), loadOptions(mgr, task, group)...); err != nil {
		return nil, err
	}
	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("Downloaded %s", infoStyle.Render(d.Name())),
			KV:      []common.KV{{Key: "Path", Value: datasetPath(mgr, d)}},
		},
	}, nil
}

func runLoad(ctx context.Context, mgr *Managers, name, group string, head int) (*common.ExecutionResult, error) {
	d, err := datasets.Lookup(name)
	if err != nil {
		return nil, err
	}

	task := mgr.Disp.StartTask(d.Name())
	frame, err := d.Load(ctx, mgr.SysCfg.GetDatasetDir(), loadOptions(mgr, task, group)...)
	task.Done()
	if err != nil {
		return nil, err
	}

	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("%s observations in %s series",
				humanize.Comma(int64(frame.Len())), humanize.Comma(int64(len(frame.Series())))),
			Table: frame.Head(head).Table(),
		},
	}, nil
}

func runFetch(ctx context.Context, mgr *Managers, url, dir string, decompress bool) (*common.ExecutionResult, error) {
	name, err := downloader.TargetName(url)
	if err != nil {
		return nil, err
	}
	task := mgr.Disp.StartTask(name)
	defer task.Done()

	res, err := downloader.FetchFile(ctx, dir, url, decompress,
		downloader.WithUserAgent(mgr.SysCfg.GetSettings().UserAgent),
		downloader.WithTask(task),
		downloader.WithManifest(mgr.Manifest),
	)
	if err != nil {
		return nil, err
	}

	out := &common.Output{
		Message: fmt.Sprintf("Fetched %s", infoStyle.Render(res.Name)),
		KV: []common.KV{
			{Key: "Path", Value: res.Path},
			{Key: "Size", Value: humanize.IBytes(uint64(res.Size))},
			{Key: "Complete", Value: strconv.FormatBool(res.Complete)},
		},
	}
	if decompress {
		out.KV = append(out.KV, common.KV{Key: "Extracted", Value: strconv.Itoa(len(res.Extracted))})
	}
	return &common.ExecutionResult{Output: out}, nil
}

func runConfigInit(mgr *Managers, force bool) (*common.ExecutionResult, error) {
	path := mgr.SettingsPath
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.SaveSettings(path, config.DefaultSettings()); err != nil {
		return nil, err
	}
	return &common.ExecutionResult{
		Output: &common.Output{Message: fmt.Sprintf("Wrote %s", infoStyle.Render(path))},
	}, nil
}

func runConfigShow(ctx context.Context, mgr *Managers, args []string) (*common.ExecutionResult, error) {
	s := mgr.SysCfg.GetSettings()
	s.DataDir = mgr.SysCfg.GetDataDir()
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	mgr.Disp.Print(string(b))
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func loadOptions(mgr *Managers, task display.Task, group string) []dataset.LoadOption {
	return []dataset.LoadOption{
		dataset.WithGroup(group),
		dataset.WithTask(task),
		dataset.WithManifest(mgr.Manifest),
		dataset.WithFetchOptions(downloader.WithUserAgent(mgr.SysCfg.GetSettings().UserAgent)),
	}
}

// datasetPath is where a dataset keeps its files under the data directory.
func datasetPath(mgr *Managers, d dataset.Dataset) string {
	if dd, ok := d.(interface{ Dir(string) string }); ok {
		return dd.Dir(mgr.SysCfg.GetDatasetDir())
	}
	return mgr.SysCfg.GetDatasetDir()
}
