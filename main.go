package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/skratchdot/open-golang/open"
	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keyremover/keyremover/bundle"
	"github.com/keyremover/keyremover/cl"
	"github.com/keyremover/keyremover/conf"
	"github.com/keyremover/keyremover/data"
	"github.com/keyremover/keyremover/localize"
	"github.com/keyremover/keyremover/manifest"
	"github.com/keyremover/keyremover/native"
	"github.com/keyremover/keyremover/remover"
	"github.com/keyremover/keyremover/ui"
)

var version = "head" // set by linker

var cli cl.CLI

var app = kingpin.New("keyremover", "Removes a macOS application along with the files it scattered around")

func init() {
	app.Arg("application", "Display name of the application to remove, e.g. \"Final Cut Pro\"").StringVar(&cli.AppName)

	app.Flag("sudo", "Prompt for an administrator password up front").BoolVar(&cli.Sudo)
	app.Flag("dry-run", "Show what would be removed, remove nothing").BoolVar(&cli.DryRun)
	app.Flag("yes", "Skip the confirmation prompt").Short('y').BoolVar(&cli.Yes)
	app.Flag("force", "Proceed even if the application appears to be running").BoolVar(&cli.Force)
	app.Flag("json", "Emit JSON-lines events on stderr").BoolVar(&cli.JSON)
	app.Flag("locate", "Resolve and print the bundle path, remove nothing").BoolVar(&cli.Locate)
	app.Flag("reveal", "With --locate: open the folder containing the bundle").BoolVar(&cli.Reveal)
	app.Flag("history", "List past removals").BoolVar(&cli.History)
	app.Flag("config", "Config file adding extra sweep directories/patterns").StringVar(&cli.ConfigPath)
}

func main() {
	app.HelpFlag.Short('h')
	app.Version(version)
	app.VersionFlag.Short('V')

	_, err := app.Parse(os.Args[1:])
	if err != nil {
		app.FatalUsage("%v\n", err)
	}

	cli.VersionString = fmt.Sprintf("keyremover %s", version)

	err = doMain()
	if err != nil {
		log.Printf("Fatal error: %+v", err)
		fmt.Println(ui.Error(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}

func doMain() error {
	cfg, err := conf.Load(cli.ConfigPath)
	if err != nil {
		return err
	}

	paths, err := native.NewPaths()
	if err != nil {
		return err
	}

	err = os.MkdirAll(paths.StateDir(), 0755)
	if err != nil {
		return errors.WithMessage(err, "creating state directory")
	}

	logPath := filepath.Join(paths.StateDir(), "keyremover.log")
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: 2,
	}))
	log.Printf("=========================================")
	log.Printf("%s starting, log file: %s", cli.VersionString, logPath)

	localizer, err := localize.NewLocalizer(data.Asset)
	if err != nil {
		return err
	}
	localizer.DetectLang()
	cli.Localizer = localizer

	if cli.JSON {
		remover.EnableJSON()
	}

	if cli.History {
		return showHistory(paths)
	}

	if cli.AppName == "" {
		app.FatalUsage("application name required\n")
	}

	return run(cfg, paths)
}

func showHistory(paths native.Paths) error {
	manifests, err := manifest.List(filepath.Join(paths.StateDir(), "manifests"))
	if err != nil {
		return err
	}

	if len(manifests) == 0 {
		fmt.Println(cli.Localizer.T("history.empty"))
		return nil
	}

	for _, m := range manifests {
		status := ui.Success(m.App)
		if !m.Success {
			status = ui.Error(m.App)
		}
		fmt.Printf("%s  %s\n", m.When.Local().Format("2006-01-02 15:04"), status)
		fmt.Println(ui.Path(m.Message))
		for _, path := range m.RemovedPaths {
			fmt.Println(ui.Path(path))
		}
	}
	return nil
}

func run(cfg conf.Config, paths native.Paths) error {
	T := cli.Localizer.T

	bundlePath, err := bundle.Find(paths.ApplicationsDir(), cli.AppName)
	if err != nil {
		if errors.Cause(err) == bundle.ErrNotFound {
			return errors.Errorf("%s", T("result.not_found", localize.Replacements{
				"app_name": cli.AppName,
				"apps_dir": paths.ApplicationsDir(),
			}))
		}
		return err
	}
	log.Printf("Found bundle: %s", bundlePath)

	info, err := bundle.ReadInfo(bundlePath)
	if err != nil {
		log.Printf("%v", err)
		fmt.Println(ui.Warn(T("locate.no_info")))
		stem := bundle.Stem(bundlePath)
		info = bundle.Info{Name: stem, DisplayName: stem}
	}

	appStore := bundle.IsAppStore(bundlePath, info.BundleID, paths.ReceiptsDir())
	if appStore {
		log.Printf("(%s) is an App Store install", info.DisplayName)
	}

	remover.Emit(remover.Resolved{
		Path:     bundlePath,
		BundleID: info.BundleID,
		AppStore: appStore,
	})

	if cli.Locate {
		fmt.Println(bundlePath)
		if appStore {
			fmt.Println(ui.Path(T("locate.app_store")))
		}
		if cli.Reveal {
			return open.Run(filepath.Dir(bundlePath))
		}
		return nil
	}

	if !cli.Yes && !cli.DryRun {
		confirmed := ui.Confirm(os.Stdin, os.Stdout, T("remove.confirm", localize.Replacements{
			"app_name": info.DisplayName,
		}))
		if !confirmed {
			return errors.Errorf("%s", T("remove.aborted"))
		}
	}

	password := ""
	if cli.Sudo && !cli.DryRun {
		password, err = ui.PromptPassword(os.Stdout, T("remove.password_prompt"))
		if err != nil {
			return err
		}
	}

	fmt.Println(T("remove.starting", localize.Replacements{"app_name": info.DisplayName}))

	r := remover.New(remover.Settings{
		Dirs:          remover.DefaultDirSet(paths).WithExtras(cfg.ExtraDirs),
		Privileged:    native.NewPrivileged(),
		ExtraPatterns: cfg.ExtraPatterns,
	})

	params := remover.Params{
		BundlePath: bundlePath,
		Info:       info,
		AppStore:   appStore,
		Password:   password,
		DryRun:     cli.DryRun,
		Force:      cli.Force,
	}

	ctx := context.Background()
	res := r.Remove(ctx, params)

	if res.NeedsSudo && params.Password == "" {
		password, err = ui.PromptPassword(os.Stdout, T("remove.password_retry"))
		if err != nil {
			return err
		}
		params.Password = password

		// the first sweep already deleted what it could; the retry's
		// record has to include those paths too
		first := res
		res = r.Remove(ctx, params)
		res.RemovedPaths = remover.MergeRemoved(first.RemovedPaths, res.RemovedPaths)
	}

	if !cli.DryRun {
		manifestPath, err := manifest.Write(filepath.Join(paths.StateDir(), "manifests"), manifest.Manifest{
			OperationID:  res.OperationID,
			App:          info.DisplayName,
			BundleID:     info.BundleID,
			When:         time.Now(),
			Success:      res.Success,
			Message:      res.Message,
			RemovedPaths: res.RemovedPaths,
		})
		if err != nil {
			log.Printf("Could not write removal manifest: %v", err)
		} else {
			log.Printf("Manifest: %s", manifestPath)
		}
	}

	printResult(res, info)

	if !res.Success {
		os.Exit(1)
	}
	return nil
}

func printResult(res *remover.Result, info bundle.Info) {
	T := cli.Localizer.T

	switch {
	case res.Success && cli.DryRun:
		// the bundle itself is in RemovedPaths, the rest are associated entries
		count := len(res.RemovedPaths) - 1
		if count < 0 {
			count = 0
		}
		fmt.Println(ui.Success(T("result.dry_run", localize.Replacements{
			"app_name": info.DisplayName,
			"count":    fmt.Sprintf("%d", count),
		})))
	case res.Success:
		fmt.Println(ui.Success(T("result.success", localize.Replacements{
			"app_name": info.DisplayName,
		})))
	case res.NeedsSudo:
		fmt.Println(ui.Error(T("result.needs_sudo", localize.Replacements{
			"app_name": info.DisplayName,
		})))
	default:
		fmt.Println(ui.Error(res.Message))
	}

	if len(res.RemovedPaths) == 0 {
		return
	}

	header := "removed.header"
	if cli.DryRun {
		header = "removed.header_dry"
	}
	fmt.Println(T(header))
	for _, path := range res.RemovedPaths {
		fmt.Println(ui.Path(path))
	}
}
