package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/epss-sorter/config"
	"github.com/aquasecurity/epss-sorter/epss"
	"github.com/aquasecurity/epss-sorter/logger"
	"github.com/aquasecurity/epss-sorter/report"
	"github.com/aquasecurity/epss-sorter/sorter"
	"github.com/aquasecurity/epss-sorter/version"
)

const banner = `
 ______ _____   _____ _____    _____                          _____            _
|  ____|  __ \ / ____/ ____|  / ____|                        / ____|          | |
| |__  | |__) | (___| (___   | (___  _   _ _ __   ___ _ __  | (___   ___  _ __| |_ ___ _ __
|  __| |  ___/ \___ \\___ \   \___ \| | | | '_ \ / _ \ '__|  \___ \ / _ \| '__| __/ _ \ '__|
| |____| |     ____) |___) |  ____) | |_| | |_) |  __/ |     ____) | (_) | |  | ||  __/ |
|______|_|    |_____/_____/  |_____/ \__,_| .__/ \___|_|    |_____/ \___/|_|   \__\___|_|
                                          | |
                                          |_|
`

// exitUsage matches the exit status argparse uses for command line errors.
const exitUsage = 2

func main() {
	os.Exit(newRootCommand(os.Stdout).execute())
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

type rootCommand struct {
	*cobra.Command
	fs       afero.Fs
	cfg      config.Config
	exitCode int
}

func newRootCommand(stdout io.Writer) *rootCommand {
	rc := &rootCommand{fs: afero.NewOsFs()}
	rc.Command = &cobra.Command{
		Use:     "epss-sorter FILE",
		Short:   "Sort CVEs by their Exploit Prediction Scoring System (EPSS) score",
		Long:    "Read CVE IDs from a .json or .xml file, fetch their EPSS scores from api.first.org and save them sorted by score.",
		Version: version.FromBuild().Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := rc.run(stdout, args[0])
			rc.exitCode = code
			return err
		},
	}
	rc.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	rc.SetOut(stdout)
	return rc
}

// execute prints the banner before anything else, --version and usage errors
// included, then runs the command.
func (rc *rootCommand) execute() int {
	cfg, err := config.Load(rc.fs)
	if err != nil {
		fmt.Fprintf(rc.ErrOrStderr(), "Error: config error: %s\n", err)
		return sorter.ExitFailure
	}
	rc.cfg = cfg

	if !cfg.NoBanner {
		printBanner(rc.OutOrStdout())
	}

	if err = rc.Execute(); err != nil {
		var ue *usageError
		if xerrors.As(err, &ue) {
			fmt.Fprintf(rc.ErrOrStderr(), "%sError: %s\n", rc.UsageString(), err)
			return exitUsage
		}
		fmt.Fprintf(rc.ErrOrStderr(), "Error: %s\n", err)
		return sorter.ExitFailure
	}
	return rc.exitCode
}

func (rc *rootCommand) run(stdout io.Writer, filename string) (int, error) {
	log, err := logger.New(logger.Config{Level: rc.cfg.LogLevel})
	if err != nil {
		return sorter.ExitFailure, err
	}
	log.Debugf("version %s", version.FromBuild())

	s := sorter.New(
		sorter.WithClient(epss.NewClient(epss.WithURL(rc.cfg.APIURL), epss.WithLogger(log))),
		sorter.WithReporter(report.NewReporter(report.WithFs(rc.fs), report.WithDir(rc.cfg.OutputDir), report.WithWriter(stdout))),
		sorter.WithLogger(log),
	)
	res, err := s.Run(filename)
	return s.Summarize(stdout, res, err), nil
}

func printBanner(w io.Writer) {
	fmt.Fprint(w, color.Cyan.Sprint(banner))
	fmt.Fprintf(w, "%40s\n%44s\n\n", "Version "+version.FromBuild().Version, "A project by "+version.Author)
}
