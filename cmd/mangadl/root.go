package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/kerbaras/mangadex-dl/pkg/app"
	"github.com/kerbaras/mangadex-dl/pkg/chapters"
	"github.com/kerbaras/mangadex-dl/pkg/config"
	"github.com/kerbaras/mangadex-dl/pkg/data"
	"github.com/kerbaras/mangadex-dl/pkg/integrations"
	"github.com/kerbaras/mangadex-dl/pkg/services"
	"github.com/kerbaras/mangadex-dl/pkg/sources"
	"github.com/kerbaras/mangadex-dl/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.3.1"

type settings struct {
	url       string
	lang      string
	chapter   string
	format    string
	optimize  string
	output    string
	proxy     string
	apiBase   string
	historyDB string
	logFile   string
	cbz       bool
	legacyZip bool
	verify    bool
	noHistory bool
	verbose   bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "mangadex-dl",
		Short:         "Download manga chapters from MangaDex",
		Long:          "Download chapters of a MangaDex manga into folders, zip archives or EPUBs.\nRun without flags for interactive mode.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s.apply(cmd, cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, s)
		},
	}

	f := rootCmd.Flags()
	f.StringVarP(&s.url, "url", "u", "", "MangaDex manga URL")
	f.StringVarP(&s.lang, "lang", "l", "gb", "language code of the chapters to download")
	f.BoolVarP(&s.cbz, "cbz", "c", false, "package each chapter into a .zip archive")
	f.StringVar(&s.chapter, "chapter", chapters.LastKeyword, "chapters to download, e.g. 1,3-5 or last (short: -ch)")
	f.StringVar(&s.format, "format", "", "package chapters as zip or epub")
	f.StringVar(&s.optimize, "optimize", "", "shrink pages for a reader: "+strings.Join(integrations.ProfileNames(), ", "))
	f.StringVarP(&s.output, "output", "o", "download", "download directory")
	f.BoolVar(&s.legacyZip, "legacy-zip-paths", false, "store full paths inside zip archives")
	f.BoolVar(&s.verify, "verify", false, "check that every downloaded page is a readable image")
	f.BoolVar(&s.noHistory, "no-history", false, "do not record downloads")
	f.StringVar(&s.proxy, "proxy", "", "SOCKS5 proxy address (host:port)")
	f.StringVar(&s.apiBase, "api-base", "", "API base URL, instead of the one derived from --url")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s.historyDB, "history-db", "", "download history database")
	pf.StringVar(&s.logFile, "log-file", "", "also write JSON logs to this file")
	pf.BoolVarP(&s.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newHistoryCmd(s))
	return rootCmd
}

// apply fills the settings the user did not pass on the command line from
// the environment.
func (s *settings) apply(cmd *cobra.Command, cfg *config.Config) {
	s.cfg = cfg
	flags := cmd.Flags()

	if !flags.Changed("lang") {
		s.lang = cfg.Language
	}
	if !flags.Changed("output") {
		s.output = cfg.OutputDir
	}
	if !flags.Changed("proxy") {
		s.proxy = cfg.Proxy
	}
	if !flags.Changed("api-base") {
		s.apiBase = cfg.APIBase
	}
	if !flags.Changed("history-db") {
		s.historyDB = cfg.HistoryPath
	}
}

func (s *settings) packager() (integrations.Packager, error) {
	switch strings.ToLower(s.format) {
	case "":
		if s.cbz {
			return integrations.NewZipPackager(s.legacyZip), nil
		}
		return nil, nil
	case "zip", "cbz":
		return integrations.NewZipPackager(s.legacyZip), nil
	case "epub":
		return integrations.NewEPubPackager(s.lang), nil
	default:
		return nil, fmt.Errorf("unknown format %q, use zip or epub", s.format)
	}
}

func (s *settings) optimizer() (*integrations.PageOptimizer, error) {
	if s.optimize == "" {
		return nil, nil
	}
	profile, ok := integrations.LookupProfile(s.optimize)
	if !ok {
		return nil, fmt.Errorf("unknown profile %q, use one of %s", s.optimize, strings.Join(integrations.ProfileNames(), ", "))
	}
	return integrations.NewPageOptimizer(profile), nil
}

func runDownload(cmd *cobra.Command, s *settings) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "mangadex-dl v%s\n", version)

	prompter := newPrompter(cmd.InOrStdin(), out)

	if cmd.Flags().NFlag() == 0 {
		if err := s.ask(prompter); err != nil {
			return err
		}
	} else {
		if strings.TrimSpace(s.url) == "" {
			return errors.New("you need to enter a URL")
		}
		if strings.TrimSpace(s.chapter) == "" {
			return errors.New("you need to enter chapter(s)")
		}
	}

	mangaID, baseURL, err := sources.ParseURL(strings.TrimSpace(s.url))
	if err != nil {
		return err
	}
	if s.apiBase != "" {
		baseURL = s.apiBase
	}

	logger := app.NewLogger(cmd.ErrOrStderr(), s.verbose)
	if s.logFile != "" {
		hook, err := app.NewFileHook(s.logFile)
		if err != nil {
			return err
		}
		defer hook.Close()
		logger.AddHook(hook)
	}

	session, err := utils.NewSession(utils.SessionOptions{
		UserAgent: s.cfg.UserAgent,
		Proxy:     s.proxy,
		Timeout:   s.cfg.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	packager, err := s.packager()
	if err != nil {
		return err
	}
	optimizer, err := s.optimizer()
	if err != nil {
		return err
	}
	root, err := filepath.Abs(s.output)
	if err != nil {
		return err
	}

	options := services.DefaultOptions()
	options.Layout = integrations.Layout{Root: root}
	options.Language = s.lang
	options.Packager = packager
	options.Optimizer = optimizer
	options.Verify = s.verify

	var recorder services.Recorder
	if !s.noHistory {
		repo, err := data.NewDuckDBRepository(s.historyDB)
		if err != nil {
			logger.WithError(err).Warn("download history disabled")
		} else {
			defer repo.Close()
			recorder = repo
		}
	}

	controller := services.NewMangaControllerWithConfig(services.ControllerConfig{
		Session:  session,
		BaseURL:  baseURL,
		Recorder: recorder,
		Options:  options,
		Logger:   logger,
	})

	logger.WithFields(logrus.Fields{"manga": mangaID, "base": baseURL, "output": root}).Debug("starting download")

	err = app.NewApp(controller, prompter, out, logger).Run(cmd.Context(), mangaID, s.lang, s.chapter)
	if errors.Is(err, sources.ErrNotAManga) {
		return fmt.Errorf("please enter a MangaDex manga (not chapter) URL: %w", err)
	}
	return err
}

// ask collects the settings interactively. The chapter selection is asked
// later, once the available chapters are known.
func (s *settings) ask(p app.Prompter) error {
	var err error
	if s.url, err = app.AskRequired(p, "Enter manga URL:", ""); err != nil {
		return err
	}
	if s.cbz, err = app.AskYesNo(p, "Do you want to package chapters into .cbz?:"); err != nil {
		return err
	}
	if s.lang, err = app.AskDefault(p, "Enter desired language:", s.lang); err != nil {
		return err
	}
	s.chapter = ""
	return nil
}

func newPrompter(in io.Reader, out io.Writer) app.Prompter {
	if f, ok := in.(*os.File); ok {
		return app.NewPrompter(f, out)
	}
	return app.NewLinePrompter(in, out)
}

// normalizeArgs rewrites the two-letter -ch flag, which pflag cannot
// express as a shorthand, to --chapter.
func normalizeArgs(args []string) []string {
	normalized := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg == "--":
			return append(normalized, args[len(normalized):]...)
		case arg == "-ch":
			arg = "--chapter"
		case strings.HasPrefix(arg, "-ch="):
			arg = "--chapter=" + strings.TrimPrefix(arg, "-ch=")
		}
		normalized = append(normalized, arg)
	}
	return normalized
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
