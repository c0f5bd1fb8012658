package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackcoderx/callisto/pkg/core"
	"github.com/blackcoderx/callisto/pkg/logging"
	"github.com/blackcoderx/callisto/pkg/paths"
	"github.com/blackcoderx/callisto/pkg/relay"
	"github.com/blackcoderx/callisto/pkg/storage"
	"github.com/blackcoderx/callisto/pkg/ui"
	"github.com/blackcoderx/callisto/pkg/watch"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds what every subcommand needs once configuration is resolved.
type app struct {
	v        *viper.Viper
	engine   *core.Engine
	notifier *core.Broadcaster
	relay    *relay.Relay
	path     string
	out      io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "callisto",
		Short: "Callisto - workspaces, collections and environments for API testing",
		Long: `Callisto keeps saved API requests organised as workspaces, collections and
requests, plus environments of variables, in a single JSON document in the
application data directory. Every command reads the document fresh, applies
one change and writes it back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (optional, warn if malformed)
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
			}
			if err := a.initConfig(cfgFile); err != nil {
				return err
			}
			return a.setup(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.notifier != nil {
				a.notifier.Close()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.callisto/settings.yaml)")
	flags.String("data-dir", "", "directory holding the config document")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("serialize-writes", false, "serialize mutations on the config file")
	flags.Bool("emit", false, "print every published callisto-config event as JSON")
	flags.Bool("diff", false, "print a diff of the document instead of the tree after a change")
	flags.Bool("json", false, "print the document as JSON")
	_ = a.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("serialize_writes", flags.Lookup("serialize-writes"))

	rootCmd.AddCommand(
		newInitCmd(a),
		newShowCmd(a),
		newWorkspaceCmd(a),
		newCollectionCmd(a),
		newRequestCmd(a),
		newEnvCmd(a),
		newSendCmd(a),
		newWatchCmd(a),
		newAuthCmd(a),
	)
	return rootCmd
}

func (a *app) initConfig(cfgFile string) error {
	v := a.v
	v.SetDefault("config_file", core.ConfigFileName)
	v.SetDefault("log_level", "info")
	v.SetDefault("http.timeout", relay.DefaultTimeout)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("serialize_writes", false)
	v.SetDefault("watch.debounce", watch.DefaultDebounceInterval)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".callisto"))
		}
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CALLISTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read settings file: %w", err)
		}
	}
	return nil
}

func (a *app) setup(out, errOut io.Writer) error {
	level, err := logging.ParseLevel(a.v.GetString("log_level"))
	if err != nil {
		return err
	}
	logging.Init(level, errOut)

	dataDir := a.v.GetString("data_dir")
	if dataDir == "" {
		if dataDir, err = paths.DefaultDataDir(); err != nil {
			return err
		}
	}
	if a.path, err = paths.ConfigPath(dataDir, a.v.GetString("config_file")); err != nil {
		return err
	}

	a.out = out
	a.notifier = core.NewBroadcaster()
	opts := []core.Option{core.WithNotifier(a.notifier)}
	if a.v.GetBool("serialize_writes") {
		opts = append(opts, core.WithSerializedWrites())
	}
	a.engine = core.NewEngine(opts...)
	a.relay = relay.New(
		relay.WithTimeout(a.v.GetDuration("http.timeout")),
		relay.WithRateLimit(a.v.GetFloat64("http.rate_limit")),
	)
	return nil
}

// attachEmitter prints published events when --emit is set.
func (a *app) attachEmitter(cmd *cobra.Command) {
	emit, _ := cmd.Flags().GetBool("emit")
	if !emit {
		return
	}
	a.notifier.OnEvent(func(ev core.Event) {
		data, err := storage.Encode(ev.Document)
		if err != nil {
			logging.Warn("CLI", "failed to encode %s event: %v", ev.Name, err)
			return
		}
		fmt.Fprintf(a.out, "%s %s\n", ev.Name, compact(data))
	})
}

// mutate runs op and prints the resulting document, or a diff against the
// document as it was before when --diff is set.
func (a *app) mutate(cmd *cobra.Command, op func() (*storage.Document, error)) error {
	a.attachEmitter(cmd)

	showDiff, _ := cmd.Flags().GetBool("diff")
	var before *storage.Document
	if showDiff {
		var err error
		before, err = a.engine.Load(a.path)
		if errors.Is(err, core.ErrConfigNotFound) {
			before = storage.NewDocument()
		} else if err != nil {
			return err
		}
	}

	doc, err := op()
	if err != nil {
		return err
	}

	if showDiff {
		diff, err := ui.DocumentDiff(before, doc)
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Fprintln(a.out, "No changes.")
			return nil
		}
		fmt.Fprintln(a.out, ui.ColorDiff(diff))
		return nil
	}
	return a.print(cmd, doc)
}

func (a *app) print(cmd *cobra.Command, doc *storage.Document) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		data, err := storage.Encode(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, string(data))
		return nil
	}
	fmt.Fprint(a.out, ui.RenderTree(doc))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
