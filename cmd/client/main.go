// Package main is the roster client: an interactive grid over the "users"
// collection plus one-shot commands for scripting.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophRoster/internal/client/docstore"
	"github.com/atinyakov/GophRoster/internal/editor"
	"github.com/atinyakov/GophRoster/internal/models"
	"github.com/atinyakov/GophRoster/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

type globalFlags struct {
	url     string
	token   string
	ca      string
	config  string
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Getenv).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "roster",
		Short:         "Browse and edit the users collection of a document store",
		Version:       fmt.Sprintf("%s (built %s)", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A")),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, &flags, getenv)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.url, "url", "", "store base URL (env ROSTER_URL, default http://localhost:8080)")
	pf.StringVar(&flags.token, "token", "", "bearer token (env ROSTER_TOKEN)")
	pf.StringVar(&flags.ca, "ca", "", "path to a CA certificate for HTTPS")
	pf.StringVar(&flags.config, "config", "roster.yaml", "path to YAML config file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log remote calls to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the interactive grid",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(cmd, &flags, getenv)
			},
		},
		newListCmd(&flags, getenv),
		newSearchCmd(&flags, getenv),
		newAddCmd(&flags, getenv),
		newUpdateCmd(&flags, getenv),
		newDeleteCmd(&flags, getenv),
	)
	return root
}

// newEditor wires the client SDK to an editor over the users collection.
func newEditor(flags *globalFlags, getenv func(string) string) (*editor.Editor, *zap.Logger, error) {
	cfg, err := loadConfig(flags.config)
	if err != nil {
		return nil, nil, err
	}

	logger := zap.NewNop()
	if flags.verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, nil, fmt.Errorf("init logger: %w", err)
		}
	}

	client, err := docstore.New(docstore.Options{
		BaseURL: cmp.Or(resolve(flags.url, "ROSTER_URL", cfg.URL, getenv), "http://localhost:8080"),
		Token:   resolve(flags.token, "ROSTER_TOKEN", cfg.Token, getenv),
		CAFile:  resolve(flags.ca, "ROSTER_CA", cfg.CA, getenv),
	})
	if err != nil {
		return nil, nil, err
	}
	store := docstore.NewRecordStore(client, models.UsersCollection)
	return editor.New(store, logger), logger, nil
}

func runTUI(cmd *cobra.Command, flags *globalFlags, getenv func(string) string) error {
	ed, logger, err := newEditor(flags, getenv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	m := tui.New(cmd.Context(), ed)
	unsubscribe := m.Subscribe()
	defer unsubscribe()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}

func newListCmd(flags *globalFlags, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := newEditor(flags, getenv)
			if err != nil {
				return err
			}
			if err := ed.Load(cmd.Context()); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), ed.State().Records)
			return nil
		},
	}
}

func newSearchCmd(flags *globalFlags, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "search [text]",
		Short: "Print users whose first name, last name or city contains text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := newEditor(flags, getenv)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				ed.SetSearchText(args[0])
			}
			if err := ed.Search(cmd.Context()); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), ed.State().Records)
			return nil
		},
	}
}

func newAddCmd(flags *globalFlags, getenv func(string) string) *cobra.Command {
	var fname, lname, city string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := newEditor(flags, getenv)
			if err != nil {
				return err
			}
			for f, v := range map[editor.Field]string{editor.FirstName: fname, editor.LastName: lname, editor.City: city} {
				if err := ed.SetDraft(f, v); err != nil {
					return err
				}
			}
			if err := ed.Add(cmd.Context()); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), ed.State().Records)
			return nil
		},
	}
	cmd.Flags().StringVar(&fname, "fname", "", "first name")
	cmd.Flags().StringVar(&lname, "lname", "", "last name")
	cmd.Flags().StringVar(&city, "city", "", "city")
	return cmd
}

func newUpdateCmd(flags *globalFlags, getenv func(string) string) *cobra.Command {
	var fname, lname, city string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a user; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := newEditor(flags, getenv)
			if err != nil {
				return err
			}
			id := args[0]
			if err := ed.Load(cmd.Context()); err != nil {
				return err
			}
			ed.BeginEdit(id)
			changes := map[editor.Field]*string{editor.FirstName: &fname, editor.LastName: &lname, editor.City: &city}
			for f, v := range changes {
				if cmd.Flags().Changed(string(f)) {
					if err := ed.ChangeField(id, f, *v); err != nil {
						return err
					}
				}
			}
			if err := ed.Save(cmd.Context(), id); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), ed.State().Records)
			return nil
		},
	}
	cmd.Flags().StringVar(&fname, "fname", "", "first name")
	cmd.Flags().StringVar(&lname, "lname", "", "last name")
	cmd.Flags().StringVar(&city, "city", "", "city")
	return cmd
}

func newDeleteCmd(flags *globalFlags, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, _, err := newEditor(flags, getenv)
			if err != nil {
				return err
			}
			if err := ed.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), ed.State().Records)
			return nil
		},
	}
}

func printRecords(w io.Writer, records []models.Record) {
	t := table.New().Headers("#", "ID", "First Name", "Last Name", "City")
	for i, r := range records {
		t.Row(fmt.Sprintf("%d", i+1), r.ID, r.FName, r.LName, r.City)
	}
	fmt.Fprintln(w, t.Render())
}
