// Package weddingctl implements the operator CLI for guest list
// maintenance and reminder runs.
package weddingctl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/louisbranch/wedding.rsvp/internal/cmd/bootstrap"
	platformcmd "github.com/louisbranch/wedding.rsvp/internal/platform/cmd"
	"github.com/louisbranch/wedding.rsvp/internal/platform/logging"
	"github.com/louisbranch/wedding.rsvp/internal/platform/storage/sqlitemigrate"
	weddingapp "github.com/louisbranch/wedding.rsvp/internal/services/wedding/app"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/calendar"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/domain/guest"
	"github.com/louisbranch/wedding.rsvp/internal/services/wedding/notify"
)

// Options overrides process collaborators, mainly for tests.
type Options struct {
	// Config skips environment parsing when set.
	Config *bootstrap.Config
	Sender notify.Sender
	Clock  func() time.Time
	Logger *zap.Logger
}

type cli struct {
	opts Options
	cfg  bootstrap.Config
	db   string
}

// NewRootCommand builds the weddingctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	c := &cli{opts: opts}
	root := &cobra.Command{
		Use:           "weddingctl",
		Short:         "Operate the wedding RSVP database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&c.db, "db", "", "SQLite database path (overrides WEDDING_DB_PATH)")

	root.AddCommand(
		c.migrateCommand(),
		c.seedCommand(),
		c.importCommand(),
		c.addGuestCommand(),
		c.listGuestsCommand(),
		c.sendRemindersCommand(),
		c.historyCommand(),
		hashPasswordCommand(),
	)
	return root
}

// Execute runs the CLI with args and returns the process exit error.
func Execute(ctx context.Context, args []string, opts Options) error {
	root := NewRootCommand(opts)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) loadConfig() error {
	if c.opts.Config != nil {
		c.cfg = *c.opts.Config
	} else if err := platformcmd.ParseConfig(&c.cfg); err != nil {
		return err
	}
	if c.db != "" {
		c.cfg.DBPath = c.db
	}
	if c.opts.Logger == nil {
		logger, err := logging.New(platformcmd.ServiceCtl, c.cfg.Log)
		if err != nil {
			return err
		}
		c.opts.Logger = logger
	}
	return nil
}

// withRuntime opens the database for the duration of fn.
func (c *cli) withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *bootstrap.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return platformcmd.Run(ctx, platformcmd.ServiceCtl, c.opts.Logger, func(ctx context.Context) error {
		rt, err := bootstrap.Open(ctx, c.cfg, bootstrap.Options{
			Logger: c.opts.Logger,
			Clock:  c.opts.Clock,
			Sender: c.opts.Sender,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rt.Close() }()
		return fn(ctx, rt)
	})
}

func (c *cli) now() time.Time {
	if c.opts.Clock != nil {
		return c.opts.Clock()
	}
	return time.Now()
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and list the applied ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				applied, err := sqlitemigrate.Applied(ctx, rt.Store.DB())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, m := range applied {
					fmt.Fprintf(out, "%s\t%s\n", m.Name, m.AppliedAt.Format(time.RFC3339))
				}
				fmt.Fprintf(out, "%d migrations applied\n", len(applied))
				return nil
			})
		},
	}
}

func (c *cli) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the standard allergen list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				added, err := rt.Services.Allergens.EnsureDefaults(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d allergens\n", added)
				return nil
			})
		},
	}
}

func (c *cli) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-guests FILE",
		Short: "Create guests from a CSV file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open csv: %w", err)
				}
				defer f.Close()
				in = f
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				created, err := rt.Services.Guests.Import(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d guests\n", len(created))
				return nil
			})
		},
	}
}

func (c *cli) addGuestCommand() *cobra.Command {
	var (
		g        guest.Guest
		language string
	)
	cmd := &cobra.Command{
		Use:   "add-guest",
		Short: "Create one guest and print the RSVP link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g.Language = guest.ParseLanguage(language)
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				created, err := rt.Services.Guests.Add(ctx, g)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created guest %d: %s\n%s\n", created.ID, created.Name, rt.Settings.RSVPLink(created.Token))
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&g.Name, "name", "", "Guest name")
	flags.StringVar(&g.Phone, "phone", "", "Phone number")
	flags.StringVar(&g.Email, "email", "", "Email address")
	flags.StringVar(&language, "language", string(guest.DefaultLanguage), "Preferred language (en or es)")
	flags.BoolVar(&g.HasPlusOne, "plus-one", false, "Invitation includes a plus one")
	flags.BoolVar(&g.IsFamily, "family", false, "Family invitation")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func (c *cli) listGuestsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-guests",
		Short: "Print every guest with their RSVP link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				guests, err := rt.Services.Guests.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tPHONE\tLANG\tLINK")
				for _, g := range guests {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.Name, g.Phone, g.Language, rt.Settings.RSVPLink(g.Token))
				}
				return tw.Flush()
			})
		},
	}
}

func (c *cli) sendRemindersCommand() *cobra.Command {
	var (
		force  int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "send-reminders",
		Short: "Send the reminder scheduled for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				run, err := rt.Services.Reminders.RunScheduled(ctx, c.now(), force, dryRun)
				if err != nil {
					return err
				}
				writeRun(cmd.OutOrStdout(), run)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&force, "force", 0, "Send reminder number 1-4 regardless of the date")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Record the batch without sending email")
	return cmd
}

func writeRun(out io.Writer, run weddingapp.ScheduledRun) {
	switch run.Action {
	case weddingapp.RunNoAction:
		fmt.Fprintf(out, "No reminder scheduled for today. %d days until deadline.\n", run.DaysUntil)
		for _, d := range run.Upcoming {
			fmt.Fprintf(out, "  reminder %d: %s\n", d.Type.Number(), d.Day.Format(calendar.DateLayout))
		}
	case weddingapp.RunNoGuests:
		fmt.Fprintf(out, "No guests need reminder %d\n", run.Number)
	default:
		label := "Reminder"
		if run.DryRun {
			label = "Dry run of reminder"
		}
		res := run.Result
		fmt.Fprintf(out, "%s %d: %d sent, %d failed, %d skipped of %d\n", label, run.Number, res.Sent, res.Failed, res.Skipped, res.Total)
		for _, d := range res.Details {
			fmt.Fprintf(out, "  %s\t%s\t%s\n", d.Status, d.Guest, d.Message)
		}
	}
}

func (c *cli) historyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reminder-history GUEST_ID",
		Short: "Print the reminders recorded for one guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			guestID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || guestID <= 0 {
				return fmt.Errorf("invalid guest id %q", args[0])
			}
			return c.withRuntime(cmd, func(ctx context.Context, rt *bootstrap.Runtime) error {
				g, err := rt.Services.Guests.Get(ctx, guestID)
				if err != nil {
					return err
				}
				history, err := rt.Services.Reminders.History(ctx, guestID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d reminders\n", g.Name, len(history))
				for _, h := range history {
					fmt.Fprintf(out, "  %s\t%s\t%s\t%s\n", calendar.FormatDateTime(h.CreatedAt), h.Type, h.Status, h.SentBy)
				}
				return nil
			})
		},
	}
}

func hashPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [PASSWORD]",
		Short: "Print the bcrypt hash for WEDDING_ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hash, err := weddingapp.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	// Hashing needs neither the database nor the environment.
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	return cmd
}
