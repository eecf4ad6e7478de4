package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/hy4ri/shopfloor/internal/config"
	"github.com/hy4ri/shopfloor/internal/editor"
	"github.com/hy4ri/shopfloor/internal/lists"
	"github.com/hy4ri/shopfloor/internal/model"
	"github.com/hy4ri/shopfloor/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings (to --config when given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPath(); err != nil {
					return fmt.Errorf("failed to get config path: %w", err)
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}
			if err := config.SaveFile(path, config.DefaultConfig()); err != nil {
				return err
			}

			fmt.Fprintf(c.stdout, "Config file created: %s\n\n", path)
			fmt.Fprintln(c.stdout, "Next steps:")
			fmt.Fprintln(c.stdout, "  1. Pick a backend: memory, sqlite, file or remote")
			fmt.Fprintln(c.stdout, "  2. For remote, run 'shopfloor login' with your session token")
			fmt.Fprintln(c.stdout, "  3. Run 'shopfloor' to start")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [token]",
		Short: "Store the session token for the remote backend",
		Long:  "Store the session token in the system keyring. Without an argument the token is read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(c.stderr, "Session token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = line
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("empty token")
			}
			if err := config.SaveToken(token); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Token saved.")
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(c.stdout, "Token removed.")
			return nil
		},
	}
}

func (c *cli) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				projects, err := st.Projects(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCLIENT\tSTATUS")
				for _, p := range projects {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Client, p.Status)
				}
				return w.Flush()
			})
		},
	}
}

func (c *cli) addProjectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-project <name> [client]",
		Short: "Create an empty project",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var client string
			if len(args) == 2 {
				client = args[1]
			}
			p := store.NewProject(args[0], client)
			if p.Name == "" {
				return errors.New("project name is empty")
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				if err := st.PutProject(ctx, p); err != nil {
					return err
				}
				fmt.Fprintln(c.stdout, p.ID)
				return nil
			})
		},
	}
}

func (c *cli) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <project>",
		Short: "Print a project's task checklist and completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				p, err := resolveProject(ctx, st, args[0])
				if err != nil {
					return err
				}
				tasks, err := st.Tasks(ctx, p.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "%s: %d%% done\n\n", p.Name, lists.Progress(tasks))
				fmt.Fprint(c.stdout, editor.TasksText(tasks))
				return nil
			})
		},
	}
}

func (c *cli) totalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "total <project>",
		Short: "Print a project's line items, total and budget variance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				p, err := resolveProject(ctx, st, args[0])
				if err != nil {
					return err
				}
				items, err := st.Items(ctx, p.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "%s\n\n", p.Name)
				w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprint(w, editor.ItemsText(items))
				fmt.Fprintf(w, "Variance\t\t\t\t%s\n", lists.Variance(items))
				return w.Flush()
			})
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Copy the demo projects into the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Backend == config.BackendMemory {
				return errors.New("the memory backend already holds the demo projects; pick sqlite, file or remote")
			}
			demo, err := store.NewDemo(c.logger)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
				n, err := store.Copy(ctx, st, demo)
				if err != nil {
					return fmt.Errorf("seeded %d projects before failing: %w", n, err)
				}
				fmt.Fprintf(c.stdout, "Seeded %d projects into the %s backend.\n", n, c.cfg.Backend)
				return nil
			})
		},
	}
}

// withStore opens the configured backend for the duration of fn.
func (c *cli) withStore(ctx context.Context, fn func(context.Context, store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := openStore(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			c.logger.Warn("failed to close store", zap.Error(err))
		}
	}()
	if err := fn(ctx, st); err != nil {
		if store.IsAuthError(err) {
			return fmt.Errorf("%w (run 'shopfloor login' with a new token)", err)
		}
		return err
	}
	return nil
}

// resolveProject finds a project by ID, then by case-insensitive name.
func resolveProject(ctx context.Context, st store.Store, ref string) (model.Project, error) {
	p, err := st.Project(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Project{}, err
	}

	projects, err := st.Projects(ctx)
	if err != nil {
		return model.Project{}, err
	}
	for _, p := range projects {
		if strings.EqualFold(p.Name, ref) {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
}
