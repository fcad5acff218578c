package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/99minutos/identity-store/internal/core/ports"
	"github.com/99minutos/identity-store/internal/core/service"
	"github.com/99minutos/identity-store/internal/core/store"
	"github.com/99minutos/identity-store/internal/infrastructure/config"
	"github.com/99minutos/identity-store/internal/infrastructure/db"
	"github.com/99minutos/identity-store/pkg/logger"
)

// app holds the backends opened for a single command invocation.
type app struct {
	provider ports.CollectionProvider
	users    *store.UserStore
	roles    *service.RoleService
}

func open(ctx context.Context) (*app, error) {
	cfg, err := config.LoadStore(ctx)
	if err != nil {
		return nil, err
	}
	provider, err := db.Open(ctx, *cfg)
	if err != nil {
		return nil, err
	}
	users, err := store.NewUserStore(ctx, provider.Users())
	if err != nil {
		_ = provider.Close(ctx)
		return nil, err
	}
	roles, err := store.NewRoleStore(ctx, provider.Roles())
	if err != nil {
		_ = provider.Close(ctx)
		return nil, err
	}
	return &app{
		provider: provider,
		users:    users,
		roles:    service.NewRoleService(roles, users, logger.Component("identityctl")),
	}, nil
}

// withApp opens the backends, runs fn and releases the connection.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := open(ctx)
		if err != nil {
			return err
		}
		defer a.provider.Close(context.Background())
		return fn(ctx, a, args)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	logger.Init(logger.Options{
		Level:   os.Getenv("LOG_LEVEL"),
		Pretty:  true,
		Output:  os.Stderr,
		Service: "identityctl",
	})

	root := &cobra.Command{
		Use:           "identityctl",
		Short:         "Administer the identity store (indexes, roles, memberships)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// indexes
	indexesCmd := &cobra.Command{Use: "indexes", Short: "Collection index management"}
	indexesCmd.AddCommand(&cobra.Command{
		Use:   "ensure",
		Short: "Create the user and role indexes if they are missing",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			// Opening the stores declares their indexes.
			fmt.Println("ok")
			return nil
		}),
	})

	// roles
	rolesCmd := &cobra.Command{Use: "roles", Short: "Role administration"}
	rolesCmd.AddCommand(
		&cobra.Command{
			Use:   "create <name>...",
			Short: "Create roles, skipping names that already exist",
			Args:  cobra.MinimumNArgs(1),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.roles.EnsureRoles(ctx, args...)
			}),
		},
		&cobra.Command{
			Use:   "get <name>",
			Short: "Show a role by name",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				role, err := a.roles.GetRole(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(role)
			}),
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a role by name",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				role, err := a.roles.GetRole(ctx, args[0])
				if err != nil {
					return err
				}
				return a.roles.DeleteRole(ctx, role.ID)
			}),
		},
	)

	// users
	usersCmd := &cobra.Command{Use: "users", Short: "User role membership"}
	usersCmd.AddCommand(
		&cobra.Command{
			Use:   "add-role <user-id> <role>",
			Short: "Add a user to a role",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.roles.AddUserToRole(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "remove-role <user-id> <role>",
			Short: "Remove a user from a role",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.roles.RemoveUserFromRole(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "in-role <role>",
			Short: "List the users holding a role",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				users, err := a.roles.UsersInRole(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(users)
			}),
		},
	)

	root.AddCommand(indexesCmd, rolesCmd, usersCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
