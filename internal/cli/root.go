package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pequemaths/pequemaths-api/internal/config"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
	"github.com/pequemaths/pequemaths-api/internal/observability"
	"github.com/pequemaths/pequemaths-api/internal/persistence"
	"github.com/pequemaths/pequemaths-api/internal/repository"
	"github.com/pequemaths/pequemaths-api/internal/service"
	"github.com/pequemaths/pequemaths-api/internal/worker"
)

// RoleManager is the role store surface the CLI drives.
type RoleManager interface {
	GetRole(ctx context.Context, uid string) (domain.Role, bool)
	GetProfile(ctx context.Context, uid string) (*domain.UserProfile, error)
	ListProfiles(ctx context.Context) ([]*domain.UserProfile, error)
	UpdateRole(ctx context.Context, actorUID, uid string, role domain.Role) (*domain.UserProfile, error)
}

// Opener connects to the profile store. The returned func releases it.
type Opener func(ctx context.Context) (RoleManager, func(), error)

var flagActor string

// NewRootCmd creates the root cobra command for the admin CLI.
func NewRootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "pequemaths-admin",
		Short:        "Manage PequeMATHS user roles",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flagActor, "actor", "cli", "uid recorded as the author of role changes")

	root.AddCommand(
		newRoleCmd(open),
		newUsersCmd(open),
	)
	return root
}

// withRoles opens the store for the duration of fn.
func withRoles(cmd *cobra.Command, open Opener, fn func(context.Context, RoleManager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	roles, release, err := open(ctx)
	if err != nil {
		return fmt.Errorf("open profile store: %w", err)
	}
	defer release()
	return fn(ctx, roles)
}

// DefaultOpener connects to Redis with the service configuration. Role
// changes are written to the audit log like the API does.
func DefaultOpener(ctx context.Context) (RoleManager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, err
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err := redis.Ping(ctx); err != nil {
		redis.Close()
		return nil, nil, fmt.Errorf("redis unavailable: %w", err)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))
	roles := service.NewRoleStore(repository.NewProfileRepository(redis.Client), dispatcher, logger)

	return roles, func() {
		redis.Close()
		_ = logger.Sync()
	}, nil
}
