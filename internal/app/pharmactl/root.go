// Package pharmactl is the operator console: one cobra command per screen of
// the dispatch dashboard and the courier app.
package pharmactl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/pharmacy-dispatch/internal/app/console"
	authapp "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/application"
	authdomain "github.com/Apurer/pharmacy-dispatch/internal/domains/auth/domain"
	"github.com/Apurer/pharmacy-dispatch/internal/platform/navigation"
	platformobservability "github.com/Apurer/pharmacy-dispatch/internal/platform/observability"
)

const serviceName = "pharmactl"

// Annotation keys read by the root command before running a subcommand.
const (
	viewAnnotation  = "pharmactl/view"
	rolesAnnotation = "pharmactl/roles"
)

var staff = []authdomain.Role{authdomain.RoleAdmin, authdomain.RoleOperator}

// CLI owns the command tree and the console it wires on demand.
type CLI struct {
	root *cobra.Command

	configPath string
	apiURL     string
	opts       []console.Option

	console  *console.Console
	shutdown func(context.Context) error
	quietNav bool
}

// New builds the command tree. opts are forwarded to console.New.
func New(opts ...console.Option) *CLI {
	c := &CLI{opts: opts}
	root := &cobra.Command{
		Use:               "pharmactl",
		Short:             "Operator console for the pharmacy delivery backend",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/pharmactl/pharmactl.yaml)")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend base URL, overrides PHARMACY_API_URL")
	root.AddCommand(
		c.loginCommand(),
		c.logoutCommand(),
		c.whoamiCommand(),
		c.ordersCommand(),
		c.batchesCommand(),
		c.catalogCommand(),
		c.pickingCommand(),
		c.packingCommand(),
		c.dispatchCommand(),
		c.routesCommand(),
		c.courierCommand(),
		c.closingCommand(),
	)
	c.root = root
	return c
}

// Root exposes the cobra command, mostly for tests.
func (c *CLI) Root() *cobra.Command { return c.root }

// Execute runs the command line and releases the console afterwards.
func (c *CLI) Execute(ctx context.Context) error {
	defer c.close()
	return c.root.ExecuteContext(ctx)
}

func (c *CLI) close() {
	if c.console != nil {
		c.console.Close()
		c.console = nil
	}
	if c.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.shutdown(ctx)
		c.shutdown = nil
	}
}

func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := console.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	level, _ := cfg.Level()
	obsOpts := []platformobservability.Option{
		platformobservability.WithLogOutput(cmd.ErrOrStderr()),
		platformobservability.WithLevel(level),
	}
	if strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")) == "" {
		obsOpts = append(obsOpts, platformobservability.WithoutTraceExport())
	}
	ctx := cmd.Context()
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, obsOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	c.shutdown = shutdown

	view := cmd.Annotations[viewAnnotation]
	opts := append([]console.Option{
		console.WithStartPath(view),
		console.WithNavigationHook(func(from, to string) {
			if to == navigation.LoginPath && !c.quietNav {
				fmt.Fprintf(cmd.ErrOrStderr(), "session ended (%s -> %s), run `pharmactl login`\n", from, to)
			}
		}),
	}, c.opts...)
	c.console, err = console.New(ctx, cfg, instruments, opts...)
	if err != nil {
		return err
	}
	if view == "" {
		return nil
	}
	return c.authorize(ctx, cmd, view)
}

// authorize applies the view guard and the role list of the command.
func (c *CLI) authorize(ctx context.Context, cmd *cobra.Command, view string) error {
	c.quietNav = true
	identity, err := c.console.Manager.Guard(ctx, view)
	c.quietNav = false
	if errors.Is(err, authapp.ErrNotAuthenticated) {
		return errors.New("not logged in, run `pharmactl login` first")
	}
	if err != nil {
		return err
	}
	raw := cmd.Annotations[rolesAnnotation]
	if raw == "" {
		return nil
	}
	for _, role := range strings.Split(raw, ",") {
		if identity.Role == authdomain.Role(role) {
			return nil
		}
	}
	c.console.Logger.Debug("view refused", slog.String("view", view), slog.String("role", string(identity.Role)))
	return fmt.Errorf("access denied: %s requires role %s", view, strings.ReplaceAll(raw, ",", " or "))
}

// screen tags cmd with the dashboard view it stands for and the roles that
// may open it. No roles means any authenticated user.
func screen(cmd *cobra.Command, view string, roles ...authdomain.Role) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[viewAnnotation] = view
	if len(roles) > 0 {
		names := make([]string, 0, len(roles))
		for _, r := range roles {
			names = append(names, string(r))
		}
		slices.Sort(names)
		cmd.Annotations[rolesAnnotation] = strings.Join(names, ",")
	}
	return cmd
}
