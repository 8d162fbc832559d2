package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/meshkit/meshdeploy"
	"github.com/meshkit/meshdeploy/internal/cliconfig"
	meshlog "github.com/meshkit/meshdeploy/pkg/log"
)

const helpDescription = `
Deploy a mesh application and watch it converge.

Highlights:
  - Creates or updates the deployment, then polls application, service,
    and agent status until the deployment is ready or has failed.
  - Teardown waits for monitoring to quiesce before releasing anything.
  - Configure via file ($HOME/.meshdeploy/config.toml), MESHDEPLOY_*
    environment variables, or flags.
`

var exampleUsage = strings.TrimSpace(`
  meshdeploy deploy --name mesh-app --resource-group staging --image registry.example.com/mesh-app:1.0
  meshdeploy deploy --config deploy.toml --watch
  meshdeploy upscale --name mesh-app --resource-group staging --replicas 5
  meshdeploy teardown --name mesh-app --resource-group staging
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var watch bool

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "meshdeploy",
		Short:   "Deploy a mesh application and watch it converge",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	// resolveConfig layers file config and env vars under explicitly set
	// flags. Each subcommand validates what it actually needs.
	resolveConfig := func(cmd *cobra.Command) error {
		cfgFile := cfgPath
		if cfgFile == "" {
			cfgFile = cliconfig.DefaultConfigPath()
		}

		changed := map[string]bool{}
		cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

		if cfgFile != "" && cliconfig.FileExists(cfgFile) {
			fc, err := cliconfig.LoadFileConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
				return err
			}
		}
		return cliconfig.ApplyEnvConfig(&cfg, changed)
	}

	newDeployer := func() (*meshdeploy.Deployer, error) {
		libCfg := meshdeploy.Config{
			ServiceURL:            cfg.ServiceURL,
			AuthKey:               cfg.AuthKey,
			ResourceGroup:         cfg.ResourceGroup,
			PollInterval:          cfg.PollInterval,
			HTTPTimeout:           cfg.HTTPTimeout,
			WorkerPoolSize:        cfg.WorkerPoolSize,
			Replica:               cfg.Replica,
			VerboseAgentLogs:      cfg.Verbose,
			OutputComponentStatus: cfg.ShowStatus,
		}
		return meshdeploy.New(libCfg,
			meshdeploy.WithLogger(meshlog.NewZerologAdapterWithLogger(log)),
		)
	}

	spec := func() meshdeploy.DeploymentSpec {
		return meshdeploy.DeploymentSpec{
			Name:             cfg.Name,
			ResourceGroup:    cfg.ResourceGroup,
			Image:            cfg.Image,
			RegistryServer:   cfg.RegistryServer,
			RegistryUsername: cfg.RegistryUsername,
			RegistryPassword: cfg.RegistryPassword,
			PipelineURL:      cfg.PipelineURL,
			CommitSHA:        cfg.CommitSHA,
			Replicas:         cfg.Replicas,
		}
	}

	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update the deployment and wait until it is ready or failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			d, err := newDeployer()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			handle, err := d.Start(spec())
			if err != nil {
				return err
			}
			if err := handle.Deploy(ctx); err != nil {
				return fmt.Errorf("deploy: %w", err)
			}
			log.Info().Str("name", cfg.Name).Msg("deployment submitted, monitoring")

			if watch {
				watchPath := cfgPath
				if watchPath == "" {
					watchPath = cliconfig.DefaultConfigPath()
				}
				watcher := cliconfig.NewSpecWatcher(watchPath,
					meshlog.NewZerologAdapterWithLogger(log),
					func(fc cliconfig.FileConfig) {
						if fc.Replicas <= 0 || fc.Replicas == cfg.Replicas {
							return
						}
						cfg.Replicas = fc.Replicas
						if err := d.Upscale(ctx, spec(), fc.Replicas); err != nil {
							log.Error().Err(err).Msg("upscale failed")
						}
					})
				go func() {
					if err := watcher.Run(ctx); err != nil {
						log.Warn().Err(err).Msg("config watcher stopped")
					}
				}()
			}

			ready, err := handle.Wait(ctx)
			if err != nil {
				return err
			}
			if !ready {
				return fmt.Errorf("deployment %s failed", cfg.Name)
			}
			log.Info().Str("name", cfg.Name).Msg("deployment ready")
			return nil
		},
	}
	deployCmd.Flags().BoolVar(&watch, "watch", false, "watch the config file and upscale on replica changes")

	teardownCmd := &cobra.Command{
		Use:   "teardown",
		Short: "Delete the deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd); err != nil {
				return err
			}
			if err := cfg.ValidateTarget(); err != nil {
				return err
			}

			d, err := newDeployer()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Delete(ctx, cfg.Name, cfg.ResourceGroup); err != nil {
				return fmt.Errorf("teardown: %w", err)
			}
			log.Info().Str("name", cfg.Name).Msg("deployment deleted")
			return nil
		},
	}

	upscaleCmd := &cobra.Command{
		Use:   "upscale",
		Short: "Update the replica count of an existing deployment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := resolveConfig(cmd); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Replicas <= 0 {
				return fmt.Errorf("replicas must be positive")
			}

			d, err := newDeployer()
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Upscale(ctx, spec(), cfg.Replicas); err != nil {
				return fmt.Errorf("upscale: %w", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.meshdeploy/config.toml)")
	root.PersistentFlags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, fmt.Sprintf("base service URL (defaults to %s)", meshdeploy.DefaultServiceURL))
	root.PersistentFlags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")
	root.PersistentFlags().StringVar(&cfg.Name, "name", cfg.Name, "deployment name")
	root.PersistentFlags().StringVar(&cfg.ResourceGroup, "resource-group", cfg.ResourceGroup, "resource group of the deployment")
	root.PersistentFlags().StringVar(&cfg.Image, "image", cfg.Image, "container image to deploy")
	root.PersistentFlags().StringVar(&cfg.RegistryServer, "registry-server", cfg.RegistryServer, "container registry server")
	root.PersistentFlags().StringVar(&cfg.RegistryUsername, "registry-username", cfg.RegistryUsername, "container registry username")
	root.PersistentFlags().StringVar(&cfg.RegistryPassword, "registry-password", cfg.RegistryPassword, "container registry password")
	root.PersistentFlags().StringVar(&cfg.PipelineURL, "pipeline-url", cfg.PipelineURL, "CI pipeline URL recorded on the deployment")
	root.PersistentFlags().StringVar(&cfg.CommitSHA, "commit-sha", cfg.CommitSHA, "commit SHA recorded on the deployment")
	root.PersistentFlags().IntVar(&cfg.Replicas, "replicas", cfg.Replicas, "desired replica count")
	root.PersistentFlags().IntVar(&cfg.Replica, "replica", cfg.Replica, "agent replica index to monitor")
	root.PersistentFlags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "status poll interval")
	root.PersistentFlags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	root.PersistentFlags().IntVar(&cfg.WorkerPoolSize, "pool-size", cfg.WorkerPoolSize, "worker pool size")
	root.PersistentFlags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "log agent status details while monitoring")
	root.PersistentFlags().BoolVar(&cfg.ShowStatus, "show-status", cfg.ShowStatus, "log each combined status transition")

	root.AddCommand(deployCmd, teardownCmd, upscaleCmd)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("meshdeploy")
		os.Exit(1)
	}
}
