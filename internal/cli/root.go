// Package cli defines the figure3d command-line interface.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/soypat/figure3d/internal/config"
	"github.com/soypat/figure3d/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	// ConfigPath is the scene YAML file; empty uses the built-in default scene.
	ConfigPath string
	// EnvFiles are .env files whose FIGURE3D_* variables override the scene.
	EnvFiles []string
	LogLevel logging.Level

	// env holds the FIGURE3D_* variables of EnvFiles and the process
	// environment, resolved once before any command runs.
	env config.Env
}

// Execute builds the root command, runs it with args and returns any error.
// Logs are written to logOut, or stderr when nil, at the level chosen by
// --log-level or FIGURE3D_LOG_LEVEL. viewer backs the view command; nil
// builds without window support.
func Execute(ctx context.Context, args []string, logOut io.Writer, viewer Viewer) error {
	cmd := newRootCommand(&Options{LogLevel: logging.LevelInfo}, logOut, viewer)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(opts *Options, logOut io.Writer, viewer Viewer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "figure3d",
		Short:         "figure3d renders 3D figures in front of sky backdrops",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			fileVars, err := config.LoadEnvFiles(opts.EnvFiles...)
			if err != nil {
				return err
			}
			opts.env, err = config.ParseEnv(config.Merge(fileVars, config.OSVars()))
			if err != nil {
				return err
			}
			level := cmd.Flag("log-level").Value.String()
			if !cmd.Flags().Changed("log-level") && opts.env.LogLevel != "" {
				level = opts.env.LogLevel
			}
			opts.LogLevel = logging.ParseLevel(level)
			if logOut == nil {
				logOut = cmd.ErrOrStderr()
			}
			logger := logging.NewLogger(logOut, opts.LogLevel)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			// gg renderer selection and CPU fallback, at debug only.
			if opts.LogLevel <= logging.LevelDebug {
				gg.SetLogger(logger.With(slog.String("component", "gg")))
			} else {
				gg.SetLogger(nil)
			}
			logger.Debug("logger initialized", "level", opts.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to scene YAML file")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "Paths to .env files with FIGURE3D_* overrides")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRenderCommand(opts),
		newViewCommand(opts, viewer),
		newSkiesCommand(),
	)
	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}

// loadScene reads the scene file, if any, and applies the environment
// overrides resolved from env files and the process environment, the latter
// taking precedence.
func loadScene(opts *Options) (*config.Scene, error) {
	sc := config.Default()
	if opts.ConfigPath != "" {
		var err error
		sc, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	}
	if err := opts.env.Apply(sc); err != nil {
		return nil, err
	}
	return sc, nil
}
