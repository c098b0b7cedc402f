package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-bootstrap/framework/config"
	"github.com/km-arc/go-bootstrap/framework/dependency"
	depio "github.com/km-arc/go-bootstrap/framework/dependency/io"
	"github.com/km-arc/go-bootstrap/framework/logging"
	"github.com/km-arc/go-bootstrap/framework/system"
)

type globalFlags struct {
	envFiles []string
	env      string
	root     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "bootstrap",
		Short:         "Inspect and run a module-based application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().StringVarP(&flags.env, "env", "e", "", "environment, overrides APP_ENV")
	root.PersistentFlags().StringVarP(&flags.root, "root", "r", "", "application directory, overrides APP_ROOT")

	root.AddCommand(newDependenciesCmd(flags), newCacheCmd(flags), newServeCmd(flags))
	return root
}

// loadSystem bootstraps the system described by the environment and flags.
func loadSystem(flags *globalFlags) (*system.System, error) {
	cfg := config.Load(flags.envFiles...)
	if flags.env != "" {
		cfg.App.Env = flags.env
	}
	if flags.root != "" {
		cfg.App.Root = flags.root
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	return system.New(system.Options{Config: cfg, Logger: logger})
}

// ── dependencies ──────────────────────────────────────────────────────────────

func newDependenciesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dependencies",
		Short: "Inspect the dependency definitions",
	}

	var tag string
	list := &cobra.Command{
		Use:   "list [interface]",
		Short: "List the interfaces, or the definitions of one interface",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry(flags)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return listInterfaces(cmd, reg)
			}
			return listDefinitions(cmd, reg, args[0], tag)
		},
	}
	list.Flags().StringVarP(&tag, "tag", "t", "", "only definitions with this tag")

	var out, pkg, fn string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate the Go source of a function returning the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry(flags)
			if err != nil {
				return err
			}
			src, err := depio.GenerateSource(reg, pkg, fn)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.WriteFile(out, src, 0o644); err != nil {
				return fmt.Errorf("could not write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d definitions to %s\n", reg.Len(), out)
			return nil
		},
	}
	generate.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	generate.Flags().StringVar(&pkg, "package", "dependencies", "package of the generated file")
	generate.Flags().StringVar(&fn, "func", "Registry", "name of the generated function")

	cmd.AddCommand(list, generate)
	return cmd
}

func registry(flags *globalFlags) (*dependency.Registry, error) {
	sys, err := loadSystem(flags)
	if err != nil {
		return nil, err
	}
	return sys.DependencyIO().Registry()
}

func listInterfaces(cmd *cobra.Command, reg *dependency.Registry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "INTERFACE\tDEFINITIONS\tDEFAULT")
	for _, iface := range reg.Interfaces() {
		d, _ := reg.Default(iface)
		fmt.Fprintf(w, "%s\t%d\t%s\n", iface, len(reg.Definitions(iface)), d)
	}
	return w.Flush()
}

func listDefinitions(cmd *cobra.Command, reg *dependency.Registry, iface, tag string) error {
	defs := reg.Definitions(iface)
	if tag != "" {
		defs = reg.Tagged(iface, tag)
	}
	if len(defs) == 0 {
		return fmt.Errorf("no definitions for [%s]", iface)
	}

	out := make([]dependency.Description, 0, len(defs))
	for _, d := range defs {
		out = append(out, dependency.Describe(d))
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

// ── cache ─────────────────────────────────────────────────────────────────────

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Control the caches",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the cache controls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem(flags)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tENABLED\tTOGGLE")
			for _, s := range sys.CachePool().Status() {
				fmt.Fprintf(w, "%s\t%t\t%t\n", s.Name, s.Enabled, s.CanToggle)
			}
			return w.Flush()
		},
	}

	action := func(use, short, done string, run func(*system.System, ...string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [name...]",
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				sys, err := loadSystem(flags)
				if err != nil {
					return err
				}
				if err := run(sys, args...); err != nil {
					return err
				}
				names := args
				if len(names) == 0 {
					for _, s := range sys.CachePool().Status() {
						names = append(names, s.Name)
					}
				}
				sort.Strings(names)
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", done, strings.Join(names, ", "))
				return nil
			},
		}
	}

	cmd.AddCommand(
		list,
		action("warm", "Warm the named caches, or all", "warmed", func(s *system.System, names ...string) error {
			return s.CachePool().Warm(names...)
		}),
		action("clear", "Clear the named caches, or all", "cleared", func(s *system.System, names ...string) error {
			return s.CachePool().Clear(names...)
		}),
	)
	return cmd
}

// ── serve ─────────────────────────────────────────────────────────────────────

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve [application]",
		Short: "Run an application, by default the admin server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := loadSystem(flags)
			if err != nil {
				return err
			}
			defer func() { _ = sys.Logger().Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			return sys.Service(ctx, id)
		},
	}
}
