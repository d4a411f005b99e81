// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command pubgrub-resolve loads a JSON package registry and resolves a root
// requirement against it, printing either the resolved versions or a
// derivation tree explaining why no solution exists.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pubgrub-go/pubgrub"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pubgrub-resolve",
		Short:         "Resolve package version requirements against a registry snapshot",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("log-format", "text", "log output format: text or json")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	_ = viper.BindPFlag("log-format", root.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	viper.SetEnvPrefix("PUBGRUB")
	viper.AutomaticEnv()

	root.AddCommand(newResolveCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var (
		registryPath string
		rootPackage  string
		rootVersion  string
		maxSteps     int
		strategyName string
		collapsed    bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a root package@version against a registry file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			registry, err := pubgrub.LoadRegistryFile(registryPath)
			if err != nil {
				return fmt.Errorf("loading registry: %w", err)
			}
			logger.Info("loaded registry", "path", registryPath, "session_id", registry.SessionID)

			version, err := pubgrub.ParseSemanticVersion(rootVersion)
			if err != nil {
				return fmt.Errorf("parsing root version: %w", err)
			}

			root := pubgrub.NewRootSource()
			root.AddPackage(pubgrub.MakeName(rootPackage), pubgrub.EqualsCondition{Version: version})

			strategy, err := resolveStrategy(strategyName)
			if err != nil {
				return err
			}

			opts := []pubgrub.SolverOption{
				pubgrub.WithIncompatibilityTracking(true),
				pubgrub.WithLogger(logger),
				pubgrub.WithStrategy(strategy),
			}
			if maxSteps > 0 {
				opts = append(opts, pubgrub.WithMaxSteps(maxSteps))
			}
			solver := pubgrub.NewSolverWithOptions([]pubgrub.Source{root, registry}, opts...)

			ctx := context.Background()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			solution, err := solver.SolveContext(ctx, root.Term())
			if err != nil {
				printFailure(cmd, err, collapsed)
				return err
			}

			for _, nv := range solution {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", nv.Name.Value(), nv.Version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "path to a JSON registry document (required)")
	cmd.Flags().StringVar(&rootPackage, "package", "", "root package name (required)")
	cmd.Flags().StringVar(&rootVersion, "version", "", "root package version (required)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "maximum solver iterations (0 = library default)")
	cmd.Flags().StringVar(&strategyName, "strategy", "fewest-versions-first", "decision strategy: fewest-versions-first or highest-version-first")
	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "print a collapsed failure explanation instead of the full tree")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort solving after this duration (0 = no timeout)")
	_ = cmd.MarkFlagRequired("registry")
	_ = cmd.MarkFlagRequired("package")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func resolveStrategy(name string) (pubgrub.PackageStrategy, error) {
	switch name {
	case "", "fewest-versions-first":
		return pubgrub.FewestVersionsFirst(), nil
	case "highest-version-first":
		return pubgrub.HighestVersionFirst(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want fewest-versions-first or highest-version-first)", name)
	}
}

func printFailure(cmd *cobra.Command, err error, collapsed bool) {
	nse, ok := err.(*pubgrub.NoSolutionError)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "resolution failed: %v\n", err)
		return
	}

	reporter := pubgrub.Reporter(&pubgrub.DefaultReporter{})
	if collapsed {
		reporter = &pubgrub.CollapsedReporter{}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), nse.WithReporter(reporter).Error())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if viper.GetString("log-format") == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
