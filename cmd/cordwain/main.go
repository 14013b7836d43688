// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/cordwain/pkg/planner"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var (
	configFlag string
	stagedFlag bool
	repoFlag   string
	planOnly   bool
)

var rootCmd = &cobra.Command{
	Use:   "cordwain",
	Short: "cordwain - requirements-to-issues planner",
	Long: `cordwain decomposes a requirements document into initiatives,
capabilities, and deliverables, and materializes the hierarchy as GitHub
issues with parent-child and blocking relationships.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var planCmd = &cobra.Command{
	Use:   "plan <document.md>",
	Short: "Decompose a document and create the issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlan(args[0])
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt <document.md>",
	Short: "Print the decomposition prompt without invoking the model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPrompt(args[0])
	},
}

func init() {
	rootCmd.SetVersionTemplate("cordwain version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "cordwain.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVar(&stagedFlag, "staged", false, "generate initiatives first, then capabilities per initiative")
	planCmd.Flags().StringVar(&repoFlag, "repo", "", "GitHub owner/repo to create issues on")
	planCmd.Flags().BoolVar(&planOnly, "plan-only", false, "decompose without creating issues")
	rootCmd.AddCommand(planCmd, promptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configured yaml file, falling back to defaults
// when the default file is absent.
func loadConfig() (planner.Config, error) {
	cfg, err := planner.LoadConfig(configFlag)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return planner.DefaultConfig(), nil
		}
		return planner.Config{}, err
	}
	return cfg, nil
}

func loadDocument(path string) (planner.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return planner.Document{}, fmt.Errorf("reading document: %w", err)
	}
	doc := planner.ParseDocument(string(raw))
	doc.Path = path
	return doc, nil
}

func runPlan(docPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if repoFlag != "" {
		cfg.Repo = repoFlag
	}

	doc, err := loadDocument(docPath)
	if err != nil {
		return err
	}

	defer planner.StartRunLog(cfg)()

	p := planner.New(cfg, planner.NewClaudeGenerator(cfg), planner.LogObserver{})

	var hierarchy *planner.Hierarchy
	if stagedFlag {
		h, report, stagedErr := p.DecomposeStaged(doc)
		if stagedErr != nil {
			if errors.Is(stagedErr, planner.ErrAllInitiativesFailed) && report != nil {
				return fmt.Errorf("%w; diagnostic snapshot written to %s", stagedErr, report.SnapshotPath)
			}
			return stagedErr
		}
		if len(report.Failures) > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d initiative(s) succeeded; failures recorded in %s\n",
				report.Succeeded, report.Succeeded+len(report.Failures), report.SnapshotPath)
		}
		hierarchy = h
	} else {
		h, singleErr := p.DecomposeSinglePass(doc)
		if singleErr != nil {
			if errors.Is(singleErr, planner.ErrGenerationTruncated) {
				return fmt.Errorf("%w; re-run with --staged to generate one initiative at a time", singleErr)
			}
			return singleErr
		}
		hierarchy = h
	}

	fmt.Printf("decomposed %q into %d initiative(s), %d capability(ies), %d deliverable(s)\n",
		doc.Title, len(hierarchy.Initiatives), hierarchy.CapabilityCount(), hierarchy.DeliverableCount())

	if planOnly {
		return nil
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	tracker, err := planner.NewGhTracker(repoRoot, cfg)
	if err != nil {
		return err
	}

	resolver := planner.NewResolver()
	materializer := planner.NewMaterializer(cfg, tracker, resolver, planner.LogObserver{})
	created, err := materializer.Materialize(hierarchy)
	if err != nil {
		return err
	}

	linker := planner.NewLinker(cfg, tracker, resolver, planner.LogObserver{})
	linker.LinkDependencies(hierarchy)

	fmt.Printf("created %d issue(s) on %s\n", len(created), tracker.Repo)
	return nil
}

func runPrompt(docPath string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	doc, err := loadDocument(docPath)
	if err != nil {
		return err
	}
	p := planner.New(cfg, nil, nil)

	prompt, err := p.BuildPrompt(doc, stagedFlag)
	if err != nil {
		return err
	}
	fmt.Print(prompt)
	return nil
}
