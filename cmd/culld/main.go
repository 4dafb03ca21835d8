package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"culld/internal/config"
	"culld/internal/gui"
	"culld/internal/log"
	"culld/internal/trash"
	"culld/internal/triage"
	"culld/internal/tui"
	"culld/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
)

// Entry point for the application
func main() {
	rootCmd := &cobra.Command{
		Use:     "culld [folder]",
		Short:   "A keyboard-driven image triage utility",
		Long:    `Culld shows images from a folder four at a time so you can keep or delete them with single keystrokes.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) > 0 {
				folder = args[0]
			}
			return runGUI(folder)
		},
	}

	rootCmd.AddCommand(guiCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(scanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig loads the user configuration, falling back to defaults
// when no config file exists yet.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v. Using default settings.\n", err)
		cfg = config.New()
	}
	log.SetDebug(cfg.Settings.Debug)
	return cfg
}

// resolveFolder picks the session folder: explicit argument first, then
// the folder from the last session, then the working directory.
func resolveFolder(arg string, cfg *config.Config) (string, error) {
	if arg != "" {
		return filepath.Abs(arg)
	}
	if cfg.Session.LastFolder != "" {
		return cfg.Session.LastFolder, nil
	}
	return os.Getwd()
}

// runGUI launches the GUI frontend
func runGUI(folder string) error {
	cfg := loadConfig()

	if folder != "" {
		abs, err := filepath.Abs(folder)
		if err != nil {
			return fmt.Errorf("error resolving folder: %w", err)
		}
		folder = abs
	}

	guiApp := gui.NewApp(cfg)
	guiApp.Run(folder)
	return nil
}

// guiCmd creates the GUI command for the CLI
func guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [folder]",
		Short: "Launch the graphical interface",
		Long:  `Launch the graphical triage grid. With no folder argument the last used folder is reopened.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := ""
			if len(args) > 0 {
				folder = args[0]
			}
			return runGUI(folder)
		},
	}
}

// tuiCmd represents the TUI command
func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [folder]",
		Short: "Start the terminal interface",
		Long:  `Triage the folder from the terminal, useful over SSH or without a display server.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			folder, err := resolveFolder(arg, cfg)
			if err != nil {
				return fmt.Errorf("error resolving folder: %w", err)
			}

			filter, err := triage.NewFilter(cfg.Filters.Include, cfg.Filters.Exclude)
			if err != nil {
				return fmt.Errorf("invalid filename filters: %w", err)
			}
			set, err := triage.Load(folder, filter)
			if err != nil {
				return err
			}

			root, err := trash.DefaultRoot()
			if err != nil {
				return fmt.Errorf("error locating trash folder: %w", err)
			}
			gateway, err := trash.NewGateway(root)
			if err != nil {
				return err
			}

			mode, err := triage.ParseMode(cfg.Session.DefaultMode)
			if err != nil {
				mode = triage.ModeDelete
			}
			controller := triage.NewController(set, gateway, viewer.New(), mode, cfg.Session.MaxUndoDepth)

			cfg.Session.LastFolder = folder
			if err := cfg.Save(); err != nil {
				log.Warnf("could not persist last folder: %v", err)
			}

			p := tea.NewProgram(tui.New(cfg, controller), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}
}

// scanCmd lists what a triage session would pick up, without starting one
func scanCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "scan [folder]",
		Short: "List the images a triage session would include",
		Long:  `Scan a folder and report the images that would enter a triage session, grouped by extension.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			arg := ""
			if len(args) > 0 {
				arg = args[0]
			}
			folder, err := resolveFolder(arg, cfg)
			if err != nil {
				return fmt.Errorf("error resolving folder: %w", err)
			}

			filter, err := triage.NewFilter(cfg.Filters.Include, cfg.Filters.Exclude)
			if err != nil {
				return fmt.Errorf("invalid filename filters: %w", err)
			}
			set, err := triage.Load(folder, filter)
			if err != nil {
				return err
			}

			entries := set.Next(set.TotalCount())
			fmt.Printf("== %s ==\n\n", folder)
			fmt.Printf("Total images: %d\n", len(entries))

			byExt := make(map[string][]string)
			for _, e := range entries {
				ext := strings.ToLower(filepath.Ext(e.Path))
				byExt[ext] = append(byExt[ext], e.Path)
			}

			exts := make([]string, 0, len(byExt))
			for ext := range byExt {
				exts = append(exts, ext)
			}
			sort.Slice(exts, func(i, j int) bool {
				return len(byExt[exts[i]]) > len(byExt[exts[j]])
			})

			fmt.Println("\nBy extension:")
			for _, ext := range exts {
				fmt.Printf("  %s: %d files\n", ext, len(byExt[ext]))
			}

			if detailed {
				fmt.Println("\nDetailed listing:")
				for _, ext := range exts {
					fmt.Printf("\n== %s files ==\n", ext)
					for _, f := range byExt[ext] {
						fmt.Printf("  %s\n", filepath.Base(f))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&detailed, "detailed", "v", false, "Show every matching filename")

	return cmd
}
