package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/config"
	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
	"github.com/duesbook/duesbook/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var categoriesCSV string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new duesbook project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			} else if f := cmd.Flag("dir"); f != nil && f.Changed {
				dir = f.Value.String()
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, categoriesCSV)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&categoriesCSV, "categories", "", "CSV file with the category chart (name,type,description,active)")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, categoriesCSV string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default(name)
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Create directory structure.
	dirs := []string{
		"logs",
		"exports",
		cfg.Import.InboxDir,
		filepath.Join(cfg.Import.InboxDir, "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	chart := categories.Defaults()
	if categoriesCSV != "" {
		var err error
		if chart, err = readCategoryFile(categoriesCSV); err != nil {
			return err
		}
	}

	ctx := logger.WithContext(context.Background(), logger.New(cfg.Logging.Level, cfg.Logging.Format))
	st, err := store.Open(ctx, cfg.DatabasePath(dir))
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer st.Close()

	added, err := categories.NewService(st).Seed(ctx, chart)
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}

	gitignore := "*.db\n*.db-journal\n.env\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized duesbook project at %s (%d categories)\n", dir, added)
	return nil
}

func readCategoryFile(path string) ([]model.Category, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening categories: %w", err)
	}
	defer f.Close()
	cats, err := categories.ReadCategories(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cats, nil
}
