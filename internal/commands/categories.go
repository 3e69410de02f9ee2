package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/duesbook/duesbook/internal/categories"
	"github.com/duesbook/duesbook/internal/model"
)

func newCategoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "Manage income and expense categories",
	}
	cmd.AddCommand(
		newCategoryListCommand(),
		newCategoryAddCommand(),
		newCategoryUpdateCommand(),
		newCategoryDeactivateCommand(),
		newCategoryImportCommand(),
		newCategoryExportCommand(),
	)
	return cmd
}

func newCategoryListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			cats, err := a.categories.List(a.ctx, !all)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tACTIVE\tDESCRIPTION")
			for _, c := range cats {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%s\n", c.ID, c.Name, c.Type, c.Active, c.Description)
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().BoolVar(&all, "all", false, "include inactive categories")
	return cmd
}

func newCategoryAddCommand() *cobra.Command {
	var c model.Category
	var typ string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			c.Name = args[0]
			c.Type = model.CategoryType(typ)
			c.Active = true
			var id int64
			err := a.mutate(func(ctx context.Context) error {
				var err error
				id, err = a.categories.Add(ctx, c)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %d: %s (%s)\n", id, c.Name, c.Type)
			return nil
		}),
	}
	cmd.Flags().StringVar(&typ, "type", "", "income or expense (required)")
	cmd.Flags().StringVar(&c.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newCategoryUpdateCommand() *cobra.Command {
	var name, typ, desc string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename or retype a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			c, err := a.store.GetCategory(a.ctx, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				c.Name = name
			}
			if cmd.Flags().Changed("type") {
				c.Type = model.CategoryType(typ)
			}
			if cmd.Flags().Changed("description") {
				c.Description = desc
			}
			if err := a.mutate(func(ctx context.Context) error { return a.categories.Update(ctx, id, c) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated category %d\n", id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&typ, "type", "", "income or expense")
	cmd.Flags().StringVar(&desc, "description", "", "description")
	return cmd
}

func newCategoryDeactivateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Hide a category from new entries, keeping its history",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			if err := a.mutate(func(ctx context.Context) error { return a.categories.Deactivate(ctx, id) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated category %d\n", id)
			return nil
		}),
	}
}

func newCategoryImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add categories from a CSV chart, skipping names that exist",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			cats, err := readCategoryFile(args[0])
			if err != nil {
				return err
			}
			var added int
			err = a.mutate(func(ctx context.Context) error {
				added, err = a.categories.Seed(ctx, cats)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d categories\n", added, len(cats))
			return nil
		}),
	}
}

func newCategoryExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the category chart as CSV",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, a *app, _ []string) error {
			cats, err := a.cache.Categories(a.ctx)
			if err != nil {
				return err
			}
			return writeFile(cmd, out, func(w io.Writer) error {
				return categories.WriteCategories(w, cats)
			})
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout`)
	return cmd
}
