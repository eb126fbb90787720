package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedigraph/pedigraph/pkg/kin"
)

// newSnapshotCmd creates the snapshot management command.
func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored family snapshots",
	}

	cmd.AddCommand(newSnapshotSaveCmd())
	cmd.AddCommand(newSnapshotListCmd())
	cmd.AddCommand(newSnapshotExportCmd())
	cmd.AddCommand(newSnapshotDeleteCmd())

	return cmd
}

// newSnapshotSaveCmd creates the "snapshot save" subcommand.
func newSnapshotSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save [name] [file]",
		Short: "Store a snapshot file under a name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name, file := args[0], args[1]

			snap, err := kin.ReadSnapshotFile(file)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			rec, err := st.Save(ctx, name, snap)
			if err != nil {
				return err
			}

			printSuccess("Saved snapshot %q", name)
			printDetail("%d people, %d edges (id %s)", rec.People, rec.Edges, rec.ID)
			return nil
		},
	}
}

// newSnapshotListCmd creates the "snapshot list" subcommand.
func newSnapshotListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			recs, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				printInfo("No snapshots stored")
				return nil
			}

			for _, rec := range recs {
				fmt.Println(StyleValue.Render(rec.Name))
				printDetail("%d people · %d edges · updated %s",
					rec.People, rec.Edges, rec.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

// newSnapshotExportCmd creates the "snapshot export" subcommand.
func newSnapshotExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write a stored snapshot back to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			snap, _, err := st.Load(ctx, name)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = name + ".json"
			}
			if err := kin.WriteSnapshotFile(snap, path); err != nil {
				return err
			}

			printSuccess("Exported snapshot %q", name)
			printFile(path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>.json)")
	return cmd
}

// newSnapshotDeleteCmd creates the "snapshot delete" subcommand.
func newSnapshotDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Delete(ctx, name); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %q", name)
			return nil
		},
	}
}
