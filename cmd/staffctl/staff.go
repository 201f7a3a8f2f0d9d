package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/staff-roster/internal/domain"
	"github.com/spec-kit/staff-roster/internal/roster"
)

func newListCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the staff list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.store.Load(cmd.Context(), c.preferRemote())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			if len(list) == 0 {
				fmt.Fprintln(out, "No staff.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ORDER\tID\tNICKNAME\tAVATAR")
			for _, rec := range list {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rec.Order, rec.ID, rec.Nickname, rec.AvatarURL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the list as JSON")
	return cmd
}

func newAddCmd(c *cli) *cobra.Command {
	var rec domain.StaffRecord

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a staff member, or replace the one with the same --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.store.Load(cmd.Context(), c.preferRemote())
			return c.save(cmd, roster.Upsert(list, rec))
		},
	}
	cmd.Flags().StringVar(&rec.ID, "id", "", "Record id (generated when empty)")
	cmd.Flags().StringVar(&rec.Nickname, "nickname", "", "Display name")
	cmd.Flags().StringVar(&rec.Intro, "intro", "", "Introduction text")
	cmd.Flags().StringVar(&rec.AvatarURL, "avatar", "", "Avatar URL (http or https)")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var nickname, intro, avatar string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.store.Load(cmd.Context(), c.preferRemote())
			rec, ok := roster.Find(list, args[0])
			if !ok {
				return fmt.Errorf("no staff member with id %q", args[0])
			}

			flags := cmd.Flags()
			if flags.Changed("nickname") {
				rec.Nickname = nickname
			}
			if flags.Changed("intro") {
				rec.Intro = intro
			}
			if flags.Changed("avatar") {
				rec.AvatarURL = avatar
			}
			return c.save(cmd, roster.Upsert(list, rec))
		},
	}
	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name")
	cmd.Flags().StringVar(&intro, "intro", "", "Introduction text")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL (http or https)")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a staff member",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.store.Load(cmd.Context(), c.preferRemote())
			if _, ok := roster.Find(list, args[0]); !ok {
				return fmt.Errorf("no staff member with id %q", args[0])
			}
			return c.save(cmd, roster.Delete(list, args[0]))
		},
	}
}

func newMoveCmd(c *cli) *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "move <id> [up|down]",
		Short: "Reorder a staff member",
		Long: `Move a staff member one place up or down, or with --before to the
position of another member.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list := c.store.Load(cmd.Context(), c.preferRemote())
			id := args[0]
			if _, ok := roster.Find(list, id); !ok {
				return fmt.Errorf("no staff member with id %q", id)
			}

			if before != "" {
				if _, ok := roster.Find(list, before); !ok {
					return fmt.Errorf("no staff member with id %q", before)
				}
				return c.save(cmd, roster.MoveBefore(list, id, before))
			}

			if len(args) != 2 {
				return fmt.Errorf("direction required: up or down")
			}
			switch args[1] {
			case "up":
				return c.save(cmd, roster.Move(list, id, -1))
			case "down":
				return c.save(cmd, roster.Move(list, id, 1))
			default:
				return fmt.Errorf("unknown direction %q", args[1])
			}
		},
	}
	cmd.Flags().StringVar(&before, "before", "", "Move to the position of this id")
	return cmd
}
