package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		characters, err := client.Characters(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tNAME\tFAVORITE\tDESCRIPTION")
		for _, c := range characters {
			fav := ""
			if c.Favorite {
				fav = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Slug, c.Name, fav, c.Description)
		}
		return w.Flush()
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available for chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		models, err := client.Models(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDEFAULT")
		for _, m := range models {
			def := ""
			if m.Default {
				def = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, def)
		}
		return w.Flush()
	},
}

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your conversations, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		character, _ := cmd.Flags().GetString("character")
		conversations, err := client.Conversations(cmd.Context(), character)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCHARACTER\tTITLE")
		for _, c := range conversations {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.CharacterSlug, c.Title)
		}
		return w.Flush()
	},
}

func init() {
	conversationsCmd.Flags().String("character", "", "Only conversations with this character")
}
