package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/spf13/cobra"
)

var materialCmd = &cobra.Command{
	Use:     "material",
	Aliases: []string{"materials"},
	Short:   "Manage study materials",
}

var materialAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a study material",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		subject, _ := flags.GetString("subject")
		typ, _ := flags.GetString("type")
		body, _ := flags.GetString("content")
		file, _ := flags.GetString("file")
		url, _ := flags.GetString("url")
		tags, _ := flags.GetString("tags")
		public, _ := flags.GetBool("public")

		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read content: %w", err)
			}
			body = string(data)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.deps.Ledger.CreateMaterial(cmd.Context(), e.user.ID, ledger.MaterialInput{
			Title:    strings.Join(args, " "),
			Subject:  subject,
			Type:     ledger.MaterialType(typ),
			Content:  body,
			FileURL:  url,
			Tags:     ledger.ParseTags(tags),
			IsPublic: public,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q (%s)\n", m.Type, m.Title, m.ID)
		return nil
	},
}

var materialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List study materials",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		query, _ := flags.GetString("query")
		subject, _ := flags.GetString("subject")
		typ, _ := flags.GetString("type")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		all, err := e.deps.Ledger.Materials(cmd.Context(), e.user.ID)
		if err != nil {
			return err
		}
		ms := ledger.FilterMaterials(all, ledger.MaterialFilter{
			Query:   query,
			Subject: subject,
			Type:    ledger.MaterialType(typ),
		})

		out := cmd.OutOrStdout()
		if len(ms) == 0 {
			fmt.Fprintln(out, "No materials found.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-9s  %-28s  %-16s  %5s\n", "ID", "Type", "Title", "Subject", "Views")
		fmt.Fprintln(out, strings.Repeat("─", 102))
		for _, m := range ms {
			fmt.Fprintf(out, "%-36s  %-9s  %-28s  %-16s  %5d\n",
				m.ID, m.Type, truncate(m.Title, 28), truncate(m.Subject, 16), m.Views)
		}
		return nil
	},
}

var materialViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a material and count the view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		m, err := e.deps.Ledger.IncrementMaterialViews(cmd.Context(), e.user.ID, args[0])
		if err != nil {
			return fmt.Errorf("material %s: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:    %s\n", m.Title)
		fmt.Fprintf(out, "Subject:  %s\n", m.Subject)
		fmt.Fprintf(out, "Type:     %s\n", m.Type)
		if len(m.Tags) > 0 {
			fmt.Fprintf(out, "Tags:     %s\n", strings.Join(m.Tags, ", "))
		}
		if m.FileURL != "" {
			fmt.Fprintf(out, "URL:      %s\n", m.FileURL)
		}
		fmt.Fprintf(out, "Views:    %d\n", m.Views)
		fmt.Fprintf(out, "Updated:  %s\n", m.UpdatedAt.Local().Format("2006-01-02 15:04"))
		if m.Content != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, m.Content)
		}
		return nil
	},
}

var materialRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete a material",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.deps.Ledger.RemoveMaterial(cmd.Context(), e.user.ID, args[0]); err != nil {
			return fmt.Errorf("material %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

func init() {
	materialAddCmd.Flags().StringP("subject", "s", "", "Subject")
	materialAddCmd.Flags().StringP("type", "t", string(ledger.MaterialNote), "One of note, flashcard, document, video")
	materialAddCmd.Flags().StringP("content", "c", "", "Material text")
	materialAddCmd.Flags().StringP("file", "f", "", "Read the material text from a file")
	materialAddCmd.Flags().String("url", "", "Link to the source file or video")
	materialAddCmd.Flags().String("tags", "", "Comma-separated tags")
	materialAddCmd.Flags().Bool("public", false, "Mark the material as public")
	materialAddCmd.MarkFlagsMutuallyExclusive("content", "file")

	materialListCmd.Flags().StringP("query", "q", "", "Match title or tags")
	materialListCmd.Flags().StringP("subject", "s", "", "Only this subject")
	materialListCmd.Flags().StringP("type", "t", "", "Only this type")

	materialCmd.AddCommand(materialAddCmd)
	materialCmd.AddCommand(materialListCmd)
	materialCmd.AddCommand(materialViewCmd)
	materialCmd.AddCommand(materialRmCmd)
}
