package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

var draftNoContext bool

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft documents in a learned style",
	Long: `Opens iterative drafting sessions conditioned on a style profile.
Each session keeps every revision; finalizing closes the session to
further changes.`,
}

var draftCreateCmd = &cobra.Command{
	Use:   "create [profile-id] [brief]",
	Short: "Start a drafting session from a brief",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftCreate,
}

var draftReviseCmd = &cobra.Command{
	Use:   "revise [session-id] [instruction]",
	Short: "Revise the current draft with an instruction",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftRevise,
}

var draftFinalizeCmd = &cobra.Command{
	Use:   "finalize [session-id]",
	Short: "Close a session to further revisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftFinalize,
}

var draftShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the session's current draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftShow,
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafting sessions",
	RunE:  runDraftList,
}

var draftSuggestCmd = &cobra.Command{
	Use:   "suggest [session-id]",
	Short: "Suggest improvements for the current draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftSuggest,
}

var draftExportCmd = &cobra.Command{
	Use:   "export [session-id] [destination]",
	Short: "Write the current draft to a file",
	Long: `Writes the session's latest revision to the destination path as plain
text or markdown, selected by the file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: runDraftExport,
}

func init() {
	draftCreateCmd.Flags().BoolVar(&draftNoContext, "no-context", false, "skip knowledge-base retrieval for the first revision")
	draftCmd.AddCommand(draftCreateCmd)
	draftCmd.AddCommand(draftReviseCmd)
	draftCmd.AddCommand(draftFinalizeCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftSuggestCmd)
	draftCmd.AddCommand(draftExportCmd)
	rootCmd.AddCommand(draftCmd)
}

func runDraftCreate(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}
	if llmService == nil {
		return errors.New("llm provider not configured, run 'quill settings llm'")
	}

	session, err := draftService.Create(context.Background(), args[0], args[1], !draftNoContext)
	if err != nil {
		return fmt.Errorf("draft creation failed: %w", err)
	}

	cmd.Printf("Session %s opened.\n\n", session.ID)
	cmd.Println(session.CurrentRevision())
	return nil
}

func runDraftRevise(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}
	if llmService == nil {
		return errors.New("llm provider not configured, run 'quill settings llm'")
	}

	session, err := draftService.Revise(context.Background(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("revision failed: %w", err)
	}

	cmd.Printf("Revision %d:\n\n", len(session.Revisions))
	cmd.Println(session.CurrentRevision())
	return nil
}

func runDraftFinalize(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}

	session, err := draftService.Finalize(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("finalize failed: %w", err)
	}

	cmd.Printf("Session %s finalized after %d revisions.\n", session.ID, len(session.Revisions))
	return nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}

	session, err := draftService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading session failed: %w", err)
	}

	cmd.Printf("Session %s (%s, %d revisions)\n", session.ID, session.Status, len(session.Revisions))
	cmd.Printf("Brief: %s\n\n", session.Brief)
	cmd.Println(session.CurrentRevision())
	return nil
}

func runDraftList(cmd *cobra.Command, _ []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}

	sessions, err := draftService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing sessions failed: %w", err)
	}
	if len(sessions) == 0 {
		cmd.Println("No drafting sessions. Run 'quill draft create' first.")
		return nil
	}

	cmd.Println("Drafting sessions:")
	for _, s := range sessions {
		cmd.Printf("  %s  %-10s  %d revisions  %s\n",
			s.ID, s.Status, len(s.Revisions), snippet(s.Brief, 60))
	}
	return nil
}

func runDraftSuggest(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}

	suggestions, err := draftService.Suggest(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}
	if len(suggestions) == 0 {
		cmd.Println("No suggestions, the draft looks complete.")
		return nil
	}

	cmd.Println("Suggestions:")
	for _, s := range suggestions {
		cmd.Printf("  - %s\n", s)
	}
	return nil
}

func runDraftExport(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errors.New("draft service not configured")
	}
	if exportService == nil {
		return errors.New("exporter not configured")
	}

	session, err := draftService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading session failed: %w", err)
	}
	if session.CurrentRevision() == "" {
		return fmt.Errorf("session %s has no draft to export: %w", session.ID, domain.ErrInvalidInput)
	}

	if err := exportService.Export(context.Background(), session.CurrentRevision(), args[1]); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	cmd.Printf("Exported session %s to %s.\n", session.ID, args[1])
	return nil
}
