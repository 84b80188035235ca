package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Learn and inspect writing style profiles",
	Long: `Analyses stored documents and aggregates their structure, tone and
formatting into an immutable style profile that 'draft create' can
condition on.`,
}

var styleLearnCmd = &cobra.Command{
	Use:   "learn [doc-id...]",
	Short: "Learn a style profile from stored documents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStyleLearn,
}

var styleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored style profiles",
	RunE:  runStyleList,
}

var styleShowCmd = &cobra.Command{
	Use:   "show [profile-id]",
	Short: "Show a style profile in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runStyleShow,
}

func init() {
	styleCmd.AddCommand(styleLearnCmd)
	styleCmd.AddCommand(styleListCmd)
	styleCmd.AddCommand(styleShowCmd)
	rootCmd.AddCommand(styleCmd)
}

func runStyleLearn(cmd *cobra.Command, args []string) error {
	if styleService == nil {
		return errors.New("style service not configured")
	}

	profile, err := styleService.Learn(context.Background(), args)
	if err != nil {
		return fmt.Errorf("style learning failed: %w", err)
	}

	cmd.Printf("Learned profile %s from %d documents.\n", profile.ID, profile.Features.SampleSize)
	cmd.Printf("  Tone: %s\n", profile.Features.Language.Tone)
	cmd.Printf("  Avg sentence length: %.1f words\n", profile.Features.Language.AvgSentenceLength)
	return nil
}

func runStyleList(cmd *cobra.Command, _ []string) error {
	if styleService == nil {
		return errors.New("style service not configured")
	}

	profiles, err := styleService.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing profiles failed: %w", err)
	}
	if len(profiles) == 0 {
		cmd.Println("No style profiles. Run 'quill style learn' first.")
		return nil
	}

	cmd.Println("Style profiles:")
	for _, p := range profiles {
		cmd.Printf("  %s  %s  %d docs  tone=%s\n",
			p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.Features.SampleSize, p.Features.Language.Tone)
	}
	return nil
}

func runStyleShow(cmd *cobra.Command, args []string) error {
	if styleService == nil {
		return errors.New("style service not configured")
	}

	p, err := styleService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("loading profile failed: %w", err)
	}

	cmd.Printf("Profile %s\n", p.ID)
	cmd.Printf("  Created: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Printf("  Sources: %s\n", strings.Join(p.SourceDocumentIDs, ", "))
	cmd.Println()

	cmd.Println("[Structure]")
	cmd.Printf("  Avg headers per document: %.1f\n", p.Features.Structure.AvgHeaderCount)
	cmd.Printf("  Avg paragraph length: %.0f chars\n", p.Features.Structure.AvgParagraphLength)
	cmd.Printf("  Bullet usage: %.0f%%\n", p.Features.Structure.BulletRatio*100)
	cmd.Printf("  Numbered lists: %.0f%%\n", p.Features.Structure.NumberingRatio*100)
	cmd.Println()

	cmd.Println("[Language]")
	cmd.Printf("  Tone: %s\n", p.Features.Language.Tone)
	cmd.Printf("  Formality: %.1f per 1k words\n", p.Features.Language.FormalityScore)
	cmd.Printf("  Technicality: %.1f per 1k words\n", p.Features.Language.TechnicalScore)
	cmd.Printf("  Avg sentence length: %.1f words\n", p.Features.Language.AvgSentenceLength)
	cmd.Printf("  Vocabulary richness: %.2f\n", p.Features.Language.VocabularyRichness)

	if len(p.Features.Sections) > 0 {
		cmd.Println()
		cmd.Println("[Recurring sections]")
		for _, s := range p.Features.Sections {
			cmd.Printf("  %s (in %d docs)\n", s.Title, s.Frequency)
		}
	}
	return nil
}
