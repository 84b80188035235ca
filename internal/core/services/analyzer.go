package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// Word lists used as register markers. Scores are occurrences per
// thousand words so document length does not skew them.
var (
	formalMarkers = []string{
		"pursuant", "heretofore", "whereas", "therefore", "furthermore",
		"moreover", "nevertheless", "notwithstanding", "accordingly",
	}
	technicalMarkers = []string{
		"implement", "configure", "execute", "process", "system",
		"framework", "methodology", "specification", "parameter",
	}
	casualMarkers = []string{
		"really", "pretty", "quite", "basically", "actually",
		"honestly", "obviously", "definitely",
	}
)

var (
	bulletLine    = regexp.MustCompile(`^[•\-\*]\s+`)
	numberedLine  = regexp.MustCompile(`^\d+[.)]\s+`)
	numberedTitle = regexp.MustCompile(`^\d+\.`)
	wordPattern   = regexp.MustCompile(`\b\w+\b`)
	datePattern   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b|\b\w+ \d{1,2},? \d{4}\b`)
	sectionNumber = regexp.MustCompile(`\b\d+\.\d+(\.\d+)*\b`)
	capsEmphasis  = regexp.MustCompile(`\b[A-Z]{3,}\b`)

	personName  = regexp.MustCompile(`\b(For|By|From|To|With|Between) [A-Z][a-z]+ [A-Z][a-z]+\b`)
	yearPattern = regexp.MustCompile(`\b\d{4}\b`)
	datelike    = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// docAnalysis holds the per-document measurements that feed profile
// aggregation.
type docAnalysis struct {
	headerCount     int
	avgParaLength   float64
	usesBullets     bool
	usesNumbering   bool
	formalityScore  float64
	technicalScore  float64
	casualScore     float64
	avgSentenceLen  float64
	avgWordLen      float64
	vocabRichness   float64
	hasDates        bool
	hasSectionNums  bool
	usesCaps        bool
	sections        []docSection
}

// docSection is a section found in one document, keyed by its
// generalised title.
type docSection struct {
	title  string
	length int
}

// analyzeDocument measures one document's structure, language and
// formatting.
func analyzeDocument(text string) docAnalysis {
	analysis := analyzeStructure(text)
	analyzeLanguage(text, &analysis)
	analyzeFormatting(text, &analysis)
	analysis.sections = extractSections(text)
	return analysis
}

// analyzeStructure classifies lines into headers, list items and
// paragraphs.
func analyzeStructure(text string) docAnalysis {
	var analysis docAnalysis
	var paraLengths []int

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case isHeaderLine(line):
			analysis.headerCount++
		case bulletLine.MatchString(line):
			analysis.usesBullets = true
		case numberedLine.MatchString(line):
			analysis.usesNumbering = true
		case len(line) > 20:
			paraLengths = append(paraLengths, len(line))
		}
	}

	if len(paraLengths) > 0 {
		sum := 0
		for _, l := range paraLengths {
			sum += l
		}
		analysis.avgParaLength = float64(sum) / float64(len(paraLengths))
	}
	return analysis
}

// analyzeLanguage measures register markers, sentence construction and
// vocabulary richness.
func analyzeLanguage(text string, analysis *docAnalysis) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return
	}

	counts := make(map[string]int, len(words))
	wordLenSum := 0
	for _, w := range words {
		counts[w]++
		wordLenSum += len(w)
	}

	perMille := func(markers []string) float64 {
		n := 0
		for _, m := range markers {
			n += counts[m]
		}
		return float64(n) / float64(len(words)) * 1000
	}
	analysis.formalityScore = perMille(formalMarkers)
	analysis.technicalScore = perMille(technicalMarkers)
	analysis.casualScore = perMille(casualMarkers)

	sentences := splitOnTerminators(text)
	if len(sentences) > 0 {
		wordSum := 0
		for _, s := range sentences {
			wordSum += len(strings.Fields(s))
		}
		analysis.avgSentenceLen = float64(wordSum) / float64(len(sentences))
	}

	analysis.avgWordLen = float64(wordLenSum) / float64(len(words))
	analysis.vocabRichness = float64(len(counts)) / float64(len(words))
}

// analyzeFormatting detects recurring formatting markers.
func analyzeFormatting(text string, analysis *docAnalysis) {
	analysis.hasDates = datePattern.MatchString(text)
	analysis.hasSectionNums = sectionNumber.MatchString(text)
	analysis.usesCaps = capsEmphasis.MatchString(text)
}

// extractSections finds header-delimited sections and generalises their
// titles so they can be matched across documents.
func extractSections(text string) []docSection {
	var sections []docSection
	var currentTitle string
	var currentLen int

	flush := func() {
		if currentTitle != "" {
			sections = append(sections, docSection{title: currentTitle, length: currentLen})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isHeaderLine(line) || (numberedTitle.MatchString(line) && len(line) < 100 && !strings.HasSuffix(line, ".")) {
			flush()
			currentTitle = generalizeTitle(line)
			currentLen = 0
			continue
		}
		if currentTitle != "" {
			currentLen += len(line) + 1
		}
	}
	flush()
	return sections
}

// generalizeTitle replaces names, years and dates with placeholders so
// equivalent section titles from different documents group together.
// Names are only recognised after a preposition, otherwise ordinary
// title-case headings like "Payment Terms" would be swallowed.
func generalizeTitle(title string) string {
	title = personName.ReplaceAllString(title, "$1 [NAME]")
	title = datelike.ReplaceAllString(title, "[DATE]")
	title = yearPattern.ReplaceAllString(title, "[YEAR]")
	return title
}

// isHeaderLine reports whether a line looks like a section header:
// short, all-caps or title case, and not a sentence.
func isHeaderLine(line string) bool {
	if len(line) >= 100 || strings.HasSuffix(line, ".") {
		return false
	}
	return isAllCaps(line) || isTitleCase(line)
}

// isAllCaps reports whether the line's letters are all uppercase.
func isAllCaps(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isTitleCase reports whether every word starts with an uppercase letter.
func isTitleCase(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		r := []rune(f)[0]
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// splitOnTerminators splits text into sentences on ., ! and ?.
func splitOnTerminators(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// aggregateAnalyses consolidates per-document measurements into one
// StyleFeatures using means and across-sample frequencies, so the
// profile generalises instead of memorising a single document.
func aggregateAnalyses(analyses []docAnalysis) domain.StyleFeatures {
	n := float64(len(analyses))

	var features domain.StyleFeatures
	features.SampleSize = len(analyses)

	var headerSum, paraSum, bullets, numbering float64
	var formalSum, technicalSum, casualSum float64
	var sentenceSum, wordSum, vocabSum float64
	var dates, sectionNums, caps float64

	for _, a := range analyses {
		headerSum += float64(a.headerCount)
		paraSum += a.avgParaLength
		if a.usesBullets {
			bullets++
		}
		if a.usesNumbering {
			numbering++
		}
		formalSum += a.formalityScore
		technicalSum += a.technicalScore
		casualSum += a.casualScore
		sentenceSum += a.avgSentenceLen
		wordSum += a.avgWordLen
		vocabSum += a.vocabRichness
		if a.hasDates {
			dates++
		}
		if a.hasSectionNums {
			sectionNums++
		}
		if a.usesCaps {
			caps++
		}
	}

	features.Structure = domain.StructureFeatures{
		AvgHeaderCount:     headerSum / n,
		AvgParagraphLength: paraSum / n,
		BulletRatio:        bullets / n,
		NumberingRatio:     numbering / n,
	}
	features.Language = domain.LanguageFeatures{
		FormalityScore:     formalSum / n,
		TechnicalScore:     technicalSum / n,
		AvgSentenceLength:  sentenceSum / n,
		AvgWordLength:      wordSum / n,
		VocabularyRichness: vocabSum / n,
	}
	features.Language.Tone = dominantTone(formalSum/n, technicalSum/n, casualSum/n)
	features.Formatting = domain.FormattingFeatures{
		DateRatio:      dates / n,
		NumberingRatio: sectionNums / n,
		CapsRatio:      caps / n,
	}
	features.Sections = commonSections(analyses)

	return features
}

// dominantTone picks the register label from the aggregated scores.
func dominantTone(formality, technical, casual float64) string {
	switch {
	case formality > casual && formality > 0:
		return "formal"
	case technical > 5:
		return "technical"
	default:
		return "plain"
	}
}

// commonSections keeps generalised section titles that recur in at
// least two sample documents, most frequent first.
func commonSections(analyses []docAnalysis) []domain.SectionPattern {
	type group struct {
		count       int
		occurrences int
		lenSum      int
	}
	groups := make(map[string]*group)

	for _, a := range analyses {
		seen := make(map[string]bool)
		for _, sec := range a.sections {
			g, ok := groups[sec.title]
			if !ok {
				g = &group{}
				groups[sec.title] = g
			}
			g.occurrences++
			g.lenSum += sec.length
			if !seen[sec.title] {
				g.count++
				seen[sec.title] = true
			}
		}
	}

	var patterns []domain.SectionPattern
	for title, g := range groups {
		if g.count < 2 {
			continue
		}
		patterns = append(patterns, domain.SectionPattern{
			Title:     title,
			Frequency: g.count,
			AvgLength: float64(g.lenSum) / float64(g.occurrences),
		})
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Frequency != patterns[j].Frequency {
			return patterns[i].Frequency > patterns[j].Frequency
		}
		return patterns[i].Title < patterns[j].Title
	})
	return patterns
}
