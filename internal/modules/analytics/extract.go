package analytics

import (
	"strings"

	"github.com/gomonday/annonsanalys-core/internal/models"
	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
)

// Source blocks a token can originate from.
const (
	SourceApplicationAdvice = "applicationAdvice"
	SourceDeepAnalysis      = "deepAnalysisPerAd"
	SourceSections          = "sections"
)

// Token types, one per list kind in the analysis result.
const (
	TokenTheme         = "theme"
	TokenKeyword       = "keyword"
	TokenATSTip        = "ats_tip"
	TokenStrength      = "strength"
	TokenRisk          = "risk"
	TokenCulture       = "culture"
	TokenDevelopment   = "development"
	TokenHighlight     = "highlight"
	TokenKeyDifference = "key_difference"
)

// TraitTokenTypes are the token types counted as role traits in the
// dashboard insights.
var TraitTokenTypes = map[string]bool{
	TokenStrength: true,
	TokenTheme:    true,
}

// ExtractTokens flattens an analysis result into token rows for the
// dashboard. Position is the index within the source list. Key differences
// compare ads, so their ad id is nil.
func ExtractTokens(res *analysis.Result, analysisID, userID string) []models.AnalysisTokenModel {
	if res == nil {
		return nil
	}

	var tokens []models.AnalysisTokenModel

	add := func(adID *string, sourceBlock string, sectionID *string, tokenType string, texts []string) {
		for i, text := range texts {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				continue
			}
			tokens = append(tokens, models.AnalysisTokenModel{
				AnalysisID:  analysisID,
				UserID:      userID,
				AdID:        adID,
				SourceBlock: sourceBlock,
				SectionID:   sectionID,
				TokenType:   tokenType,
				TokenText:   trimmed,
				Position:    i,
			})
		}
	}

	if res.ApplicationAdvice != nil {
		for _, perAd := range res.ApplicationAdvice.PerAd {
			adID := normalizedAdIDPtr(perAd.AdID)
			add(adID, SourceApplicationAdvice, nil, TokenTheme, perAd.Themes)
			add(adID, SourceApplicationAdvice, nil, TokenKeyword, perAd.Keywords)
			add(adID, SourceApplicationAdvice, nil, TokenATSTip, perAd.ATSTips)
		}
	}

	for _, deep := range res.DeepAnalysisPerAd {
		adID := normalizedAdIDPtr(deep.AdID)
		add(adID, SourceDeepAnalysis, nil, TokenStrength, deep.Strengths)
		add(adID, SourceDeepAnalysis, nil, TokenRisk, deep.Risks)
		add(adID, SourceDeepAnalysis, nil, TokenCulture, deep.CultureAndFit)
		add(adID, SourceDeepAnalysis, nil, TokenDevelopment, deep.Development)
	}

	for _, section := range res.Sections {
		sectionID := section.ID
		for _, perAd := range section.PerAd {
			add(normalizedAdIDPtr(perAd.AdID), SourceSections, &sectionID, TokenHighlight, perAd.Highlights)
		}
		add(nil, SourceSections, &sectionID, TokenKeyDifference, section.KeyDifferences)
	}

	return tokens
}

func normalizedAdIDPtr(raw string) *string {
	id := analysis.NormalizeAdID(raw)
	if id == "" {
		return nil
	}
	return &id
}
