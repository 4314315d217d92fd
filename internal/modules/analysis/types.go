package analysis

// AnalyzedAd is the per-ad summary block of a comparison result. ID is the
// short ad letter ("A", "B", ...). Label is the combined display label,
// filled in by Normalize when the model omits it.
type AnalyzedAd struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Company string  `json:"company,omitempty"`
	Summary string  `json:"summary"`
	Label   string  `json:"label,omitempty"`
	Score   float64 `json:"score"`
}

// Comparison holds the model's spontaneous recommendation.
type Comparison struct {
	RecommendationAdID  string `json:"recommendationAdId,omitempty"`
	RecommendationLabel string `json:"recommendationLabel,omitempty"`
	Reason              string `json:"reason"`
}

// SectionPerAd carries the highlights of one ad within a section.
type SectionPerAd struct {
	AdID       string   `json:"adId"`
	Highlights []string `json:"highlights"`
}

// Section is one dynamic comparison aspect (role, requirements, ...).
type Section struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	PerAd          []SectionPerAd `json:"perAd"`
	KeyDifferences []string       `json:"key_differences,omitempty"`
}

// AdvicePerAd is targeted application advice for one ad.
type AdvicePerAd struct {
	AdID     string   `json:"adId"`
	Themes   []string `json:"themes"`
	Keywords []string `json:"keywords"`
	ATSTips  []string `json:"atsTips"`
}

// ApplicationAdvice combines general tips with per-ad advice.
type ApplicationAdvice struct {
	OverallTips []string      `json:"overallTips"`
	PerAd       []AdvicePerAd `json:"perAd"`
}

// DeepAnalysis is the in-depth block for one ad.
type DeepAnalysis struct {
	AdID          string   `json:"adId"`
	Strengths     []string `json:"strengths"`
	Risks         []string `json:"risks"`
	CultureAndFit []string `json:"cultureAndFit"`
	Development   []string `json:"development"`
}

// QuestionOption is one answer alternative, bound to exactly one ad.
type QuestionOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	AdID  string `json:"adId"`
}

// Question is one preference-quiz question.
type Question struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Options []QuestionOption `json:"options"`
}

// Result is the full structured comparison returned to clients and stored
// verbatim on the analysis row.
type Result struct {
	Ads               []AnalyzedAd       `json:"ads"`
	Comparison        *Comparison        `json:"comparison,omitempty"`
	Sections          []Section          `json:"sections"`
	ApplicationAdvice *ApplicationAdvice `json:"applicationAdvice,omitempty"`
	DeepAnalysisPerAd []DeepAnalysis     `json:"deepAnalysisPerAd,omitempty"`
	Questions         []Question         `json:"questions,omitempty"`
}
