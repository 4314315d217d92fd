package models

// AnalysisModel stores one completed job-ad comparison.
//
// RawAds keeps the original ad texts in submission order. Result holds the
// full normalized JSON payload returned to clients, so a stored analysis can
// be replayed without re-invoking the model.
type AnalysisModel struct {
	Base
	UserID           string      `json:"user_id"           gorm:"type:char(36);index"`
	RawAds           StringArray `json:"raw_ads"           gorm:"type:json"`
	Result           string      `json:"result"            gorm:"type:longtext"`
	RecommendedAdID  string      `json:"recommended_ad_id" gorm:"type:varchar(16)"`
	RecommendedLabel string      `json:"recommended_label" gorm:"type:varchar(255)"`
}

func (AnalysisModel) TableName() string { return "ad_analyses" }

// AnalysisTokenModel is a single extracted phrase from an analysis result,
// denormalized for dashboard aggregation. AdID is nil for tokens that span
// ads (key differences).
type AnalysisTokenModel struct {
	Base
	AnalysisID  string  `json:"analysis_id"  gorm:"type:char(36);index;not null"`
	UserID      string  `json:"user_id"      gorm:"type:char(36);index"`
	AdID        *string `json:"ad_id"        gorm:"type:varchar(16)"`
	SourceBlock string  `json:"source_block" gorm:"type:varchar(32);index;not null"`
	SectionID   *string `json:"section_id"   gorm:"type:varchar(64)"`
	TokenType   string  `json:"token_type"   gorm:"type:varchar(32);index;not null"`
	TokenText   string  `json:"token_text"   gorm:"type:text;not null"`
	Position    int     `json:"position"`
}

func (AnalysisTokenModel) TableName() string { return "ad_analysis_tokens" }

// PreferenceAnswerModel records one quiz answer. A user answers each
// question at most once per analysis; re-submitting replaces the row.
type PreferenceAnswerModel struct {
	Base
	AnalysisID   string `json:"analysis_id"   gorm:"type:char(36);uniqueIndex:idx_answer_identity;not null"`
	UserID       string `json:"user_id"       gorm:"type:char(36);uniqueIndex:idx_answer_identity"`
	QuestionID   string `json:"question_id"   gorm:"type:varchar(64);uniqueIndex:idx_answer_identity;not null"`
	QuestionText string `json:"question_text" gorm:"type:text"`
	OptionID     string `json:"option_id"     gorm:"type:varchar(64);not null"`
	OptionLabel  string `json:"option_label"  gorm:"type:text"`
	AdID         string `json:"ad_id"         gorm:"type:varchar(16);not null"`
}

func (PreferenceAnswerModel) TableName() string { return "ad_preference_answers" }
