package analysis

import (
	"errors"
	"testing"
)

func validResult() *Result {
	return &Result{
		Ads: []AnalyzedAd{
			{ID: "A", Title: "Utvecklare", Summary: "Kodar.", Score: 70},
			{ID: "B", Title: "Jurist", Summary: "Avtal.", Score: 60},
		},
		Sections: []Section{
			{
				ID:    "role",
				Title: "Roll",
				PerAd: []SectionPerAd{
					{AdID: "A", Highlights: []string{"backend"}},
					{AdID: "B", Highlights: []string{"avtalsrätt"}},
				},
				KeyDifferences: []string{"olika branscher"},
			},
		},
		ApplicationAdvice: &ApplicationAdvice{
			OverallTips: []string{"var konkret"},
			PerAd: []AdvicePerAd{
				{AdID: "A", Themes: []string{"teknik"}},
			},
		},
		DeepAnalysisPerAd: []DeepAnalysis{
			{AdID: "B", Strengths: []string{"stabilt"}},
		},
		Questions: []Question{
			{
				ID:   "q1",
				Text: "Vad lockar mest?",
				Options: []QuestionOption{
					{ID: "q1_a", Label: "teknik", AdID: "A"},
					{ID: "q1_b", Label: "juridik", AdID: "B"},
				},
			},
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	if err := Validate(validResult(), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAcceptsCaseInsensitiveIDs(t *testing.T) {
	res := validResult()
	res.Sections[0].PerAd[0].AdID = "a"
	res.Questions[0].Options[1].AdID = " b "
	if err := Validate(res, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Result)
		count  int
	}{
		{
			name:   "ad count mismatch",
			mutate: func(r *Result) {},
			count:  3,
		},
		{
			name:   "empty ad id",
			mutate: func(r *Result) { r.Ads[0].ID = " " },
			count:  2,
		},
		{
			name:   "section references unknown ad",
			mutate: func(r *Result) { r.Sections[0].PerAd[0].AdID = "X" },
			count:  2,
		},
		{
			name:   "advice references unknown ad",
			mutate: func(r *Result) { r.ApplicationAdvice.PerAd[0].AdID = "Q" },
			count:  2,
		},
		{
			name:   "deep analysis references unknown ad",
			mutate: func(r *Result) { r.DeepAnalysisPerAd[0].AdID = "Z" },
			count:  2,
		},
		{
			name:   "question option references unknown ad",
			mutate: func(r *Result) { r.Questions[0].Options[0].AdID = "D" },
			count:  2,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := validResult()
			c.mutate(res)
			err := Validate(res, c.count)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestValidateNilResult(t *testing.T) {
	if err := Validate(nil, 2); err == nil {
		t.Fatal("nil result must be rejected")
	}
}
