package analysis

import (
	"strings"
	"testing"
)

func TestNormalizeAdID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a", "A"},
		{" A ", "A"},
		{"b", "B"},
		{"Annons A", "A"},
		{"annons b", "A"},
		{"Östra rollen", "Ö"},
		{"", ""},
		{"   ", ""},
		{"12", "12"},
		{"1b", "B"},
	}
	for _, c := range cases {
		if got := NormalizeAdID(c.in); got != c.want {
			t.Fatalf("NormalizeAdID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeFillsLabels(t *testing.T) {
	res := &Result{
		Ads: []AnalyzedAd{
			{ID: "A", Title: "Utvecklare", Company: "Bolaget AB"},
			{ID: "B", Title: "Projektledare"},
			{ID: "C", Title: "Jurist", Label: "Egen etikett"},
		},
		Comparison: &Comparison{Reason: "redan satt"},
	}

	Normalize(res)

	if res.Ads[0].Label != "Utvecklare – Bolaget AB" {
		t.Fatalf("label A = %q", res.Ads[0].Label)
	}
	if res.Ads[1].Label != "Projektledare" {
		t.Fatalf("label B = %q", res.Ads[1].Label)
	}
	if res.Ads[2].Label != "Egen etikett" {
		t.Fatalf("label C must be preserved, got %q", res.Ads[2].Label)
	}
	if res.Comparison.Reason != "redan satt" {
		t.Fatalf("reason must be preserved, got %q", res.Comparison.Reason)
	}
}

func TestNormalizeSynthesizesComparison(t *testing.T) {
	cases := []struct {
		name       string
		res        *Result
		wantInside string
	}{
		{
			name: "missing comparison",
			res: &Result{
				Ads: []AnalyzedAd{{ID: "A", Title: "Utvecklare"}},
			},
			wantInside: "the recommended role",
		},
		{
			name: "reason from recommended ad label",
			res: &Result{
				Ads: []AnalyzedAd{
					{ID: "A", Title: "Utvecklare", Company: "Bolaget AB"},
					{ID: "B", Title: "Jurist"},
				},
				Comparison: &Comparison{RecommendationAdID: "a"},
			},
			wantInside: "Utvecklare – Bolaget AB",
		},
		{
			name: "reason from recommendation label",
			res: &Result{
				Ads:        []AnalyzedAd{{ID: "A", Title: "Utvecklare"}},
				Comparison: &Comparison{RecommendationAdID: "X", RecommendationLabel: "Jurist hos Firman"},
			},
			wantInside: "Jurist hos Firman",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			Normalize(c.res)
			if c.res.Comparison == nil {
				t.Fatal("comparison must be created")
			}
			if !strings.Contains(c.res.Comparison.Reason, c.wantInside) {
				t.Fatalf("reason %q does not mention %q", c.res.Comparison.Reason, c.wantInside)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	res := &Result{
		Ads: []AnalyzedAd{{ID: "A", Title: "Utvecklare", Company: "Bolaget AB"}},
	}
	Normalize(res)
	firstLabel := res.Ads[0].Label
	firstReason := res.Comparison.Reason

	Normalize(res)
	if res.Ads[0].Label != firstLabel || res.Comparison.Reason != firstReason {
		t.Fatal("Normalize must be idempotent")
	}
}
