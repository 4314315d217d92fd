package analysis

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeAdsInput(t *testing.T) {
	cases := []struct {
		name    string
		raw     []interface{}
		want    []string
		wantErr string
	}{
		{
			name:    "nil input",
			raw:     nil,
			wantErr: `Du måste skicka ett fält "ads" med minst två annonser (array av strängar).`,
		},
		{
			name:    "single ad",
			raw:     []interface{}{"en annons"},
			wantErr: `Du måste skicka ett fält "ads" med minst två annonser (array av strängar).`,
		},
		{
			name:    "non-string entry",
			raw:     []interface{}{"annons a", 42.0},
			wantErr: "Annons på index 1 är inte en sträng.",
		},
		{
			name:    "blank after trim",
			raw:     []interface{}{"annons a", "   \n\t "},
			wantErr: "Annons på index 1 är tom efter trimning.",
		},
		{
			name: "trims entries",
			raw:  []interface{}{"  annons a  ", "\nannons b\n"},
			want: []string{"annons a", "annons b"},
		},
		{
			name: "three ads",
			raw:  []interface{}{"a-text", "b-text", "c-text"},
			want: []string{"a-text", "b-text", "c-text"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := NormalizeAdsInput(c.raw)
			if c.wantErr != "" {
				var invalid *InvalidInputError
				if !errors.As(err, &invalid) {
					t.Fatalf("expected InvalidInputError, got %v", err)
				}
				if invalid.Message != c.wantErr {
					t.Fatalf("message = %q, want %q", invalid.Message, c.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %d ads, want %d", len(got), len(c.want))
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Fatalf("ads[%d] = %q, want %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestBuildComparePrompt(t *testing.T) {
	if _, err := BuildComparePrompt([]string{"only one"}); !errors.Is(err, ErrTooFewAds) {
		t.Fatalf("expected ErrTooFewAds, got %v", err)
	}

	prompt, err := BuildComparePrompt([]string{"första annonsen", "andra annonsen", "tredje annonsen"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"[ANNONS A]\nförsta annonsen",
		"[ANNONS B]\nandra annonsen",
		"[ANNONS C]\ntredje annonsen",
		"Du är en senior rekryterare",
		`"recommendationAdId"`,
		`"deepAnalysisPerAd"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	if !strings.Contains(prompt, "[ANNONS A]\nförsta annonsen\n\n[ANNONS B]") {
		t.Fatal("ad blocks are not separated by a blank line")
	}

	if strings.HasSuffix(prompt, "\n") {
		t.Fatal("prompt should be trimmed")
	}
}

func TestBuildComparePromptDeterministic(t *testing.T) {
	ads := []string{"annons a", "annons b"}
	first, _ := BuildComparePrompt(ads)
	second, _ := BuildComparePrompt(ads)
	if first != second {
		t.Fatal("identical input must produce identical prompts")
	}
}

func TestAdLabel(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{2, "C"},
		{25, "Z"},
	}
	for _, c := range cases {
		if got := AdLabel(c.index); got != c.want {
			t.Fatalf("AdLabel(%d) = %q, want %q", c.index, got, c.want)
		}
	}
}
