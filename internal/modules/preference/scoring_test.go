package preference

import (
	"testing"

	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
)

func quizResult() *analysis.Result {
	return &analysis.Result{
		Ads: []analysis.AnalyzedAd{
			{ID: "A", Title: "Utvecklare", Label: "Utvecklare – Bolaget AB"},
			{ID: "B", Title: "Jurist", Label: "Jurist – Firman"},
		},
		Questions: []analysis.Question{
			{ID: "q1", Text: "Vad lockar mest?", Options: []analysis.QuestionOption{
				{ID: "q1_a", Label: "teknik", AdID: "A"},
				{ID: "q1_b", Label: "juridik", AdID: "B"},
			}},
			{ID: "q2", Text: "Vilken miljö passar dig?", Options: []analysis.QuestionOption{
				{ID: "q2_a", Label: "startup", AdID: "A"},
				{ID: "q2_b", Label: "byrå", AdID: "B"},
			}},
			{ID: "q3", Text: "Vad vill du utvecklas inom?", Options: []analysis.QuestionOption{
				{ID: "q3_a", Label: "system", AdID: "A"},
				{ID: "q3_b", Label: "avtal", AdID: "B"},
			}},
		},
	}
}

func TestVoteCountsZeroInitsAllAds(t *testing.T) {
	counts := VoteCounts(quizResult(), nil)
	if counts["A"] != 0 || counts["B"] != 0 {
		t.Fatalf("expected zero-initialized counts, got %v", counts)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 counters, got %v", counts)
	}
}

func TestVoteCountsNormalizesAnswerIDs(t *testing.T) {
	counts := VoteCounts(quizResult(), map[string]string{
		"q1": "a",
		"q2": " A ",
		"q3": "Annons A",
	})
	if counts["A"] != 3 {
		t.Fatalf("all three answers should land on A, got %v", counts)
	}
	if counts["B"] != 0 {
		t.Fatalf("B should stay at zero, got %v", counts)
	}
}

func TestVoteCountsUnknownIDGetsFreshCounter(t *testing.T) {
	counts := VoteCounts(quizResult(), map[string]string{"q1": "Q"})
	if counts["Q"] != 1 {
		t.Fatalf("unknown id should get its own counter, got %v", counts)
	}
}

func TestTopPreferenceRequiresAllAnswers(t *testing.T) {
	res := quizResult()

	cases := []struct {
		name    string
		answers map[string]string
	}{
		{name: "no answers", answers: map[string]string{}},
		{name: "partial answers", answers: map[string]string{"q1": "A", "q2": "B"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := TopPreference(res, c.answers); got != nil {
				t.Fatalf("expected nil outcome, got %+v", got)
			}
		})
	}

	if got := TopPreference(&analysis.Result{Ads: res.Ads}, map[string]string{"q1": "A"}); got != nil {
		t.Fatalf("no questions must yield nil, got %+v", got)
	}
}

func TestTopPreferenceWinner(t *testing.T) {
	res := quizResult()
	outcome := TopPreference(res, map[string]string{
		"q1": "A",
		"q2": "B",
		"q3": "A",
	})
	if outcome == nil {
		t.Fatal("expected an outcome")
	}
	if outcome.AdID != "A" {
		t.Fatalf("winner = %q, want A", outcome.AdID)
	}
	if outcome.Score != 2 {
		t.Fatalf("score = %d, want 2", outcome.Score)
	}
	if outcome.TotalAnswers != 3 {
		t.Fatalf("totalAnswers = %d, want 3", outcome.TotalAnswers)
	}
	if outcome.Label != "Utvecklare – Bolaget AB" {
		t.Fatalf("label = %q", outcome.Label)
	}
}

func TestTopPreferenceTieFallsToAdOrder(t *testing.T) {
	res := quizResult()
	res.Questions = res.Questions[:2]
	outcome := TopPreference(res, map[string]string{
		"q1": "B",
		"q2": "A",
	})
	if outcome == nil {
		t.Fatal("expected an outcome")
	}
	if outcome.AdID != "A" {
		t.Fatalf("tie must resolve to the first ad, got %q", outcome.AdID)
	}
}

func TestTopPreferenceUnknownWinnerGetsFallbackLabel(t *testing.T) {
	res := quizResult()
	outcome := TopPreference(res, map[string]string{
		"q1": "X",
		"q2": "X",
		"q3": "B",
	})
	if outcome == nil {
		t.Fatal("expected an outcome")
	}
	if outcome.AdID != "X" || outcome.Label != "Annons X" {
		t.Fatalf("got %+v, want ad X with fallback label", outcome)
	}
}

func TestJustifications(t *testing.T) {
	res := quizResult()
	answers := map[string]string{
		"q1": "A",
		"q2": "B",
		"q3": "A",
	}
	winner := TopPreference(res, answers)

	justifications, more := Justifications(res, answers, winner)
	if more {
		t.Fatal("two supporting answers should not set the more flag")
	}
	if len(justifications) != 2 {
		t.Fatalf("expected 2 justifications, got %d", len(justifications))
	}
	if justifications[0].QuestionID != "q1" || justifications[0].OptionLabel != "teknik" {
		t.Fatalf("unexpected first justification: %+v", justifications[0])
	}
	if justifications[1].QuestionID != "q3" || justifications[1].OptionLabel != "system" {
		t.Fatalf("unexpected second justification: %+v", justifications[1])
	}
}

func TestJustificationsCapsAtThree(t *testing.T) {
	res := quizResult()
	res.Questions = append(res.Questions,
		analysis.Question{ID: "q4", Text: "Fyra?", Options: []analysis.QuestionOption{
			{ID: "q4_a", Label: "alt a4", AdID: "A"},
			{ID: "q4_b", Label: "alt b4", AdID: "B"},
		}},
		analysis.Question{ID: "q5", Text: "Fem?", Options: []analysis.QuestionOption{
			{ID: "q5_a", Label: "alt a5", AdID: "A"},
			{ID: "q5_b", Label: "alt b5", AdID: "B"},
		}},
	)
	answers := map[string]string{
		"q1": "A", "q2": "A", "q3": "A", "q4": "A", "q5": "B",
	}
	winner := TopPreference(res, answers)

	justifications, more := Justifications(res, answers, winner)
	if len(justifications) != 3 {
		t.Fatalf("expected 3 justifications, got %d", len(justifications))
	}
	if !more {
		t.Fatal("a fourth supporting answer must set the more flag")
	}
}

func TestJustificationsNilWinner(t *testing.T) {
	res := quizResult()
	justifications, more := Justifications(res, map[string]string{"q1": "A"}, nil)
	if justifications != nil || more {
		t.Fatal("nil winner must yield no justifications")
	}
}
