package preference

import (
	"fmt"
	"sort"

	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
)

// Outcome is the quiz-vote recommendation for one analysis.
type Outcome struct {
	AdID         string `json:"adId"`
	Label        string `json:"label"`
	Score        int    `json:"score"`
	TotalAnswers int    `json:"totalAnswers"`
}

// Justification is one answered question that supports the winning ad.
type Justification struct {
	QuestionID   string `json:"questionId"`
	QuestionText string `json:"questionText"`
	OptionLabel  string `json:"optionLabel"`
}

const maxJustifications = 3

// VoteCounts tallies answers per normalized ad id. Every analyzed ad
// starts at zero so ads without votes still show up; answers pointing at
// unknown ids get their own counter.
func VoteCounts(res *analysis.Result, answers map[string]string) map[string]int {
	counts := make(map[string]int)
	if res == nil {
		return counts
	}

	for _, ad := range res.Ads {
		norm := analysis.NormalizeAdID(ad.ID)
		if _, ok := counts[norm]; !ok {
			counts[norm] = 0
		}
	}

	for _, adID := range answers {
		norm := analysis.NormalizeAdID(adID)
		counts[norm]++
	}

	return counts
}

// TopPreference returns the winning ad, or nil until every question has
// been answered and at least one vote landed. Ties resolve to the earliest
// ad in the result's ad order; votes for unknown ids rank after the known
// ads, in question order.
func TopPreference(res *analysis.Result, answers map[string]string) *Outcome {
	if res == nil {
		return nil
	}

	totalQuestions := len(res.Questions)
	totalAnswers := len(answers)
	if totalQuestions == 0 || totalAnswers == 0 {
		return nil
	}
	if totalAnswers != totalQuestions {
		return nil
	}

	counts := VoteCounts(res, answers)

	var topID string
	topScore := 0
	for _, id := range orderedVoteIDs(res, answers) {
		if counts[id] > topScore {
			topID = id
			topScore = counts[id]
		}
	}
	if topScore == 0 {
		return nil
	}

	outcome := &Outcome{
		AdID:         topID,
		Label:        fmt.Sprintf("Annons %s", topID),
		Score:        topScore,
		TotalAnswers: totalAnswers,
	}
	for _, ad := range res.Ads {
		if analysis.NormalizeAdID(ad.ID) == topID {
			outcome.AdID = ad.ID
			if ad.Label != "" {
				outcome.Label = ad.Label
			}
			break
		}
	}
	return outcome
}

// orderedVoteIDs yields the normalized ids in a stable order: analyzed ads
// first, then ids seen only in answers (question order, unknown question
// ids sorted last).
func orderedVoteIDs(res *analysis.Result, answers map[string]string) []string {
	seen := make(map[string]bool)
	var ordered []string

	push := func(norm string) {
		if norm == "" || seen[norm] {
			return
		}
		seen[norm] = true
		ordered = append(ordered, norm)
	}

	for _, ad := range res.Ads {
		push(analysis.NormalizeAdID(ad.ID))
	}

	answeredQuestions := make(map[string]bool)
	for _, q := range res.Questions {
		if adID, ok := answers[q.ID]; ok {
			answeredQuestions[q.ID] = true
			push(analysis.NormalizeAdID(adID))
		}
	}

	var rest []string
	for qID := range answers {
		if !answeredQuestions[qID] {
			rest = append(rest, qID)
		}
	}
	sort.Strings(rest)
	for _, qID := range rest {
		push(analysis.NormalizeAdID(answers[qID]))
	}

	return ordered
}

// Justifications collects up to three answered questions whose chosen
// option points at the winning ad, in question order. The second return
// value reports whether more supporting answers exist.
func Justifications(res *analysis.Result, answers map[string]string, winner *Outcome) ([]Justification, bool) {
	if res == nil || winner == nil {
		return nil, false
	}

	topNorm := analysis.NormalizeAdID(winner.AdID)
	var supporting []Justification

	for _, q := range res.Questions {
		chosenAdID, ok := answers[q.ID]
		if !ok || chosenAdID == "" {
			continue
		}

		var chosen *analysis.QuestionOption
		for i := range q.Options {
			if analysis.NormalizeAdID(q.Options[i].AdID) == analysis.NormalizeAdID(chosenAdID) {
				chosen = &q.Options[i]
				break
			}
		}
		if chosen == nil {
			continue
		}
		if analysis.NormalizeAdID(chosen.AdID) != topNorm {
			continue
		}

		supporting = append(supporting, Justification{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			OptionLabel:  chosen.Label,
		})
	}

	if len(supporting) > maxJustifications {
		return supporting[:maxJustifications], true
	}
	return supporting, false
}
