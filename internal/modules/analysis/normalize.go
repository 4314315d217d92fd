package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

var adIDLetterRe = regexp.MustCompile(`[A-Za-zÅÄÖåäö]`)

// NormalizeAdID reduces an ad reference to a canonical letter: a single
// character is uppercased, a longer string keeps its first letter, and
// anything without letters is uppercased verbatim.
func NormalizeAdID(id string) string {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return ""
	}
	runes := []rune(trimmed)
	if len(runes) == 1 {
		return strings.ToUpper(trimmed)
	}
	if match := adIDLetterRe.FindString(trimmed); match != "" {
		return strings.ToUpper(match)
	}
	return strings.ToUpper(trimmed)
}

// Normalize fills in the fields the model is allowed to omit so downstream
// consumers never see a partial result. It is idempotent.
func Normalize(res *Result) {
	for i := range res.Ads {
		ad := &res.Ads[i]
		if ad.Label != "" {
			continue
		}
		if ad.Company != "" {
			ad.Label = fmt.Sprintf("%s – %s", ad.Title, ad.Company)
		} else {
			ad.Label = ad.Title
		}
	}

	if res.Comparison == nil {
		res.Comparison = &Comparison{}
	}
	if strings.TrimSpace(res.Comparison.Reason) == "" {
		label := resolveRecommendationLabel(res)
		res.Comparison.Reason = fmt.Sprintf(
			"Based on the ad content, %s appears to be the most interesting option right now.", label)
	}
}

func resolveRecommendationLabel(res *Result) string {
	if id := NormalizeAdID(res.Comparison.RecommendationAdID); id != "" {
		for _, ad := range res.Ads {
			if NormalizeAdID(ad.ID) == id && ad.Label != "" {
				return ad.Label
			}
		}
	}
	if label := strings.TrimSpace(res.Comparison.RecommendationLabel); label != "" {
		return label
	}
	return "the recommended role"
}
