package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTooFewAds is returned when fewer than two ads reach the prompt builder.
var ErrTooFewAds = errors.New("minst två annonser krävs för analys")

// InvalidInputError is a client error with a user-facing Swedish message.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func invalidInput(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// NormalizeAdsInput validates the raw ads payload and returns the trimmed
// ad texts. Entries must be strings with content after trimming, and the
// first two ads must both be present.
func NormalizeAdsInput(raw []interface{}) ([]string, error) {
	if len(raw) < 2 {
		return nil, invalidInput(`Du måste skicka ett fält "ads" med minst två annonser (array av strängar).`)
	}

	ads := make([]string, 0, len(raw))
	for i, value := range raw {
		text, ok := value.(string)
		if !ok {
			return nil, invalidInput("Annons på index %d är inte en sträng.", i)
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil, invalidInput("Annons på index %d är tom efter trimning.", i)
		}
		ads = append(ads, trimmed)
	}

	if ads[0] == "" || ads[1] == "" {
		return nil, invalidInput("Minst Annons A och Annons B måste innehålla text för att analysen ska kunna köras.")
	}

	return ads, nil
}

// AdLabel returns the short letter label for the ad at the given index
// ("A", "B", "C", ...).
func AdLabel(index int) string {
	return string(rune('A' + index))
}

// BuildComparePrompt renders the recruiter instruction with the ads
// embedded as [ANNONS A], [ANNONS B], ... blocks.
func BuildComparePrompt(ads []string) (string, error) {
	if len(ads) < 2 {
		return "", ErrTooFewAds
	}

	blocks := make([]string, 0, len(ads))
	for i, text := range ads {
		blocks = append(blocks, fmt.Sprintf("[ANNONS %s]\n%s", AdLabel(i), text))
	}
	adListText := strings.Join(blocks, "\n\n")

	return strings.TrimSpace(comparePromptTemplate + adListText), nil
}

const comparePromptTemplate = `
Du är en senior rekryterare och karriärcoach. Du får flera jobbannonser och ska göra en strukturerad analys.

VIKTIGT: Du ska svara ENBART med ett JSON-objekt som följer strukturen nedan.
Inga förklaringar eller text utanför JSON.

STRUKTUR (exakt så här, men anpassat till innehållet):

{
  "ads": [
    {
      "id": "A",
      "title": "Tjänstetitel för annons A",
      "company": "Företagets namn om det går att se",
      "summary": "Kort sammanfattning av vad rollen går ut på.",
      "score": 0
    }
    // en post per annons ("B", "C" osv)
  ],
  "comparison": {
    "recommendationAdId": "A" | "B" | "C" | null,
    "recommendationLabel": "Tjänst + arbetsgivare som du spontant tycker passar bäst, t.ex. 'Informationssäkerhetsspecialist hos Rasluson Consult'",
    "reason": "Kort motivering till varför just den tjänsten framstår som mest attraktiv / bäst match mot en typisk kandidat."
  },
  "sections": [
    {
      "id": "role",
      "title": "Roll och ansvarsområden",
      "description": "Kort jämförelse av vad man faktiskt gör i tjänsterna.",
      "perAd": [
        {
          "adId": "A",
          "highlights": [
            "konkret punkt om arbetsuppgifter i annons A",
            "ytterligare en punkt"
          ]
        },
        {
          "adId": "B",
          "highlights": [
            "konkret punkt om arbetsuppgifter i annons B"
          ]
        }
      ],
      "key_differences": [
        "hur rollinnehållet skiljer sig mellan tjänsterna",
        "om de är lika kan du skriva att de är liknande"
      ]
    }
    // 2-4 liknande sektioner, t.ex. "requirements", "conditions", "culture"
  ],

  "applicationAdvice": {
    "overallTips": [
      "övergripande tips som gäller oavsett vilken tjänst kandidaten söker",
      "t.ex. hur hen kan binda ihop erfarenheter med annonsernas behov"
    ],
    "perAd": [
      {
        "adId": "A",
        "themes": [
          "teman att lyfta i personligt brev/CV för den här tjänsten"
        ],
        "keywords": [
          "viktiga ord/fraser från annonsen som är bra att använda",
          "både för mänskliga läsare och ATS"
        ],
        "atsTips": [
          "konkreta tips för hur kandidaten kan formulera sig så att ATS lättare förstår matchningen"
        ]
      }
      // en motsvarande post per annons
    ]
  },

  "deepAnalysisPerAd": [
    {
      "adId": "A",
      "strengths": [
        "vad som är extra positivt med den här tjänsten",
        "vilka typer av kandidater som kan trivas"
      ],
      "risks": [
        "eventuella nackdelar eller fallgropar man bör känna till"
      ],
      "cultureAndFit": [
        "vad man kan utläsa om kultur, arbetssätt och ledarskap"
      ],
      "development": [
        "hur tjänsten kan bidra till långsiktiga mål och karriärutveckling"
      ]
    }
    // en post per annons
  ],

  "questions": [
    {
      "id": "q1",
      "text": "Reflekterande fråga som hjälper kandidaten att välja mellan tjänsterna.",
      "options": [
        {
          "id": "q1_a",
          "label": "svarsalternativ som pekar tydligt mot en viss typ av tjänst",
          "adId": "A"
        },
        {
          "id": "q1_b",
          "label": "svarsalternativ som pekar mot en annan tjänst",
          "adId": "B"
        }
      ]
    }
    // totalt 5-7 frågor
  ]
}

REGLER:
- "ads" måste innehålla en post per annons. "id" ska vara "A", "B", "C" osv.
- "summary" ska vara 2-4 meningar som verkligen hjälper kandidaten att förstå tjänsten.
- "score" är en generell bedömning 0-100 där högre är mer attraktiv/tydlig/relevant för en typisk kandidat med rätt bakgrund.
- Skapa 2-4 sektioner i "sections" med perAd-innehåll och key_differences.
- Skapa både "applicationAdvice" och "deepAnalysisPerAd" enligt mallen ovan.
- Skapa 5-7 frågor i "questions", där varje svarsalternativ kopplas till exakt EN annons via "adId".

Här är annonserna:

`
