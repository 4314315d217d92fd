package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gomonday/annonsanalys-core/internal/modules/ai"
)

type fakeInvoker struct {
	reply string
	err   error

	lastPrompt string
	lastOpts   ai.Options
}

func (f *fakeInvoker) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	f.lastPrompt = prompt
	f.lastOpts = opts
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const fakeModelReply = "```json\n" + `{
  "ads": [
    {"id": "A", "title": "Utvecklare", "company": "Bolaget AB", "summary": "Kodar backend.", "score": 78},
    {"id": "B", "title": "Jurist", "summary": "Avtal och tvister.", "score": 64}
  ],
  "comparison": {"recommendationAdId": "A", "recommendationLabel": "Utvecklare hos Bolaget AB", "reason": ""},
  "sections": [
    {
      "id": "role",
      "title": "Roll och ansvarsområden",
      "description": "Vad man gör.",
      "perAd": [
        {"adId": "A", "highlights": ["bygger tjänster"]},
        {"adId": "B", "highlights": ["granskar avtal"]}
      ],
      "key_differences": ["helt olika yrken"]
    }
  ],
  "questions": [
    {"id": "q1", "text": "Vad lockar mest?", "options": [
      {"id": "q1_a", "label": "teknik", "adId": "A"},
      {"id": "q1_b", "label": "juridik", "adId": "B"}
    ]}
  ]
}` + "\n```"

func newTestService(invoker ai.Invoker) *Service {
	return NewService(nil, invoker, nil, nil, zap.NewNop())
}

func TestServiceCompare(t *testing.T) {
	invoker := &fakeInvoker{reply: fakeModelReply}
	svc := newTestService(invoker)

	res, err := svc.Compare(context.Background(), []string{"annons a", "annons b"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(invoker.lastPrompt, "[ANNONS A]\nannons a") {
		t.Fatal("prompt does not embed the first ad")
	}
	if !invoker.lastOpts.JSON {
		t.Fatal("compare must request a JSON reply")
	}

	if res.Ads[0].Label != "Utvecklare – Bolaget AB" {
		t.Fatalf("label not normalized: %q", res.Ads[0].Label)
	}
	if res.Comparison == nil || strings.TrimSpace(res.Comparison.Reason) == "" {
		t.Fatal("reason must be synthesized")
	}
	if !strings.Contains(res.Comparison.Reason, "Utvecklare – Bolaget AB") {
		t.Fatalf("reason %q does not name the recommended ad", res.Comparison.Reason)
	}
}

func TestServiceCompareTooFewAds(t *testing.T) {
	svc := newTestService(&fakeInvoker{reply: fakeModelReply})
	if _, err := svc.Compare(context.Background(), []string{"bara en"}, ""); !errors.Is(err, ErrTooFewAds) {
		t.Fatalf("expected ErrTooFewAds, got %v", err)
	}
}

func TestServiceComparePropagatesModelError(t *testing.T) {
	wantErr := &ai.Error{Kind: ai.KindBlocked, Message: "prompt was blocked by the provider", BlockReason: "SAFETY"}
	svc := newTestService(&fakeInvoker{err: wantErr})

	_, err := svc.Compare(context.Background(), []string{"annons a", "annons b"}, "")
	var aiErr *ai.Error
	if !errors.As(err, &aiErr) || aiErr.Kind != ai.KindBlocked {
		t.Fatalf("expected blocked ai.Error, got %v", err)
	}
}

func TestServiceCompareRejectsInvalidJSON(t *testing.T) {
	svc := newTestService(&fakeInvoker{reply: "inte json"})
	_, err := svc.Compare(context.Background(), []string{"annons a", "annons b"}, "")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestServiceCompareRejectsWrongAdCount(t *testing.T) {
	svc := newTestService(&fakeInvoker{reply: fakeModelReply})
	_, err := svc.Compare(context.Background(), []string{"a", "b", "c"}, "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func newTestRouter(invoker ai.Invoker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(newTestService(invoker))
	h.RegisterRoutes(r.Group("/api/v2"))
	return r
}

func doCompare(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v2/analysis/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return body.Error
}

func TestCompareHandlerBadRequests(t *testing.T) {
	r := newTestRouter(&fakeInvoker{reply: fakeModelReply})

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "invalid json",
			body: "{nope",
			want: "Ogiltig JSON i request-body.",
		},
		{
			name: "too few ads",
			body: `{"ads": ["bara en"]}`,
			want: `Du måste skicka ett fält "ads" med minst två annonser (array av strängar).`,
		},
		{
			name: "non-string ad",
			body: `{"ads": ["annons a", 5]}`,
			want: "Annons på index 1 är inte en sträng.",
		},
		{
			name: "blank ad",
			body: `{"ads": ["annons a", "  "]}`,
			want: "Annons på index 1 är tom efter trimning.",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doCompare(t, r, c.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := errorMessage(t, w); got != c.want {
				t.Fatalf("error = %q, want %q", got, c.want)
			}
		})
	}
}

func TestCompareHandlerSuccess(t *testing.T) {
	r := newTestRouter(&fakeInvoker{reply: fakeModelReply})

	w := doCompare(t, r, `{"ads": ["annons a", "annons b"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res Result
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.Ads) != 2 || res.Ads[1].Label != "Jurist" {
		t.Fatalf("unexpected ads: %+v", res.Ads)
	}
}

func TestCompareHandlerBlockedMessage(t *testing.T) {
	blockedErr := &ai.Error{Kind: ai.KindBlocked, Message: "prompt was blocked by the provider", BlockReason: "SAFETY"}
	r := newTestRouter(&fakeInvoker{err: blockedErr})

	w := doCompare(t, r, `{"ads": ["annons a", "annons b"]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	msg := errorMessage(t, w)
	if !strings.Contains(msg, "SAFETY") {
		t.Fatalf("blocked message %q must include the block reason", msg)
	}
}

func TestCompareHandlerGenericFailureMessage(t *testing.T) {
	r := newTestRouter(&fakeInvoker{err: &ai.Error{Kind: ai.KindEmpty, Message: "empty response from AI"}})

	w := doCompare(t, r, `{"ads": ["annons a", "annons b"]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := errorMessage(t, w); got != "AI-analysen misslyckades på grund av ett internt fel." {
		t.Fatalf("error = %q", got)
	}
}
