package analytics

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gomonday/annonsanalys-core/internal/models"
	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
	"github.com/gomonday/annonsanalys-core/internal/pkg/response"
)

// Window sizes match what the dashboard can reasonably render.
const (
	tokenWindowLimit    = 1000
	analysisWindowLimit = 100
	recentTokenCount    = 30
	topTraitCount       = 10
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

type countEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type traitStats struct {
	AnalysisCount   int
	TraitTokenCount int
	TraitCounts     map[string]int
}

type traitComparisonRow struct {
	Trait  string `json:"trait"`
	CountA int    `json:"countA"`
	CountB int    `json:"countB"`
	Total  int    `json:"total"`
}

// loadWindow fetches the newest tokens and analyses the dashboard works on.
func (s *Service) loadWindow() ([]models.AnalysisTokenModel, []models.AnalysisModel, error) {
	var tokens []models.AnalysisTokenModel
	if err := s.db.Order("created_at DESC").Limit(tokenWindowLimit).Find(&tokens).Error; err != nil {
		return nil, nil, err
	}

	var analyses []models.AnalysisModel
	if err := s.db.Order("created_at DESC").Limit(analysisWindowLimit).Find(&analyses).Error; err != nil {
		return nil, nil, err
	}

	return tokens, analyses, nil
}

// resultAds decodes just the ads block of a stored result.
func (s *Service) resultAds(row *models.AnalysisModel) []analysis.AnalyzedAd {
	var res struct {
		Ads []analysis.AnalyzedAd `json:"ads"`
	}
	if err := json.Unmarshal([]byte(row.Result), &res); err != nil {
		s.log.Warn("decode stored result", zap.String("analysis_id", row.ID), zap.Error(err))
		return nil
	}
	return res.Ads
}

// matchesRole checks an analysis against a role query: first the analyzed
// ads' labels and summaries, then the raw ad texts as fallback.
func (s *Service) matchesRole(row *models.AnalysisModel, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}

	for _, ad := range s.resultAds(row) {
		if strings.Contains(strings.ToLower(ad.Label), q) ||
			strings.Contains(strings.ToLower(ad.Summary), q) {
			return true
		}
	}

	raw := strings.ToLower(strings.Join(row.RawAds, "\n"))
	return strings.Contains(raw, q)
}

// roleTraitStats aggregates strength/theme tokens for analyses matching a
// role query.
func (s *Service) roleTraitStats(query string, analyses []models.AnalysisModel, tokens []models.AnalysisTokenModel) traitStats {
	stats := traitStats{TraitCounts: map[string]int{}}
	if strings.TrimSpace(query) == "" {
		return stats
	}

	matching := make(map[string]bool)
	for i := range analyses {
		if s.matchesRole(&analyses[i], query) {
			matching[analyses[i].ID] = true
		}
	}
	stats.AnalysisCount = len(matching)

	for _, t := range tokens {
		if !matching[t.AnalysisID] || !TraitTokenTypes[t.TokenType] {
			continue
		}
		stats.TraitTokenCount++
		key := strings.TrimSpace(t.TokenText)
		if key == "" {
			continue
		}
		stats.TraitCounts[key]++
	}

	return stats
}

// roleEmployerForToken resolves the role and employer of a token by
// splitting its ad's label. Labels use "Role – Employer" with a plain
// dash fallback.
func roleEmployerForToken(t *models.AnalysisTokenModel, row *models.AnalysisModel, ads []analysis.AnalyzedAd) (string, string) {
	const none = "—"
	if row == nil || len(ads) == 0 {
		return none, none
	}

	find := func(id string) *analysis.AnalyzedAd {
		if id == "" {
			return nil
		}
		for i := range ads {
			if ads[i].ID == id {
				return &ads[i]
			}
		}
		return nil
	}

	var ad *analysis.AnalyzedAd
	if t.AdID != nil {
		ad = find(*t.AdID)
	}
	if ad == nil {
		ad = find(row.RecommendedAdID)
	}
	if ad == nil {
		ad = &ads[0]
	}

	label := strings.TrimSpace(ad.Label)
	if label == "" {
		return none, none
	}

	var parts []string
	if strings.Contains(label, "–") {
		parts = strings.SplitN(label, "–", 2)
	} else {
		parts = strings.SplitN(label, "-", 2)
	}

	role := strings.TrimSpace(parts[0])
	if role == "" {
		role = label
	}
	employer := none
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		employer = strings.TrimSpace(parts[1])
	}
	return role, employer
}

func sortedCountEntries(counts map[string]int) []countEntry {
	entries := make([]countEntry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, countEntry{Key: key, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/dashboard")

	g.GET("/overview", h.overview)
	g.GET("/role-insights", h.roleInsights)
	g.GET("/role-compare", h.roleCompare)
}

// GET /dashboard/overview
func (h *Handler) overview(c *gin.Context) {
	tokens, analyses, err := h.svc.loadWindow()
	if err != nil {
		response.InternalError(c, err)
		return
	}

	byType := make(map[string]int)
	bySource := make(map[string]int)
	for _, t := range tokens {
		byType[t.TokenType]++
		bySource[t.SourceBlock]++
	}

	analysisByID := make(map[string]*models.AnalysisModel, len(analyses))
	adsByID := make(map[string][]analysis.AnalyzedAd, len(analyses))
	for i := range analyses {
		row := &analyses[i]
		analysisByID[row.ID] = row
		adsByID[row.ID] = h.svc.resultAds(row)
	}

	recent := tokens
	if len(recent) > recentTokenCount {
		recent = recent[:recentTokenCount]
	}
	recentOut := make([]gin.H, 0, len(recent))
	for i := range recent {
		t := &recent[i]
		role, employer := roleEmployerForToken(t, analysisByID[t.AnalysisID], adsByID[t.AnalysisID])
		recentOut = append(recentOut, gin.H{
			"id":           t.ID,
			"token_type":   t.TokenType,
			"token_text":   t.TokenText,
			"source_block": t.SourceBlock,
			"ad_id":        t.AdID,
			"role":         role,
			"employer":     employer,
			"created":      t.CreatedAt,
		})
	}

	analysesOut := make([]gin.H, 0, len(analyses))
	for i := range analyses {
		a := &analyses[i]
		analysesOut = append(analysesOut, gin.H{
			"id":                a.ID,
			"created":           a.CreatedAt,
			"recommended_ad_id": a.RecommendedAdID,
			"recommended_label": a.RecommendedLabel,
			"ad_count":          len(a.RawAds),
		})
	}

	response.OK(c, gin.H{
		"total_tokens":   len(tokens),
		"total_analyses": len(analyses),
		"tokens_by_type": sortedCountEntries(byType),
		"tokens_by_source": sortedCountEntries(bySource),
		"recent_tokens":  recentOut,
		"analyses":       analysesOut,
	})
}

// GET /dashboard/role-insights?role=
func (h *Handler) roleInsights(c *gin.Context) {
	role := strings.ToLower(strings.TrimSpace(c.Query("role")))
	if role == "" {
		response.BadRequest(c, "Frågeparametern \"role\" krävs.")
		return
	}

	tokens, analyses, err := h.svc.loadWindow()
	if err != nil {
		response.InternalError(c, err)
		return
	}

	stats := h.svc.roleTraitStats(role, analyses, tokens)
	top := sortedCountEntries(stats.TraitCounts)
	if len(top) > topTraitCount {
		top = top[:topTraitCount]
	}

	response.OK(c, gin.H{
		"role":              role,
		"analysis_count":    stats.AnalysisCount,
		"trait_token_count": stats.TraitTokenCount,
		"top_traits":        top,
	})
}

// GET /dashboard/role-compare?roleA=&roleB=
func (h *Handler) roleCompare(c *gin.Context) {
	roleA := strings.ToLower(strings.TrimSpace(c.Query("roleA")))
	roleB := strings.ToLower(strings.TrimSpace(c.Query("roleB")))
	if roleA == "" || roleB == "" {
		response.BadRequest(c, "Både \"roleA\" och \"roleB\" krävs.")
		return
	}

	tokens, analyses, err := h.svc.loadWindow()
	if err != nil {
		response.InternalError(c, err)
		return
	}

	statsA := h.svc.roleTraitStats(roleA, analyses, tokens)
	statsB := h.svc.roleTraitStats(roleB, analyses, tokens)

	allTraits := make(map[string]bool)
	for trait := range statsA.TraitCounts {
		allTraits[trait] = true
	}
	for trait := range statsB.TraitCounts {
		allTraits[trait] = true
	}

	rows := make([]traitComparisonRow, 0, len(allTraits))
	for trait := range allTraits {
		countA := statsA.TraitCounts[trait]
		countB := statsB.TraitCounts[trait]
		rows = append(rows, traitComparisonRow{
			Trait:  trait,
			CountA: countA,
			CountB: countB,
			Total:  countA + countB,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Trait < rows[j].Trait
	})
	if len(rows) > topTraitCount {
		rows = rows[:topTraitCount]
	}

	response.OK(c, gin.H{
		"roleA": gin.H{
			"query":             roleA,
			"analysis_count":    statsA.AnalysisCount,
			"trait_token_count": statsA.TraitTokenCount,
		},
		"roleB": gin.H{
			"query":             roleB,
			"analysis_count":    statsB.AnalysisCount,
			"trait_token_count": statsB.TraitTokenCount,
		},
		"traits": rows,
	})
}
