package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gomonday/annonsanalys-core/internal/middleware"
	"github.com/gomonday/annonsanalys-core/internal/models"
	"github.com/gomonday/annonsanalys-core/internal/modules/ai"
	"github.com/gomonday/annonsanalys-core/internal/pkg/pagination"
	"github.com/gomonday/annonsanalys-core/internal/pkg/response"
)

const compareMaxOutputTokens = 2048

// TokenExtractor turns a normalized result into dashboard token rows.
// Implemented by the analytics module.
type TokenExtractor func(res *Result, analysisID, userID string) []models.AnalysisTokenModel

type Service struct {
	db      *gorm.DB
	invoker ai.Invoker
	extract TokenExtractor
	rdb     *goredis.Client
	log     *zap.Logger
}

func NewService(db *gorm.DB, invoker ai.Invoker, extract TokenExtractor, rdb *goredis.Client, log *zap.Logger) *Service {
	return &Service{db: db, invoker: invoker, extract: extract, rdb: rdb, log: log}
}

// Compare runs the full pipeline: prompt, model call, sanitize, validate,
// normalize, persist. The returned result is always normalized.
func (s *Service) Compare(ctx context.Context, ads []string, userID string) (*Result, error) {
	prompt, err := BuildComparePrompt(ads)
	if err != nil {
		return nil, err
	}

	raw, err := s.invoker.Generate(ctx, prompt, ai.Options{
		JSON:            true,
		MaxOutputTokens: compareMaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	res, err := ParseResult(raw)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			s.log.Warn("model reply is not valid JSON",
				zap.String("raw", parseErr.Raw),
				zap.String("cleaned", parseErr.Cleaned),
				zap.Error(parseErr.Err),
			)
		}
		return nil, err
	}

	if err := Validate(res, len(ads)); err != nil {
		s.log.Warn("model reply failed validation", zap.Error(err))
		return nil, err
	}

	Normalize(res)

	s.persist(ctx, res, ads, userID)
	return res, nil
}

// persist stores the analysis row and its derived token rows. Failures are
// logged but never surfaced: the caller already has a complete result.
func (s *Service) persist(ctx context.Context, res *Result, ads []string, userID string) {
	if s.db == nil {
		return
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		s.log.Error("marshal analysis result", zap.Error(err))
		return
	}

	row := models.AnalysisModel{
		UserID: userID,
		RawAds: models.StringArray(ads),
		Result: string(resultJSON),
	}
	if res.Comparison != nil {
		row.RecommendedAdID = NormalizeAdID(res.Comparison.RecommendationAdID)
		row.RecommendedLabel = res.Comparison.RecommendationLabel
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error("persist analysis", zap.Error(err))
		return
	}

	if s.extract != nil {
		s.replaceTokens(ctx, res, row.ID, userID)
	}

	if s.rdb != nil {
		if _, err := middleware.PurgeHTTPCache(ctx, s.rdb); err != nil {
			s.log.Warn("purge dashboard cache", zap.Error(err))
		}
	}
}

// replaceTokens regenerates the token rows of an analysis.
func (s *Service) replaceTokens(ctx context.Context, res *Result, analysisID, userID string) {
	tokens := s.extract(res, analysisID, userID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("analysis_id = ?", analysisID).
			Delete(&models.AnalysisTokenModel{}).Error; err != nil {
			return err
		}
		if len(tokens) == 0 {
			return nil
		}
		return tx.CreateInBatches(tokens, 100).Error
	})
	if err != nil {
		s.log.Error("persist analysis tokens",
			zap.String("analysis_id", analysisID),
			zap.Error(err),
		)
	}
}

// List returns stored analyses, newest first, scoped to the user when set.
func (s *Service) List(q pagination.Query, userID string) ([]models.AnalysisModel, response.Pagination, error) {
	tx := s.db.Model(&models.AnalysisModel{}).Order("created_at DESC")
	if userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}
	var items []models.AnalysisModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

func (s *Service) GetByID(id string) (*models.AnalysisModel, error) {
	var row models.AnalysisModel
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

type CompareDTO struct {
	Ads    []interface{} `json:"ads"`
	UserID string        `json:"userId"`
}

type analysisListItem struct {
	ID               string `json:"id"`
	Created          string `json:"created"`
	RecommendedAdID  string `json:"recommended_ad_id,omitempty"`
	RecommendedLabel string `json:"recommended_label,omitempty"`
	AdCount          int    `json:"ad_count"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analysis")

	g.POST("/compare", h.compare)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

// POST /analysis/compare
func (h *Handler) compare(c *gin.Context) {
	var dto CompareDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Ogiltig JSON i request-body.")
		return
	}

	ads, err := NormalizeAdsInput(dto.Ads)
	if err != nil {
		var invalid *InvalidInputError
		if errors.As(err, &invalid) {
			response.BadRequest(c, invalid.Message)
			return
		}
		response.BadRequest(c, "Ogiltigt format på annonserna.")
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == "" {
		userID = dto.UserID
	}

	res, err := h.svc.Compare(c.Request.Context(), ads, userID)
	if err != nil {
		response.InternalErrorMsg(c, compareFailureMessage(err))
		return
	}

	response.OK(c, res)
}

// compareFailureMessage maps pipeline failures to client messages. Safety
// blocks get a distinct message naming the block reason; everything else is
// deliberately generic, with detail only in the server log.
func compareFailureMessage(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) && aiErr.Kind == ai.KindBlocked {
		return fmt.Sprintf("AI-analysen blockerades av leverantörens säkerhetsfilter (%s).", aiErr.BlockReason)
	}
	return "AI-analysen misslyckades på grund av ett internt fel."
}

// GET /analysis
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	userID := middleware.CurrentUserID(c)

	items, pag, err := h.svc.List(q, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]analysisListItem, 0, len(items))
	for _, item := range items {
		out = append(out, analysisListItem{
			ID:               item.ID,
			Created:          item.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			RecommendedAdID:  item.RecommendedAdID,
			RecommendedLabel: item.RecommendedLabel,
			AdCount:          len(item.RawAds),
		})
	}
	response.Paged(c, out, pag)
}

// GET /analysis/:id
func (h *Handler) get(c *gin.Context) {
	row, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}

	var res Result
	if err := json.Unmarshal([]byte(row.Result), &res); err != nil {
		response.InternalErrorMsg(c, "Lagrat analysresultat kunde inte läsas.")
		return
	}

	response.OK(c, gin.H{
		"id":      row.ID,
		"created": row.CreatedAt,
		"raw_ads": row.RawAds,
		"result":  res,
	})
}
