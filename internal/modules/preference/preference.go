package preference

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gomonday/annonsanalys-core/internal/middleware"
	"github.com/gomonday/annonsanalys-core/internal/models"
	"github.com/gomonday/annonsanalys-core/internal/modules/analysis"
	"github.com/gomonday/annonsanalys-core/internal/pkg/response"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

var errAnswerWithoutAd = errors.New("answer does not resolve to an ad")

// AnswerDTO is one submitted quiz answer. OptionID or AdID must identify
// the chosen alternative; text fields are resolved from the stored result
// when possible.
type AnswerDTO struct {
	QuestionID string `json:"questionId" binding:"required"`
	OptionID   string `json:"optionId"`
	AdID       string `json:"adId"`
}

// LoadAnalysis fetches an analysis row and decodes its stored result.
// Returns (nil, nil, nil) when the row does not exist.
func (s *Service) LoadAnalysis(id string) (*models.AnalysisModel, *analysis.Result, error) {
	var row models.AnalysisModel
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var res analysis.Result
	if err := json.Unmarshal([]byte(row.Result), &res); err != nil {
		return nil, nil, err
	}
	return &row, &res, nil
}

// UpsertAnswers stores the caller's answers, replacing earlier answers to
// the same questions.
func (s *Service) UpsertAnswers(ctx context.Context, analysisID, userID string, res *analysis.Result, dtos []AnswerDTO) error {
	rows := make([]models.PreferenceAnswerModel, 0, len(dtos))
	for _, dto := range dtos {
		row, err := resolveAnswer(analysisID, userID, res, dto)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "analysis_id"}, {Name: "user_id"}, {Name: "question_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"question_text", "option_id", "option_label", "ad_id", "updated_at",
		}),
	}).Create(&rows).Error
}

// resolveAnswer fills question and option metadata from the stored result.
// Unknown question or option ids are kept as submitted so they can still
// vote, matching how the quiz treats ids it has never seen.
func resolveAnswer(analysisID, userID string, res *analysis.Result, dto AnswerDTO) (models.PreferenceAnswerModel, error) {
	row := models.PreferenceAnswerModel{
		AnalysisID: analysisID,
		UserID:     userID,
		QuestionID: dto.QuestionID,
		OptionID:   dto.OptionID,
		AdID:       dto.AdID,
	}

	for _, q := range res.Questions {
		if q.ID != dto.QuestionID {
			continue
		}
		row.QuestionText = q.Text
		for _, opt := range q.Options {
			if opt.ID == dto.OptionID ||
				(dto.OptionID == "" && dto.AdID != "" &&
					analysis.NormalizeAdID(opt.AdID) == analysis.NormalizeAdID(dto.AdID)) {
				row.OptionID = opt.ID
				row.OptionLabel = opt.Label
				row.AdID = opt.AdID
				break
			}
		}
		break
	}

	if row.AdID == "" {
		return row, errAnswerWithoutAd
	}
	return row, nil
}

// StoredAnswers returns the caller's answers for one analysis.
func (s *Service) StoredAnswers(analysisID, userID string) ([]models.PreferenceAnswerModel, error) {
	var rows []models.PreferenceAnswerModel
	err := s.db.
		Where("analysis_id = ? AND user_id = ?", analysisID, userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Recommendation recomputes the quiz outcome from stored answers and
// refreshes the recommended columns on the analysis row when a winner
// exists.
func (s *Service) Recommendation(ctx context.Context, row *models.AnalysisModel, res *analysis.Result, stored []models.PreferenceAnswerModel) gin.H {
	answers := make(map[string]string, len(stored))
	for _, a := range stored {
		answers[a.QuestionID] = a.AdID
	}

	outcome := TopPreference(res, answers)
	justifications, moreSupport := Justifications(res, answers, outcome)

	if outcome != nil {
		normID := analysis.NormalizeAdID(outcome.AdID)
		if row.RecommendedAdID != normID || row.RecommendedLabel != outcome.Label {
			err := s.db.WithContext(ctx).Model(row).Updates(map[string]interface{}{
				"recommended_ad_id": normID,
				"recommended_label": outcome.Label,
			}).Error
			if err != nil {
				s.log.Warn("update recommended ad", zap.String("analysis_id", row.ID), zap.Error(err))
			}
		}
	}

	return gin.H{
		"recommendation": outcome,
		"justifications": justifications,
		"moreSupport":    moreSupport,
		"voteCounts":     VoteCounts(res, answers),
		"answered":       len(answers),
		"totalQuestions": len(res.Questions),
	}
}

type putAnswersDTO struct {
	UserID  string      `json:"userId"`
	Answers []AnswerDTO `json:"answers" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analysis/:id")

	g.PUT("/answers", h.putAnswers)
	g.GET("/answers", h.getAnswers)
	g.GET("/recommendation", h.getRecommendation)
}

func (h *Handler) currentUserID(c *gin.Context, bodyUserID string) string {
	if id := middleware.CurrentUserID(c); id != "" {
		return id
	}
	return bodyUserID
}

// PUT /analysis/:id/answers
func (h *Handler) putAnswers(c *gin.Context) {
	var dto putAnswersDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "Ogiltig JSON i request-body.")
		return
	}

	row, res, err := h.svc.LoadAnalysis(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}

	userID := h.currentUserID(c, dto.UserID)

	if err := h.svc.UpsertAnswers(c.Request.Context(), row.ID, userID, res, dto.Answers); err != nil {
		if errors.Is(err, errAnswerWithoutAd) {
			response.BadRequest(c, "Ett eller flera svar kan inte kopplas till en annons.")
			return
		}
		response.InternalError(c, err)
		return
	}

	stored, err := h.svc.StoredAnswers(row.ID, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, h.svc.Recommendation(c.Request.Context(), row, res, stored))
}

// GET /analysis/:id/answers
func (h *Handler) getAnswers(c *gin.Context) {
	row, _, err := h.svc.LoadAnalysis(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}

	userID := h.currentUserID(c, c.Query("userId"))

	stored, err := h.svc.StoredAnswers(row.ID, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]gin.H, 0, len(stored))
	for _, a := range stored {
		out = append(out, gin.H{
			"questionId":   a.QuestionID,
			"questionText": a.QuestionText,
			"optionId":     a.OptionID,
			"optionLabel":  a.OptionLabel,
			"adId":         a.AdID,
		})
	}
	response.OK(c, gin.H{"answers": out})
}

// GET /analysis/:id/recommendation
func (h *Handler) getRecommendation(c *gin.Context) {
	row, res, err := h.svc.LoadAnalysis(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFound(c)
		return
	}

	userID := h.currentUserID(c, c.Query("userId"))

	stored, err := h.svc.StoredAnswers(row.ID, userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.OK(c, h.svc.Recommendation(c.Request.Context(), row, res, stored))
}
