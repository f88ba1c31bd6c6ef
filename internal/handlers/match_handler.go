package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type MatchHandler struct {
	matchService  services.MatchService
	exportService services.ExportService
	searchLimit   int
}

func NewMatchHandler(
	matchService services.MatchService,
	exportService services.ExportService,
	searchLimit int,
) *MatchHandler {
	return &MatchHandler{
		matchService:  matchService,
		exportService: exportService,
		searchLimit:   searchLimit,
	}
}

// HandleMatch handles POST /match
func (h *MatchHandler) HandleMatch(c *fiber.Ctx) error {
	var req models.MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	record, err := h.matchService.PerformMatch(c.UserContext(), callerFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.MatchResultResponse{
		MatchResult: record.MatchResultsJSON,
		MatchID:     record.ID.String(),
	})
}

// HandleKeywordMatch handles POST /match/keywords
func (h *MatchHandler) HandleKeywordMatch(c *fiber.Ctx) error {
	var req models.KeywordMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.matchService.MatchKeywords(c.UserContext(), callerFrom(c), &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

// HandleGetMatch handles GET /match/:id
func (h *MatchHandler) HandleGetMatch(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid match ID format")
	}

	record, err := h.matchService.GetMatch(callerFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

// HandleSearch handles GET /match/search
func (h *MatchHandler) HandleSearch(c *fiber.Ctx) error {
	filter, err := h.searchFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.matchService.SearchMatches(callerFrom(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"results": records,
		"count":   len(records),
	})
}

// HandleExport handles GET /match/search/export
func (h *MatchHandler) HandleExport(c *fiber.Ctx) error {
	filter, err := h.searchFilter(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	records, err := h.matchService.SearchMatches(callerFrom(c), filter)
	if err != nil {
		return respondError(c, err)
	}

	data, err := h.exportService.ExportMatches(records)
	if err != nil {
		return respondError(c, err)
	}

	filename := fmt.Sprintf("match_ranking_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(filename)
	return c.Send(data)
}

// searchFilter reads the query parameters shared by search and export.
// The organization always comes from the caller.
func (h *MatchHandler) searchFilter(c *fiber.Ctx) (models.MatchSearchFilter, error) {
	filter := models.MatchSearchFilter{
		CandidateName:    c.Query("candidate_name"),
		Limit:            c.QueryInt("limit", h.searchLimit),
		OrderByScoreDesc: c.QueryBool("order_by_score_desc", true),
	}
	if filter.Limit <= 0 {
		filter.Limit = h.searchLimit
	}

	if raw := c.Query("job_id"); raw != "" {
		jobID, err := uuid.Parse(raw)
		if err != nil {
			return filter, errors.New("invalid job_id format")
		}
		filter.JobID = &jobID
	}

	return filter, nil
}
