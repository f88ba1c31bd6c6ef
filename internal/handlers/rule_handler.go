package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

type RuleHandler struct {
	ruleRepo repositories.RuleSetRepository
}

func NewRuleHandler(ruleRepo repositories.RuleSetRepository) *RuleHandler {
	return &RuleHandler{
		ruleRepo: ruleRepo,
	}
}

// HandleSaveRules handles PUT /jd/rule/:jobId
func (h *RuleHandler) HandleSaveRules(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "Invalid jobId format")
	}

	var req models.SaveRuleSetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	caller := callerFrom(c)

	// a job's rules belong to the organization that first configured it
	if current, err := h.ruleRepo.FindActive(jobID); err == nil && current.OrganizationID != caller.OrganizationID {
		return respondError(c, &models.RuleNotFoundError{JobID: jobID})
	}

	rs := &models.RuleSet{
		ID:                uuid.New(),
		JobID:             jobID,
		OrganizationID:    caller.OrganizationID,
		Rules:             req.Rules,
		KeywordCategories: req.KeywordCategories,
		CreatedBy:         caller.UserID,
	}
	if err := h.ruleRepo.Save(rs); err != nil {
		return respondError(c, err)
	}

	return c.JSON(rs)
}

// HandleGetRules handles GET /jd/rule/:jobId
func (h *RuleHandler) HandleGetRules(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return badRequest(c, "Invalid jobId format")
	}

	rs, err := h.ruleRepo.FindActive(jobID)
	if err != nil {
		return respondError(c, err)
	}
	if rs.OrganizationID != callerFrom(c).OrganizationID {
		return respondError(c, &models.RuleNotFoundError{JobID: jobID})
	}

	return c.JSON(rs)
}
