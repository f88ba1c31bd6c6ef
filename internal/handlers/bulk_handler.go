package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
	"alfredoptarigan/talent-matcher/internal/services"
)

type BulkHandler struct {
	bulkRepo repositories.BulkRunRepository
	ruleRepo repositories.RuleSetRepository
	worker   services.Worker
}

func NewBulkHandler(
	bulkRepo repositories.BulkRunRepository,
	ruleRepo repositories.RuleSetRepository,
	worker services.Worker,
) *BulkHandler {
	return &BulkHandler{
		bulkRepo: bulkRepo,
		ruleRepo: ruleRepo,
		worker:   worker,
	}
}

// HandleCreate handles POST /match/bulk
func (h *BulkHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.BulkMatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "Invalid jobId format")
	}

	caller := callerFrom(c)

	rs, err := h.ruleRepo.FindActive(jobID)
	if err != nil {
		return respondError(c, err)
	}
	if rs.OrganizationID != caller.OrganizationID {
		return respondError(c, &models.RuleNotFoundError{JobID: jobID})
	}

	seen := make(map[uuid.UUID]bool, len(req.ProfileIDs))
	profileIDs := make([]uuid.UUID, 0, len(req.ProfileIDs))
	for _, raw := range req.ProfileIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "Invalid profileIds format")
		}
		if !seen[id] {
			seen[id] = true
			profileIDs = append(profileIDs, id)
		}
	}

	run := &models.BulkRun{
		ID:             uuid.New(),
		JobID:          jobID,
		OrganizationID: caller.OrganizationID,
		AgencyID:       req.AgencyID,
		CreatedBy:      caller.UserID,
		ProfileIDs:     profileIDs,
		Status:         models.StatusQueued,
		Total:          len(profileIDs),
	}
	if err := h.bulkRepo.Create(run); err != nil {
		return respondError(c, err)
	}

	h.worker.EnqueueJob(run.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.BulkMatchResponse{
		ID:     run.ID.String(),
		Status: string(run.Status),
		Total:  run.Total,
	})
}

// HandleGet handles GET /match/bulk/:id
func (h *BulkHandler) HandleGet(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(run)
}

// HandleCancel handles POST /match/bulk/:id/cancel
func (h *BulkHandler) HandleCancel(c *fiber.Ctx) error {
	run, err := h.findRun(c)
	if err != nil {
		return respondError(c, err)
	}
	if run.Finished() {
		return respondError(c, models.ErrBulkRunNotCancellable)
	}

	if err := h.worker.Cancel(run.ID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":      run.ID.String(),
		"message": "Cancellation requested",
	})
}

func (h *BulkHandler) findRun(c *fiber.Ctx) (*models.BulkRun, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, models.ErrBulkRunNotFound
	}

	run, err := h.bulkRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if run.OrganizationID != callerFrom(c).OrganizationID {
		return nil, models.ErrBulkRunNotFound
	}
	return run, nil
}
