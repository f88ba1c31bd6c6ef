package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
}

func NewProfileHandler(profileRepo repositories.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
	}
}

// HandleCreateProfile handles POST /profiles
func (h *ProfileHandler) HandleCreateProfile(c *fiber.Ctx) error {
	var req models.CreateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	profile := &models.CandidateProfile{
		ID:             uuid.New(),
		OrganizationID: callerFrom(c).OrganizationID,
		Name:           req.Name,
		Document:       req.Document,
		ResumeText:     req.ResumeText,
	}
	if err := h.profileRepo.Create(profile); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// HandleGetProfile handles GET /profiles/:id
func (h *ProfileHandler) HandleGetProfile(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid profile ID format")
	}

	profile, err := h.profileRepo.FindByID(id)
	if err != nil {
		return respondError(c, err)
	}
	if profile.OrganizationID != callerFrom(c).OrganizationID {
		return respondError(c, models.ErrProfileNotFound)
	}

	return c.JSON(profile)
}
