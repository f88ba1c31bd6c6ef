package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/matching"
	"alfredoptarigan/talent-matcher/internal/models"
	"alfredoptarigan/talent-matcher/internal/repositories"
)

type MatchService interface {
	PerformMatch(ctx context.Context, caller models.Caller, req *models.MatchRequest) (*models.MatchRecord, error)
	MatchKeywords(ctx context.Context, caller models.Caller, req *models.KeywordMatchRequest) (*models.KeywordMatchResult, error)
	GetMatch(caller models.Caller, id uuid.UUID) (*models.MatchRecord, error)
	SearchMatches(caller models.Caller, filter models.MatchSearchFilter) ([]models.MatchRecord, error)
	ProcessBulkRun(ctx context.Context, runID uuid.UUID) error
}

type matchService struct {
	ruleRepo    repositories.RuleSetRepository
	profileRepo repositories.ProfileRepository
	matchRepo   repositories.MatchRecordRepository
	bulkRepo    repositories.BulkRunRepository
	engine      *matching.Engine
	bulk        *matching.BulkMatcher
}

func NewMatchService(
	ruleRepo repositories.RuleSetRepository,
	profileRepo repositories.ProfileRepository,
	matchRepo repositories.MatchRecordRepository,
	bulkRepo repositories.BulkRunRepository,
	engine *matching.Engine,
	bulk *matching.BulkMatcher,
) MatchService {
	return &matchService{
		ruleRepo:    ruleRepo,
		profileRepo: profileRepo,
		matchRepo:   matchRepo,
		bulkRepo:    bulkRepo,
		engine:      engine,
		bulk:        bulk,
	}
}

func candidateFromProfile(p *models.CandidateProfile) matching.Candidate {
	return matching.Candidate{
		ID:         p.ID,
		Name:       p.Name,
		Document:   p.Document,
		ResumeText: p.ResumeText,
	}
}

// activeRuleSet hides rule sets of other organizations behind the same
// not-found error as a missing one.
func (s *matchService) activeRuleSet(organizationID string, jobID uuid.UUID) (*models.RuleSet, error) {
	rs, err := s.ruleRepo.FindActive(jobID)
	if err != nil {
		return nil, err
	}
	if rs.OrganizationID != organizationID {
		return nil, &models.RuleNotFoundError{JobID: jobID}
	}
	return rs, nil
}

func (s *matchService) loadProfile(caller models.Caller, id uuid.UUID) (*models.CandidateProfile, error) {
	profile, err := s.profileRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if profile.OrganizationID != caller.OrganizationID {
		return nil, models.ErrProfileNotFound
	}
	return profile, nil
}

// PerformMatch scores one profile against the job's active rule set and
// stores the result as a new record.
func (s *matchService) PerformMatch(ctx context.Context, caller models.Caller, req *models.MatchRequest) (*models.MatchRecord, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, fmt.Errorf("invalid jobId: %w", err)
	}
	profileID, err := uuid.Parse(req.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("invalid profileId: %w", err)
	}

	rs, err := s.activeRuleSet(caller.OrganizationID, jobID)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadProfile(caller, profileID)
	if err != nil {
		return nil, err
	}

	result := s.engine.Match(ctx, rs, candidateFromProfile(profile))
	record := newMatchRecord(caller, jobID, profile, result, req.AgencyID, nil)

	if err := s.matchRepo.Create(record); err != nil {
		return nil, err
	}

	log.Printf("✅ Match %s stored: job %s, profile %s, score %.2f\n", record.ID, jobID, profileID, record.OverallScore)
	return record, nil
}

func newMatchRecord(caller models.Caller, jobID uuid.UUID, profile *models.CandidateProfile, result *models.MatchResult, agencyID *string, runID *uuid.UUID) *models.MatchRecord {
	return &models.MatchRecord{
		ID:               uuid.New(),
		JobID:            jobID,
		ProfileID:        profile.ID,
		CandidateName:    profile.Name,
		OverallScore:     result.OverallScoreWeighted,
		MatchResultsJSON: result,
		OrganizationID:   caller.OrganizationID,
		AgencyID:         agencyID,
		CreatedBy:        caller.UserID,
		RuleSetID:        result.RuleSetID,
		JDVersion:        result.JDVersion,
		BulkRunID:        runID,
	}
}

// MatchKeywords runs the keyword categories of the job against a stored
// profile or free text. Nothing is persisted.
func (s *matchService) MatchKeywords(ctx context.Context, caller models.Caller, req *models.KeywordMatchRequest) (*models.KeywordMatchResult, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return nil, fmt.Errorf("invalid jobId: %w", err)
	}

	rs, err := s.activeRuleSet(caller.OrganizationID, jobID)
	if err != nil {
		return nil, err
	}

	text := req.Text
	if strings.TrimSpace(text) == "" {
		profileID, err := uuid.Parse(req.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("invalid profileId: %w", err)
		}
		profile, err := s.loadProfile(caller, profileID)
		if err != nil {
			return nil, err
		}
		text = candidateFromProfile(profile).Text()
	}

	return s.engine.MatchKeywords(rs.KeywordCategories, text), nil
}

func (s *matchService) GetMatch(caller models.Caller, id uuid.UUID) (*models.MatchRecord, error) {
	record, err := s.matchRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if record.OrganizationID != caller.OrganizationID {
		return nil, models.ErrMatchNotFound
	}
	return record, nil
}

// SearchMatches is scoped to the caller's organization.
func (s *matchService) SearchMatches(caller models.Caller, filter models.MatchSearchFilter) ([]models.MatchRecord, error) {
	filter.OrganizationID = caller.OrganizationID
	return s.matchRepo.Search(filter)
}

// ProcessBulkRun scores every pending profile of a queued run. Cancelling
// ctx stops new candidates from starting; the run then ends as cancelled,
// unless the cause is ErrWorkerStopped.
func (s *matchService) ProcessBulkRun(ctx context.Context, runID uuid.UUID) error {
	claimed, err := s.bulkRepo.Transition(runID, models.StatusQueued, models.StatusProcessing)
	if err != nil {
		return err
	}
	if !claimed {
		log.Printf("⚠️ Bulk run %s is not queued, skipping\n", runID)
		return nil
	}

	run, err := s.bulkRepo.FindByID(runID)
	if err != nil {
		return err
	}

	rs, err := s.activeRuleSet(run.OrganizationID, run.JobID)
	if err != nil {
		s.fail(runID, err)
		return err
	}
	if err := s.bulkRepo.RecordRuleVersion(runID, rs.Version); err != nil {
		log.Printf("⚠️ Failed to record rule version for run %s: %v\n", runID, err)
	}

	// a requeued run keeps what it already scored
	done, err := s.matchRepo.ProfileIDsForRun(runID)
	if err != nil {
		s.fail(runID, err)
		return err
	}
	scored := make(map[uuid.UUID]bool, len(done))
	for _, id := range done {
		scored[id] = true
	}

	var pending []uuid.UUID
	for _, id := range run.ProfileIDs {
		if !scored[id] {
			pending = append(pending, id)
		}
	}

	profiles, err := s.profileRepo.FindByIDs(pending)
	if err != nil {
		s.fail(runID, err)
		return err
	}

	byID := make(map[uuid.UUID]*models.CandidateProfile, len(profiles))
	for i := range profiles {
		if profiles[i].OrganizationID == run.OrganizationID {
			byID[profiles[i].ID] = &profiles[i]
		}
	}

	succeeded, failed := len(scored), 0
	candidates := make([]matching.Candidate, 0, len(pending))
	for _, id := range pending {
		p, ok := byID[id]
		if !ok {
			log.Printf("⚠️ Bulk run %s: profile %s not found\n", runID, id)
			failed++
			continue
		}
		candidates = append(candidates, candidateFromProfile(p))
	}

	caller := models.Caller{UserID: run.CreatedBy, OrganizationID: run.OrganizationID}
	var mu sync.Mutex

	s.bulk.Run(ctx, rs, candidates, func(out matching.BulkOutcome) {
		record := newMatchRecord(caller, run.JobID, byID[out.Candidate.ID], out.Result, run.AgencyID, &runID)
		err := s.matchRepo.Create(record)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			log.Printf("❌ Bulk run %s: failed to store match for profile %s: %v\n", runID, out.Candidate.ID, err)
			failed++
		} else {
			succeeded++
		}
		if err := s.bulkRepo.UpdateProgress(runID, succeeded, failed); err != nil {
			log.Printf("⚠️ Bulk run %s: failed to update progress: %v\n", runID, err)
		}
	})

	if errors.Is(context.Cause(ctx), ErrWorkerStopped) {
		log.Printf("⏸️ Bulk run %s interrupted after %d of %d, left for requeue\n", runID, succeeded+failed, run.Total)
		return nil
	}

	status := models.StatusCompleted
	if ctx.Err() != nil {
		status = models.StatusCancelled
	}

	// the run may have been cancelled by ctx, so finishing must not depend on it
	if err := s.bulkRepo.Finish(runID, status, succeeded, failed); err != nil {
		return err
	}

	log.Printf("✅ Bulk run %s %s: %d succeeded, %d failed of %d\n", runID, status, succeeded, failed, run.Total)
	return nil
}

func (s *matchService) fail(runID uuid.UUID, cause error) {
	if err := s.bulkRepo.UpdateError(runID, cause.Error()); err != nil {
		log.Printf("❌ Failed to mark bulk run %s as failed: %v\n", runID, err)
	}
}
