package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"alfredoptarigan/talent-matcher/internal/models"
)

type fakeRuleRepo struct {
	sets map[uuid.UUID]*models.RuleSet
}

func newFakeRuleRepo(sets ...*models.RuleSet) *fakeRuleRepo {
	r := &fakeRuleRepo{sets: make(map[uuid.UUID]*models.RuleSet)}
	for _, rs := range sets {
		r.sets[rs.JobID] = rs
	}
	return r
}

func (r *fakeRuleRepo) Save(rs *models.RuleSet) error {
	if prev, ok := r.sets[rs.JobID]; ok {
		rs.Version = prev.Version + 1
	} else {
		rs.Version = 1
	}
	rs.IsActive = true
	r.sets[rs.JobID] = rs
	return nil
}

func (r *fakeRuleRepo) FindActive(jobID uuid.UUID) (*models.RuleSet, error) {
	rs, ok := r.sets[jobID]
	if !ok {
		return nil, &models.RuleNotFoundError{JobID: jobID}
	}
	return rs, nil
}

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*models.CandidateProfile
}

func newFakeProfileRepo(profiles ...*models.CandidateProfile) *fakeProfileRepo {
	r := &fakeProfileRepo{profiles: make(map[uuid.UUID]*models.CandidateProfile)}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	return r
}

func (r *fakeProfileRepo) Create(p *models.CandidateProfile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) FindByID(id uuid.UUID) (*models.CandidateProfile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) FindByIDs(ids []uuid.UUID) ([]models.CandidateProfile, error) {
	var out []models.CandidateProfile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	records   []models.MatchRecord
	createErr error
}

func (r *fakeMatchRepo) Create(record *models.MatchRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeMatchRepo) FindByID(id uuid.UUID) (*models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, models.ErrMatchNotFound
}

func (r *fakeMatchRepo) Search(filter models.MatchSearchFilter) ([]models.MatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.MatchRecord
	for _, rec := range r.records {
		if filter.OrganizationID != "" && rec.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.JobID != nil && rec.JobID != *filter.JobID {
			continue
		}
		if filter.CandidateName != "" && !strings.Contains(strings.ToLower(rec.CandidateName), strings.ToLower(filter.CandidateName)) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeMatchRepo) ProfileIDsForRun(runID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for _, rec := range r.records {
		if rec.BulkRunID != nil && *rec.BulkRunID == runID {
			ids = append(ids, rec.ProfileID)
		}
	}
	return ids, nil
}

func (r *fakeMatchRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type fakeBulkRepo struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*models.BulkRun
}

func newFakeBulkRepo(runs ...*models.BulkRun) *fakeBulkRepo {
	r := &fakeBulkRepo{runs: make(map[uuid.UUID]*models.BulkRun)}
	for _, run := range runs {
		r.runs[run.ID] = run
	}
	return r
}

func (r *fakeBulkRepo) Create(run *models.BulkRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return nil
}

func (r *fakeBulkRepo) FindByID(id uuid.UUID) (*models.BulkRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, models.ErrBulkRunNotFound
	}
	cp := *run
	return &cp, nil
}

func (r *fakeBulkRepo) with(id uuid.UUID, fn func(*models.BulkRun)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return models.ErrBulkRunNotFound
	}
	fn(run)
	return nil
}

func (r *fakeBulkRepo) Transition(id uuid.UUID, from, to models.BulkRunStatus) (bool, error) {
	moved := false
	err := r.with(id, func(run *models.BulkRun) {
		if run.Status == from {
			run.Status = to
			moved = true
		}
	})
	if errors.Is(err, models.ErrBulkRunNotFound) {
		return false, nil
	}
	return moved, err
}

func (r *fakeBulkRepo) RecordRuleVersion(id uuid.UUID, version int) error {
	return r.with(id, func(run *models.BulkRun) { run.JDVersion = &version })
}

func (r *fakeBulkRepo) UpdateProgress(id uuid.UUID, succeeded, failed int) error {
	return r.with(id, func(run *models.BulkRun) {
		run.Succeeded = succeeded
		run.Failed = failed
	})
}

func (r *fakeBulkRepo) Finish(id uuid.UUID, status models.BulkRunStatus, succeeded, failed int) error {
	return r.with(id, func(run *models.BulkRun) {
		run.Status = status
		run.Succeeded = succeeded
		run.Failed = failed
	})
}

func (r *fakeBulkRepo) UpdateError(id uuid.UUID, msg string) error {
	return r.with(id, func(run *models.BulkRun) {
		run.Status = models.StatusFailed
		run.ErrorMessage = &msg
	})
}

func (r *fakeBulkRepo) FindPendingJobs(limit int) ([]models.BulkRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BulkRun
	for _, run := range r.runs {
		if run.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *run)
		}
	}
	return out, nil
}

func (r *fakeBulkRepo) RequeueInterrupted() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, run := range r.runs {
		if run.Status == models.StatusProcessing {
			run.Status = models.StatusQueued
			n++
		}
	}
	return n, nil
}

func (r *fakeBulkRepo) status(id uuid.UUID) models.BulkRunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[id].Status
}

// fakeGemini returns canned answers and counts calls.
type fakeGemini struct {
	mu         sync.Mutex
	embeddings map[string][]float32
	text       string
	err        error
	embedCalls int
	textCalls  int
}

func (g *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.embedCalls++
	if g.err != nil {
		return nil, g.err
	}
	if vec, ok := g.embeddings[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func (g *fakeGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.textCalls++
	return g.text, g.err
}

func (g *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return g.GenerateText(ctx, prompt, temperature)
}

func (g *fakeGemini) EmbedModel() string {
	return "test-embed"
}

type fakeCache struct {
	mu      sync.Mutex
	vectors map[string][]float32
	getErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{vectors: make(map[string][]float32)}
}

func (c *fakeCache) InitCollection(ctx context.Context) error {
	return nil
}

func (c *fakeCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	vec, ok := c.vectors[model+"|"+text]
	return vec, ok, nil
}

func (c *fakeCache) Put(ctx context.Context, model, text string, embedding []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[model+"|"+text] = embedding
	return nil
}
