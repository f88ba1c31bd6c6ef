package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"alfredoptarigan/talent-matcher/internal/models"
)

func TestExportMatches_WritesRankingAndFields(t *testing.T) {
	records := []models.MatchRecord{
		{
			ID:            uuid.New(),
			CandidateName: "Rina",
			OverallScore:  91.5,
			JDVersion:     3,
			CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			MatchResultsJSON: &models.MatchResult{
				Results: []models.FieldResult{
					{Field: "job_title", Score: 100, Confidence: 100, Weightage: 5, BestSourceUsed: "title"},
					{Field: "leadership", Skipped: true},
				},
				Summary: models.Summary{MaxScoreField: "job_title"},
			},
		},
		{ID: uuid.New(), CandidateName: "Budi", OverallScore: 20},
	}

	data, err := NewExportService().ExportMatches(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "Rina", "91.5"}, rows[1][:3])
	assert.Equal(t, "job_title", rows[1][5])
	assert.Equal(t, "2026-01-02 03:04:05", rows[1][7])
	assert.Equal(t, "Budi", rows[2][1])

	fieldRows, err := f.GetRows(fieldsSheet)
	require.NoError(t, err)
	require.Len(t, fieldRows, 3)
	assert.Equal(t, "job_title", fieldRows[1][2])
	assert.Equal(t, "gate not satisfied", fieldRows[2][7])
}

func TestExportMatches_Empty(t *testing.T) {
	data, err := NewExportService().ExportMatches(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rankingSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
