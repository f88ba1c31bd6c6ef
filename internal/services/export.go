package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/talent-matcher/internal/models"
)

const (
	rankingSheet = "Ranking"
	fieldsSheet  = "Field Scores"
)

// ExportService renders match records as an XLSX ranking.
type ExportService interface {
	ExportMatches(records []models.MatchRecord) ([]byte, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

// ExportMatches writes records in the order given; callers sort them.
func (e *exportService) ExportMatches(records []models.MatchRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(fieldsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	styles, err := newExportStyles(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create styles: %w", err)
	}

	if err := writeRankingSheet(f, styles, records); err != nil {
		return nil, fmt.Errorf("failed to write ranking sheet: %w", err)
	}
	if err := writeFieldsSheet(f, styles, records); err != nil {
		return nil, fmt.Errorf("failed to write field scores sheet: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type exportStyles struct {
	header int
	strong int
	fair   int
	weak   int
}

func newExportStyles(f *excelize.File) (exportStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	var s exportStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return s, err
	}

	fill := func(color string) (int, error) {
		return f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: border,
		})
	}
	if s.strong, err = fill("C6EFCE"); err != nil {
		return s, err
	}
	if s.fair, err = fill("FFEB9C"); err != nil {
		return s, err
	}
	if s.weak, err = fill("FFC7CE"); err != nil {
		return s, err
	}
	return s, nil
}

func (s exportStyles) forScore(score float64) int {
	switch {
	case score >= 70:
		return s.strong
	case score >= 40:
		return s.fair
	default:
		return s.weak
	}
}

func writeHeader(f *excelize.File, sheet string, style int, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeRankingSheet(f *excelize.File, styles exportStyles, records []models.MatchRecord) error {
	headers := []string{"Rank", "Candidate", "Overall Score", "Average (all)", "Average (non-zero)", "Top Field", "JD Version", "Matched At", "Match ID"}
	if err := writeHeader(f, rankingSheet, styles.header, headers); err != nil {
		return err
	}
	f.SetColWidth(rankingSheet, "A", "A", 8)
	f.SetColWidth(rankingSheet, "B", "B", 28)
	f.SetColWidth(rankingSheet, "C", "G", 16)
	f.SetColWidth(rankingSheet, "H", "H", 20)
	f.SetColWidth(rankingSheet, "I", "I", 38)

	for i, r := range records {
		row := i + 2
		var summary models.Summary
		if r.MatchResultsJSON != nil {
			summary = r.MatchResultsJSON.Summary
		}
		values := []any{
			i + 1,
			r.CandidateName,
			r.OverallScore,
			summary.OverallScoreAverageAll,
			summary.OverallScoreAverageNonZero,
			summary.MaxScoreField,
			r.JDVersion,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.ID.String(),
		}
		if err := writeRow(f, rankingSheet, row, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(rankingSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), styles.forScore(r.OverallScore)); err != nil {
			return err
		}
	}

	if len(records) > 0 {
		return f.AutoFilter(rankingSheet, fmt.Sprintf("A1:I%d", len(records)+1), nil)
	}
	return nil
}

func writeFieldsSheet(f *excelize.File, styles exportStyles, records []models.MatchRecord) error {
	headers := []string{"Rank", "Candidate", "Field", "Score", "Confidence", "Weightage", "Best Source", "Notes"}
	if err := writeHeader(f, fieldsSheet, styles.header, headers); err != nil {
		return err
	}
	f.SetColWidth(fieldsSheet, "A", "A", 8)
	f.SetColWidth(fieldsSheet, "B", "C", 28)
	f.SetColWidth(fieldsSheet, "D", "F", 12)
	f.SetColWidth(fieldsSheet, "G", "G", 28)
	f.SetColWidth(fieldsSheet, "H", "H", 40)

	row := 2
	for i, r := range records {
		if r.MatchResultsJSON == nil {
			continue
		}
		for _, fr := range r.MatchResultsJSON.Results {
			note := fr.FailureReason
			if fr.Skipped {
				note = "gate not satisfied"
			}
			values := []any{i + 1, r.CandidateName, fr.Field, fr.Score, fr.Confidence, fr.Weightage, fr.BestSourceUsed, note}
			if err := writeRow(f, fieldsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}
