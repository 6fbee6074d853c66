package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
)

// Import errors.
var (
	ErrImportFormat  = errors.New("unsupported import file format")
	ErrImportHeaders = errors.New("required columns missing: number, description, q-ty, chapt.")
	ErrImportChapter = errors.New("part chapters are not allowed at machine level")
)

// Required normalized header names.
const (
	colNumber      = "number"
	colDescription = "description"
	colQty         = "q-ty"
	colChapter     = "chapt."
)

// ImportService loads BOM sheets into the module/part hierarchy. Each
// import runs in one transaction: a write failure discards the whole
// sheet.
type ImportService struct {
	repos *repository.Repositories
}

// NewImportService creates the import service.
func NewImportService(repos *repository.Repositories) *ImportService {
	return &ImportService{repos: repos}
}

// ImportResult summarizes one sheet import.
type ImportResult struct {
	ModulesCreated int      `json:"modules_created"`
	ModulesUpdated int      `json:"modules_updated"`
	PartsCreated   int      `json:"parts_created"`
	PartsUpdated   int      `json:"parts_updated"`
	LinksWritten   int      `json:"links_written"`
	RowErrors      []string `json:"row_errors,omitempty"`
}

type bomRow struct {
	line        int
	number      string
	description string
	quantity    int
	chapter     string
}

// ImportMachineBOM reads a sheet of top-level modules and attaches them
// to the machine. A part chapter at machine level aborts the import.
func (s *ImportService) ImportMachineBOM(ctx context.Context, machineID, fileName string, r io.Reader) (*ImportResult, error) {
	if _, err := s.repos.Machine.FindByID(ctx, machineID); err != nil {
		return nil, err
	}

	rows, err := parseSheet(fileName, r)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if isPartChapter(row.chapter) {
			return nil, fmt.Errorf("row %d: %w", row.line, ErrImportChapter)
		}
	}

	result := &ImportResult{}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for _, row := range rows {
			if row.number == "" {
				result.RowErrors = append(result.RowErrors,
					fmt.Sprintf("row %d: module row without a decimal number", row.line))
				continue
			}
			module, created, err := upsertModule(ctx, tx, row, true)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.line, err)
			}
			if created {
				result.ModulesCreated++
			} else {
				result.ModulesUpdated++
			}

			link := &entity.MachineModule{
				MachineID: machineID,
				ModuleID:  module.ID,
				Quantity:  row.quantity,
			}
			if err := tx.Module.UpsertLink(ctx, link); err != nil {
				return fmt.Errorf("row %d: link: %w", row.line, err)
			}
			result.LinksWritten++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ImportModuleBOM reads a sheet of submodules and parts under one
// hierarchy link. Child links inherit the parent link's machine.
func (s *ImportService) ImportModuleBOM(ctx context.Context, linkID, fileName string, r io.Reader) (*ImportResult, error) {
	parentLink, err := s.repos.Module.FindLinkByID(ctx, linkID)
	if err != nil {
		return nil, err
	}

	rows, err := parseSheet(fileName, r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		for _, row := range rows {
			if isPartChapter(row.chapter) {
				if err := importPartRow(ctx, tx, parentLink.ModuleID, row, result); err != nil {
					return fmt.Errorf("row %d: %w", row.line, err)
				}
				continue
			}

			if row.number == "" {
				result.RowErrors = append(result.RowErrors,
					fmt.Sprintf("row %d: module row without a decimal number", row.line))
				continue
			}
			module, created, err := upsertModule(ctx, tx, row, false)
			if err != nil {
				return fmt.Errorf("row %d: %w", row.line, err)
			}
			if created {
				result.ModulesCreated++
			} else {
				result.ModulesUpdated++
			}

			link := &entity.MachineModule{
				MachineID: parentLink.MachineID,
				ModuleID:  module.ID,
				ParentID:  &parentLink.ID,
				Quantity:  row.quantity,
			}
			if err := tx.Module.UpsertLink(ctx, link); err != nil {
				return fmt.Errorf("row %d: link: %w", row.line, err)
			}
			result.LinksWritten++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// upsertModule creates or refreshes a module row. Top-level sheets name
// modules by plain truncation; nested sheets apply the parenthesis rule.
func upsertModule(ctx context.Context, tx *repository.Repositories, row bomRow, topLevel bool) (*entity.Module, bool, error) {
	name := deriveName(row.description)
	if topLevel {
		name = truncateName(row.description)
	}

	module, err := tx.Module.FindByDecimal(ctx, row.number)
	if errors.Is(err, repository.ErrNotFound) {
		module = &entity.Module{
			Decimal:     row.number,
			Name:        name,
			Description: row.description,
			Status:      entity.ModuleStatusInProgress,
		}
		if err := tx.Module.Create(ctx, module); err != nil {
			return nil, false, err
		}
		return module, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	module.Name = name
	module.Description = row.description
	if err := tx.Module.Update(ctx, module); err != nil {
		return nil, false, err
	}
	return module, false, nil
}

func importPartRow(ctx context.Context, tx *repository.Repositories, moduleID string, row bomRow, result *ImportResult) error {
	var part *entity.Part
	var err error
	if row.number != "" {
		part, err = tx.Part.FindByDecimal(ctx, row.number)
	} else {
		part, err = tx.Part.FindByDescription(ctx, row.description)
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		part = &entity.Part{
			Decimal:     row.number,
			Name:        deriveName(row.description),
			Description: row.description,
		}
		if err := tx.Part.Create(ctx, part); err != nil {
			return err
		}
		result.PartsCreated++
	case err != nil:
		return err
	default:
		part.Description = row.description
		if err := tx.Part.Update(ctx, part); err != nil {
			return err
		}
		result.PartsUpdated++
	}

	link := &entity.ModulePart{
		ModuleID: moduleID,
		PartID:   part.ID,
		Quantity: row.quantity,
	}
	if err := tx.Module.UpsertModulePart(ctx, link); err != nil {
		return err
	}
	result.LinksWritten++
	return nil
}

// isPartChapter reports whether a chapter value names standard or
// miscellaneous parts rather than a submodule.
func isPartChapter(chapter string) bool {
	lower := strings.ToLower(chapter)
	return strings.Contains(lower, "others") || strings.Contains(lower, "stand. parts")
}

// deriveName shortens a description into a display name: when an
// opening parenthesis appears past position 15 the text before it is
// used, otherwise the name is the first 25 characters.
func deriveName(description string) string {
	runes := []rune(description)
	paren := -1
	for i, r := range runes {
		if r == '(' {
			paren = i
			break
		}
	}
	if paren > 15 {
		return strings.TrimSpace(string(runes[:paren]))
	}
	return truncateName(description)
}

// truncateName shortens a description to the first 25 characters.
func truncateName(description string) string {
	runes := []rune(description)
	if len(runes) > 25 {
		return strings.TrimSpace(string(runes[:25]))
	}
	return strings.TrimSpace(description)
}

// parseSheet reads an .xlsx or .csv BOM into normalized rows. CSV files
// are decoded from windows-1251, the export encoding of the legacy CAD
// tooling.
func parseSheet(fileName string, r io.Reader) ([]bomRow, error) {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		return parseXLSX(r)
	case strings.HasSuffix(lower, ".csv"):
		return parseCSV(r)
	default:
		return nil, ErrImportFormat
	}
}

func parseXLSX(r io.Reader) ([]bomRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return normalizeRecords(records)
}

func parseCSV(r io.Reader) ([]bomRow, error) {
	decoded := transform.NewReader(r, charmap.Windows1251.NewDecoder())
	data, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	if i := strings.IndexByte(string(data), '\n'); i > 0 && strings.Contains(string(data[:i]), ";") {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return normalizeRecords(records)
}

func normalizeRecords(records [][]string) ([]bomRow, error) {
	if len(records) == 0 {
		return nil, ErrImportHeaders
	}

	// Header cells keep only the text before "/", trimmed and lowered.
	index := make(map[string]int)
	for i, cell := range records[0] {
		name := strings.ToLower(strings.TrimSpace(strings.Split(cell, "/")[0]))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	for _, required := range []string{colNumber, colDescription, colQty, colChapter} {
		if _, ok := index[required]; !ok {
			return nil, ErrImportHeaders
		}
	}

	cell := func(record []string, col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []bomRow
	for n, record := range records[1:] {
		row := bomRow{
			line:        n + 2,
			number:      cell(record, colNumber),
			description: cell(record, colDescription),
			quantity:    parseQuantity(cell(record, colQty)),
			chapter:     cell(record, colChapter),
		}
		if row.number == "" && row.description == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseQuantity truncates fractional quantities and falls back to 1 for
// anything unparseable or non-positive.
func parseQuantity(raw string) int {
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || int(f) <= 0 {
		return 1
	}
	return int(f)
}
