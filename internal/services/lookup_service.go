package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
	"gridbase/internal/values"
)

// LookupOption is one selectable row of a linked table: its id plus a
// human-readable label.
type LookupOption struct {
	RecordID uuid.UUID `json:"recordId"`
	Label    string    `json:"label"`
	Value    any       `json:"value,omitempty"`
}

// LookupService resolves linked-table and lookup columns against their
// target tables.
type LookupService struct {
	tableRepo  *repositories.TableRepository
	columnRepo *repositories.ColumnRepository
	recordRepo *repositories.RecordRepository
}

func NewLookupService(
	tableRepo *repositories.TableRepository,
	columnRepo *repositories.ColumnRepository,
	recordRepo *repositories.RecordRepository,
) *LookupService {
	return &LookupService{
		tableRepo:  tableRepo,
		columnRepo: columnRepo,
		recordRepo: recordRepo,
	}
}

// LookupPage is one page of resolved options plus the total after the
// search filter.
type LookupPage struct {
	Options []LookupOption `json:"options"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

const defaultLookupLimit = 50

// ResolveOptions lists the rows of the table a linked_table or lookup
// column points at, labelled for display. A non-empty search keeps only
// options whose label contains it, case-insensitively.
func (s *LookupService) ResolveOptions(column *models.Column, search string, page, limit int) (*LookupPage, error) {
	targetID, displayColumnID, lookupColumnID := lookupTarget(column)
	if targetID == uuid.Nil {
		return nil, apperrors.Validation("column '%s' does not reference another table", column.Name)
	}

	table, err := s.tableRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("linked table")
	}

	columns, err := s.columnRepo.GetByTableID(targetID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.GetByTableID(targetID)
	if err != nil {
		return nil, err
	}

	displayName := columnNameByID(columns, displayColumnID)
	lookupName := columnNameByID(columns, lookupColumnID)

	needle := strings.ToLower(strings.TrimSpace(search))
	options := make([]LookupOption, 0, len(records))
	for i := range records {
		option := LookupOption{
			RecordID: records[i].ID,
			Label:    recordLabel(records[i].Data, displayName, lookupName, columns, i),
		}
		if lookupName != "" {
			option.Value = records[i].Data[lookupName]
		}
		if needle != "" && !strings.Contains(strings.ToLower(option.Label), needle) {
			continue
		}
		options = append(options, option)
	}

	total := len(options)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLookupLimit
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &LookupPage{
		Options: options[start:end],
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// HydrateCell replaces a stored record-id cell with its display label. A
// missing target record resolves to nil rather than an error; the link may
// have been deleted out from under us.
func (s *LookupService) HydrateCell(column *models.Column, cell any) any {
	id, err := uuid.Parse(values.Stringify(cell))
	if err != nil {
		return cell
	}

	record, err := s.recordRepo.GetByID(id)
	if err != nil {
		log.Printf("lookup hydration failed for record %s: %v", id, err)
		return cell
	}
	if record == nil {
		return nil
	}

	targetID, displayColumnID, lookupColumnID := lookupTarget(column)
	if targetID == uuid.Nil {
		return cell
	}

	columns, err := s.columnRepo.GetByTableID(targetID)
	if err != nil {
		log.Printf("lookup hydration failed for table %s: %v", targetID, err)
		return cell
	}

	displayName := columnNameByID(columns, displayColumnID)
	lookupName := columnNameByID(columns, lookupColumnID)
	return recordLabel(record.Data, displayName, lookupName, columns, 0)
}

func lookupTarget(column *models.Column) (tableID uuid.UUID, displayColumnID, lookupColumnID *uuid.UUID) {
	switch {
	case column.DataType == models.DataTypeLinkedTable && column.LinkedTableConfig != nil:
		return column.LinkedTableConfig.LinkedTableID, column.LinkedTableConfig.DisplayColumnID, nil
	case column.DataType == models.DataTypeLookup && column.LookupConfig != nil:
		id := column.LookupConfig.LookupColumnID
		return column.LookupConfig.LinkedTableID, nil, &id
	default:
		return uuid.Nil, nil, nil
	}
}

func columnNameByID(columns []models.Column, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	for i := range columns {
		if columns[i].ID == *id {
			return columns[i].Name
		}
	}
	return ""
}

// recordLabel picks the display text for one linked row: the display
// column if set, then the lookup value, then the first non-empty cell in
// column order, then a positional fallback.
func recordLabel(data models.RecordData, displayName, lookupName string, columns []models.Column, index int) string {
	if displayName != "" && !values.IsEmpty(data[displayName]) {
		return values.Stringify(data[displayName])
	}
	if lookupName != "" && !values.IsEmpty(data[lookupName]) {
		return values.Stringify(data[lookupName])
	}
	for i := range columns {
		if !values.IsEmpty(data[columns[i].Name]) {
			return values.Stringify(data[columns[i].Name])
		}
	}
	return fmt.Sprintf("Record %d", index+1)
}
