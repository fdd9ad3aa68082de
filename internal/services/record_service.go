package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/formula"
	"gridbase/internal/listing"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
	"gridbase/internal/values"
)

// ListOptions shapes one listing request. Zero values mean "no sorting, no
// filtering, first page with the default size".
type ListOptions struct {
	Sort     []listing.SortRule   `json:"sort"`
	Filters  []listing.FilterRule `json:"filters"`
	Search   string               `json:"search"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

const defaultPageSize = 50

// ListResult is one page of records plus the total after filtering.
type ListResult struct {
	Records  []models.Record `json:"records"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

type RecordService struct {
	recordRepo *repositories.RecordRepository
	columnRepo *repositories.ColumnRepository
	tableRepo  *repositories.TableRepository
	cache      *repositories.CacheRepository
	engine     *formula.Engine
	lookup     *LookupService
}

func NewRecordService(
	recordRepo *repositories.RecordRepository,
	columnRepo *repositories.ColumnRepository,
	tableRepo *repositories.TableRepository,
	cache *repositories.CacheRepository,
	engine *formula.Engine,
	lookup *LookupService,
) *RecordService {
	return &RecordService{
		recordRepo: recordRepo,
		columnRepo: columnRepo,
		tableRepo:  tableRepo,
		cache:      cache,
		engine:     engine,
		lookup:     lookup,
	}
}

// Create validates and stores a new record. Formula cells are computed
// into the returned copy but not persisted; they are derived data and get
// recomputed on every read.
func (s *RecordService) Create(tableID, userID uuid.UUID, data models.RecordData) (*models.Record, error) {
	columns, err := s.tableColumns(tableID)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.prepareData(data, columns, true)
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		TableID: tableID,
		UserID:  userID,
		Data:    cleaned,
	}
	if err := s.recordRepo.Create(record); err != nil {
		return nil, err
	}

	s.publishChange(tableID, "record_created")

	out := *record
	out.Data = s.withFormulas(out.Data, columns)
	return &out, nil
}

// BulkCreate stores many records in one transaction. Validation runs per
// record before anything is written.
func (s *RecordService) BulkCreate(tableID, userID uuid.UUID, rows []models.RecordData) ([]models.Record, error) {
	if len(rows) == 0 {
		return nil, apperrors.Validation("no records provided")
	}

	columns, err := s.tableColumns(tableID)
	if err != nil {
		return nil, err
	}

	records := make([]*models.Record, 0, len(rows))
	for i, row := range rows {
		cleaned, err := s.prepareData(row, columns, true)
		if err != nil {
			return nil, apperrors.Validation("record %d: %s", i+1, err.Error())
		}
		records = append(records, &models.Record{
			TableID: tableID,
			UserID:  userID,
			Data:    cleaned,
		})
	}

	if err := s.recordRepo.BulkCreate(records); err != nil {
		return nil, err
	}

	s.publishChange(tableID, "records_bulk_created")

	out := make([]models.Record, 0, len(records))
	for _, record := range records {
		copied := *record
		copied.Data = s.withFormulas(copied.Data, columns)
		out = append(out, copied)
	}
	return out, nil
}

// Get returns one record with formula cells recomputed and lookup cells
// hydrated.
func (s *RecordService) Get(id uuid.UUID) (*models.Record, error) {
	record, err := s.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("record")
	}

	columns, err := s.tableColumns(record.TableID)
	if err != nil {
		return nil, err
	}

	out := *record
	out.Data = s.withFormulas(out.Data, columns)
	out.Data = s.withLookups(out.Data, columns)
	return &out, nil
}

// Update merges the patch into the stored data. Formula values are
// recomputed afterwards and persisted only when a computed cell actually
// changed, so an update that touches no formula input costs one write.
func (s *RecordService) Update(id uuid.UUID, patch models.RecordData) (*models.Record, error) {
	record, err := s.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperrors.NotFound("record")
	}

	columns, err := s.tableColumns(record.TableID)
	if err != nil {
		return nil, err
	}

	merged := record.Data.Clone()
	for key, value := range patch {
		if col := findColumnByName(columns, key); col != nil && col.IsFormula() {
			continue
		}
		merged[key] = value
	}

	cleaned, err := s.prepareData(merged, columns, false)
	if err != nil {
		return nil, err
	}

	record.Data = cleaned
	if err := s.recordRepo.Update(record); err != nil {
		return nil, err
	}

	computed := s.withFormulas(record.Data, columns)
	if formulasDiffer(record.Data, computed, columns) {
		record.Data = computed
		if err := s.recordRepo.Update(record); err != nil {
			return nil, err
		}
	}

	s.publishChange(record.TableID, "record_updated")

	out := *record
	out.Data = computed
	return &out, nil
}

func (s *RecordService) Delete(id uuid.UUID) error {
	record, err := s.recordRepo.GetByID(id)
	if err != nil {
		return err
	}
	if record == nil {
		return apperrors.NotFound("record")
	}
	if err := s.recordRepo.Delete(id); err != nil {
		return err
	}
	s.publishChange(record.TableID, "record_deleted")
	return nil
}

// List runs the full read pipeline: recompute formulas, sort, filter,
// search, paginate, then hydrate lookups on the surviving page. Formulas
// come first so sort and filter rules can target formula columns.
func (s *RecordService) List(tableID uuid.UUID, opts ListOptions) (*ListResult, error) {
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("table")
	}

	columns, err := s.tableColumns(tableID)
	if err != nil {
		return nil, err
	}

	records, err := s.recordRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}

	for i := range records {
		records[i].Data = s.withFormulas(records[i].Data, columns)
	}

	listing.SortRecords(records, opts.Sort, columns)

	filtered := records[:0]
	for i := range records {
		if !listing.MatchesFilters(records[i].Data, opts.Filters) {
			continue
		}
		if !listing.MatchesSearch(records[i].Data, opts.Search) {
			continue
		}
		filtered = append(filtered, records[i])
	}

	total := len(filtered)
	page, pageSize := opts.Page, opts.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageRecords := filtered[start:end]

	for i := range pageRecords {
		pageRecords[i].Data = s.withLookups(pageRecords[i].Data, columns)
	}

	return &ListResult{
		Records:  pageRecords,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// RecalculateTable recomputes every formula cell in the table, page by
// page, persisting only the records whose computed values changed. Called
// after a formula column is created or edited.
func (s *RecordService) RecalculateTable(tableID uuid.UUID) (int, error) {
	columns, err := s.tableColumns(tableID)
	if err != nil {
		return 0, err
	}
	if !hasFormulaColumn(columns) {
		return 0, nil
	}

	updated := 0
	offset := 0
	for {
		page, err := s.recordRepo.GetPage(tableID, coercionPageSize, offset)
		if err != nil {
			return updated, err
		}
		if len(page) == 0 {
			break
		}
		for i := range page {
			computed := s.withFormulas(page[i].Data, columns)
			if !formulasDiffer(page[i].Data, computed, columns) {
				continue
			}
			page[i].Data = computed
			if err := s.recordRepo.Update(&page[i]); err != nil {
				return updated, err
			}
			updated++
		}
		if len(page) < coercionPageSize {
			break
		}
		offset += coercionPageSize
	}

	if updated > 0 {
		s.publishChange(tableID, "formulas_recalculated")
	}
	return updated, nil
}

// prepareData validates and coerces an incoming attribute map. Formula
// keys are stripped, defaults are applied on create, required columns must
// end up non-empty. Values that do not fit their column's type are kept
// verbatim; coercion never drops data.
func (s *RecordService) prepareData(data models.RecordData, columns []models.Column, applyDefaults bool) (models.RecordData, error) {
	cleaned := models.RecordData{}
	for key, value := range data {
		col := findColumnByName(columns, key)
		if col == nil {
			// Keys without a live column are tolerated; structural edits
			// may leave them behind.
			cleaned[key] = value
			continue
		}
		if col.IsFormula() {
			continue
		}
		coerced, _ := CoerceValue(value, col.DataType)
		cleaned[key] = coerced
	}

	for i := range columns {
		col := &columns[i]
		if col.IsFormula() {
			continue
		}
		if applyDefaults && values.IsEmpty(cleaned[col.Name]) && col.DefaultValue != nil {
			coerced, _ := CoerceValue(*col.DefaultValue, col.DataType)
			cleaned[col.Name] = coerced
		}
		if col.IsRequired && values.IsEmpty(cleaned[col.Name]) {
			return nil, apperrors.Validation("column '%s' is required", col.Name)
		}
	}

	return cleaned, nil
}

// withFormulas returns a copy of data with every formula cell recomputed.
// Evaluation errors blank the cell and are logged, never propagated.
func (s *RecordService) withFormulas(data models.RecordData, columns []models.Column) models.RecordData {
	if !hasFormulaColumn(columns) {
		return data
	}
	out := data.Clone()
	for i := range columns {
		col := &columns[i]
		if !col.IsFormula() {
			continue
		}
		result, err := s.engine.Evaluate(col.FormulaConfig.Formula, data, columns)
		if err != nil {
			log.Printf("formula '%s' failed for column '%s': %v", col.FormulaConfig.Formula, col.Name, err)
			out[col.Name] = nil
			continue
		}
		out[col.Name] = result
	}
	return out
}

func (s *RecordService) withLookups(data models.RecordData, columns []models.Column) models.RecordData {
	var out models.RecordData
	for i := range columns {
		col := &columns[i]
		if col.DataType != models.DataTypeLinkedTable && col.DataType != models.DataTypeLookup {
			continue
		}
		cell, ok := data[col.Name]
		if !ok || values.IsEmpty(cell) {
			continue
		}
		if out == nil {
			out = data.Clone()
		}
		out[col.Name] = s.lookup.HydrateCell(col, cell)
	}
	if out == nil {
		return data
	}
	return out
}

// tableColumns reads column metadata through the cache when available.
func (s *RecordService) tableColumns(tableID uuid.UUID) ([]models.Column, error) {
	ctx := context.Background()
	if s.cache != nil {
		if columns, err := s.cache.GetColumns(ctx, tableID); err == nil && columns != nil {
			return columns, nil
		}
	}
	columns, err := s.columnRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetColumns(ctx, tableID, columns); err != nil {
			log.Printf("column cache write failed for table %s: %v", tableID, err)
		}
	}
	return columns, nil
}

func (s *RecordService) publishChange(tableID uuid.UUID, kind string) {
	if s.cache == nil {
		return
	}
	err := s.cache.PublishTableChange(context.Background(), repositories.TableChange{
		TableID: tableID,
		Kind:    kind,
	})
	if err != nil {
		log.Printf("mirror notification failed for table %s: %v", tableID, err)
	}
}

func findColumnByName(columns []models.Column, name string) *models.Column {
	for i := range columns {
		if columns[i].Name == name {
			return &columns[i]
		}
	}
	return nil
}

func hasFormulaColumn(columns []models.Column) bool {
	for i := range columns {
		if columns[i].IsFormula() {
			return true
		}
	}
	return false
}

// formulasDiffer compares only formula cells between the stored and the
// computed map.
func formulasDiffer(stored, computed models.RecordData, columns []models.Column) bool {
	for i := range columns {
		if !columns[i].IsFormula() {
			continue
		}
		name := columns[i].Name
		if values.Stringify(stored[name]) != values.Stringify(computed[name]) {
			return true
		}
	}
	return false
}
