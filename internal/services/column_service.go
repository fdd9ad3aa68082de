package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/formula"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
)

type CreateColumnRequest struct {
	Name               string                     `json:"name" binding:"required"`
	DataType           string                     `json:"dataType" binding:"required"`
	Order              *int                       `json:"order"`
	IsRequired         bool                       `json:"isRequired"`
	IsUnique           bool                       `json:"isUnique"`
	DefaultValue       *string                    `json:"defaultValue"`
	CheckboxConfig     *models.CheckboxConfig     `json:"checkboxConfig"`
	SingleSelectConfig *models.SingleSelectConfig `json:"singleSelectConfig"`
	MultiSelectConfig  *models.MultiSelectConfig  `json:"multiSelectConfig"`
	FormulaConfig      *models.FormulaConfig      `json:"formulaConfig"`
	DateConfig         *models.DateConfig         `json:"dateConfig"`
	CurrencyConfig     *models.CurrencyConfig     `json:"currencyConfig"`
	PercentConfig      *models.PercentConfig      `json:"percentConfig"`
	URLConfig          *models.URLConfig          `json:"urlConfig"`
	PhoneConfig        *models.PhoneConfig        `json:"phoneConfig"`
	TimeConfig         *models.TimeConfig         `json:"timeConfig"`
	RatingConfig       *models.RatingConfig       `json:"ratingConfig"`
	LinkedTableConfig  *models.LinkedTableConfig  `json:"linkedTableConfig"`
	LookupConfig       *models.LookupConfig       `json:"lookupConfig"`
}

type UpdateColumnRequest struct {
	Name               *string                    `json:"name"`
	DataType           *string                    `json:"dataType"`
	IsRequired         *bool                      `json:"isRequired"`
	IsUnique           *bool                      `json:"isUnique"`
	DefaultValue       *string                    `json:"defaultValue"`
	CheckboxConfig     *models.CheckboxConfig     `json:"checkboxConfig"`
	SingleSelectConfig *models.SingleSelectConfig `json:"singleSelectConfig"`
	MultiSelectConfig  *models.MultiSelectConfig  `json:"multiSelectConfig"`
	FormulaConfig      *models.FormulaConfig      `json:"formulaConfig"`
	DateConfig         *models.DateConfig         `json:"dateConfig"`
	CurrencyConfig     *models.CurrencyConfig     `json:"currencyConfig"`
	PercentConfig      *models.PercentConfig      `json:"percentConfig"`
	URLConfig          *models.URLConfig          `json:"urlConfig"`
	PhoneConfig        *models.PhoneConfig        `json:"phoneConfig"`
	TimeConfig         *models.TimeConfig         `json:"timeConfig"`
	RatingConfig       *models.RatingConfig       `json:"ratingConfig"`
	LinkedTableConfig  *models.LinkedTableConfig  `json:"linkedTableConfig"`
	LookupConfig       *models.LookupConfig       `json:"lookupConfig"`
}

// ColumnUpdateResult reports what a structural edit touched besides the
// column row itself.
type ColumnUpdateResult struct {
	Column        *models.Column  `json:"column"`
	Coercion      *CoercionResult `json:"coercion,omitempty"`
	Recalculated  int             `json:"recalculated,omitempty"`
	RenamedInData int             `json:"renamedInData,omitempty"`
}

type ColumnService struct {
	columnRepo *repositories.ColumnRepository
	tableRepo  *repositories.TableRepository
	cache      *repositories.CacheRepository
	coercion   *CoercionService
	records    *RecordService
	engine     *formula.Engine
}

func NewColumnService(
	columnRepo *repositories.ColumnRepository,
	tableRepo *repositories.TableRepository,
	cache *repositories.CacheRepository,
	coercion *CoercionService,
	records *RecordService,
	engine *formula.Engine,
) *ColumnService {
	return &ColumnService{
		columnRepo: columnRepo,
		tableRepo:  tableRepo,
		cache:      cache,
		coercion:   coercion,
		records:    records,
		engine:     engine,
	}
}

func (s *ColumnService) List(tableID uuid.UUID) ([]models.Column, error) {
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("table")
	}
	columns, err := s.columnRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []models.Column{}
	}
	return columns, nil
}

func (s *ColumnService) Get(id uuid.UUID) (*models.Column, error) {
	column, err := s.columnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, apperrors.NotFound("column")
	}
	return column, nil
}

// Create adds a column. When req.Order is set the new column lands at that
// position and later columns shift right; otherwise it appends. A formula
// column triggers a full recalculation of the table.
func (s *ColumnService) Create(tableID uuid.UUID, req *CreateColumnRequest) (*models.Column, error) {
	table, err := s.tableRepo.GetByID(tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("table")
	}

	if !models.IsValidDataType(req.DataType) {
		return nil, apperrors.Validation("unsupported data type '%s'", req.DataType)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("column name cannot be empty")
	}

	existing, err := s.columnRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Name == name {
			return nil, apperrors.Validation("column '%s' already exists", name)
		}
	}

	if req.DataType == models.DataTypeFormula {
		if req.FormulaConfig == nil || strings.TrimSpace(req.FormulaConfig.Formula) == "" {
			return nil, apperrors.Validation("formula columns require a formula")
		}
		if result := s.engine.Validate(req.FormulaConfig.Formula, existing); !result.IsValid {
			return nil, apperrors.Validation("invalid formula: %s", strings.Join(result.Errors, "; "))
		}
	}
	if req.DataType == models.DataTypeLinkedTable && req.LinkedTableConfig == nil {
		return nil, apperrors.Validation("linked_table columns require a linkedTableConfig")
	}
	if req.DataType == models.DataTypeLookup && req.LookupConfig == nil {
		return nil, apperrors.Validation("lookup columns require a lookupConfig")
	}

	column := &models.Column{
		TableID:            tableID,
		Name:               name,
		Key:                s.uniqueKey(existing, name),
		DataType:           req.DataType,
		IsRequired:         req.IsRequired,
		IsUnique:           req.IsUnique,
		DefaultValue:       req.DefaultValue,
		CheckboxConfig:     req.CheckboxConfig,
		SingleSelectConfig: req.SingleSelectConfig,
		MultiSelectConfig:  req.MultiSelectConfig,
		FormulaConfig:      req.FormulaConfig,
		DateConfig:         req.DateConfig,
		CurrencyConfig:     req.CurrencyConfig,
		PercentConfig:      req.PercentConfig,
		URLConfig:          req.URLConfig,
		PhoneConfig:        req.PhoneConfig,
		TimeConfig:         req.TimeConfig,
		RatingConfig:       req.RatingConfig,
		LinkedTableConfig:  req.LinkedTableConfig,
		LookupConfig:       req.LookupConfig,
	}

	if req.Order != nil && *req.Order >= 0 && *req.Order <= len(existing) {
		column.Order = *req.Order
		err = s.columnRepo.CreateAtPosition(column)
	} else {
		maxOrder, maxErr := s.columnRepo.MaxOrder(tableID)
		if maxErr != nil {
			return nil, maxErr
		}
		column.Order = maxOrder + 1
		err = s.columnRepo.Create(column)
	}
	if err != nil {
		return nil, err
	}

	s.afterStructureChange(tableID, "column_created")

	if column.IsFormula() {
		if _, err := s.records.RecalculateTable(tableID); err != nil {
			log.Printf("recalculation after creating column '%s' failed: %v", column.Name, err)
		}
	}

	return column, nil
}

// Update edits a column. Order matters: the data rename runs before the
// type conversion so the conversion pass sees values under the new name.
func (s *ColumnService) Update(id uuid.UUID, req *UpdateColumnRequest) (*ColumnUpdateResult, error) {
	column, err := s.columnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if column == nil {
		return nil, apperrors.NotFound("column")
	}

	siblings, err := s.columnRepo.GetByTableID(column.TableID)
	if err != nil {
		return nil, err
	}

	result := &ColumnUpdateResult{}
	oldName := column.Name
	renamed := false

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, apperrors.Validation("column name cannot be empty")
		}
		if newName != oldName {
			for i := range siblings {
				if siblings[i].ID != column.ID && siblings[i].Name == newName {
					return nil, apperrors.Validation("column '%s' already exists", newName)
				}
			}
			column.Name = newName
			renamed = true
		}
	}

	typeChanged := false
	if req.DataType != nil && *req.DataType != column.DataType {
		if !models.IsValidDataType(*req.DataType) {
			return nil, apperrors.Validation("unsupported data type '%s'", *req.DataType)
		}
		column.DataType = *req.DataType
		column.Type = models.StorageTypeFor(column.DataType)
		typeChanged = true
	}

	applyConfigPatch(column, req)

	if column.DataType == models.DataTypeFormula {
		if column.FormulaConfig == nil || strings.TrimSpace(column.FormulaConfig.Formula) == "" {
			return nil, apperrors.Validation("formula columns require a formula")
		}
		if vr := s.engine.Validate(column.FormulaConfig.Formula, siblings); !vr.IsValid {
			return nil, apperrors.Validation("invalid formula: %s", strings.Join(vr.Errors, "; "))
		}
	}

	if req.IsRequired != nil {
		column.IsRequired = *req.IsRequired
	}
	if req.IsUnique != nil {
		column.IsUnique = *req.IsUnique
	}
	if req.DefaultValue != nil {
		column.DefaultValue = req.DefaultValue
	}

	// Record passes run before the column row commits, so a mid-pass crash
	// cannot leave a committed column whose records were never touched. The
	// rename cascade runs first so the conversion pass sees values under
	// the new name.
	if renamed {
		renameResult, err := s.coercion.RenameKey(column.TableID, oldName, column.Name)
		if err != nil {
			return nil, err
		}
		result.RenamedInData = renameResult.Converted
		if err := s.rewriteFormulaReferences(siblings, column.ID, oldName, column.Name); err != nil {
			return nil, err
		}
	}

	if typeChanged && !column.IsFormula() {
		coercionResult, err := s.coercion.ConvertKeyType(column.TableID, column.Name, column.DataType)
		if err != nil {
			return nil, err
		}
		result.Coercion = coercionResult
	}

	if err := s.columnRepo.Update(column); err != nil {
		return nil, err
	}

	s.afterStructureChange(column.TableID, "column_updated")

	formulaTouched := column.IsFormula() && (typeChanged || req.FormulaConfig != nil)
	if renamed || formulaTouched {
		recalculated, err := s.records.RecalculateTable(column.TableID)
		if err != nil {
			log.Printf("recalculation after updating column '%s' failed: %v", column.Name, err)
		}
		result.Recalculated = recalculated
	}

	result.Column = column
	return result, nil
}

// Delete removes the column and strips its key from every record.
func (s *ColumnService) Delete(id uuid.UUID) error {
	column, err := s.columnRepo.GetByID(id)
	if err != nil {
		return err
	}
	if column == nil {
		return apperrors.NotFound("column")
	}

	if err := s.columnRepo.Delete(id); err != nil {
		return err
	}
	if err := s.records.recordRepo.RemoveKey(column.TableID, column.Name); err != nil {
		return err
	}

	s.afterStructureChange(column.TableID, "column_deleted")
	return nil
}

// Reorder rewrites the column order; the request must list every column of
// the table exactly once.
func (s *ColumnService) Reorder(tableID uuid.UUID, orderedIDs []uuid.UUID) ([]models.Column, error) {
	columns, err := s.columnRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}
	if len(orderedIDs) != len(columns) {
		return nil, apperrors.Validation("reorder must list all %d columns", len(columns))
	}
	known := make(map[uuid.UUID]bool, len(columns))
	for i := range columns {
		known[columns[i].ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return nil, apperrors.Validation("column %s does not belong to this table", id)
		}
		delete(known, id)
	}

	if err := s.columnRepo.UpdateOrders(tableID, orderedIDs); err != nil {
		return nil, err
	}

	s.afterStructureChange(tableID, "columns_reordered")
	return s.columnRepo.GetByTableID(tableID)
}

// ValidateFormula checks a formula against the table's current columns
// without saving anything.
func (s *ColumnService) ValidateFormula(tableID uuid.UUID, formulaStr string) (*formula.ValidationResult, error) {
	columns, err := s.columnRepo.GetByTableID(tableID)
	if err != nil {
		return nil, err
	}
	result := s.engine.Validate(formulaStr, columns)
	return &result, nil
}

// rewriteFormulaReferences updates {oldName} references in sibling formula
// columns after a rename.
func (s *ColumnService) rewriteFormulaReferences(siblings []models.Column, renamedID uuid.UUID, oldName, newName string) error {
	oldRef := "{" + oldName + "}"
	newRef := "{" + newName + "}"
	for i := range siblings {
		sibling := &siblings[i]
		if sibling.ID == renamedID || !sibling.IsFormula() {
			continue
		}
		if !strings.Contains(sibling.FormulaConfig.Formula, oldRef) {
			continue
		}
		sibling.FormulaConfig = &models.FormulaConfig{
			Formula: strings.ReplaceAll(sibling.FormulaConfig.Formula, oldRef, newRef),
		}
		if err := s.columnRepo.Update(sibling); err != nil {
			return err
		}
	}
	return nil
}

func (s *ColumnService) afterStructureChange(tableID uuid.UUID, kind string) {
	ctx := context.Background()
	if s.cache != nil {
		if err := s.cache.InvalidateColumns(ctx, tableID); err != nil {
			log.Printf("column cache invalidation failed for table %s: %v", tableID, err)
		}
		err := s.cache.PublishTableChange(ctx, repositories.TableChange{TableID: tableID, Kind: kind})
		if err != nil {
			log.Printf("mirror notification failed for table %s: %v", tableID, err)
		}
	}
	if err := s.tableRepo.Touch(tableID); err != nil {
		log.Printf("touch failed for table %s: %v", tableID, err)
	}
}

var keyPattern = regexp.MustCompile(`[^a-z0-9]+`)

// uniqueKey slugs the column name and suffixes a counter on collision.
func (s *ColumnService) uniqueKey(existing []models.Column, name string) string {
	base := strings.Trim(keyPattern.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if base == "" {
		base = "column"
	}
	taken := make(map[string]bool, len(existing))
	for i := range existing {
		taken[existing[i].Key] = true
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

func applyConfigPatch(column *models.Column, req *UpdateColumnRequest) {
	if req.CheckboxConfig != nil {
		column.CheckboxConfig = req.CheckboxConfig
	}
	if req.SingleSelectConfig != nil {
		column.SingleSelectConfig = req.SingleSelectConfig
	}
	if req.MultiSelectConfig != nil {
		column.MultiSelectConfig = req.MultiSelectConfig
	}
	if req.FormulaConfig != nil {
		column.FormulaConfig = req.FormulaConfig
	}
	if req.DateConfig != nil {
		column.DateConfig = req.DateConfig
	}
	if req.CurrencyConfig != nil {
		column.CurrencyConfig = req.CurrencyConfig
	}
	if req.PercentConfig != nil {
		column.PercentConfig = req.PercentConfig
	}
	if req.URLConfig != nil {
		column.URLConfig = req.URLConfig
	}
	if req.PhoneConfig != nil {
		column.PhoneConfig = req.PhoneConfig
	}
	if req.TimeConfig != nil {
		column.TimeConfig = req.TimeConfig
	}
	if req.RatingConfig != nil {
		column.RatingConfig = req.RatingConfig
	}
	if req.LinkedTableConfig != nil {
		column.LinkedTableConfig = req.LinkedTableConfig
	}
	if req.LookupConfig != nil {
		column.LookupConfig = req.LookupConfig
	}
}
