package services

import (
	"strings"

	"github.com/google/uuid"

	"gridbase/internal/apperrors"
	"gridbase/internal/models"
	"gridbase/internal/repositories"
)

type CreateTableRequest struct {
	BaseID      *uuid.UUID             `json:"baseId"`
	Name        string                 `json:"name" binding:"required"`
	Description *string                `json:"description"`
	AccessRule  models.TableAccessRule `json:"accessRule"`
	Columns     []CreateColumnRequest  `json:"columns"`
}

type UpdateTableRequest struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	AccessRule  models.TableAccessRule `json:"accessRule"`
}

// TableSummary is a table plus its column definitions, the shape the
// frontend wants for rendering a grid.
type TableSummary struct {
	Table   *models.Table   `json:"table"`
	Columns []models.Column `json:"columns"`
	Records int             `json:"recordCount"`
}

type TableService struct {
	tableRepo  *repositories.TableRepository
	columnRepo *repositories.ColumnRepository
	recordRepo *repositories.RecordRepository
	baseRepo   *repositories.BaseRepository
	columns    *ColumnService
}

func NewTableService(
	tableRepo *repositories.TableRepository,
	columnRepo *repositories.ColumnRepository,
	recordRepo *repositories.RecordRepository,
	baseRepo *repositories.BaseRepository,
	columns *ColumnService,
) *TableService {
	return &TableService{
		tableRepo:  tableRepo,
		columnRepo: columnRepo,
		recordRepo: recordRepo,
		baseRepo:   baseRepo,
		columns:    columns,
	}
}

// Create makes a table and, when the request carries column definitions,
// its initial columns in the given order.
func (s *TableService) Create(userID uuid.UUID, req *CreateTableRequest) (*TableSummary, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("table name cannot be empty")
	}

	table := &models.Table{
		UserID:      userID,
		Name:        name,
		Description: req.Description,
		AccessRule:  req.AccessRule,
	}
	if req.BaseID != nil {
		base, err := s.baseRepo.GetByID(*req.BaseID)
		if err != nil {
			return nil, err
		}
		if base == nil {
			return nil, apperrors.NotFound("base")
		}
		table.BaseID = *req.BaseID
	}

	if err := s.tableRepo.Create(table); err != nil {
		return nil, err
	}

	for i := range req.Columns {
		if _, err := s.columns.Create(table.ID, &req.Columns[i]); err != nil {
			return nil, err
		}
	}

	return s.Get(table.ID)
}

func (s *TableService) Get(id uuid.UUID) (*TableSummary, error) {
	table, err := s.tableRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("table")
	}

	columns, err := s.columnRepo.GetByTableID(id)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []models.Column{}
	}

	count, err := s.recordRepo.CountByTableID(id)
	if err != nil {
		return nil, err
	}

	return &TableSummary{Table: table, Columns: columns, Records: count}, nil
}

func (s *TableService) ListForUser(userID uuid.UUID) ([]models.Table, error) {
	tables, err := s.tableRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []models.Table{}
	}
	return tables, nil
}

func (s *TableService) ListForBase(baseID uuid.UUID) ([]models.Table, error) {
	base, err := s.baseRepo.GetByID(baseID)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, apperrors.NotFound("base")
	}
	tables, err := s.tableRepo.GetByBaseID(baseID)
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []models.Table{}
	}
	return tables, nil
}

func (s *TableService) Update(id uuid.UUID, req *UpdateTableRequest) (*models.Table, error) {
	table, err := s.tableRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, apperrors.NotFound("table")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("table name cannot be empty")
		}
		table.Name = name
	}
	if req.Description != nil {
		table.Description = req.Description
	}
	if req.AccessRule != nil {
		table.AccessRule = req.AccessRule
	}

	if err := s.tableRepo.Update(table); err != nil {
		return nil, err
	}
	return table, nil
}

// Delete removes the table; columns and records go with it via the
// foreign keys.
func (s *TableService) Delete(id uuid.UUID) error {
	table, err := s.tableRepo.GetByID(id)
	if err != nil {
		return err
	}
	if table == nil {
		return apperrors.NotFound("table")
	}
	return s.tableRepo.Delete(id)
}

// CanAccess reports whether the user may see the table: superadmins and
// owners always, otherwise base membership decides.
func (s *TableService) CanAccess(user *models.User, table *models.Table) (bool, error) {
	if user.IsSuperAdmin() || table.UserID == user.ID {
		return true, nil
	}
	if table.BaseID == uuid.Nil {
		return false, nil
	}
	member, err := s.baseRepo.GetMember(table.BaseID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// CanEditStructure reports whether the user may change columns: owners and
// superadmins always, members only with a structural role.
func (s *TableService) CanEditStructure(user *models.User, table *models.Table) (bool, error) {
	if user.IsSuperAdmin() || table.UserID == user.ID {
		return true, nil
	}
	if table.BaseID == uuid.Nil {
		return false, nil
	}
	member, err := s.baseRepo.GetMember(table.BaseID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil && member.CanEditStructure(), nil
}

// IsOwner reports whether the user owns the table outright; destructive
// structural edits are held to this bar.
func (s *TableService) IsOwner(user *models.User, table *models.Table) (bool, error) {
	if user.IsSuperAdmin() || table.UserID == user.ID {
		return true, nil
	}
	if table.BaseID == uuid.Nil {
		return false, nil
	}
	member, err := s.baseRepo.GetMember(table.BaseID, user.ID)
	if err != nil {
		return false, err
	}
	return member != nil && member.Role == models.RoleOwner, nil
}
