package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"gridbase/internal/models"
	"gridbase/internal/repositories"
	"gridbase/internal/values"
)

// coercionPageSize bounds how many records a bulk pass holds in memory.
const coercionPageSize = 500

// CoercionResult counts the outcome of one bulk pass over a table.
// Invalid cells are left untouched, never dropped.
type CoercionResult struct {
	Converted int `json:"converted"`
	Invalid   int `json:"invalid"`
}

// CoercionService rewrites record data when a column is renamed or changes
// type. Passes are page-by-page and never abort on a bad cell.
type CoercionService struct {
	recordRepo *repositories.RecordRepository
}

func NewCoercionService(recordRepo *repositories.RecordRepository) *CoercionService {
	return &CoercionService{recordRepo: recordRepo}
}

// CoerceValue converts a raw cell to the column's storage shape. The bool
// result reports whether the value fit; callers keep the original on false.
// Empty values pass through unchanged and count as fitting.
func CoerceValue(value any, dataType string) (any, bool) {
	if values.IsEmpty(value) {
		return value, true
	}

	// Temporal targets diverge inside their storage buckets: year keeps
	// only the year, date keeps only the calendar date, datetime keeps the
	// full instant.
	switch dataType {
	case models.DataTypeYear:
		if n, ok := values.ToNumber(value); ok {
			return n, true
		}
		if t, ok := values.ToTime(value); ok {
			return float64(t.Year()), true
		}
		return value, false
	case models.DataTypeDate:
		if t, ok := values.ToTime(value); ok {
			return t.UTC().Format("2006-01-02"), true
		}
		return value, false
	}

	switch models.StorageTypeFor(dataType) {
	case models.StorageNumber:
		if n, ok := values.ToNumber(value); ok {
			return n, true
		}
		return value, false
	case models.StorageDate:
		if t, ok := values.ToTime(value); ok {
			return t.UTC().Format(time.RFC3339), true
		}
		return value, false
	case models.StorageBoolean:
		return values.ToBool(value), true
	case models.StorageJSON:
		switch v := value.(type) {
		case []any, map[string]any:
			return v, true
		case string:
			var parsed any
			if err := json.Unmarshal([]byte(v), &parsed); err == nil {
				switch parsed.(type) {
				case []any, map[string]any:
					return parsed, true
				}
			}
			return value, false
		default:
			return value, false
		}
	default:
		return values.Stringify(value), true
	}
}

// RenameKey moves every record's value from oldName to newName. Records
// without the old key are skipped.
func (s *CoercionService) RenameKey(tableID uuid.UUID, oldName, newName string) (*CoercionResult, error) {
	result := &CoercionResult{}

	err := s.eachPage(tableID, func(record *models.Record) (bool, error) {
		value, ok := record.Data[oldName]
		if !ok {
			return false, nil
		}
		record.Data = record.Data.Clone()
		delete(record.Data, oldName)
		record.Data[newName] = value
		result.Converted++
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Renamed key '%s' -> '%s' in %d records of table %s", oldName, newName, result.Converted, tableID)
	return result, nil
}

// ConvertKeyType re-coerces every record's value under name to the new
// dataType. Cells that do not fit stay as they were and are counted.
func (s *CoercionService) ConvertKeyType(tableID uuid.UUID, name, dataType string) (*CoercionResult, error) {
	result := &CoercionResult{}

	err := s.eachPage(tableID, func(record *models.Record) (bool, error) {
		value, ok := record.Data[name]
		if !ok || values.IsEmpty(value) {
			return false, nil
		}
		coerced, fits := CoerceValue(value, dataType)
		if !fits {
			result.Invalid++
			return false, nil
		}
		if sameCell(value, coerced) {
			return false, nil
		}
		record.Data = record.Data.Clone()
		record.Data[name] = coerced
		result.Converted++
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Converted key '%s' to %s in table %s: %d converted, %d invalid",
		name, dataType, tableID, result.Converted, result.Invalid)
	return result, nil
}

// eachPage walks the table in pages, persisting each record the visitor
// reports as changed.
func (s *CoercionService) eachPage(tableID uuid.UUID, visit func(*models.Record) (bool, error)) error {
	offset := 0
	for {
		page, err := s.recordRepo.GetPage(tableID, coercionPageSize, offset)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for i := range page {
			changed, err := visit(&page[i])
			if err != nil {
				return err
			}
			if changed {
				if err := s.recordRepo.Update(&page[i]); err != nil {
					return err
				}
			}
		}
		if len(page) < coercionPageSize {
			return nil
		}
		offset += coercionPageSize
	}
}

func sameCell(a, b any) bool {
	return values.Stringify(a) == values.Stringify(b)
}
