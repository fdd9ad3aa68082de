package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported column data types. Each one maps to a storage bucket via
// StorageTypeFor.
const (
	DataTypeText         = "text"
	DataTypeLongText     = "long_text"
	DataTypeNumber       = "number"
	DataTypeCurrency     = "currency"
	DataTypePercent      = "percent"
	DataTypeRating       = "rating"
	DataTypeDate         = "date"
	DataTypeDatetime     = "datetime"
	DataTypeTime         = "time"
	DataTypeYear         = "year"
	DataTypeCheckbox     = "checkbox"
	DataTypeSingleSelect = "single_select"
	DataTypeMultiSelect  = "multi_select"
	DataTypeEmail        = "email"
	DataTypeURL          = "url"
	DataTypePhone        = "phone"
	DataTypeJSON         = "json"
	DataTypeFormula      = "formula"
	DataTypeLinkedTable  = "linked_table"
	DataTypeLookup       = "lookup"
)

// Storage buckets used for typed coercion, sorting and filtering.
const (
	StorageString  = "string"
	StorageNumber  = "number"
	StorageDate    = "date"
	StorageBoolean = "boolean"
	StorageJSON    = "json"
)

// DataTypes lists every accepted dataType value.
var DataTypes = []string{
	DataTypeText, DataTypeLongText, DataTypeNumber, DataTypeCurrency,
	DataTypePercent, DataTypeRating, DataTypeDate, DataTypeDatetime,
	DataTypeTime, DataTypeYear, DataTypeCheckbox, DataTypeSingleSelect,
	DataTypeMultiSelect, DataTypeEmail, DataTypeURL, DataTypePhone,
	DataTypeJSON, DataTypeFormula, DataTypeLinkedTable, DataTypeLookup,
}

// IsValidDataType reports whether dataType is one of the supported types.
func IsValidDataType(dataType string) bool {
	for _, dt := range DataTypes {
		if dt == dataType {
			return true
		}
	}
	return false
}

// StorageTypeFor maps a dataType to its storage bucket.
func StorageTypeFor(dataType string) string {
	switch dataType {
	case DataTypeNumber, DataTypeYear, DataTypeCurrency, DataTypePercent, DataTypeRating:
		return StorageNumber
	case DataTypeDate, DataTypeDatetime, DataTypeTime:
		return StorageDate
	case DataTypeCheckbox:
		return StorageBoolean
	case DataTypeMultiSelect, DataTypeJSON, DataTypeLinkedTable, DataTypeLookup:
		return StorageJSON
	default:
		return StorageString
	}
}

type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

type CheckboxConfig struct {
	DefaultChecked bool `json:"defaultChecked,omitempty"`
}

type SingleSelectConfig struct {
	Options []SelectOption `json:"options"`
}

type MultiSelectConfig struct {
	Options []SelectOption `json:"options"`
}

type FormulaConfig struct {
	Formula string `json:"formula"`
}

type DateConfig struct {
	Format string `json:"format,omitempty"`
}

type CurrencyConfig struct {
	Symbol    string `json:"symbol,omitempty"`
	Precision int    `json:"precision,omitempty"`
}

type PercentConfig struct {
	Precision int `json:"precision,omitempty"`
}

type URLConfig struct {
	DisplayText string `json:"displayText,omitempty"`
}

type PhoneConfig struct {
	Format string `json:"format,omitempty"`
}

type TimeConfig struct {
	Format string `json:"format,omitempty"`
}

type RatingConfig struct {
	Max int `json:"max,omitempty"`
}

type LinkedTableConfig struct {
	LinkedTableID   uuid.UUID  `json:"linkedTableId"`
	DisplayColumnID *uuid.UUID `json:"displayColumnId,omitempty"`
}

type LookupConfig struct {
	LinkedTableID  uuid.UUID `json:"linkedTableId"`
	LookupColumnID uuid.UUID `json:"lookupColumnId"`
	DisplayField   string    `json:"displayField,omitempty"`
}

// Column is a typed field definition within a table. Name doubles as the
// attribute key inside Record.Data; Key is the slug derived from it.
type Column struct {
	ID                 uuid.UUID           `json:"id"`
	TableID            uuid.UUID           `json:"tableId"`
	Name               string              `json:"name"`
	Key                string              `json:"key"`
	Type               string              `json:"type"`
	DataType           string              `json:"dataType"`
	Order              int                 `json:"order"`
	IsRequired         bool                `json:"isRequired"`
	IsUnique           bool                `json:"isUnique"`
	DefaultValue       *string             `json:"defaultValue,omitempty"`
	CheckboxConfig     *CheckboxConfig     `json:"checkboxConfig,omitempty"`
	SingleSelectConfig *SingleSelectConfig `json:"singleSelectConfig,omitempty"`
	MultiSelectConfig  *MultiSelectConfig  `json:"multiSelectConfig,omitempty"`
	FormulaConfig      *FormulaConfig      `json:"formulaConfig,omitempty"`
	DateConfig         *DateConfig         `json:"dateConfig,omitempty"`
	CurrencyConfig     *CurrencyConfig     `json:"currencyConfig,omitempty"`
	PercentConfig      *PercentConfig      `json:"percentConfig,omitempty"`
	URLConfig          *URLConfig          `json:"urlConfig,omitempty"`
	PhoneConfig        *PhoneConfig        `json:"phoneConfig,omitempty"`
	TimeConfig         *TimeConfig         `json:"timeConfig,omitempty"`
	RatingConfig       *RatingConfig       `json:"ratingConfig,omitempty"`
	LinkedTableConfig  *LinkedTableConfig  `json:"linkedTableConfig,omitempty"`
	LookupConfig       *LookupConfig       `json:"lookupConfig,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func (c *Column) Prepare() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Type == "" {
		c.Type = StorageTypeFor(c.DataType)
	}
}

// IsFormula reports whether the column is a formula column with a usable
// expression.
func (c *Column) IsFormula() bool {
	return c.DataType == DataTypeFormula && c.FormulaConfig != nil && c.FormulaConfig.Formula != ""
}
