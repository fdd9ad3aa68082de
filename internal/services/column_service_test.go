package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gridbase/internal/models"
)

func TestUniqueKeySlugs(t *testing.T) {
	s := &ColumnService{}

	assert.Equal(t, "price", s.uniqueKey(nil, "Price"))
	assert.Equal(t, "unit_price_usd", s.uniqueKey(nil, "Unit Price (USD)"))
	assert.Equal(t, "column", s.uniqueKey(nil, "???"))
}

func TestUniqueKeyCollisions(t *testing.T) {
	s := &ColumnService{}
	existing := []models.Column{{Key: "price"}, {Key: "price_2"}}

	assert.Equal(t, "price_3", s.uniqueKey(existing, "Price"))
}

func TestApplyConfigPatch(t *testing.T) {
	column := &models.Column{DataType: models.DataTypeSingleSelect}
	req := &UpdateColumnRequest{
		SingleSelectConfig: &models.SingleSelectConfig{
			Options: []models.SelectOption{{Label: "Open", Value: "open"}},
		},
	}

	applyConfigPatch(column, req)
	assert.NotNil(t, column.SingleSelectConfig)
	assert.Len(t, column.SingleSelectConfig.Options, 1)

	// Untouched sections stay nil.
	assert.Nil(t, column.FormulaConfig)
}
