package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	valid := Product{ID: 1, Name: "Desk", AvailableCount: 0, Price: decimal.Zero}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		product Product
	}{
		{"missing name", Product{ID: 1, AvailableCount: 1, Price: decimal.NewFromInt(1)}},
		{"negative count", Product{ID: 1, Name: "A", AvailableCount: -1, Price: decimal.NewFromInt(1)}},
		{"negative price", Product{ID: 1, Name: "A", AvailableCount: 1, Price: decimal.NewFromInt(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.product.Validate(), ErrInvalidProduct)
		})
	}
}

func TestValidateCatalogRejectsDuplicates(t *testing.T) {
	p := Product{ID: 7, Name: "Mug", AvailableCount: 3, Price: decimal.NewFromInt(9)}

	assert.NoError(t, ValidateCatalog([]Product{p}))
	assert.ErrorIs(t, ValidateCatalog([]Product{p, p}), ErrInvalidProduct)
}

func TestQuantitiesClone(t *testing.T) {
	q := Quantities{1: 2}
	c := q.Clone()
	c[1] = 5

	assert.Equal(t, 2, q.Of(1))
	assert.Equal(t, 0, q.Of(99))
}
