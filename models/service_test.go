package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceTableName(t *testing.T) {
	assert.Equal(t, "services", Service{}.TableName(), "Table name should be 'services'")
	assert.Equal(t, "service_parts", ServicePart{}.TableName(), "Table name should be 'service_parts'")
}

func TestRecalculateCosts(t *testing.T) {
	tests := []struct {
		name          string
		laborCost     float64
		parts         []ServicePart
		expectedParts float64
		expectedTotal float64
	}{
		{
			name:          "Labor only",
			laborCost:     250,
			parts:         nil,
			expectedParts: 0,
			expectedTotal: 250,
		},
		{
			name:      "Labor plus two parts",
			laborCost: 500,
			parts: []ServicePart{
				{Name: "Brake pads", Quantity: 2, UnitPrice: 150},
				{Name: "Rotor", Quantity: 1, UnitPrice: 300},
			},
			expectedParts: 600,
			expectedTotal: 1100,
		},
		{
			name:      "Zero labor",
			laborCost: 0,
			parts: []ServicePart{
				{Name: "Oil filter", Quantity: 3, UnitPrice: 12.5},
			},
			expectedParts: 37.5,
			expectedTotal: 37.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := Service{
				LaborCost: tt.laborCost,
				Parts:     tt.parts,
			}
			svc.RecalculateCosts()

			assert.Equal(t, tt.expectedParts, svc.PartsCost, "Parts cost should be sum of quantity*unit_price")
			assert.Equal(t, tt.expectedTotal, svc.TotalCost, "Total cost should be labor + parts")
		})
	}
}

func TestRecalculateCostsAfterRemovingPart(t *testing.T) {
	svc := Service{
		LaborCost: 500,
		Parts: []ServicePart{
			{Name: "Brake pads", Quantity: 2, UnitPrice: 150},
			{Name: "Rotor", Quantity: 1, UnitPrice: 300},
		},
	}
	svc.RecalculateCosts()
	assert.Equal(t, 1100.0, svc.TotalCost)

	// Dropping the rotor should bring the totals back down
	svc.Parts = svc.Parts[:1]
	svc.RecalculateCosts()
	assert.Equal(t, 300.0, svc.PartsCost)
	assert.Equal(t, 800.0, svc.TotalCost)
}

func TestIsValidServiceStatus(t *testing.T) {
	for _, s := range ServiceStatuses {
		assert.True(t, IsValidServiceStatus(s), "%q should be a valid status", s)
	}
	assert.False(t, IsValidServiceStatus("shipped"))
	assert.False(t, IsValidServiceStatus(""))
}
