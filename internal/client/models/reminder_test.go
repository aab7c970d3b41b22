package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateTimeIndexes(t *testing.T) {
	tests := []struct {
		name      string
		schedules []DoseSchedule
		want      []int
	}{
		{
			name: "no duplicates",
			schedules: []DoseSchedule{
				{DoseNumber: 1, Time: "08:00"},
				{DoseNumber: 2, Time: "20:00"},
			},
			want: nil,
		},
		{
			name: "one pair flags both indexes",
			schedules: []DoseSchedule{
				{DoseNumber: 1, Time: "08:00"},
				{DoseNumber: 2, Time: "08:00"},
			},
			want: []int{0, 1},
		},
		{
			name: "triple flags all three",
			schedules: []DoseSchedule{
				{DoseNumber: 1, Time: "12:00"},
				{DoseNumber: 2, Time: "12:00"},
				{DoseNumber: 3, Time: "12:00"},
			},
			want: []int{0, 1, 2},
		},
		{
			name: "duplicate among distinct entries",
			schedules: []DoseSchedule{
				{DoseNumber: 1, Time: "08:00"},
				{DoseNumber: 2, Time: "12:00"},
				{DoseNumber: 3, Time: "08:00"},
			},
			want: []int{0, 2},
		},
		{
			name: "empty times are not duplicates of each other",
			schedules: []DoseSchedule{
				{DoseNumber: 1, Time: ""},
				{DoseNumber: 2, Time: ""},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuplicateTimeIndexes(tt.schedules)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidMedicineType(t *testing.T) {
	assert.True(t, ValidMedicineType("tablet"))
	assert.True(t, ValidMedicineType("other"))
	assert.False(t, ValidMedicineType("pill"))
	assert.False(t, ValidMedicineType(""))
}
