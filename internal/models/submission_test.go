package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestSubmission_SnapshotTotalMarks(t *testing.T) {
	tests := []struct {
		name     string
		snapshot datatypes.JSONMap
		want     int
	}{
		{name: "written at submit", snapshot: datatypes.JSONMap{"total_marks": 15}, want: 15},
		{name: "decoded from jsonb", snapshot: datatypes.JSONMap{"total_marks": float64(15)}, want: 15},
		{name: "json number", snapshot: datatypes.JSONMap{"total_marks": json.Number("15")}, want: 15},
		{name: "missing", snapshot: datatypes.JSONMap{"title": "Algebra quiz"}, want: 20},
		{name: "nil snapshot", want: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Submission{Snapshot: tt.snapshot}
			assert.Equal(t, tt.want, sub.SnapshotTotalMarks(20))
		})
	}
}
