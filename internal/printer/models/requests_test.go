package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "spoolman/pkg/domain-errors"
)

func ptr[T any](v T) *T { return &v }

func TestCreateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		wantErr string
	}{
		{name: "valid", req: CreateRequest{Name: " Bambu X1C ", PowerWatts: ptr(250.0)}},
		{name: "missing name", req: CreateRequest{Name: "  "}, wantErr: "name is required"},
		{name: "long name", req: CreateRequest{Name: strings.Repeat("x", 129)}, wantErr: "name must be at most"},
		{name: "negative power", req: CreateRequest{Name: "a", PowerWatts: ptr(-1.0)}, wantErr: "power_watts"},
		{name: "negative depreciation", req: CreateRequest{Name: "a", DepreciationCostPerHour: ptr(-0.1)}, wantErr: "depreciation_cost_per_hour"},
		{name: "long comment", req: CreateRequest{Name: "a", Comment: ptr(strings.Repeat("c", 1025))}, wantErr: "comment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	req := CreateRequest{Name: " Bambu X1C "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Bambu X1C", req.Name)
}

func TestUpdateRequestNullName(t *testing.T) {
	var req UpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name": null, "comment": "x"}`), &req))
	err := req.Validate()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	req = UpdateRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"comment": "new"}`), &req))
	require.NoError(t, req.Validate())
}

func TestUpdateRequestRejectsUnknownFields(t *testing.T) {
	var req UpdateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"colour": "red"}`), &req))
}

func TestUpdateRequestApplyKeepsAbsentFields(t *testing.T) {
	p := Printer{ID: 1, Name: "MK4", PowerWatts: ptr(120.0), Comment: ptr("stock")}
	req := UpdateRequest{DepreciationCostPerHour: ptr(0.5)}
	req.Apply(&p)

	assert.Equal(t, "MK4", p.Name)
	assert.Equal(t, 120.0, *p.PowerWatts)
	assert.Equal(t, 0.5, *p.DepreciationCostPerHour)
	assert.Equal(t, "stock", *p.Comment)
}

func TestPrinterJSONOmitsAbsentFields(t *testing.T) {
	b, err := json.Marshal(Printer{ID: 3, Name: "Voron"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"registered":"0001-01-01T00:00:00Z","name":"Voron"}`, string(b))
}
