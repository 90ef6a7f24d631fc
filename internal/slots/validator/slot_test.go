package validator

import (
	apperrors "slotter/pkg/errors"
	"slotter/pkg/logger"
	"slotter/pkg/model"
	"testing"
	"time"
)

func TestValidateSlot(t *testing.T) {
	v := NewSlotValidator(logger.Discard())

	tests := []struct {
		name     string
		req      model.SlotRequest
		wantCode string
		want     time.Time
	}{
		{
			name: "utc timestamp",
			req:  model.SlotRequest{StartTime: "2030-05-01T09:00:00Z"},
			want: time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "offset is normalized",
			req:  model.SlotRequest{StartTime: "2030-05-01T11:00:00+02:00"},
			want: time.Date(2030, 5, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:     "missing start",
			req:      model.SlotRequest{},
			wantCode: apperrors.CodeMissingField,
		},
		{
			name:     "malformed start",
			req:      model.SlotRequest{StartTime: "next tuesday"},
			wantCode: apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateSlot(&tt.req)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidateInterval(t *testing.T) {
	v := NewSlotValidator(logger.Discard())

	tests := []struct {
		name     string
		req      model.IntervalRequest
		wantCode string
	}{
		{"valid", model.IntervalRequest{IntervalStart: "2030-05-01T09:00:00Z", IntervalStop: "2030-05-01T12:00:00Z"}, ""},
		{"empty interval", model.IntervalRequest{IntervalStart: "2030-05-01T09:00:00Z", IntervalStop: "2030-05-01T09:00:00Z"}, ""},
		{"missing stop", model.IntervalRequest{IntervalStart: "2030-05-01T09:00:00Z"}, apperrors.CodeMissingField},
		{"missing start", model.IntervalRequest{IntervalStop: "2030-05-01T09:00:00Z"}, apperrors.CodeMissingField},
		{"stop before start", model.IntervalRequest{IntervalStart: "2030-05-01T12:00:00Z", IntervalStop: "2030-05-01T09:00:00Z"}, apperrors.CodeInvalidInput},
		{"malformed", model.IntervalRequest{IntervalStart: "soon", IntervalStop: "2030-05-01T09:00:00Z"}, apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := v.ValidateInterval(&tt.req)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}
