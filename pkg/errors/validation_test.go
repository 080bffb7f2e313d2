package errors

import (
	"math"
	"testing"
)

func TestValidateBlockSize(t *testing.T) {
	tests := []struct {
		name    string
		h, w    int
		wantErr bool
	}{
		{"square", 50, 50, false},
		{"rectangular", 20, 40, false},
		{"single pixel", 1, 1, false},

		{"zero height", 0, 50, true},
		{"zero width", 50, 0, true},
		{"negative", -1, 10, true},
		{"too large", 1 << 15, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBlockSize(tt.h, tt.w)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBlockSize(%d, %d) error = %v, wantErr %v", tt.h, tt.w, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		v       float64
		wantErr bool
	}{
		{0.9, false},
		{0.5, false},
		{0.0001, false},
		{0.9999, false},

		{0, true},
		{1, true},
		{-0.5, true},
		{1.5, true},
		{math.NaN(), true},
	}

	for _, tt := range tests {
		err := ValidateThreshold("threshold", tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateThreshold(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}

func TestValidateWeight(t *testing.T) {
	tests := []struct {
		v       float64
		wantErr bool
	}{
		{0, false},
		{0.15, false},
		{1, false},
		{-0.1, true},
		{1.01, true},
		{math.NaN(), true},
	}

	for _, tt := range tests {
		err := ValidateWeight("weight", tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateWeight(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "images/cat.png", false},
		{"absolute", "/tmp/cat.png", false},
		{"with spaces", "my images/cat 1.png", false},

		{"empty", "", true},
		{"null byte", "cat\x00.png", true},
		{"newline", "cat\n.png", true},
		{"too long", string(make([]byte, 5000)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRunID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f2b8c1e-9a4d-4c6e-8f10-2b3c4d5e6f70", false},
		{"upper hex", "ABCDEF01", false},

		{"empty", "", true},
		{"path traversal", "../etc", true},
		{"spaces", "abc def", true},
		{"too long", string(make([]byte, 100)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRunID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
