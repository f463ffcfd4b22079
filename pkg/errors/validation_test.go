package errors

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "diagram1", false},
		{"uuid", "3f2b8c9e-6f1a-4c1e-9b1e-0a2b3c4d5e6f", false},
		{"dotted", "adas.sensor-fusion", false},
		{"colon", "wit:io", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 129), true},
		{"leading dash", "-x", true},
		{"space", "a b", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("diagram id", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "diagrams/adas.json", false},
		{"absolute", "/tmp/adas.json", false},
		{"dotfile", ".witview/state.json", false},

		{"empty", "", true},
		{"traversal", "diagrams/../../etc/passwd", true},
		{"backslash", "diagrams\\adas.json", true},
		{"null", "a\x00b", true},
		{"too long", strings.Repeat("a", 501), true},
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

func TestValidateURI(t *testing.T) {
	if err := ValidateURI("mongodb://localhost:27017", "mongodb", "mongodb+srv"); err != nil {
		t.Errorf("ValidateURI(mongodb) error = %v", err)
	}
	if err := ValidateURI("redis://localhost", "mongodb"); err == nil {
		t.Error("ValidateURI(redis) with mongodb scheme should fail")
	}
	if err := ValidateURI("", "mongodb"); err == nil {
		t.Error("ValidateURI(empty) should fail")
	}
}
