package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Author string `json:"author" validate:"required"`
	Name   string `json:"name" validate:"required,max=5"`
	Hidden string `json:"-"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		wantErr string
	}{
		{name: "valid", input: sample{Author: "A", Name: "N"}},
		{name: "missing author", input: sample{Name: "N"}, wantErr: "author is required"},
		{name: "name too long", input: sample{Author: "A", Name: "abcdefgh"}, wantErr: "name must be at most 5 characters"},
		{name: "both missing", input: sample{}, wantErr: "author is required; name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
