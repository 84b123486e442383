package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorUsernameTag(t *testing.T) {
	type input struct {
		Username string `json:"username" validate:"required,min=3,max=50,username"`
	}
	v := NewValidator()

	tests := []struct {
		name     string
		username string
		valid    bool
	}{
		{"plain letters", "alice", true},
		{"letters digits underscore", "user_42", true},
		{"mixed case", "AliceB", true},
		{"too short", "ab", false},
		{"empty", "", false},
		{"space", "alice b", false},
		{"dash", "alice-b", false},
		{"dot", "alice.b", false},
		{"unicode", "josé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := v.Validate(input{Username: tt.username})
			if tt.valid {
				assert.Nil(t, resp)
			} else {
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.Errors)
				assert.Equal(t, "username", resp.Errors[0].Field)
			}
		})
	}
}

func TestValidatorFieldNamesComeFromJSONTags(t *testing.T) {
	type input struct {
		FullName string `json:"full_name" validate:"required"`
	}
	v := NewValidator()

	resp := v.Validate(input{})
	require.NotNil(t, resp)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "full_name", resp.Errors[0].Field)
	assert.Equal(t, "full_name is required", resp.Errors[0].Msg)
}
