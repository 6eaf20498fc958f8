// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(result ValidationResult) []string {
	out := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		out = append(out, e.Code)
	}
	return out
}

func TestValidate(t *testing.T) {
	v := DefaultPasswordValidator()

	tests := []struct {
		name     string
		password string
		attrs    []string
		want     []string
	}{
		{"valid", "NewPass123", []string{"a@x.com"}, nil},
		{"too short", "Ab1!", nil, []string{CodeMinLength}},
		{"exactly min length", "Zq7#kLp2", nil, nil},
		{"entirely numeric", "90817263544", nil, []string{CodeEntirelyNumeric}},
		{"common", "Password123", nil, []string{CodeCommonPassword}},
		{"contains email local part", "oliver2025!", []string{"oliver@example.com"}, []string{CodeTooSimilar}},
		{"similar to email", "olivr@exampl.com", []string{"oliver@example.com"}, []string{CodeTooSimilar}},
		{"numeric and common", "12345678", nil, []string{CodeEntirelyNumeric, CodeCommonPassword}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.password, tt.attrs...)

			if tt.want == nil {
				assert.True(t, result.Valid, "unexpected errors: %v", codes(result))
				assert.NoError(t, result.Err())
				return
			}
			assert.False(t, result.Valid)
			assert.Equal(t, tt.want, codes(result))
		})
	}
}

func TestValidate_CountsRunes(t *testing.T) {
	v := &PasswordValidator{MinLength: 8}

	// 4 runes, 8 bytes
	result := v.Validate("äöüß")

	assert.Equal(t, []string{CodeMinLength}, codes(result))
}

func TestValidate_ChecksCanBeDisabled(t *testing.T) {
	v := &PasswordValidator{MinLength: 1}

	result := v.Validate("password", "password@example.com")

	assert.True(t, result.Valid)
}

func TestValidationResult_Err(t *testing.T) {
	result := DefaultPasswordValidator().Validate("short")

	err := result.Err()

	var pve *PasswordValidationError
	require.ErrorAs(t, err, &pve)
	assert.Equal(t, CodeMinLength, pve.Errors[0].Code)
	assert.Equal(t, "password is too short", pve.Error())
}

func TestPasswordValidationError_Empty(t *testing.T) {
	assert.Equal(t, "password validation failed", (&PasswordValidationError{}).Error())
}

func TestCommonPasswordsLoaded(t *testing.T) {
	set := commonPasswords()

	assert.NotEmpty(t, set)
	assert.Contains(t, set, "password")
	assert.NotContains(t, set, "# frequently used passwords, lowercase, one per line.")
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("abc", "abc"), 0.001)
	assert.InDelta(t, 0.0, similarity("", "abc"), 0.001)
	assert.InDelta(t, 0.5, similarity("abcd", "axcy"), 0.001)
	assert.Equal(t, 3, longestCommonSubsequence("abcde", "ace"))
}
