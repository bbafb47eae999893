package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePassword(t *testing.T) {
	password := GeneratePassword(10, 4, 2)
	assert.Len(t, password, 16)

	var letters, digits, symbols int
	for _, ch := range password {
		switch {
		case strings.ContainsRune(passwordLetters, ch):
			letters++
		case strings.ContainsRune(passwordDigits, ch):
			digits++
		case strings.ContainsRune(passwordSymbols, ch):
			symbols++
		default:
			t.Fatalf("unexpected character: %q", ch)
		}
	}
	assert.Equal(t, 10, letters)
	assert.Equal(t, 4, digits)
	assert.Equal(t, 2, symbols)

	// 两次生成不应相同
	assert.NotEqual(t, password, GeneratePassword(10, 4, 2))
}
