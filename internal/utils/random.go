package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits  = "0123456789"
	passwordSymbols = "!@#$%^&*"
)

// GeneratePassword 生成随机密码，按指定数量混合字母、数字和符号
func GeneratePassword(letters, digits, symbols int) string {
	chars := make([]byte, 0, letters+digits+symbols)
	chars = append(chars, pick(passwordLetters, letters)...)
	chars = append(chars, pick(passwordDigits, digits)...)
	chars = append(chars, pick(passwordSymbols, symbols)...)

	// 洗牌，避免字符类别成段出现
	for i := len(chars) - 1; i > 0; i-- {
		j := randInt(i + 1)
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars)
}

func pick(charset string, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = charset[randInt(len(charset))]
	}
	return out
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
