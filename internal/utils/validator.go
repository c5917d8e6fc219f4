package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func IsValidPassword(password string) bool {
	return len(password) >= 8
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// TrimmedLength counts characters, not bytes, after trimming surrounding whitespace.
func TrimmedLength(input string) int {
	return utf8.RuneCountInString(strings.TrimSpace(input))
}
