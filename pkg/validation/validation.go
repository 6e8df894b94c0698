package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resham-cricketer/pkg/apperr"
)

const (
	MinPasswordLength    = 6
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DriveLink accepts Google Drive share links, the only host uploads use.
func DriveLink(url string) error {
	if !strings.Contains(url, "drive.google.com") {
		return apperr.InvalidInput("Please enter a valid Google Drive link")
	}
	return nil
}

func Title(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return apperr.InvalidInput("Please add a title")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return apperr.InvalidInput("Title is too long (max 100 characters)")
	}
	return nil
}

func Description(desc string) error {
	if utf8.RuneCountInString(strings.TrimSpace(desc)) > MaxDescriptionLength {
		return apperr.InvalidInput("Description is too long (max 500 characters)")
	}
	return nil
}

func Password(password string) error {
	if len(password) < MinPasswordLength {
		return apperr.InvalidInput("Password must be at least 6 characters")
	}
	return nil
}

func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperr.InvalidInput("Email is required")
	}
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return apperr.InvalidInput("Invalid email format")
	}
	return nil
}
