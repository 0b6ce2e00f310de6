package request

import (
	"errors"
	"regexp"
	"strings"

	"drivon-backend/internal/models"
)

// Field limits for the public form, in characters.
const (
	maxNameLen    = 80
	maxPhoneLen   = 40
	maxCarLen     = 120
	maxServiceLen = 120
	maxCommentLen = 600
)

var phonePattern = regexp.MustCompile(`^[0-9+()\-\s]{6,25}$`)

// Validation failures. Error() strings double as the wire error codes.
var (
	ErrNameRequired    = errors.New("name_required")
	ErrPhoneRequired   = errors.New("phone_required")
	ErrPhoneInvalid    = errors.New("phone_invalid")
	ErrCarRequired     = errors.New("car_required")
	ErrServiceRequired = errors.New("service_required")
)

// Sanitize normalizes a raw form payload into a Request or reports the first
// failed check. Required fields are checked in a fixed order: name, phone,
// phone format, car, service. Non-string values count as empty.
func Sanitize(raw map[string]any) (models.Request, error) {
	name := cleanText(raw["name"], maxNameLen)
	phone := cleanText(raw["phone"], maxPhoneLen)
	car := cleanText(raw["car"], maxCarLen)
	service := cleanText(raw["service"], maxServiceLen)
	comment := cleanComment(raw["comment"], maxCommentLen)

	switch {
	case name == "":
		return models.Request{}, ErrNameRequired
	case phone == "":
		return models.Request{}, ErrPhoneRequired
	case !phonePattern.MatchString(phone):
		return models.Request{}, ErrPhoneInvalid
	case car == "":
		return models.Request{}, ErrCarRequired
	case service == "":
		return models.Request{}, ErrServiceRequired
	}

	return models.Request{
		Name:    name,
		Phone:   phone,
		Car:     car,
		Service: service,
		Comment: comment,
	}, nil
}

// cleanText collapses whitespace runs to single spaces, trims the ends, and
// caps the length. Truncation happens after normalization.
func cleanText(value any, maxLen int) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return truncate(strings.Join(strings.Fields(s), " "), maxLen)
}

// cleanComment normalizes line endings to \n, trims every line, drops blank
// lines, and caps the length.
func cleanComment(value any, maxLen int) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	normalized := strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
	var lines []string
	for _, line := range strings.Split(normalized, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return truncate(strings.Join(lines, "\n"), maxLen)
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
