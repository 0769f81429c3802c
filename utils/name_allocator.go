package utils

import (
	"fmt"
	"strings"

	"github.com/deploydeck/models"
)

const (
	// Kubernetes resource names are capped at 63 characters. Slugs are
	// truncated below that to leave room for a uniqueness suffix.
	maxResourceNameLength = 63
	nameSuffixHeadroom    = 4
	maxNameAttempts       = 100
)

// GenerateBaseSlug normalizes a display name into a cluster-safe slug:
// lowercase, non-alphanumeric runs collapsed to a single hyphen,
// leading/trailing hyphens trimmed, truncated to leave suffix headroom.
func GenerateBaseSlug(displayName string) string {
	name := strings.ToLower(displayName)

	var result strings.Builder
	lastWasHyphen := false
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9') {
			result.WriteRune(char)
			lastWasHyphen = false
		} else if !lastWasHyphen {
			result.WriteRune('-')
			lastWasHyphen = true
		}
	}

	slug := strings.Trim(result.String(), "-")

	maxLen := maxResourceNameLength - nameSuffixHeadroom
	if len(slug) > maxLen {
		slug = strings.Trim(slug[:maxLen], "-")
	}

	if slug == "" {
		slug = "deployment"
	}

	return slug
}

// AllocateName derives a unique resource name from a display name. The
// inUse check is consulted for the base slug and, on collision, for
// incrementally suffixed candidates until a free name is found. The probe
// is bounded; pathological inputs fail with NameGenerationExhausted.
func AllocateName(displayName string, inUse func(name string) (bool, error)) (string, error) {
	slug := GenerateBaseSlug(displayName)

	candidate := slug
	for attempt := 2; attempt <= maxNameAttempts+1; attempt++ {
		taken, err := inUse(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, attempt)
	}

	return "", models.NewNameExhausted(fmt.Sprintf("no free name found for %q after %d attempts", displayName, maxNameAttempts))
}

// IsValidResourceName checks if a string is a valid Kubernetes resource name
func IsValidResourceName(name string) bool {
	if len(name) == 0 || len(name) > maxResourceNameLength {
		return false
	}

	// Must start and end with alphanumeric
	if !isAlphanumeric(name[0]) || !isAlphanumeric(name[len(name)-1]) {
		return false
	}

	// Check each character
	for _, char := range name {
		if !isAlphanumeric(byte(char)) && char != '-' {
			return false
		}
	}

	return true
}

// isAlphanumeric checks if a byte is alphanumeric
func isAlphanumeric(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
