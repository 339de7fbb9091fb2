package utils

import (
	"fmt"
	"os"
	"strings"
)

// LoadPrompt loads prompt instructions from an exact file path
func LoadPrompt(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", filePath, err)
	}

	return strings.TrimSpace(string(content)), nil
}

// LoadPromptWithFallback loads prompt instructions from a file path, returning
// the fallback when the path is empty, unreadable or blank
func LoadPromptWithFallback(filePath, fallback string) string {
	if filePath == "" {
		return fallback
	}

	content, err := LoadPrompt(filePath)
	if err != nil || content == "" {
		return fallback
	}
	return content
}
