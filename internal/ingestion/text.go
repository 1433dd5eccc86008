// Package ingestion turns job postings (pasted text, HTML fragments or a
// fetched URL) into the clean plain text sent to the analyzer.
package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	runOfSpace   = regexp.MustCompile(`\s+`)
	blankLineRun = regexp.MustCompile(`\n\n\n+`)
)

// NormalizeDescription prepares a job description for analysis. Markup is
// reduced to text first; whitespace is then normalized.
func NormalizeDescription(content string) string {
	if LooksLikeHTML(content) {
		if text, err := HTMLToText(content); err == nil {
			content = text
		}
	}
	return CleanText(content)
}

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLineRun.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses interior whitespace. Headings and
// bullets keep their markers; other lines keep their indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		marker, rest, _ := strings.Cut(trimmed, " ")
		trimmed = marker + " " + runOfSpace.ReplaceAllString(strings.TrimSpace(rest), " ")
	} else {
		trimmed = runOfSpace.ReplaceAllString(trimmed, " ")
	}
	return strings.Repeat(" ", indent) + trimmed
}

func isBulletLine(line string) bool {
	for _, marker := range []string{"- ", "* ", "• ", "· "} {
		if strings.HasPrefix(line, marker) {
			return true
		}
	}
	return false
}

// IngestFromFile reads a job posting from disk and normalizes it.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := NormalizeDescription(string(content))
	return text, NewMetadata(text, ""), nil
}
