// Package parser provides text-parsing utilities for model completions:
// locating a JSON object in free-form text, extracting fenced code blocks,
// and recognizing the review stage's defect signal.
package parser

import (
	"encoding/json"
	"strings"
)

// ExtractJSON searches text for a JSON object that contains key.
//
// Strategy:
//  1. Look for a ```json fenced code block containing key and parse it.
//  2. Fall back to brace matching: walk back from the key to each opening
//     brace and forward-match braces while respecting string literals.
//
// If no parseable object containing key is found, returns nil with no error:
// callers are expected to fall back to defaults.
func ExtractJSON(text string, key string) map[string]interface{} {
	if text == "" || !strings.Contains(text, key) {
		return nil
	}

	if obj := extractFromCodeBlock(text, key); obj != nil {
		return obj
	}
	return extractByBraceMatch(text, key)
}

func extractFromCodeBlock(text string, key string) map[string]interface{} {
	const fence = "```"
	remaining := text

	for {
		openIdx := strings.Index(remaining, fence+"json")
		if openIdx == -1 {
			return nil
		}
		blockStart := openIdx + len(fence+"json")
		closeIdx := strings.Index(remaining[blockStart:], fence)
		if closeIdx == -1 {
			return nil
		}
		block := remaining[blockStart : blockStart+closeIdx]

		if strings.Contains(block, key) {
			var obj map[string]interface{}
			if err := json.Unmarshal([]byte(strings.TrimSpace(block)), &obj); err == nil {
				return obj
			}
		}
		remaining = remaining[blockStart+closeIdx+len(fence):]
	}
}

func extractByBraceMatch(text string, key string) map[string]interface{} {
	keyIdx := strings.Index(text, key)
	if keyIdx == -1 {
		return nil
	}

	// Try each opening brace before the key, nearest first.
	for open := keyIdx; open >= 0; open-- {
		if text[open] != '{' {
			continue
		}
		end := matchBraces(text, open)
		if end == -1 {
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(text[open:end+1]), &obj); err == nil {
			return obj
		}
	}
	return nil
}

// matchBraces returns the index of the brace closing the one at open,
// respecting string literals and escaped quotes, or -1 if unbalanced.
func matchBraces(text string, open int) int {
	depth := 0
	inString := false
	escaped := false

	for i := open; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}
