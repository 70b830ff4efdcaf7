package parser

import "strings"

// CodeBlock is one fenced code block extracted from a completion.
type CodeBlock struct {
	Language string
	Code     string
}

// ExtractCodeBlocks pulls every ``` fenced block out of text, preserving
// order. The language tag after the opening fence is recorded when present.
func ExtractCodeBlocks(text string) []CodeBlock {
	var blocks []CodeBlock
	var current []string
	language := ""
	inBlock := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				blocks = append(blocks, CodeBlock{
					Language: language,
					Code:     strings.Join(current, "\n"),
				})
				current = nil
				inBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
				inBlock = true
			}
			continue
		}
		if inBlock {
			current = append(current, line)
		}
	}

	return blocks
}

// PrimaryCode returns the concatenated code of all blocks, or the raw text
// when the completion contains no fenced blocks at all. Small models often
// emit bare code without fences; dropping it would lose the whole stage
// output.
func PrimaryCode(text string) string {
	blocks := ExtractCodeBlocks(text)
	if len(blocks) == 0 {
		return strings.TrimSpace(text)
	}
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Code
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
