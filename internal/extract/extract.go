// Package extract recovers code blocks and test files from free-form model output.
//
// Extraction is best effort and never fails: when no fenced block is found the
// whole trimmed response is returned as a single block, and callers treat that
// as a normal result.
package extract

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// ReasoningMarker terminates the reasoning segment some models emit before the answer.
const ReasoningMarker = "</think>"

var (
	// fencePattern matches one fenced block. The info string is captured so
	// tagged and untagged blocks can be told apart; matches never overlap, so a
	// closing fence is never mistaken for the opening of the next block.
	fencePattern = regexp.MustCompile("(?s)```([^\\n`]*)\\r?\\n(.*?)\\r?\\n```")

	// codeLanguages are the info strings accepted as React source.
	codeLanguages = map[string]bool{
		"js": true, "jsx": true,
		"ts": true, "tsx": true,
		"typescript": true, "typescrip": true,
		"javascript": true,
	}

	testLanguages = map[string]bool{
		"ts": true, "tsx": true,
		"typescript": true, "javascript": true,
	}

	// testNameComment is a leading "// Foo.test.tsx" line naming the file.
	testNameComment = regexp.MustCompile(`^\s*//\s*(\S.*\.(?:test|spec)\.(?:ts|tsx|js|jsx))\s*$`)

	testSuffixes = []string{".test.ts", ".test.tsx", ".spec.ts", ".spec.tsx"}
)

// File is one extracted artifact.
type File struct {
	Name    string
	Content string
}

type fence struct {
	lang string // first word of the info string, lowercased
	info string // remainder of the info string
	body string
}

func scanFences(content string) []fence {
	matches := fencePattern.FindAllStringSubmatch(content, -1)
	fences := make([]fence, 0, len(matches))
	for _, m := range matches {
		lang, info, _ := strings.Cut(strings.TrimSpace(m[1]), " ")
		fences = append(fences, fence{
			lang: strings.ToLower(lang),
			info: strings.TrimSpace(info),
			body: m[2],
		})
	}
	return fences
}

// CodeBlocks returns the bodies of the React-tagged blocks in document order,
// followed by any untagged block bodies not already returned. Blocks tagged
// with other languages are ignored. With no usable block, the trimmed input is
// the only element.
func CodeBlocks(content string) []string {
	fences := scanFences(content)

	var blocks []string
	seen := make(map[string]bool)
	for _, f := range fences {
		if codeLanguages[f.lang] {
			body := strings.TrimSpace(f.body)
			blocks = append(blocks, body)
			seen[body] = true
		}
	}
	for _, f := range fences {
		if f.lang != "" {
			continue
		}
		body := strings.TrimSpace(f.body)
		if seen[body] {
			continue
		}
		blocks = append(blocks, body)
		seen[body] = true
	}

	if len(blocks) == 0 {
		return []string{strings.TrimSpace(content)}
	}
	return blocks
}

// FirstBlock returns the main code block of a component response.
func FirstBlock(content string) string {
	return CodeBlocks(content)[0]
}

// TestFiles returns the test files in a generated test suite response. A
// "// Name.test.tsx" comment after the language tag or on the first line
// inside a block names the file; otherwise the name is
// {category}_test_{n}.test.tsx. With no usable block, the whole trimmed
// response becomes {category}_tests.test.tsx.
//
// Names may repeat; writing the files in order lets later ones win.
func TestFiles(content, category string) []File {
	var files []File
	for _, f := range scanFences(content) {
		if !testLanguages[f.lang] {
			continue
		}

		name := ""
		body := f.body
		first, rest, found := strings.Cut(body, "\n")
		if m := testNameComment.FindStringSubmatch(f.info); m != nil {
			name = strings.TrimSpace(m[1])
		} else if m := testNameComment.FindStringSubmatch(first); m != nil {
			name = strings.TrimSpace(m[1])
			if found {
				body = rest
			} else {
				body = ""
			}
		}
		if name == "" {
			name = fmt.Sprintf("%s_test_%d.test.tsx", category, len(files)+1)
		}

		files = append(files, File{
			Name:    NormalizeTestName(name),
			Content: strings.TrimSpace(body),
		})
	}

	if len(files) == 0 {
		return []File{{
			Name:    fmt.Sprintf("%s_tests.test.tsx", category),
			Content: strings.TrimSpace(content),
		}}
	}
	return files
}

// NormalizeTestName rewrites name to end in .test.tsx unless it already has
// a .test.ts, .test.tsx, .spec.ts or .spec.tsx suffix.
func NormalizeTestName(name string) string {
	for _, suffix := range testSuffixes {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}

	switch path.Ext(name) {
	case ".ts", ".tsx", ".js", ".jsx":
		name = strings.TrimSuffix(name, path.Ext(name))
	}
	name = strings.TrimSuffix(name, ".test")
	name = strings.TrimSuffix(name, ".spec")
	return name + ".test.tsx"
}

// StripReasoning drops everything up to the last ReasoningMarker and trims the
// remainder. Content without the marker is returned unchanged.
func StripReasoning(content string) string {
	idx := strings.LastIndex(content, ReasoningMarker)
	if idx < 0 {
		return content
	}
	return strings.TrimSpace(content[idx+len(ReasoningMarker):])
}
