// Package meson reads just enough of a meson-generated build tree to know
// which source tree it came from and which languages that tree declares.
//
// Two narrow grammars are understood, nothing more:
//
//	build.ninja:  a line "regenerate <path> ..." or a ninja build statement
//	              "build <outputs>: REGENERATE_BUILD <path> ..."; the first
//	              path (ninja-escaped) names a file in the source root.
//	meson.build:  project(<name>, 'lang', 'lang', ...) or
//	              project(<name>, ['lang', ...], key: value, ...)
package meson

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/ninjawatch/errors"
)

const (
	// BuildDescriptor is the generated file at the root of the build directory.
	BuildDescriptor = "build.ninja"
	// ProjectDescriptor is meson's project file. It is also the marker watched in every project.
	ProjectDescriptor = "meson.build"
)

var (
	// Rule bodies such as "command = meson --internal regenerate ..." do not
	// match because the directive has to start the line.
	// The path may contain ninja escapes ("$ ", "$:", "$$").
	regenerateRegex = regexp.MustCompile(`(?im)^[ \t]*(?:build[ \t]+[^:\n]*:[ \t]*)?regenerate\w*[ \t]+((?:\$[^\n]|[^\s$])+)`)
	kwargRegex      = regexp.MustCompile(`^\s*\w+\s*:`)

	ninjaUnescaper = strings.NewReplacer("$$", "$", "$ ", " ", "$:", ":")
)

// Metadata is what one loop iteration knows about the project.
type Metadata struct {
	// SourceRoot is absolute, or empty when the build tree could not be understood.
	SourceRoot string
	// Languages keeps declaration order.
	Languages []string
}

// Empty reports whether no languages are known.
func (m Metadata) Empty() bool {
	return m.SourceRoot == "" && len(m.Languages) == 0
}

// ParseRegenerate returns the first path of the regenerate directive in a
// build.ninja document. Statements whose first input is the PHONY target
// ("build reconfigure: REGENERATE_BUILD PHONY") are skipped.
func ParseRegenerate(text string) (string, bool) {
	for _, m := range regenerateRegex.FindAllStringSubmatch(text, -1) {
		if strings.EqualFold(m[1], "phony") {
			continue
		}
		return ninjaUnescaper.Replace(m[1]), true
	}
	return "", false
}

// ParseProjectLanguages extracts the quoted languages declared by the first
// project() call in a meson.build document. Comments and string contents are
// skipped while looking for the call. ok is false when no complete project()
// call is present.
func ParseProjectLanguages(text string) (languages []string, ok bool) {
	tokens, ok := projectArguments(text)
	if !ok {
		return nil, false
	}

	languages = []string{}
	for i, token := range tokens {
		if i == 0 {
			// project name
			continue
		}
		if kwargRegex.MatchString(token) {
			break
		}

		token = strings.Trim(strings.TrimSpace(token), "[]")
		token = strings.TrimSpace(token)
		if !isQuoted(token) {
			continue
		}
		token = strings.TrimSpace(token[1 : len(token)-1])
		if token == "" {
			continue
		}
		languages = append(languages, token)
	}
	return languages, true
}

// projectArguments returns the text of the first project() call split on
// commas outside strings and nested parentheses. Commas inside [] also split,
// so a language array yields one token per element.
func projectArguments(text string) ([]string, bool) {
	i := findProjectCall(text)
	if i < 0 {
		return nil, false
	}

	var tokens []string
	var current strings.Builder
	depth := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			end := stringEnd(text, i)
			current.WriteString(text[i:end])
			i = end
			continue
		case c == '#':
			i = lineEnd(text, i)
			continue
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return append(tokens, current.String()), true
			}
			depth--
		case c == ',' && depth == 0:
			tokens = append(tokens, current.String())
			current.Reset()
			i++
			continue
		}
		current.WriteByte(c)
		i++
	}
	// unterminated call
	return nil, false
}

// findProjectCall returns the offset just past "project(" of the first call
// that is not inside a comment or a string, or -1.
func findProjectCall(text string) int {
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			i = stringEnd(text, i)
		case c == '#':
			i = lineEnd(text, i)
		case isIdentStart(c) && (i == 0 || !isIdentChar(text[i-1])):
			j := i
			for j < len(text) && isIdentChar(text[j]) {
				j++
			}
			if text[i:j] == "project" {
				k := j
				for k < len(text) && strings.IndexByte(" \t\r\n", text[k]) >= 0 {
					k++
				}
				if k < len(text) && text[k] == '(' {
					return k + 1
				}
			}
			i = j
		default:
			i++
		}
	}
	return -1
}

// stringEnd returns the offset just past the string literal starting at i.
// Triple-quoted strings may span lines; other strings end at a newline when
// unterminated.
func stringEnd(text string, i int) int {
	quote := text[i]
	if triple := strings.Repeat(string(quote), 3); strings.HasPrefix(text[i:], triple) {
		if end := strings.Index(text[i+3:], triple); end >= 0 {
			return i + 3 + end + 3
		}
		return len(text)
	}
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(text)
}

func lineEnd(text string, i int) int {
	if end := strings.IndexByte(text[i:], '\n'); end >= 0 {
		return i + end
	}
	return len(text)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isQuoted(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return (first == '\'' || first == '"') && first == last
}

// LoadMetadata reads <buildRoot>/build.ninja and the meson.build it points
// at. A build.ninja without a regenerate directive, or a meson.build without
// a project() call, yields empty Metadata. Missing or unreadable files are
// errors.
func LoadMetadata(buildRoot string) (Metadata, error) {
	buildRoot, err := filepath.Abs(buildRoot)
	if err != nil {
		return Metadata{}, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to resolve build root").
			WithDetail("path", buildRoot)
	}

	ninjaText, err := readDescriptor(filepath.Join(buildRoot, BuildDescriptor))
	if err != nil {
		return Metadata{}, err
	}

	regenPath, ok := ParseRegenerate(ninjaText)
	if !ok {
		return Metadata{}, nil
	}
	if !filepath.IsAbs(regenPath) {
		regenPath = filepath.Join(buildRoot, regenPath)
	}
	sourceRoot := filepath.Dir(filepath.Clean(regenPath))

	projectText, err := readDescriptor(filepath.Join(sourceRoot, ProjectDescriptor))
	if err != nil {
		return Metadata{}, err
	}

	languages, ok := ParseProjectLanguages(projectText)
	if !ok {
		return Metadata{}, nil
	}

	return Metadata{SourceRoot: sourceRoot, Languages: languages}, nil
}

func readDescriptor(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.DescriptorNotFound(path, err)
		}
		return "", errors.DescriptorUnreadable(path, err)
	}
	return string(data), nil
}
