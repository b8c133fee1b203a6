package meson

import (
	"sort"

	"github.com/grovetools/ninjawatch/errors"
)

// Language maps one meson language to what gets watched for it.
type Language struct {
	// Extensions are suffixes matched against dependency paths.
	Extensions []string
	// SpecialFiles are exact base names searched for anywhere in the source tree.
	SpecialFiles []string
}

var builtinLanguages = map[string]Language{
	"c":       {Extensions: []string{".c", ".h"}},
	"cpp":     {Extensions: []string{".cpp", ".cc", ".cxx", ".c++", ".h", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp", ".tcc"}},
	"objc":    {Extensions: []string{".m", ".h"}},
	"objcpp":  {Extensions: []string{".mm", ".h", ".hh", ".hpp"}},
	"cuda":    {Extensions: []string{".cu", ".cuh", ".h"}},
	"fortran": {Extensions: []string{".f", ".f90", ".f95", ".f03", ".f08", ".for", ".F", ".F90", ".fpp"}},
	"d":       {Extensions: []string{".d", ".di"}},
	"rust":    {Extensions: []string{".rs"}, SpecialFiles: []string{"Cargo.toml", "Cargo.lock"}},
	"vala":    {Extensions: []string{".vala", ".vapi"}},
	"cython":  {Extensions: []string{".pyx", ".pxd", ".pxi"}},
	"nasm":    {Extensions: []string{".asm", ".nasm", ".inc"}},
}

// Table is the static language → watched files mapping, optionally extended
// from configuration.
type Table struct {
	languages map[string]Language
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	return NewTable(nil)
}

// NewTable returns the built-in table with extra merged in. Entries for known
// languages add to the built-in lists; unknown names become new languages.
func NewTable(extra map[string]Language) *Table {
	languages := make(map[string]Language, len(builtinLanguages)+len(extra))
	for name, lang := range builtinLanguages {
		languages[name] = lang
	}
	for name, lang := range extra {
		base := languages[name]
		languages[name] = Language{
			Extensions:   append(append([]string{}, base.Extensions...), lang.Extensions...),
			SpecialFiles: append(append([]string{}, base.SpecialFiles...), lang.SpecialFiles...),
		}
	}
	return &Table{languages: languages}
}

// Known reports whether name is in the table.
func (t *Table) Known(name string) bool {
	_, ok := t.languages[name]
	return ok
}

// FileExtensions returns the sorted, de-duplicated extensions of languages.
// An unknown language is an error.
func (t *Table) FileExtensions(languages []string) ([]string, error) {
	return t.collect(languages, nil, func(l Language) []string { return l.Extensions })
}

// SpecialFiles returns the sorted, de-duplicated special file names of
// languages. ProjectDescriptor is always included.
func (t *Table) SpecialFiles(languages []string) ([]string, error) {
	return t.collect(languages, []string{ProjectDescriptor}, func(l Language) []string { return l.SpecialFiles })
}

func (t *Table) collect(languages, seed []string, pick func(Language) []string) ([]string, error) {
	seen := make(map[string]bool)
	for _, item := range seed {
		seen[item] = true
	}
	for _, name := range languages {
		lang, ok := t.languages[name]
		if !ok {
			return nil, errors.UnknownLanguage(name)
		}
		for _, item := range pick(lang) {
			seen[item] = true
		}
	}

	result := make([]string, 0, len(seen))
	for item := range seen {
		result = append(result, item)
	}
	sort.Strings(result)
	return result, nil
}
