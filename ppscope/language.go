package ppscope

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"
)

// Language defines the interface for a supported source language.
type Language interface {
	// Name returns the language identifier (e.g., "java", "kotlin").
	Name() string

	// Extensions returns file extensions for this language (e.g., [".java"]).
	Extensions() []string

	// TreeSitterLang returns the grammar used to find comments.
	// A nil grammar makes the parser fall back to scanning lines.
	TreeSitterLang() *sitter.Language

	// LineCommentPrefix returns the token that starts a line comment ("//").
	LineCommentPrefix() string
}

// registry holds all registered languages.
var registry = make(map[string]Language)

// Register adds a language to the registry.
// This is typically called from init() functions in language implementation files.
func Register(lang Language) {
	registry[lang.Name()] = lang
}

// Get returns a language by name, or nil if not found.
func Get(name string) Language {
	return registry[name]
}

// List returns all registered language names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByExtension finds a language by file extension.
func ByExtension(ext string) Language {
	for _, lang := range registry {
		for _, e := range lang.Extensions() {
			if e == ext {
				return lang
			}
		}
	}
	return nil
}

func init() {
	Register(Java{})
	Register(Kotlin{})
	Register(Go{})
	Register(Text{})
}

// Java is the main language of preprocessed multi-version projects.
type Java struct{}

func (Java) Name() string                     { return "java" }
func (Java) Extensions() []string             { return []string{".java"} }
func (Java) TreeSitterLang() *sitter.Language { return java.GetLanguage() }
func (Java) LineCommentPrefix() string        { return "//" }

// Kotlin sources use the same directive syntax as Java.
type Kotlin struct{}

func (Kotlin) Name() string                     { return "kotlin" }
func (Kotlin) Extensions() []string             { return []string{".kt", ".kts"} }
func (Kotlin) TreeSitterLang() *sitter.Language { return kotlin.GetLanguage() }
func (Kotlin) LineCommentPrefix() string        { return "//" }

type Go struct{}

func (Go) Name() string                     { return "go" }
func (Go) Extensions() []string             { return []string{".go"} }
func (Go) TreeSitterLang() *sitter.Language { return golang.GetLanguage() }
func (Go) LineCommentPrefix() string        { return "//" }

// Text treats every line whose first non-blank characters are "//" as a comment.
// It is used for files no grammar is registered for.
type Text struct{}

func (Text) Name() string                     { return "text" }
func (Text) Extensions() []string             { return []string{".txt", ".gradle", ".groovy", ".scala"} }
func (Text) TreeSitterLang() *sitter.Language { return nil }
func (Text) LineCommentPrefix() string        { return "//" }
