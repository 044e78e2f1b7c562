package compiler

import (
	"fmt"
	"hash/fnv"
)

// javascriptKeywords are identifiers that would collide with JavaScript
// reserved words when emitted verbatim.
var javascriptKeywords = map[string]bool{
	"let":       true,
	"var":       true,
	"const":     true,
	"class":     true,
	"function":  true,
	"volatile":  true,
	"new":       true,
	"boolean":   true,
	"package":   true,
	"byte":      true,
	"arguments": true,
	"abstract":  true,
}

func isJavaScriptKeyword(word string) bool {
	return javascriptKeywords[word]
}

// hashIdent rewrites a colliding identifier to <first-char><hash>, where the
// hash is the first four hex digits of a 64-bit hash of the original.
func hashIdent(input string) string {
	h := fnv.New64a()
	h.Write([]byte(input))
	hex := fmt.Sprintf("%016x", h.Sum64())
	return input[:1] + hex[:4]
}

// safeIdent returns the identifier, rewritten if it collides with a
// JavaScript reserved word.
func safeIdent(name string) string {
	if isJavaScriptKeyword(name) {
		return hashIdent(name)
	}
	return name
}
