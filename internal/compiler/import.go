package compiler

import "os"

// SourceLoader maps a logical import name to source text. An empty string
// means "not found".
type SourceLoader func(name string) string

// DefaultLoader consults, in order: the custom-libs map, the compiled-in
// standard-library table, and the local file system.
func DefaultLoader(customLibs map[string]string) SourceLoader {
	return func(name string) string {
		if contents, ok := customLibs[name]; ok {
			return contents
		}
		if contents := LoadStd(name); contents != "" {
			return contents
		}
		data, err := os.ReadFile(name)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
