// Package vault resolves API credentials from an ordered list of sources:
// plaintext key files first, environment variables as fallback.
package vault

import (
	"errors"
	"os"
	"strings"
)

// ErrNotFound signals that no source produced a key. Callers surface a
// provider-specific message.
var ErrNotFound = errors.New("no credential found")

// Source yields a credential or reports that it has none. Sources are
// evaluated in order; the first non-empty result wins.
type Source interface {
	Name() string
	Resolve() (string, bool)
}

// File reads a trimmed plaintext key from a filesystem path.
type File string

func (f File) Name() string { return "file:" + string(f) }

func (f File) Resolve() (string, bool) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return "", false
	}
	key := strings.TrimSpace(string(data))
	return key, key != ""
}

// Env reads a key from an environment variable.
type Env string

func (e Env) Name() string { return "env:" + string(e) }

func (e Env) Resolve() (string, bool) {
	key := strings.TrimSpace(os.Getenv(string(e)))
	return key, key != ""
}

// Resolve walks the sources in order and returns the first non-empty key,
// or ErrNotFound when every source comes up empty.
func Resolve(sources ...Source) (string, error) {
	for _, s := range sources {
		if key, ok := s.Resolve(); ok {
			return key, nil
		}
	}
	return "", ErrNotFound
}

// GeminiKey resolves the Gemini API key: vault files first, then the two
// conventional environment variables.
func GeminiKey() (string, error) {
	return Resolve(
		File("/var/www/evo/vault/gemini_key.txt"),
		File("/root/.openclaw/workspace/vault/gemini_key.txt"),
		Env("GOOGLE_API_KEY"),
		Env("GEMINI_API_KEY"),
	)
}

// OpenAIKey resolves the key for an OpenAI-compatible gateway.
func OpenAIKey() (string, error) {
	return Resolve(Env("OPENAI_API_KEY"))
}
