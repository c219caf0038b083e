package grammar

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/casebook-dev/casebook/internal/diag"
	"github.com/casebook-dev/casebook/internal/log"
)

// Registry owns the active compiled grammar. The grammar itself is
// immutable; reload builds a new one and swaps it in atomically, so
// readers always see either the old or the new grammar, never a partial
// merge. Documents pick a new grammar up on their next analysis pass.
type Registry struct {
	baseSrc      string
	overridePath string

	current atomic.Pointer[Compiled]

	mu           sync.Mutex // serializes reloads
	overrideHash [sha256.Size]byte
	loadErr      *LoadError
}

// NewRegistry compiles the base grammar, merges the override file at
// overridePath if one exists, and returns the registry. A missing or
// malformed override never fails construction: the registry degrades to
// the base grammar and records a LoadError for one-time reporting.
func NewRegistry(overridePath string) (*Registry, error) {
	r := &Registry{baseSrc: BaseSource, overridePath: overridePath}
	if _, err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Current returns the active compiled grammar.
func (r *Registry) Current() *Compiled {
	return r.current.Load()
}

// OverridePath returns the override source location.
func (r *Registry) OverridePath() string {
	return r.overridePath
}

// Reload re-reads the override source and recompiles if its content
// changed (detected by hash). It reports whether a new grammar was
// installed. The only error it can return is a broken base grammar,
// which is a build defect, not user input.
func (r *Registry) Reload() (changed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	src := r.readOverride()
	hash := sha256.Sum256(src)
	if r.current.Load() != nil && hash == r.overrideHash {
		return false, nil
	}

	override, lerr := parseOverride(r.overridePath, src)
	if lerr != nil {
		log.L().Warn("override grammar rejected, using base grammar",
			"path", r.overridePath, "err", lerr.Msg)
		override = nil
	}

	compiled, err := Compile(r.baseSrc, override)
	if err != nil {
		return false, err
	}

	r.overrideHash = hash
	r.loadErr = lerr
	r.current.Store(compiled)
	log.L().Debug("grammar compiled",
		"rules", len(compiled.Rules()), "override", lerr == nil && len(src) > 0)
	return true, nil
}

// LoadDiagnostic returns the pending override-failure diagnostic, if any,
// and clears it. Callers report it once, not on every analysis pass.
func (r *Registry) LoadDiagnostic() *diag.Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr == nil {
		return nil
	}
	d := diag.Warningf(0, 0, "override grammar ignored: %s", r.loadErr.Msg)
	r.loadErr = nil
	return &d
}

// readOverride returns the override source, or nil when there is none.
// Read failures are treated as absence: startup must never block on the
// override file.
func (r *Registry) readOverride() []byte {
	if r.overridePath == "" {
		return nil
	}
	data, err := os.ReadFile(r.overridePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.L().Warn("override grammar unreadable", "path", r.overridePath, "err", err)
		}
		return nil
	}
	return data
}

// parseOverride picks the rule format from the file extension.
func parseOverride(path string, src []byte) ([]Rule, *LoadError) {
	if len(src) == 0 {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAMLRules(src)
	default:
		return ParseRules(string(src))
	}
}
