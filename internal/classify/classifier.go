// Package classify implements the rule-based first-pass classifier for
// cleanup candidates. Classification is a pure string-matching pass over the
// normalized path: no I/O, deterministic, sub-millisecond.
package classify

import (
	"fmt"
	"path"
	"strings"

	"diskwise/internal/model"
)

// Classifier produces a heuristic Decision for a candidate path.
type Classifier struct {
	ruleDB RuleDB
}

// NewClassifier creates a classifier. ruleDB may be nil, in which case the
// community-rule tier is skipped.
func NewClassifier(ruleDB RuleDB) *Classifier {
	return &Classifier{ruleDB: ruleDB}
}

// Explicitly excluded path fragments. Anything under these is never safe,
// regardless of contents or any lower-precedence match.
var exclusions = []string{
	"windows/system32",
	"windows/winsxs",
	"windows/syswow64",
	"program files",
	"programdata/microsoft/windows defender",
	"system volume information",
	"$recycle.bin",
	"/etc/",
	"/usr/bin",
	"/usr/lib",
	"/boot/",
	"/system/library",
}

// Known-safe temp directory shapes under the OS or user profile.
var tempShapes = []string{
	"windows/temp",
	"appdata/local/temp",
	"/var/tmp/",
	"/private/tmp/",
}

// Browser profile cache folder shapes.
var browserCacheShapes = []string{
	"google/chrome/user data/default/cache",
	"chromium/default/cache",
	"microsoft/edge/user data/default/cache",
	"mozilla/firefox/profiles",
	"opera software/opera stable/cache",
	"brave-browser/default/cache",
}

// Package-manager dependency tree directory names.
var dependencyDirs = map[string]bool{
	"node_modules":     true,
	"bower_components": true,
	".venv":            true,
	"venv":             true,
	"vendor":           true,
	"site-packages":    true,
	".tox":             true,
}

// Build output directory names.
var buildOutputDirs = map[string]bool{
	"bin":    true,
	"obj":    true,
	"target": true,
	"dist":   true,
	"build":  true,
	"out":    true,
	".next":  true,
}

// normalizePath lowercases a path and folds Windows separators so all
// matching is case-insensitive and separator-agnostic.
func normalizePath(p string) string {
	return strings.ToLower(strings.ReplaceAll(p, `\`, "/"))
}

// Classify returns the heuristic Decision for a path and its file listing.
// Matching precedence is fixed: exclusions, community rules, temp shapes,
// browser caches, dependency trees, build output, generic temp/cache
// substring, downloads, then unknown. First match wins.
func (c *Classifier) Classify(rawPath string, fileNames []string) model.Decision {
	p := normalizePath(rawPath)
	base := path.Base(strings.TrimRight(p, "/"))

	for _, excl := range exclusions {
		if strings.Contains(p, excl) {
			return model.Decision{
				Category:   model.CategorySystemCritical,
				Safe:       false,
				Confidence: 0,
				Reason:     fmt.Sprintf("path matches excluded system location %q", excl),
			}
		}
	}

	if c.ruleDB != nil {
		if ok, rule := c.ruleDB.IsKnownSafe(p); ok {
			return model.Decision{
				Category:    model.CategoryKnownSafeRule,
				Safe:        true,
				Confidence:  0.95,
				AutoApprove: true,
				MatchedRule: rule,
				Reason:      fmt.Sprintf("matches community cleanup rule %q", rule),
			}
		}
	}

	for _, shape := range tempShapes {
		if strings.Contains(p, shape) {
			return model.Decision{
				Category:    model.CategoryTempFiles,
				Safe:        true,
				Confidence:  0.95,
				AutoApprove: true,
				Reason:      "recognized temp directory, contents are disposable",
			}
		}
	}
	// Bare /tmp needs an anchored check so "/tmpl" does not match.
	if p == "/tmp" || strings.HasPrefix(p, "/tmp/") {
		return model.Decision{
			Category:    model.CategoryTempFiles,
			Safe:        true,
			Confidence:  0.95,
			AutoApprove: true,
			Reason:      "recognized temp directory, contents are disposable",
		}
	}

	for _, shape := range browserCacheShapes {
		if strings.Contains(p, shape) {
			return model.Decision{
				Category:    model.CategoryBrowserCache,
				Safe:        true,
				Confidence:  0.9,
				AutoApprove: true,
				Reason:      "browser cache folder, regenerated on demand",
			}
		}
	}

	// Dependency trees and build output are safe but deliberately not
	// auto-approved: the deletions are large and feel irreversible even
	// though the trees are regenerated by the package manager or build.
	if dependencyDirs[base] {
		return model.Decision{
			Category:   model.CategoryDependencyTree,
			Safe:       true,
			Confidence: 0.85,
			Reason:     fmt.Sprintf("package manager dependency tree %q, restorable via install", base),
		}
	}

	if buildOutputDirs[base] && looksLikeBuildOutput(fileNames) {
		return model.Decision{
			Category:   model.CategoryBuildOutput,
			Safe:       true,
			Confidence: 0.85,
			Reason:     fmt.Sprintf("build output directory %q, regenerated by the next build", base),
		}
	}

	if strings.Contains(p, "cache") {
		return model.Decision{
			Category:   model.CategoryGenericCache,
			Safe:       true,
			Confidence: 0.7,
			Reason:     "path name suggests cached data",
		}
	}
	if strings.Contains(p, "temp") || strings.Contains(p, "tmp") {
		return model.Decision{
			Category:   model.CategoryGenericCache,
			Safe:       true,
			Confidence: 0.65,
			Reason:     "path name suggests temporary data",
		}
	}

	// Downloads mixes disposable installers with real user documents and
	// the two are indistinguishable from names alone, so it is always
	// reviewed manually and never auto-cleaned.
	if base == "downloads" || strings.Contains(p, "/downloads/") {
		return model.Decision{
			Category:   model.CategoryDownloads,
			Safe:       false,
			Confidence: 0.4,
			Reason:     "downloads directory, may contain user documents",
		}
	}

	return model.Decision{
		Category:   model.CategoryUnknown,
		Safe:       false,
		Confidence: 0.3,
		Reason:     "no safe pattern recognized",
	}
}

// ClassifyCandidate dispatches a Candidate variant to the path classifier.
func (c *Classifier) ClassifyCandidate(cand model.Candidate) model.Decision {
	return c.Classify(cand.Path(), cand.FileNames())
}

// looksLikeBuildOutput applies a light sanity filter so a user folder that
// merely happens to be named "build" is not flagged on name alone when its
// listing is clearly document-like.
func looksLikeBuildOutput(fileNames []string) bool {
	if len(fileNames) == 0 {
		return true
	}
	buildExt := map[string]bool{
		".o": true, ".obj": true, ".a": true, ".so": true, ".dll": true,
		".exe": true, ".class": true, ".pyc": true, ".map": true,
		".js": true, ".wasm": true, ".pdb": true, ".lib": true,
	}
	hits := 0
	for _, name := range fileNames {
		if buildExt[strings.ToLower(path.Ext(name))] {
			hits++
		}
	}
	return hits*2 >= len(fileNames)
}

// SafeTier reports whether a category belongs to the known-safe tier the
// decision engine may bypass escalation for.
func SafeTier(cat model.Category) bool {
	switch cat {
	case model.CategoryKnownSafeRule, model.CategoryTempFiles, model.CategoryBrowserCache:
		return true
	default:
		return false
	}
}
