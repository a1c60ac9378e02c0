// Package regexcache provides a thread-safe cache for compiled regular
// expressions. Annotation parsing and stderr normalization apply the same
// handful of patterns to every line of every test file; caching avoids
// recompiling them per call.
//
// Usage:
//
//	re, err := regexcache.Get(`^//@ (\S+)`)
//	if err != nil {
//	    // handle error
//	}
//	m := re.FindStringSubmatch(line)
package regexcache

import (
	"regexp"
	"sync"
)

// cache holds compiled regular expressions keyed by pattern string.
// Using sync.Map for concurrent access without explicit locking.
var cache sync.Map

// Get returns a compiled regexp for the given pattern.
// If the pattern was previously compiled, it returns the cached version.
// If the pattern is invalid, it returns an error.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	// LoadOrStore handles concurrent compilation of the same pattern.
	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet returns a compiled regexp for the given pattern.
// It panics if the pattern is invalid. Use only with literal patterns.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

// Precompile compiles and caches multiple patterns at once, warming the
// cache before a suite run. Returns one error per failing pattern.
func Precompile(patterns ...string) []error {
	var errs []error
	for _, pattern := range patterns {
		if _, err := Get(pattern); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Clear removes all cached patterns. Intended for tests.
func Clear() {
	cache.Range(func(key, _ any) bool {
		cache.Delete(key)
		return true
	})
}

// Size returns the number of cached patterns. Intended for tests.
func Size() int {
	n := 0
	cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
