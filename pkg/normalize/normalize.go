// Package normalize rewrites compiler output into the canonical form used
// by checked-in snapshots: test-directory paths become $DIR, path
// separators become forward slashes, line-number gutters are anonymized
// to LL, and whitespace is made deterministic. Without this step every
// machine would produce different "expected" files.
package normalize

import (
	"path/filepath"
	"strings"

	"github.com/diagcheck/diagcheck/pkg/regexcache"
)

var (
	gutterLineRe = regexcache.MustGet(`^( *)(\d+)( *)\| ?(.*)$`)
	gutterBarRe  = regexcache.MustGet(`^( +)\|(.*)$`)
	arrowLineRe  = regexcache.MustGet(`^( *)--> (.*)$`)
)

// Rule is one user-supplied normalization: a regex applied to the whole
// document with a plain replacement.
type Rule struct {
	Pattern     string
	Replacement string
}

// Normalizer applies the canonical rewrites. The zero value performs
// whitespace normalization only.
type Normalizer struct {
	// TestDir is the directory substituted by $DIR. Both the literal
	// and the absolute form are replaced.
	TestDir string

	// AnonymizeGutter rewrites numbered line gutters to the LL
	// placeholder form.
	AnonymizeGutter bool

	// Rules are applied last, in order.
	Rules []Rule
}

// New returns a normalizer for a suite rooted at testDir with gutter
// anonymization enabled.
func New(testDir string) *Normalizer {
	return &Normalizer{TestDir: testDir, AnonymizeGutter: true}
}

// WithRules appends user rules and returns the normalizer.
func (n *Normalizer) WithRules(rules ...Rule) *Normalizer {
	n.Rules = append(n.Rules, rules...)
	return n
}

// Apply canonicalizes a stderr document. The result uses LF line
// endings, has no trailing spaces, and ends with exactly one newline
// (or is empty).
func (n *Normalizer) Apply(text string) (string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = n.replaceDir(line)
		if n.AnonymizeGutter {
			line = anonymizeGutter(line)
		}
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")

	for _, rule := range n.Rules {
		re, err := regexcache.Get(rule.Pattern)
		if err != nil {
			return "", err
		}
		text = re.ReplaceAllString(text, rule.Replacement)
	}

	text = strings.Trim(text, "\n")
	if text == "" {
		return "", nil
	}
	return text + "\n", nil
}

// replaceDir substitutes the test directory with $DIR and flattens
// Windows separators inside span arrow lines.
func (n *Normalizer) replaceDir(line string) string {
	if n.TestDir != "" {
		if abs, err := filepath.Abs(n.TestDir); err == nil {
			line = strings.ReplaceAll(line, abs+string(filepath.Separator), "$DIR/")
			line = strings.ReplaceAll(line, abs, "$DIR")
		}
		line = strings.ReplaceAll(line, n.TestDir+string(filepath.Separator), "$DIR/")
		line = strings.ReplaceAll(line, n.TestDir+"/", "$DIR/")
		line = strings.ReplaceAll(line, n.TestDir, "$DIR")
	}
	if m := arrowLineRe.FindStringSubmatch(line); m != nil {
		line = m[1] + "--> " + strings.ReplaceAll(m[2], `\`, "/")
	}
	return line
}

// anonymizeGutter rewrites the three gutter shapes to their LL-width
// forms:
//
//	"  5 | code"  -> "LL | code"
//	"    |  ..."  -> "   |  ..."
//	"   --> f.rs" -> "  --> f.rs"
func anonymizeGutter(line string) string {
	if m := gutterLineRe.FindStringSubmatch(line); m != nil {
		return "LL | " + m[4]
	}
	if m := gutterBarRe.FindStringSubmatch(line); m != nil {
		return "   |" + m[2]
	}
	if m := arrowLineRe.FindStringSubmatch(line); m != nil {
		return "  --> " + m[2]
	}
	return line
}
