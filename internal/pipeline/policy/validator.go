package policy

import (
	"regexp"
	"strings"

	appErr "vexoj/pkg/errors"
)

// maxSourceBytes bounds the input the strippers and matchers ever scan.
// The validator runs on untrusted user code, so the bound is part of the
// security contract, not just a sanity limit.
const maxSourceBytes = 256 * 1024

type compiledRule struct {
	family  family
	modules []*regexp.Regexp
	tokens  []*regexp.Regexp
}

// Validator rejects submissions that invoke disallowed language features
// before they are dispatched. The rule table is compiled once at
// construction and is safe for unsynchronized concurrent reads.
type Validator struct {
	rules map[string]compiledRule
}

// NewValidator creates a validator over the built-in rule table.
func NewValidator() *Validator {
	return newValidator(defaultRules)
}

func newValidator(table map[string]rule) *Validator {
	v := &Validator{rules: make(map[string]compiledRule, len(table))}
	for lang, r := range table {
		cr := compiledRule{family: r.family}
		for _, m := range r.modules {
			cr.modules = append(cr.modules, compileModulePattern(r.family, m))
		}
		for _, t := range r.tokens {
			cr.tokens = append(cr.tokens, regexp.MustCompile(`\b`+regexp.QuoteMeta(t)+`\b`))
		}
		v.rules[lang] = cr
	}
	return v
}

// compileModulePattern builds the import-statement pattern for one banned
// module. All quantifiers carry explicit upper bounds.
func compileModulePattern(f family, module string) *regexp.Regexp {
	q := regexp.QuoteMeta(module)
	switch f {
	case familyPythonLike:
		return regexp.MustCompile(`(?m)^[ \t]{0,80}(?:import|from)[ \t][^\n]{0,200}?\b` + q + `\b`)
	case familyJavaLike:
		return regexp.MustCompile(`import[ \t]{1,80}(?:static[ \t]{1,80})?` + q + `[\w.]{0,200}[ \t]{0,80};`)
	default:
		return regexp.MustCompile(`#[ \t]{0,80}include[ \t]{0,80}[<"][ \t]{0,80}` + q + `[ \t]{0,80}[>"]`)
	}
}

// Validate scans the submission's source fragments for banned imports and
// tokens. Languages without a rule set pass unconditionally: the validator
// guards known risky capabilities, it is not an allow-list. The rejection
// reason is deliberately generic so the rule catalog is not echoed back.
func (v *Validator) Validate(language string, sourceSnippets []string) error {
	r, ok := v.rules[strings.ToLower(strings.TrimSpace(language))]
	if !ok {
		return nil
	}

	src := strings.Join(sourceSnippets, "\n")
	if len(src) > maxSourceBytes {
		return appErr.New(appErr.SourceTooLarge)
	}

	var stripped string
	switch r.family {
	case familyPythonLike:
		stripped = stripPythonLike(src)
	default:
		stripped = stripCLike(src)
	}

	for _, re := range r.modules {
		if re.MatchString(stripped) {
			return appErr.New(appErr.PolicyViolation)
		}
	}
	for _, re := range r.tokens {
		if re.MatchString(stripped) {
			return appErr.New(appErr.PolicyViolation)
		}
	}
	return nil
}
