package builtins

import (
	"github.com/dlclark/regexp2"

	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// regexBuiltins covers pattern matching against strings. regexp2 (rather
// than stdlib regexp) is used because the original implementation's regex
// builtins are documented against PCRE-style syntax (backreferences,
// lookaround) that Go's RE2-based stdlib regexp cannot express; a compile
// failure surfaces as a Domain error naming the offending pattern, per
// §7's "regex compile failure" case.
func regexBuiltins() map[string]value.Value {
	return map[string]value.Value{
		"matches": builtin("matches", 2, matchesFn),
		"replace": builtin("replace", 3, replaceFn),
	}
}

func compilePattern(pattern value.Value, sp span.Span) (*regexp2.Regexp, error) {
	p, ok := pattern.(value.String)
	if !ok {
		return nil, typeErr(sp, "regex builtins expect a string pattern, got %s", pattern.Kind())
	}
	re, err := regexp2.Compile(string(p), regexp2.None)
	if err != nil {
		return nil, domainErr(sp, "invalid regex pattern %q: %s", string(p), err.Error())
	}
	return re, nil
}

func matchesFn(args []value.Value, sp span.Span) (value.Value, error) {
	subject, ok := args[0].(value.String)
	if !ok {
		return nil, typeErr(sp, "matches expects a string subject, got %s", args[0].Kind())
	}
	re, err := compilePattern(args[1], sp)
	if err != nil {
		return nil, err
	}
	m, err := re.MatchString(string(subject))
	if err != nil {
		return nil, domainErr(sp, "regex match failed: %s", err.Error())
	}
	return value.Boolean(m), nil
}

func replaceFn(args []value.Value, sp span.Span) (value.Value, error) {
	subject, ok := args[0].(value.String)
	if !ok {
		return nil, typeErr(sp, "replace expects a string subject, got %s", args[0].Kind())
	}
	re, err := compilePattern(args[1], sp)
	if err != nil {
		return nil, err
	}
	replacement, ok := args[2].(value.String)
	if !ok {
		return nil, typeErr(sp, "replace expects a string replacement, got %s", args[2].Kind())
	}
	out, err := re.Replace(string(subject), string(replacement), -1, -1)
	if err != nil {
		return nil, domainErr(sp, "regex replace failed: %s", err.Error())
	}
	return value.String(out), nil
}
