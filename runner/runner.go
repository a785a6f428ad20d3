/*
Package runner implements the host-facing orchestration described in
§4.8: running a source file as either a bare Script or an Advent-of-
Code-style Solution (`input`/`part_one`/`part_two` sections), and
running its `test` sections against the declared parts. It is the
`Run`/`Test` half of §6.2's host embedding API; this module has no
formatter, so `format`/`is_formatted` are not provided.

There is no teacher equivalent — akashmaji946-go-mix's `main`/`repl`
packages just print an AST, with no section/solution orchestration —
so this package is grounded directly on spec §4.8, using the evaluator
and environment packages' section machinery (`Environment.AddSection`/
`GetSections`, populated as a side effect of evaluating
`SectionStatement` nodes) rather than re-scanning the AST by hand.
*/
package runner

import (
	"time"

	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/environment"
	"github.com/eddmann/santa-lang-go/internal/evaluator"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/parser"
	"github.com/eddmann/santa-lang-go/internal/value"
)

// Clock supplies the current time in milliseconds, per §6.2's host
// clock contract. Callers that don't care about wall-clock duration
// (most tests) pass a fixed or monotonically-incrementing stub.
type Clock func() int64

// SystemClock is the default Clock: wall-clock milliseconds since the
// Unix epoch, from time.Now.
func SystemClock() int64 { return time.Now().UnixMilli() }

// PartResult is one evaluated `part_one`/`part_two` section.
type PartResult struct {
	Value      value.Value
	DurationMs int64
}

// Script is the result of running a source file that declares neither
// `part_one` nor `part_two`: just its overall evaluation result.
type Script struct {
	Value      value.Value
	DurationMs int64
}

// Solution is the result of running a source file that declares at
// least one of `part_one`/`part_two`.
type Solution struct {
	PartOne *PartResult
	PartTwo *PartResult
}

// Result is exactly one of Script or Solution, mirroring §6.2's
// `Script{...} | Solution{...} | Error{...}` host return contract (the
// Error case is instead a returned Go error, per Go convention).
type Result struct {
	Script   *Script
	Solution *Solution
}

// TestPartResult is one part's assertion outcome within a TestCase.
type TestPartResult struct {
	Expected value.Value
	Actual   value.Value
	Passed   bool
}

// TestCase is one `test` section's outcome, with an optional result per
// part depending on which subsections the test declared.
type TestCase struct {
	PartOne *TestPartResult
	PartTwo *TestPartResult
}

// parseAndEvaluate lexes, parses, and evaluates source once in a fresh
// global environment, returning the program's value, the environment
// (carrying every declared section), and the evaluator used (reused so
// Run/Test's later section evaluations share the same call-trace frame
// machinery).
func parseAndEvaluate(source string) (value.Value, *environment.Environment, *evaluator.Evaluator, error) {
	program, err := parser.New(source).ParseProgram()
	if err != nil {
		return nil, nil, nil, err
	}
	env, ev, err := evaluator.NewGlobalEnvironment()
	if err != nil {
		return nil, nil, nil, err
	}
	result, err := ev.RunProgram(program, env)
	if err != nil {
		return nil, nil, nil, err
	}
	return result, env, ev, nil
}

// requireAtMostOne enforces §4.8's "at most one of input|part_one|
// part_two" rule, erroring (Section kind) at the second occurrence's
// span if violated.
func requireAtMostOne(sections []environment.Section, name string) error {
	if len(sections) > 1 {
		return langerr.New(langerr.Section, sections[1].Body.Span(), "more than one %s section declared", name)
	}
	return nil
}

// Run orchestrates a single source file per §4.8.
func Run(source string, clock Clock) (*Result, error) {
	if clock == nil {
		clock = SystemClock
	}

	start := clock()
	result, env, ev, err := parseAndEvaluate(source)
	elapsed := clock() - start
	if err != nil {
		return nil, err
	}

	partOneSecs := env.GetSections("part_one")
	partTwoSecs := env.GetSections("part_two")
	if len(partOneSecs) == 0 && len(partTwoSecs) == 0 {
		return &Result{Script: &Script{Value: result, DurationMs: elapsed}}, nil
	}

	if err := requireAtMostOne(partOneSecs, "part_one"); err != nil {
		return nil, err
	}
	if err := requireAtMostOne(partTwoSecs, "part_two"); err != nil {
		return nil, err
	}

	inputSecs := env.GetSections("input")
	if err := requireAtMostOne(inputSecs, "input"); err != nil {
		return nil, err
	}
	var inputVal value.Value
	if len(inputSecs) == 1 {
		inputVal, err = ev.RunProgram(inputSecs[0].Body, env)
		if err != nil {
			return nil, err
		}
	}

	solution := &Solution{}
	if len(partOneSecs) == 1 {
		pr, err := runPart(ev, env, partOneSecs[0].Body, inputVal, clock)
		if err != nil {
			return nil, err
		}
		solution.PartOne = pr
	}
	if len(partTwoSecs) == 1 {
		pr, err := runPart(ev, env, partTwoSecs[0].Body, inputVal, clock)
		if err != nil {
			return nil, err
		}
		solution.PartTwo = pr
	}
	return &Result{Solution: solution}, nil
}

func runPart(ev *evaluator.Evaluator, globalEnv *environment.Environment, body *ast.BlockStatement, input value.Value, clock Clock) (*PartResult, error) {
	partEnv := environment.NewChild(globalEnv)
	if input != nil {
		if err := partEnv.Declare("input", input, false); err != nil {
			return nil, err
		}
	}
	start := clock()
	v, err := ev.RunProgram(body, partEnv)
	elapsed := clock() - start
	if err != nil {
		return nil, err
	}
	return &PartResult{Value: v, DurationMs: elapsed}, nil
}

// Test runs every `test` section against the declared part_one/
// part_two code under test, per §4.8 step 5.
func Test(source string) ([]TestCase, error) {
	_, env, ev, err := parseAndEvaluate(source)
	if err != nil {
		return nil, err
	}

	partOneSecs := env.GetSections("part_one")
	partTwoSecs := env.GetSections("part_two")
	if err := requireAtMostOne(partOneSecs, "part_one"); err != nil {
		return nil, err
	}
	if err := requireAtMostOne(partTwoSecs, "part_two"); err != nil {
		return nil, err
	}
	outerInputSecs := env.GetSections("input")
	if err := requireAtMostOne(outerInputSecs, "input"); err != nil {
		return nil, err
	}
	var outerInput value.Value
	if len(outerInputSecs) == 1 {
		outerInput, err = ev.RunProgram(outerInputSecs[0].Body, env)
		if err != nil {
			return nil, err
		}
	}

	testSecs := env.GetSections("test")
	cases := make([]TestCase, 0, len(testSecs))
	for _, test := range testSecs {
		tc, err := runTest(ev, env, test.Body, outerInput, partOneSecs, partTwoSecs)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func runTest(
	ev *evaluator.Evaluator,
	globalEnv *environment.Environment,
	testBody *ast.BlockStatement,
	outerInput value.Value,
	outerPartOne, outerPartTwo []environment.Section,
) (TestCase, error) {
	testEnv := environment.NewChild(globalEnv)
	if _, err := ev.RunProgram(testBody, testEnv); err != nil {
		return TestCase{}, err
	}

	testInputSecs := testEnv.GetSections("input")
	if err := requireAtMostOne(testInputSecs, "input"); err != nil {
		return TestCase{}, err
	}
	effectiveInput := outerInput
	if len(testInputSecs) == 1 {
		v, err := ev.RunProgram(testInputSecs[0].Body, testEnv)
		if err != nil {
			return TestCase{}, err
		}
		effectiveInput = v
	}

	var tc TestCase
	var err error
	tc.PartOne, err = runTestPart(ev, globalEnv, testEnv, "part_one", outerPartOne, effectiveInput)
	if err != nil {
		return TestCase{}, err
	}
	tc.PartTwo, err = runTestPart(ev, globalEnv, testEnv, "part_two", outerPartTwo, effectiveInput)
	if err != nil {
		return TestCase{}, err
	}
	return tc, nil
}

func runTestPart(
	ev *evaluator.Evaluator,
	globalEnv, testEnv *environment.Environment,
	name string,
	outerSecs []environment.Section,
	input value.Value,
) (*TestPartResult, error) {
	expectedSecs := testEnv.GetSections(name)
	if err := requireAtMostOne(expectedSecs, name); err != nil {
		return nil, err
	}
	if len(expectedSecs) == 0 || len(outerSecs) == 0 {
		return nil, nil
	}

	expected, err := ev.RunProgram(expectedSecs[0].Body, testEnv)
	if err != nil {
		return nil, err
	}

	runEnv := environment.NewChild(globalEnv)
	if input != nil {
		if err := runEnv.Declare("input", input, false); err != nil {
			return nil, err
		}
	}
	actual, err := ev.RunProgram(outerSecs[0].Body, runEnv)
	if err != nil {
		return nil, err
	}

	return &TestPartResult{Expected: expected, Actual: actual, Passed: value.Equal(actual, expected)}, nil
}
