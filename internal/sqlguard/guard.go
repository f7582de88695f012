// Package sqlguard validates candidate SQL produced by the model before it
// is allowed anywhere near the database. The checks are pattern-based, not a
// parse: a forbidden keyword hidden inside a quoted string literal, or a
// table name assembled through dialect-level string tricks, will not be
// caught. That boundary is deliberate.
package sqlguard

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pitwall/pitwall/internal/schema"
)

var (
	// ErrNotASelect reports a statement that does not begin with SELECT.
	ErrNotASelect = errors.New("only SELECT statements are allowed")
	// ErrNoTableReferenced reports a statement with no FROM/JOIN target.
	ErrNoTableReferenced = errors.New("no table referenced")
)

// ForbiddenKeywordError reports a mutating or escaping keyword found as a
// whole word in the statement.
type ForbiddenKeywordError struct {
	Keyword string
}

func (e *ForbiddenKeywordError) Error() string {
	return fmt.Sprintf("forbidden keyword %q", e.Keyword)
}

// UnauthorizedTableError reports a FROM/JOIN target outside the schema
// catalog.
type UnauthorizedTableError struct {
	Table string
}

func (e *UnauthorizedTableError) Error() string {
	return fmt.Sprintf("unauthorized table %q", e.Table)
}

var forbiddenKeywords = []string{
	"drop", "delete", "truncate", "alter", "insert",
	"update", "create", "exec", "union", "into",
}

var (
	selectPrefix      = regexp.MustCompile(`(?i)^\s*select\b`)
	tableReference    = regexp.MustCompile(`(?i)\b(?:from|join)\s+("?[A-Za-z_][\w.]*"?)`)
	forbiddenPatterns = compileForbidden()
	allowedTables     = allowedSet()
)

func compileForbidden() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(forbiddenKeywords))
	for _, keyword := range forbiddenKeywords {
		// Word boundaries so "updated_at" never trips on "update".
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+keyword+`\b`))
	}
	return patterns
}

func allowedSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, name := range schema.AllowedTables() {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}

// Validate checks a candidate SQL string and reports every violated rule.
// All checks run even after one fails, so a rejection always names the full
// set of problems. Validate never executes anything.
func Validate(sqlText string) error {
	var violations []error

	if !selectPrefix.MatchString(sqlText) {
		violations = append(violations, ErrNotASelect)
	}

	for i, pattern := range forbiddenPatterns {
		if pattern.MatchString(sqlText) {
			violations = append(violations, &ForbiddenKeywordError{Keyword: forbiddenKeywords[i]})
		}
	}

	references := tableReference.FindAllStringSubmatch(sqlText, -1)
	if len(references) == 0 {
		violations = append(violations, ErrNoTableReferenced)
	}
	for _, match := range references {
		table := strings.Trim(match[1], `"`)
		if _, ok := allowedTables[strings.ToLower(table)]; !ok {
			violations = append(violations, &UnauthorizedTableError{Table: table})
		}
	}

	return errors.Join(violations...)
}

// Rules maps a Validate error to the short names of the violated rules, for
// metrics and response details.
func Rules(err error) []string {
	if err == nil {
		return nil
	}
	var rules []string
	if errors.Is(err, ErrNotASelect) {
		rules = append(rules, "not_a_select")
	}
	var keywordErr *ForbiddenKeywordError
	if errors.As(err, &keywordErr) {
		rules = append(rules, "forbidden_keyword")
	}
	var tableErr *UnauthorizedTableError
	if errors.As(err, &tableErr) {
		rules = append(rules, "unauthorized_table")
	}
	if errors.Is(err, ErrNoTableReferenced) {
		rules = append(rules, "no_table_referenced")
	}
	return rules
}
