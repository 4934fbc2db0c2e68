package router

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	openFence  = regexp.MustCompile("(?i)^```(?:sqlite|sql)?\\s*")
	closeFence = regexp.MustCompile("\\s*```$")
	queryLabel = regexp.MustCompile(`(?i)^SQLQuery[:：]\s*`)

	forbiddenVerbs = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|replace|truncate|attach|detach|pragma|vacuum|grant|revoke)\b`)
)

// CleanQuery normalizes LLM-translated SQL: it strips code-fence wrappers
// and a leading restatement label, extracts the first statement line
// (discarding any surrounding prose), and ensures a terminating semicolon.
func CleanQuery(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = openFence.ReplaceAllString(raw, "")
	raw = closeFence.ReplaceAllString(raw, "")
	raw = queryLabel.ReplaceAllString(raw, "")

	lines := strings.Split(raw, "\n")

	// the translator sometimes restates the question before the SQL
	statement := ""
	for _, line := range lines {
		line = strings.TrimSpace(queryLabel.ReplaceAllString(line, ""))
		if len(line) == 0 {
			continue
		}
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH") {
			statement = line
			break
		}
		if len(statement) == 0 {
			statement = line
		}
	}

	if !strings.HasSuffix(statement, ";") {
		statement += ";"
	}

	return statement
}

// ValidateSelect enforces that the statement is a single read-only SELECT.
// The translator is untrusted; nothing it produces runs unvalidated.
func ValidateSelect(query string) error {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))

	if len(trimmed) == 0 {
		return fmt.Errorf("empty statement")
	}

	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("only SELECT statements are allowed")
	}

	if verb := forbiddenVerbs.FindString(trimmed); len(verb) > 0 {
		return fmt.Errorf("forbidden verb %q", strings.ToUpper(verb))
	}

	return nil
}
