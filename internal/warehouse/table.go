package warehouse

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
)

// typeRegex accepts type names such as INT, VARCHAR(50), DECIMAL(10, 2) or
// DOUBLE PRECISION. Column types are spliced into DDL, so nothing else is allowed.
var typeRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)

// Column is one named, typed column of a table.
type Column struct {
	Name string
	Type string
}

// Table describes the physical layout of a partitioned target table.
type Table struct {
	// Name may be schema-qualified, e.g. "public.covid_colombia".
	Name    string
	Columns []Column
	// PartitionColumn holds the partition key of each row.
	PartitionColumn string
	// DistKey is the distribution column. Empty means no DISTKEY clause.
	DistKey string
	// SortKeys lists the compound sort key columns, in order.
	SortKeys []string
}

// Validate checks that every referenced column exists and that names and
// types are safe to render.
func (t Table) Validate() error {
	if t.Name == "" {
		return errors.New("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Name)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %q has a column without a name", t.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("table %q declares column %q twice", t.Name, c.Name)
		}
		if !typeRegex.MatchString(c.Type) {
			return fmt.Errorf("table %q column %q has invalid type %q", t.Name, c.Name, c.Type)
		}
		seen[c.Name] = true
	}

	if !seen[t.PartitionColumn] {
		return fmt.Errorf("table %q partition column %q is not a declared column", t.Name, t.PartitionColumn)
	}
	if t.DistKey != "" && !seen[t.DistKey] {
		return fmt.Errorf("table %q dist key %q is not a declared column", t.Name, t.DistKey)
	}
	for _, k := range t.SortKeys {
		if !seen[k] {
			return fmt.Errorf("table %q sort key %q is not a declared column", t.Name, k)
		}
	}
	return nil
}

// identifier quotes a possibly schema-qualified name.
func identifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

// CreateTableSQL renders the idempotent DDL for t. It never alters an
// existing table.
func (t Table) CreateTableSQL() (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(identifier(t.Name))
	sb.WriteString(" (\n")
	for i, c := range t.Columns {
		sb.WriteString("    ")
		sb.WriteString(identifier(c.Name))
		sb.WriteString(" ")
		sb.WriteString(strings.ToUpper(c.Type))
		if c.Name == t.DistKey {
			sb.WriteString(" DISTKEY")
		}
		if i < len(t.Columns)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(")")

	if len(t.SortKeys) > 0 {
		keys := make([]string, len(t.SortKeys))
		for i, k := range t.SortKeys {
			keys[i] = identifier(k)
		}
		sb.WriteString(" SORTKEY(")
		sb.WriteString(strings.Join(keys, ", "))
		sb.WriteString(")")
	}
	return sb.String(), nil
}

// DeletePartitionSQL renders the partition delete. The partition key is the
// statement's only parameter ($1).
func (t Table) DeletePartitionSQL() (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", identifier(t.Name), identifier(t.PartitionColumn)), nil
}
