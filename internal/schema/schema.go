// Package schema holds the fixed Formula 1 schema catalog. The same catalog
// value feeds both the generation prompt and the validator's table
// allow-list, so the two can never drift apart.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one column of an allowed table.
type Column struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
	// References holds "table.column" when the column is a foreign key.
	References string
}

// Table describes one allowed table with its columns in declaration order.
type Table struct {
	Name    string
	Columns []Column
}

var tables = []Table{
	{
		Name: "circuits",
		Columns: []Column{
			{Name: "circuitId", Type: "TEXT", PrimaryKey: true},
			{Name: "circuitRef", Type: "TEXT", NotNull: true},
			{Name: "name", Type: "TEXT", NotNull: true},
			{Name: "location", Type: "TEXT"},
			{Name: "country", Type: "TEXT"},
			{Name: "lat", Type: "FLOAT"},
			{Name: "lng", Type: "FLOAT"},
			{Name: "alt", Type: "INTEGER"},
			{Name: "url", Type: "TEXT"},
		},
	},
	{
		Name: "constructors",
		Columns: []Column{
			{Name: "constructorId", Type: "TEXT", PrimaryKey: true},
			{Name: "constructorRef", Type: "TEXT", NotNull: true},
			{Name: "name", Type: "TEXT", NotNull: true},
			{Name: "nationality", Type: "TEXT"},
			{Name: "url", Type: "TEXT"},
		},
	},
	{
		Name: "drivers",
		Columns: []Column{
			{Name: "driverId", Type: "TEXT", PrimaryKey: true},
			{Name: "driverRef", Type: "TEXT", NotNull: true},
			{Name: "number", Type: "TEXT"},
			{Name: "code", Type: "TEXT"},
			{Name: "forename", Type: "TEXT", NotNull: true},
			{Name: "surname", Type: "TEXT", NotNull: true},
			{Name: "dob", Type: "DATE"},
			{Name: "nationality", Type: "TEXT"},
			{Name: "url", Type: "TEXT"},
		},
	},
	{
		Name: "races",
		Columns: []Column{
			{Name: "raceId", Type: "TEXT", PrimaryKey: true},
			{Name: "year", Type: "INTEGER", NotNull: true},
			{Name: "round", Type: "INTEGER", NotNull: true},
			{Name: "circuitId", Type: "TEXT", References: `circuits."circuitId"`},
			{Name: "name", Type: "TEXT", NotNull: true},
			{Name: "date", Type: "DATE", NotNull: true},
			{Name: "time", Type: "TEXT"},
			{Name: "url", Type: "TEXT"},
		},
	},
	{
		Name: "results",
		Columns: []Column{
			{Name: "resultId", Type: "TEXT", PrimaryKey: true},
			{Name: "raceId", Type: "TEXT", References: `races."raceId"`},
			{Name: "driverId", Type: "TEXT", References: `drivers."driverId"`},
			{Name: "constructorId", Type: "TEXT", References: `constructors."constructorId"`},
			{Name: "number", Type: "INTEGER"},
			{Name: "grid", Type: "TEXT"},
			{Name: "position", Type: "TEXT"},
			{Name: "positionText", Type: "TEXT"},
			{Name: "positionOrder", Type: "INTEGER"},
			{Name: "points", Type: "INTEGER"},
			{Name: "laps", Type: "INTEGER"},
			{Name: "time", Type: "TEXT"},
			{Name: "milliseconds", Type: "TEXT"},
			{Name: "fastestLap", Type: "TEXT"},
			{Name: "rank", Type: "TEXT"},
			{Name: "fastestLapTime", Type: "TEXT"},
			{Name: "fastestLapSpeed", Type: "TEXT"},
			{Name: "statusId", Type: "TEXT"},
		},
	},
}

// Catalog returns the fixed table descriptors. Callers must not mutate the
// returned slice.
func Catalog() []Table {
	return tables
}

// AllowedTables returns the table names the validator accepts after FROM and
// JOIN, in catalog order.
func AllowedTables() []string {
	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, table.Name)
	}
	return names
}

// Render produces the prompt fragment that enumerates every table and column
// with exact case-sensitive names, types, and key roles.
func Render() string {
	var b strings.Builder
	for _, table := range tables {
		fmt.Fprintf(&b, "- Table: %s\n", table.Name)
		for _, column := range table.Columns {
			fmt.Fprintf(&b, "  - %q (%s", column.Name, column.Type)
			if column.NotNull {
				b.WriteString(", NOT NULL")
			}
			if column.PrimaryKey {
				b.WriteString(", Primary Key")
			}
			if column.References != "" {
				fmt.Fprintf(&b, ", Foreign Key references %s", column.References)
			}
			b.WriteString(")\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
