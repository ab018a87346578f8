package sqlgen

import (
	"fmt"
	"strings"
)

// Column is one column of a described table.
type Column struct {
	Name string
	Type string
}

// Table describes a table for the prompt.
type Table struct {
	Name        string
	Description string
	Columns     []Column
}

// Relationship describes a foreign key between two tables.
type Relationship struct {
	From string
	To   string
	Type string
	Via  string
}

// Tables is the wine database as presented to the model.
var Tables = []Table{
	{
		Name:        "wine_users",
		Description: "Stores user account information",
		Columns: []Column{
			{"id", "SERIAL PRIMARY KEY"},
			{"username", "VARCHAR(255) NOT NULL"},
			{"email", "VARCHAR(255) NOT NULL"},
			{"has_proaccount", "BOOLEAN DEFAULT FALSE"},
			{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		},
	},
	{
		Name:        "wine_table",
		Description: "Stores wine entries created by users",
		Columns: []Column{
			{"id", "SERIAL PRIMARY KEY"},
			{"user_id", "INTEGER REFERENCES wine_users(id)"},
			{"name", "VARCHAR(255) NOT NULL"},
			{"producer", "VARCHAR(255)"},
			{"grapes", "VARCHAR(255)"},
			{"country", "VARCHAR(100)"},
			{"region", "VARCHAR(100)"},
			{"year", "INTEGER"},
			{"quantity", "INTEGER"},
			{"bottle_size", "numeric(5,3)"},
			{"price", "numeric(10,2)"},
			{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		},
	},
	{
		Name:        "wine_notes",
		Description: "Stores tasting notes for wines",
		Columns: []Column{
			{"id", "SERIAL PRIMARY KEY"},
			{"wine_id", "INTEGER REFERENCES wine_table(id)"},
			{"note_text", "TEXT"},
			{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		},
	},
	{
		Name:        "wine_aisummaries",
		Description: "Stores AI-generated summaries for wines",
		Columns: []Column{
			{"id", "SERIAL PRIMARY KEY"},
			{"wine_id", "INTEGER REFERENCES wine_table(id)"},
			{"summary", "TEXT"},
			{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		},
	},
	{
		Name:        "wine_contact",
		Description: "Stores contact form submissions",
		Columns: []Column{
			{"id", "SERIAL PRIMARY KEY"},
			{"user_id", "INTEGER REFERENCES wine_users(id)"},
			{"first_name", "TEXT"},
			{"last_name", "TEXT"},
			{"email", "TEXT"},
			{"subject", "TEXT"},
			{"message", "TEXT"},
			{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
		},
	},
}

// Relationships lists the one-to-many links between Tables.
var Relationships = []Relationship{
	{From: "wine_users", To: "wine_table", Type: "one-to-many", Via: "user_id"},
	{From: "wine_table", To: "wine_notes", Type: "one-to-many", Via: "wine_id"},
	{From: "wine_table", To: "wine_aisummaries", Type: "one-to-many", Via: "wine_id"},
}

// DescribeSchema renders tables and relationships as prompt text.
func DescribeSchema(tables []Table, rels []Relationship) string {
	var b strings.Builder
	b.WriteString("Database Schema:\n")
	for _, t := range tables {
		fmt.Fprintf(&b, "\n%s (%s):\n", t.Name, t.Description)
		for _, c := range t.Columns {
			fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Type)
		}
	}
	b.WriteString("\nRelationships:\n")
	for _, r := range rels {
		fmt.Fprintf(&b, "- %s to %s: %s via %s\n", r.From, r.To, r.Type, r.Via)
	}
	return b.String()
}
