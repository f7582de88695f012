package nl2sql

import "testing"

func TestExtractSQL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain statement",
			raw:  "SELECT 1 FROM drivers",
			want: "SELECT 1 FROM drivers",
		},
		{
			name: "surrounding whitespace",
			raw:  "\n  SELECT 1 FROM drivers  \n",
			want: "SELECT 1 FROM drivers",
		},
		{
			name: "tagged fence",
			raw:  "```sql\nSELECT 1 FROM drivers;\n```",
			want: "SELECT 1 FROM drivers;",
		},
		{
			name: "untagged fence",
			raw:  "```\nSELECT 1 FROM drivers;\n```",
			want: "SELECT 1 FROM drivers;",
		},
		{
			name: "label prefix",
			raw:  "SQL: SELECT 1 FROM drivers",
			want: "SELECT 1 FROM drivers",
		},
		{
			name: "label then fence",
			raw:  "Here is the SQL:\n```sql\nSELECT 1 FROM drivers\n```",
			want: "SELECT 1 FROM drivers",
		},
		{
			name: "prose around fence",
			raw:  "Sure thing:\n```sql\nSELECT 1 FROM drivers\n```\nLet me know!",
			want: "SELECT 1 FROM drivers",
		},
		{
			name: "empty response",
			raw:  "",
			want: "",
		},
		{
			name: "fence with nothing inside",
			raw:  "```sql\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSQL(tt.raw); got != tt.want {
				t.Fatalf("ExtractSQL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
