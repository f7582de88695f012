package nl2sql

import (
	"strings"

	"github.com/pitwall/pitwall/internal/schema"
)

// FallbackSQL is the query the model is told to emit when it cannot
// determine the user's intent.
const FallbackSQL = `SELECT drivers.forename, drivers.surname FROM drivers LIMIT 1`

const systemPrompt = "You are an expert F1 statistician and SQL query generator. " +
	"You translate natural language questions about Formula 1 into a single PostgreSQL SELECT query. " +
	"Return ONLY SQL. No markdown, no explanation."

var userPromptTemplate = "You have access to a database with the following tables and exact column definitions:\n\n" +
	schema.Render() +
	"Rules:\n" +
	"- Return only one SQL query string, no explanations, markdown, or extra text.\n" +
	"- Enclose all column names in double quotes (e.g., results.\"driverId\", drivers.\"surname\").\n" +
	"- Generate a valid PostgreSQL SELECT query ONLY.\n" +
	"- Use exact column names as listed, with their exact case.\n" +
	"- Use correct join conditions based on foreign keys (e.g., results.\"driverId\" = drivers.\"driverId\").\n" +
	"- Use full table names instead of aliases to avoid errors.\n" +
	"- Ensure the query is syntactically correct and executable.\n" +
	"- If the question is ambiguous, select relevant columns like drivers.\"forename\", drivers.\"surname\", races.\"name\", races.\"date\".\n" +
	"- driverId exists only in results and drivers; raceId exists only in results and races.\n" +
	"- If no valid query can be generated, return: " + FallbackSQL + ";\n\n" +
	"Example:\n" +
	"SELECT drivers.\"forename\", drivers.\"surname\", races.\"name\", races.\"date\"\n" +
	"FROM results\n" +
	"JOIN drivers ON results.\"driverId\" = drivers.\"driverId\"\n" +
	"JOIN races ON results.\"raceId\" = races.\"raceId\"\n" +
	"WHERE drivers.\"surname\" = 'Verstappen' AND races.\"year\" = 2023 AND results.\"positionOrder\" = 1;\n\n" +
	"Question: "

// buildUserPrompt embeds the question into the fixed instruction template.
// The template is immutable configuration and identical for every request.
func buildUserPrompt(question string) string {
	return userPromptTemplate + strings.TrimSpace(question)
}
