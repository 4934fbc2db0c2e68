package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanQueryStripsCodeFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain statement",
			raw:  "SELECT * FROM soc_data",
			want: "SELECT * FROM soc_data;",
		},
		{
			name: "already terminated",
			raw:  "SELECT * FROM soc_data;",
			want: "SELECT * FROM soc_data;",
		},
		{
			name: "sql fence",
			raw:  "```sql\nSELECT src_ip FROM soc_data;\n```",
			want: "SELECT src_ip FROM soc_data;",
		},
		{
			name: "sqlite fence",
			raw:  "```sqlite\nSELECT src_ip FROM soc_data;\n```",
			want: "SELECT src_ip FROM soc_data;",
		},
		{
			name: "bare fence",
			raw:  "```\nSELECT src_ip FROM soc_data;\n```",
			want: "SELECT src_ip FROM soc_data;",
		},
		{
			name: "restatement label",
			raw:  "SQLQuery: SELECT note FROM soc_data;",
			want: "SELECT note FROM soc_data;",
		},
		{
			name: "prose before the statement",
			raw:  "Here is the query you asked for:\nSELECT note FROM soc_data WHERE src_ip = '10.0.0.1';\nLet me know if you need anything else.",
			want: "SELECT note FROM soc_data WHERE src_ip = '10.0.0.1';",
		},
		{
			name: "multi line keeps first statement line only",
			raw:  "SELECT note FROM soc_data;\nSELECT payload FROM soc_data;",
			want: "SELECT note FROM soc_data;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanQuery(tt.raw))
		})
	}
}

func TestValidateSelect(t *testing.T) {
	assert.NoError(t, ValidateSelect("SELECT * FROM soc_data;"))
	assert.NoError(t, ValidateSelect("select note from soc_data where src_ip = '1.2.3.4';"))

	assert.Error(t, ValidateSelect(""))
	assert.Error(t, ValidateSelect(";"))
	assert.Error(t, ValidateSelect("DROP TABLE soc_data;"))
	assert.Error(t, ValidateSelect("DELETE FROM soc_data;"))
	assert.Error(t, ValidateSelect("UPDATE soc_data SET note = '';"))
	assert.Error(t, ValidateSelect("SELECT * FROM soc_data; DROP TABLE soc_data;"))
	assert.Error(t, ValidateSelect("The table does not exist, sorry."))
}
