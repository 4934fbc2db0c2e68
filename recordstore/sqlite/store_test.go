package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/recordstore"
)

func newTestStore(t *testing.T) recordstore.RecordStore {
	t.Helper()
	return NewStore(
		recordstore.WithLocation(filepath.Join(t.TempDir(), "soc.db")),
	)
}

func seed(t *testing.T, s recordstore.RecordStore) {
	t.Helper()

	table, err := record.ReadCSV(strings.NewReader(
		"src_ip,alert.signature,note\n" +
			"10.0.0.1,Suspicious domain reqres.in has been detected!,phishing\n" +
			"10.0.0.2,Port scan detected,\n",
	))
	require.NoError(t, err)

	require.NoError(t, s.Insert(context.Background(), table))
}

func TestSchemaBeforeInsert(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Schema(context.Background())
	assert.Error(t, err)
}

func TestInsertThenSchema(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	schema, err := s.Schema(context.Background())
	require.NoError(t, err)

	assert.Contains(t, schema, "soc_data")
	assert.Contains(t, schema, `"alert.signature"`)
	assert.Contains(t, schema, "TEXT")
}

func TestSelect(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	rows, err := s.Select(context.Background(), `SELECT src_ip, note FROM soc_data WHERE src_ip = '10.0.0.1';`)
	require.NoError(t, err)

	assert.Equal(t, []string{"src_ip", "note"}, rows.Columns)
	require.Len(t, rows.Values, 1)
	assert.Equal(t, []string{"10.0.0.1", "phishing"}, rows.Values[0])
}

func TestSelectDottedColumn(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	rows, err := s.Select(context.Background(), `SELECT "alert.signature" FROM soc_data;`)
	require.NoError(t, err)

	require.Len(t, rows.Values, 2)
	assert.Equal(t, "Suspicious domain reqres.in has been detected!", rows.Values[0][0])
}

func TestSelectEmptyResult(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	rows, err := s.Select(context.Background(), `SELECT * FROM soc_data WHERE src_ip = 'nowhere';`)
	require.NoError(t, err)
	assert.Empty(t, rows.Values)
}

func TestSelectBadQuery(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	_, err := s.Select(context.Background(), `SELECT missing FROM soc_data;`)
	assert.Error(t, err)
}

func TestInsertIsAdditive(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	seed(t, s)

	rows, err := s.Select(context.Background(), `SELECT src_ip FROM soc_data;`)
	require.NoError(t, err)
	assert.Len(t, rows.Values, 4)
}
