package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	sql  string
	args []any
}

func (r *recorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recorder) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (r *recorder) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestWrite(t *testing.T) {
	rec := &recorder{}
	ctx := WithClient(context.Background(), "10.0.0.1", "curl/8")
	err := Write(ctx, rec, Entry{
		UserID:     "u1",
		Action:     ActionImportConfirmed,
		EntityType: "account",
		EntityID:   ID(7),
		Metadata:   map[string]any{"rows": 3},
	})
	require.NoError(t, err)

	assert.Contains(t, rec.sql, "INSERT INTO audit_logs")
	require.Len(t, rec.args, 7)
	assert.Equal(t, "u1", rec.args[0])
	assert.Equal(t, ActionImportConfirmed, rec.args[1])
	assert.Equal(t, "7", *rec.args[3].(*string))
	assert.Equal(t, "10.0.0.1", *rec.args[4].(*string))
	assert.Equal(t, "curl/8", *rec.args[5].(*string))
	assert.JSONEq(t, `{"rows":3}`, string(rec.args[6].(json.RawMessage)))
}

func TestWrite_NoMetadata(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Write(context.Background(), rec, Entry{UserID: "u1", Action: ActionAccountDeleted}))
	assert.Nil(t, rec.args[4])
	assert.Nil(t, rec.args[6])
}
