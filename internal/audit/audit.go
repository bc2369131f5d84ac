package audit

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/federicogioffre/finance-tracker/internal/db"
)

// Actions recorded against the ledger.
const (
	ActionImportConfirmed    = "import.confirmed"
	ActionTransactionCreated = "transaction.created"
	ActionTransactionDeleted = "transaction.deleted"
	ActionAccountDeleted     = "account.deleted"
)

type Entry struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   *string
	IP         *string
	UserAgent  *string
	Metadata   any
}

// ID formats a numeric entity id for Entry.EntityID.
func ID(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}

type clientKey struct{}

type client struct {
	ip, userAgent string
}

// WithClient attaches the caller's address and user agent to ctx so entries
// written further down the call chain can carry them.
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, client{ip: ip, userAgent: userAgent})
}

// Write records an audit entry through q, which is normally the open
// transaction of the change being audited so both commit or neither does.
func Write(ctx context.Context, q db.DBTX, e Entry) error {
	if q == nil {
		return nil
	}

	if cl, ok := ctx.Value(clientKey{}).(client); ok {
		if e.IP == nil && cl.ip != "" {
			e.IP = &cl.ip
		}
		if e.UserAgent == nil && cl.userAgent != "" {
			e.UserAgent = &cl.userAgent
		}
	}

	var metadata interface{}
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = json.RawMessage(raw)
	}

	_, err := q.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip, user_agent, metadata)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
`, e.UserID, e.Action, e.EntityType, e.EntityID, e.IP, e.UserAgent, metadata)

	return err
}
