package gateway

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ChangeFeed opens listeners on named change channels of the backing store.
type ChangeFeed interface {
	Listen(ctx context.Context, channel string) (Listener, error)
}

// Listener blocks in Wait until the next change on its channel.
type Listener interface {
	Wait(ctx context.Context) error
	Close(ctx context.Context) error
}

// PgFeed implements ChangeFeed with PostgreSQL LISTEN/NOTIFY. Each listener holds
// its own connection.
type PgFeed struct {
	dsn string
}

func NewPgFeed(dsn string) *PgFeed {
	return &PgFeed{dsn: dsn}
}

func (f *PgFeed) Listen(ctx context.Context, channel string) (Listener, error) {
	conn, err := pgx.Connect(ctx, f.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect change feed: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}

	return &pgListener{conn: conn}, nil
}

type pgListener struct {
	conn *pgx.Conn
}

func (l *pgListener) Wait(ctx context.Context) error {
	_, err := l.conn.WaitForNotification(ctx)
	return err
}

func (l *pgListener) Close(ctx context.Context) error {
	return l.conn.Close(ctx)
}
