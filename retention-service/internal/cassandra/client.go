package cassandra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/tradepost/marketplace-automation/retention-service/internal/config"
)

// Client owns the session used by the message sweep.
type Client struct {
	session *gocql.Session
}

// NewClient opens a session against the chat keyspace. An empty
// consistency means LOCAL_QUORUM.
func NewClient(cfg config.CassandraConfig) (*Client, error) {
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("cassandra: no hosts configured")
	}

	consistency := gocql.LocalQuorum
	if cfg.Consistency != "" {
		c, err := gocql.ParseConsistencyWrapper(cfg.Consistency)
		if err != nil {
			return nil, fmt.Errorf("cassandra: %w", err)
		}
		consistency = c
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = consistency
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.Timeout = cfg.Timeout
	cluster.PageSize = cfg.PageSize
	// Sweeps page through every room; transient timeouts are retried.
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		NumRetries: 3,
		Min:        200 * time.Millisecond,
		Max:        5 * time.Second,
	}
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cassandra: connect to %v: %w", cfg.Hosts, err)
	}
	return &Client{session: session}, nil
}

// Close closes the session.
func (c *Client) Close() {
	if c.session != nil {
		c.session.Close()
	}
}

// rows is the part of *gocql.Iter the message source reads from.
type rows interface {
	Scan(dest ...interface{}) bool
	Close() error
}

// cql runs the statements of the message source.
type cql interface {
	query(ctx context.Context, stmt string, args ...interface{}) rows
	loggedBatch(ctx context.Context, stmt string, argSets [][]interface{}) error
}

func (c *Client) query(ctx context.Context, stmt string, args ...interface{}) rows {
	return c.session.Query(stmt, args...).WithContext(ctx).Iter()
}

func (c *Client) loggedBatch(ctx context.Context, stmt string, argSets [][]interface{}) error {
	batch := c.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, args := range argSets {
		batch.Query(stmt, args...)
	}
	return c.session.ExecuteBatch(batch)
}
