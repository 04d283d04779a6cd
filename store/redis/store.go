// Package redis implements store.Store on Redis.
//
// Each account is a hash at "<prefix>acct:" followed by account.Key.Encode.
// A sorted set at "<prefix>accounts" indexes the encoded keys, which sort
// bytewise in key order.
// SaveAccounts writes every hash and index entry in one MULTI/EXEC block.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/bonding"
	"github.com/xraph/bonding/account"
	"github.com/xraph/bonding/store"
	"github.com/xraph/bonding/types"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "bonding:"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store on a go-redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a store on client. The store owns the client and closes it on
// Close.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open parses a redis:// URL and returns a store on a new client.
func Open(ctx context.Context, url string, opts ...Option) (*Store, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("bonding/redis: parse url: %w", err)
	}
	client := redis.NewClient(o)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("bonding/redis: ping: %w", err)
	}
	return New(client, opts...), nil
}

func (s *Store) indexKey() string { return s.prefix + "accounts" }

func (s *Store) accountKey(m string) string { return s.prefix + "acct:" + m }

// member is the index entry and hash suffix for key. Redis strings are
// binary safe and ZRANGE on equal scores orders them bytewise.
func member(key account.Key) string { return string(key.Encode()) }

// Migrate is a no-op; Redis needs no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// ==================== Account Store ====================

func (s *Store) GetAccount(ctx context.Context, key account.Key) (*account.Account, error) {
	fields, err := s.client.HGetAll(ctx, s.accountKey(member(key))).Result()
	if err != nil {
		return nil, fmt.Errorf("bonding/redis: get account: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("account %s: %w", key, bonding.ErrNotFound)
	}
	return decode(fields)
}

func (s *Store) SaveAccounts(ctx context.Context, accounts ...*account.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, a := range accounts {
			m := member(a.Key)
			pipe.HSet(ctx, s.accountKey(m), encode(a))
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: 0, Member: m})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bonding/redis: save accounts: %w", err)
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*account.Account{}, nil
		}
		return nil, fmt.Errorf("bonding/redis: list index: %w", err)
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, m := range members {
		cmds[i] = pipe.HGetAll(ctx, s.accountKey(m))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("bonding/redis: list accounts: %w", err)
		}
	}

	result := make([]*account.Account, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		a, err := decode(fields)
		if err != nil {
			return nil, err
		}
		if opts.Matches(a.Key) {
			result = append(result, a)
		}
	}

	start := min(opts.Offset, len(result))
	end := len(result)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return result[start:end], nil
}

func encode(a *account.Account) map[string]any {
	return map[string]any{
		"holder":     a.Key.Holder,
		"provider":   a.Key.Provider,
		"specifier":  a.Key.Specifier,
		"bonded":     strconv.FormatUint(a.Bonded, 10),
		"value_held": strconv.FormatUint(a.ValueHeld, 10),
		"escrowed":   strconv.FormatUint(a.Escrowed, 10),
		"issued":     strconv.FormatUint(a.Issued, 10),
		"created_at": a.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func decode(fields map[string]string) (*account.Account, error) {
	a := &account.Account{
		Key: account.NewKey(fields["holder"], fields["provider"], fields["specifier"]),
	}

	for name, dst := range map[string]*uint64{
		"bonded":     &a.Bonded,
		"value_held": &a.ValueHeld,
		"escrowed":   &a.Escrowed,
		"issued":     &a.Issued,
	} {
		v, err := strconv.ParseUint(fields[name], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bonding/redis: decode %s of %s: %w", name, a.Key, err)
		}
		*dst = v
	}

	var (
		e   types.Entity
		err error
	)
	if e.CreatedAt, err = time.Parse(time.RFC3339Nano, fields["created_at"]); err != nil {
		return nil, fmt.Errorf("bonding/redis: decode created_at of %s: %w", a.Key, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields["updated_at"]); err != nil {
		return nil, fmt.Errorf("bonding/redis: decode updated_at of %s: %w", a.Key, err)
	}
	a.Entity = e
	return a, nil
}
