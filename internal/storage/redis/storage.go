package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/duelhub/duelhub/internal/model"
	"github.com/duelhub/duelhub/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Match records

func (s *Storage) SaveMatchRecord(ctx context.Context, record *model.MatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	// Pipeline for atomic record save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, matchRecordKey(record.ID), data, 0)
	pipe.ZAdd(ctx, matchIndexKey(), redis.Z{Score: float64(record.ID), Member: int64(record.ID)})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetMatchRecord(ctx context.Context, id model.MatchID) (*model.MatchRecord, error) {
	data, err := s.client.Get(ctx, matchRecordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrMatchNotFound
		}
		return nil, err
	}

	var record model.MatchRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Storage) LatestMatchID(ctx context.Context) (model.MatchID, error) {
	ids, err := s.client.ZRevRange(ctx, matchIndexKey(), 0, 0).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(ids[0], 10, 64)
	if err != nil {
		return 0, err
	}
	return model.MatchID(id), nil
}

// Account roster

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, accountKey(account.ID), data, 0)
	pipe.SAdd(ctx, accountIndexKey(), int(account.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	ids, err := s.client.SMembers(ctx, accountIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	accounts := make([]*model.Account, 0, len(ids))
	for _, idStr := range ids {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, err
		}
		account, err := s.GetAccount(ctx, model.AccountID(id))
		if err != nil {
			// Index entry without a record; skip rather than fail the load
			if errors.Is(err, model.ErrAccountNotFound) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *Storage) DeleteAccount(ctx context.Context, id model.AccountID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, accountKey(id))
	pipe.SRem(ctx, accountIndexKey(), int(id))
	_, err := pipe.Exec(ctx)
	return err
}

// Usage audit

func (s *Storage) AppendAccountUsage(ctx context.Context, usage *model.AccountUsage) error {
	data, err := json.Marshal(usage)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, usageKey(usage.ParticipantID), data).Err()
}

func (s *Storage) ListAccountUsage(ctx context.Context, participantID model.ParticipantID) ([]*model.AccountUsage, error) {
	entries, err := s.client.LRange(ctx, usageKey(participantID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	usages := make([]*model.AccountUsage, 0, len(entries))
	for _, entry := range entries {
		var usage model.AccountUsage
		if err := json.Unmarshal([]byte(entry), &usage); err != nil {
			return nil, err
		}
		usages = append(usages, &usage)
	}
	return usages, nil
}
