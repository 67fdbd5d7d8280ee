package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldUserID     = "uid"
	fieldSecretHash = "hash"
	fieldExpiresAt  = "exp"
	fieldRevoked    = "rev"
	fieldDeviceInfo = "dev"
	fieldOriginAddr = "origin"
	fieldCreatedAt  = "created"
)

// The revoked flag survives revocation until the record's natural TTL so a
// replayed token can be recognized as reuse rather than reported as unknown.
const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HGET", KEYS[1], "rev") == "1" then
  return 2
end
redis.call("HSET", KEYS[1], "rev", "1")
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// RedisStore implements [Store] on a Redis key-value cache. Each record is a
// hash keyed by (user, session id) with a TTL matching the refresh expiry; a
// per-user set indexes session IDs for enumeration and mass revocation.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gs"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(userID int64, id string) string {
	return s.prefix + ":sess:" + strconv.FormatInt(userID, 10) + ":" + id
}

func (s *RedisStore) userKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10)
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	key := s.key(rec.UserID, rec.ID)

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key,
		fieldUserID, strconv.FormatInt(rec.UserID, 10),
		fieldSecretHash, hex.EncodeToString(rec.SecretHash[:]),
		fieldExpiresAt, strconv.FormatInt(rec.ExpiresAt.Unix(), 10),
		fieldRevoked, boolField(rec.Revoked),
		fieldDeviceInfo, rec.DeviceInfo,
		fieldOriginAddr, rec.OriginAddr,
		fieldCreatedAt, strconv.FormatInt(rec.CreatedAt.Unix(), 10),
	)
	pipe.ExpireAt(ctx, key, rec.ExpiresAt)
	pipe.SAdd(ctx, s.userKey(rec.UserID), rec.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: save: %v", ErrUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Get(ctx context.Context, userID int64, id string) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: get: %v", ErrUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeFields(id, fields)
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Revoke(ctx context.Context, userID int64, id string) (RevokeOutcome, error) {
	status, err := revokeLua.Run(ctx, s.client, []string{s.key(userID, id)}).Int64()
	if err != nil {
		return RevokeNotFound, fmt.Errorf("%w: revoke: %v", ErrUnavailable, err)
	}
	switch status {
	case 1:
		return RevokeDone, nil
	case 2:
		return RevokeAlreadyRevoked, nil
	default:
		return RevokeNotFound, nil
	}
}

// RevokeAllForUser describes the revokeallforuser operation and its observable behavior.
//
// RevokeAllForUser may return an error when input validation, dependency calls, or security checks fail.
// RevokeAllForUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID int64) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: revoke all: %v", ErrUnavailable, err)
	}

	for _, id := range ids {
		if _, err := revokeLua.Run(ctx, s.client, []string{s.key(userID, id)}).Int64(); err != nil {
			return fmt.Errorf("%w: revoke all: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// ListActive describes the listactive operation and its observable behavior.
//
// ListActive may return an error when input validation, dependency calls, or security checks fail.
// ListActive does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) ListActive(ctx context.Context, userID int64) ([]*Record, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, s.key(userID, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: list: %v", ErrUnavailable, err)
	}

	now := time.Now()
	records := make([]*Record, 0, len(ids))
	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		rec, err := decodeFields(ids[i], fields)
		if err != nil {
			continue
		}
		if rec.Revoked || rec.Expired(now) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// DeleteExpired prunes index entries whose session hashes have TTL-expired.
// Record storage itself is reclaimed by Redis key expiry.
func (s *RedisStore) DeleteExpired(ctx context.Context) (int, error) {
	pruned := 0

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":user:*", 64).Result()
		if err != nil {
			return pruned, fmt.Errorf("%w: sweep: %v", ErrUnavailable, err)
		}

		for _, userKey := range keys {
			userID, err := strconv.ParseInt(userKey[len(s.prefix)+len(":user:"):], 10, 64)
			if err != nil {
				continue
			}
			ids, err := s.client.SMembers(ctx, userKey).Result()
			if err != nil {
				return pruned, fmt.Errorf("%w: sweep: %v", ErrUnavailable, err)
			}
			for _, id := range ids {
				exists, err := s.client.Exists(ctx, s.key(userID, id)).Result()
				if err != nil {
					return pruned, fmt.Errorf("%w: sweep: %v", ErrUnavailable, err)
				}
				if exists == 0 {
					if err := s.client.SRem(ctx, userKey, id).Err(); err != nil {
						return pruned, fmt.Errorf("%w: sweep: %v", ErrUnavailable, err)
					}
					pruned++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			return pruned, nil
		}
	}
}

// Ping describes the ping operation and its observable behavior.
//
// Ping may return an error when input validation, dependency calls, or security checks fail.
// Ping does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", ErrUnavailable, err)
	}
	return nil
}

func boolField(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func decodeFields(id string, fields map[string]string) (*Record, error) {
	userID, err := strconv.ParseInt(fields[fieldUserID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record %q: user id", id)
	}
	rawHash, err := hex.DecodeString(fields[fieldSecretHash])
	if err != nil || len(rawHash) != 32 {
		return nil, fmt.Errorf("corrupt session record %q: secret hash", id)
	}
	expiresAt, err := strconv.ParseInt(fields[fieldExpiresAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record %q: expiry", id)
	}
	createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session record %q: created", id)
	}

	rec := &Record{
		ID:         id,
		UserID:     userID,
		ExpiresAt:  time.Unix(expiresAt, 0),
		Revoked:    fields[fieldRevoked] == "1",
		DeviceInfo: fields[fieldDeviceInfo],
		OriginAddr: fields[fieldOriginAddr],
		CreatedAt:  time.Unix(createdAt, 0),
	}
	copy(rec.SecretHash[:], rawHash)
	return rec, nil
}

var _ Store = (*RedisStore)(nil)
