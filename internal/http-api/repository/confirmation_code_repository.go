package repository

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeLength        = 8
	maxVerifyAttempts = 5
	codeKeyPrefix     = "ratehub:auth:confirmation"
)

var (
	ErrCodeMismatch = errors.New("invalid confirmation code")
	ErrCodeExpired  = errors.New("confirmation code expired or not issued")
)

// ConfirmationCodeRepository stores one active confirmation code per user.
// Issuing a new code replaces the old one; a successful verify consumes it.
type ConfirmationCodeRepository interface {
	Issue(ctx context.Context, userID string) (string, error)
	Verify(ctx context.Context, userID, code string) error
}

type confirmationCodeEntry struct {
	CodeHash string `json:"code_hash"`
	Attempts int    `json:"attempts"`
	IssuedAt int64  `json:"issued_at"`
}

type confirmationCodeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewConfirmationCodeRepository(client *redis.Client, ttl time.Duration) ConfirmationCodeRepository {
	return &confirmationCodeRepository{client: client, ttl: ttl}
}

// Issue generates a fresh code and persists only its bcrypt hash under the
// configured TTL. Any previously issued code for the user stops working.
func (r *confirmationCodeRepository) Issue(ctx context.Context, userID string) (string, error) {
	code, err := generateNumericCode(codeLength)
	if err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash confirmation code: %w", err)
	}

	entry := confirmationCodeEntry{
		CodeHash: string(hash),
		IssuedAt: time.Now().UTC().Unix(),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal confirmation code entry: %w", err)
	}

	if err := r.client.Set(ctx, r.key(userID), raw, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("store confirmation code: %w", err)
	}
	return code, nil
}

// Verify compares the supplied code against the stored hash. The entry is
// deleted on success (single use) and after too many failed attempts.
func (r *confirmationCodeRepository) Verify(ctx context.Context, userID, code string) error {
	key := r.key(userID)

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCodeExpired
	}
	if err != nil {
		return fmt.Errorf("load confirmation code: %w", err)
	}

	var entry confirmationCodeEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return fmt.Errorf("unmarshal confirmation code entry: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(entry.CodeHash), []byte(code)) != nil {
		entry.Attempts++
		if entry.Attempts >= maxVerifyAttempts {
			_ = r.client.Del(ctx, key).Err()
			return ErrCodeMismatch
		}
		// keep the remaining TTL when writing the attempt counter back
		if raw, marshalErr := json.Marshal(entry); marshalErr == nil {
			if ttl, ttlErr := r.client.TTL(ctx, key).Result(); ttlErr == nil && ttl > 0 {
				_ = r.client.Set(ctx, key, raw, ttl).Err()
			}
		}
		return ErrCodeMismatch
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("consume confirmation code: %w", err)
	}
	return nil
}

func (r *confirmationCodeRepository) key(userID string) string {
	return fmt.Sprintf("%s:%s", codeKeyPrefix, userID)
}

func generateNumericCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
