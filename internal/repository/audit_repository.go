package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const auditStream = "moderation:audit"

type AuditEntry struct {
	Actor  string `json:"actor"`
	Action string `json:"action"`
	Target string `json:"target"`
}

// AuditRepository appends moderation actions to a capped Redis stream.
type AuditRepository struct {
	client *redis.Client
	maxLen int64
}

func NewAuditRepository(client *redis.Client) *AuditRepository {
	return &AuditRepository{client: client, maxLen: 10000}
}

func (r *AuditRepository) Append(ctx context.Context, entry AuditEntry) error {
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: auditStream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: map[string]any{
			"actor":  entry.Actor,
			"action": entry.Action,
			"target": entry.Target,
			"at":     strconv.FormatInt(time.Now().Unix(), 10),
		},
	}).Err()
}

// Recent returns the newest entries first.
func (r *AuditRepository) Recent(ctx context.Context, count int64) ([]AuditEntry, error) {
	msgs, err := r.client.XRevRangeN(ctx, auditStream, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(msgs))
	for _, msg := range msgs {
		entries = append(entries, AuditEntry{
			Actor:  stringValue(msg.Values["actor"]),
			Action: stringValue(msg.Values["action"]),
			Target: stringValue(msg.Values["target"]),
		})
	}
	return entries, nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
