package queue

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

const jobsKey = "queue:jobs"

// Redisリストに積むジョブの封筒
type Job struct {
	Name     string          `json:"name"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

type RedisQueue struct {
	rdb *redis.Client
}

// DI
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// LPUSH + BRPOP でFIFOになる
func (q *RedisQueue) Enqueue(ctx context.Context, jobName string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(Job{Name: jobName, Payload: raw})
	if err != nil {
		return err
	}

	return q.rdb.LPush(ctx, jobsKey, data).Err()
}
