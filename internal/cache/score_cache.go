package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"govready/internal/model"
)

// ScoreCache holds the last computed score of each assessment. Writes are
// fenced by a per-assessment generation: Invalidate bumps it, and SetScore
// only stores a score computed under the current generation.
type ScoreCache interface {
	Generation(ctx context.Context, assessmentID string) (int64, error)
	SetScore(ctx context.Context, score *model.AssessmentScore, companyID string, generation int64) (bool, error)
	GetScore(ctx context.Context, assessmentID string) (*model.AssessmentScore, error)
	Invalidate(ctx context.Context, assessmentID string) error
}

// setScoreScript stores the score and its readiness board entry in one step,
// unless the generation moved on while the score was being computed.
// KEYS: score, generation, [board]. ARGV: score json, generation, ttl ms,
// completion percentage, assessment id.
var setScoreScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
if KEYS[3] then
	redis.call('ZADD', KEYS[3], ARGV[4], ARGV[5])
end
return 1
`)

type scoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache creates a new score cache
func NewScoreCache(client *redis.Client, ttl time.Duration) ScoreCache {
	return &scoreCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *scoreCache) key(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:score", assessmentID)
}

func (c *scoreCache) generationKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:score:gen", assessmentID)
}

// Generation is 0 until the first Invalidate
func (c *scoreCache) Generation(ctx context.Context, assessmentID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(assessmentID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// SetScore reports false when the score was computed under an older generation
// and was dropped. A non-empty companyID also moves the readiness board entry.
func (c *scoreCache) SetScore(ctx context.Context, score *model.AssessmentScore, companyID string, generation int64) (bool, error) {
	data, err := json.Marshal(score)
	if err != nil {
		return false, err
	}
	keys := []string{c.key(score.AssessmentID), c.generationKey(score.AssessmentID)}
	if companyID != "" {
		keys = append(keys, readinessKey(companyID))
	}
	stored, err := setScoreScript.Run(ctx, c.client, keys,
		string(data),
		strconv.FormatInt(generation, 10),
		strconv.FormatInt(c.ttl.Milliseconds(), 10),
		score.CompletionPercentage,
		score.AssessmentID,
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *scoreCache) GetScore(ctx context.Context, assessmentID string) (*model.AssessmentScore, error) {
	data, err := c.client.Get(ctx, c.key(assessmentID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var score model.AssessmentScore
	if err := json.Unmarshal([]byte(data), &score); err != nil {
		return nil, err
	}
	return &score, nil
}

// Invalidate drops the cached score and fences out writers that started earlier
func (c *scoreCache) Invalidate(ctx context.Context, assessmentID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(assessmentID))
		pipe.Del(ctx, c.key(assessmentID))
		return nil
	})
	return err
}
