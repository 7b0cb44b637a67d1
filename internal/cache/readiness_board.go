package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"govready/internal/model"
)

// ReadinessBoard ranks a company's assessments by completion percentage (ZSET)
type ReadinessBoard interface {
	Update(ctx context.Context, companyID, assessmentID string, completionPercentage int) error
	Top(ctx context.Context, companyID string, limit int) ([]model.ReadinessEntry, error)
	Rank(ctx context.Context, companyID, assessmentID string) (int64, error)
}

type readinessBoard struct {
	client *redis.Client
}

// NewReadinessBoard creates a new readiness board
func NewReadinessBoard(client *redis.Client) ReadinessBoard {
	return &readinessBoard{
		client: client,
	}
}

func readinessKey(companyID string) string {
	return fmt.Sprintf("company:%s:readiness", companyID)
}

func (c *readinessBoard) key(companyID string) string {
	return readinessKey(companyID)
}

func (c *readinessBoard) Update(ctx context.Context, companyID, assessmentID string, completionPercentage int) error {
	return c.client.ZAdd(ctx, c.key(companyID), redis.Z{
		Score:  float64(completionPercentage),
		Member: assessmentID,
	}).Err()
}

func (c *readinessBoard) Top(ctx context.Context, companyID string, limit int) ([]model.ReadinessEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(companyID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.ReadinessEntry, len(results))
	for i, z := range results {
		entries[i] = model.ReadinessEntry{
			AssessmentID:         z.Member.(string),
			CompletionPercentage: int(z.Score),
			Rank:                 i + 1,
		}
	}
	return entries, nil
}

// Rank is 1-indexed; -1 means the assessment is not on the board
func (c *readinessBoard) Rank(ctx context.Context, companyID, assessmentID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(companyID), assessmentID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err
}
