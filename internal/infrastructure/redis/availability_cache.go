package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-court-booking/internal/domain/slot"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
	// ErrStaleGeneration は計算中に無効化が入ったため保存を見送ったことを示す
	ErrStaleGeneration = errors.New("キャッシュの世代が古いため保存しません")
)

// generationTTL は世代カウンターの保持期間。値のTTLより十分長くする
const generationTTL = 7 * 24 * time.Hour

// AvailabilityCacheInterface は日付ごとの空きスロットキャッシュ
//
// 保存は Generation で読んだ世代を添えて行う。読んでから Set までの間に
// Invalidate が入っていれば Set は ErrStaleGeneration を返して何も書かない
type AvailabilityCacheInterface interface {
	Get(ctx context.Context, date slot.Date) ([]slot.ID, error)
	Generation(ctx context.Context, date slot.Date) (int64, error)
	Set(ctx context.Context, date slot.Date, gen int64, slots []slot.ID, ttl time.Duration) error
	Invalidate(ctx context.Context, date slot.Date) error
}

// AvailabilityCache は空きスロット一覧をJSONで保存する
type AvailabilityCache struct {
	client *redis.Client
}

func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// Get はキャッシュ済みの空きスロットを返す
// 空き0件（終日クローズ等）も有効な値として返す
func (c *AvailabilityCache) Get(ctx context.Context, date slot.Date) ([]slot.ID, error) {
	raw, err := c.client.Get(ctx, c.key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	slots := []slot.ID{}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, fmt.Errorf("キャッシュの復元に失敗: %w", err)
	}
	return slots, nil
}

// Generation は指定日の現在の世代を返す（未作成なら0）
func (c *AvailabilityCache) Generation(ctx context.Context, date slot.Date) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("キャッシュ世代の取得に失敗: %w", err)
	}
	return gen, nil
}

// setIfGenerationScript は世代が一致するときだけ値を書く
// 世代キーが無い状態は0として扱う
const setIfGenerationScript = `
	local current = tonumber(redis.call("GET", KEYS[1]) or "0")
	if current ~= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
	return 1
`

func (c *AvailabilityCache) Set(ctx context.Context, date slot.Date, gen int64, slots []slot.ID, ttl time.Duration) error {
	if slots == nil {
		slots = []slot.ID{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("キャッシュのシリアライズに失敗: %w", err)
	}
	result, err := c.client.Eval(ctx, setIfGenerationScript,
		[]string{c.genKey(date), c.key(date)}, gen, raw, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	if result == 0 {
		return ErrStaleGeneration
	}
	return nil
}

// Invalidate は世代を進めてから値を消す
// 無効化より前に読まれた世代での Set はこれ以降すべて拒否される
func (c *AvailabilityCache) Invalidate(ctx context.Context, date slot.Date) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(date))
		pipe.Expire(ctx, c.genKey(date), generationTTL)
		pipe.Del(ctx, c.key(date))
		return nil
	})
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) key(date slot.Date) string {
	return fmt.Sprintf("availability:%s", date)
}

func (c *AvailabilityCache) genKey(date slot.Date) string {
	return fmt.Sprintf("availability:gen:%s", date)
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)
