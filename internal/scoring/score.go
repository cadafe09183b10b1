package scoring

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"

	"scoring-api/internal/fields"
)

// AdminScore — скоринг, который всегда получает администратор.
const AdminScore = 42

// Profile — провалидированные поля запроса online_score.
// Пустая строка и nil означают, что поле не передано (или передано null).
type Profile struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Birthday  *time.Time
	Gender    *int
}

// CacheKey — ключ кэша скоринга для профиля.
func CacheKey(p Profile) string {
	birthday := ""
	if p.Birthday != nil {
		birthday = p.Birthday.Format("20060102")
	}
	sum := md5.Sum([]byte(p.FirstName + p.LastName + p.Phone + p.Email + birthday))
	return "uid:" + hex.EncodeToString(sum[:])
}

// Compute считает скоринг без обращения к кэшу.
func Compute(p Profile) float64 {
	var score float64
	if p.Phone != "" {
		score += 1.5
	}
	if p.Email != "" {
		score += 1.5
	}
	// Пол "неизвестен" (0) бонуса не даёт.
	if p.Birthday != nil && p.Gender != nil && *p.Gender != fields.GenderUnknown {
		score += 1.5
	}
	if p.FirstName != "" && p.LastName != "" {
		score += 0.5
	}
	return score
}

// Score возвращает скоринг профиля.
//
// Для администратора это всегда AdminScore, кэш не трогается. Для остальных
// сначала смотрим в кэш; любые ошибки хранилища (и при чтении, и при записи)
// не фатальны и только логируются: промах кэша означает пересчёт.
func (s *Service) Score(ctx context.Context, p Profile, isAdmin bool) float64 {
	if isAdmin {
		return AdminScore
	}

	key := CacheKey(p)

	cached, ok, err := s.store.CacheGet(ctx, key)
	switch {
	case err != nil:
		s.storeError(ctx, "cache_get", err, "key", key)
	case ok:
		if v, perr := strconv.ParseFloat(cached, 64); perr == nil {
			s.log.DebugContext(ctx, "score found in cache", "key", key)
			if s.metrics != nil {
				s.metrics.ScoreCacheHits.Inc()
			}
			return v
		}
		s.log.WarnContext(ctx, "cached score is not a number", "key", key, "value", cached)
	}

	if s.metrics != nil {
		s.metrics.ScoreCacheMisses.Inc()
	}
	score := Compute(p)

	if err := s.store.CacheSet(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), s.cacheTTL); err != nil {
		s.storeError(ctx, "cache_set", err, "key", key)
	}
	return score
}

func (s *Service) storeError(ctx context.Context, op string, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.StoreErrors.WithLabelValues(op).Inc()
	}
	s.log.WarnContext(ctx, "store call failed", append([]any{"op", op, "error", err}, attrs...)...)
}
