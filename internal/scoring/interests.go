package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrInterestsUnavailable — интересы клиента не удалось получить ни с одной
// попытки.
var ErrInterestsUnavailable = errors.New("interests unavailable")

// Interests возвращает интересы для каждого клиента из ids и число
// успешно обработанных id.
//
// Каждый id запрашивается до s.attempts раз; ошибка хранилища считается
// временной. Если хотя бы один клиент так и не получил интересов, весь
// запрос неуспешен, а оставшиеся обращения отменяются.
func (s *Service) Interests(ctx context.Context, ids []int64) (map[int64][]string, int, error) {
	var (
		mu       sync.Mutex
		out      = make(map[int64][]string, len(ids))
		resolved int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			list, err := s.resolve(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = list
			resolved++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if s.metrics != nil {
			s.metrics.InterestFailures.Inc()
		}
		return nil, resolved, err
	}
	return out, resolved, nil
}

// resolve — политика повторов для одного клиента. Успешный, но пустой
// ответ хранилища повторно не запрашивается и считается неудачей.
func (s *Service) resolve(ctx context.Context, id int64) ([]string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if s.metrics != nil {
			s.metrics.InterestAttempts.Inc()
		}

		list, err := s.store.Interests(ctx, id)
		if err == nil {
			if len(list) == 0 {
				return nil, fmt.Errorf("%w: client %d: empty result", ErrInterestsUnavailable, id)
			}
			return list, nil
		}

		lastErr = err
		s.storeError(ctx, "interests", err, "client_id", id, "attempt", attempt)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: client %d: %w", ErrInterestsUnavailable, id, lastErr)
}
