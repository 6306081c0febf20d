package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	ledgerdomain "github.com/nutrilog/nutrilog/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo ledgerdomain.Repository
}

type Service struct {
	log  *zap.Logger
	repo ledgerdomain.Repository

	// mu guards totals; held only for in-memory reads/writes and the snapshot
	// copy, never across file IO.
	mu     sync.RWMutex
	totals ledgerdomain.Snapshot

	// writeMu serializes snapshot writes against the repository.
	writeMu sync.Mutex
}

// New loads the persisted snapshot and returns the ledger service.
func New(p Params) (ledgerdomain.Service, error) {
	snap, err := p.Repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	return &Service{
		log:    p.Log.Named("ledger.service"),
		repo:   p.Repo,
		totals: snap,
	}, nil
}

func (s *Service) Add(ctx context.Context, userID string, day ledgerdomain.Day, delta ledgerdomain.DayTotals) (ledgerdomain.DayTotals, error) {
	if strings.TrimSpace(userID) == "" {
		return ledgerdomain.DayTotals{}, ledgerdomain.ErrInvalidUser
	}

	updated := s.apply(userID, day, func(cur ledgerdomain.DayTotals) ledgerdomain.DayTotals {
		return cur.Add(delta)
	})

	if err := s.persist(ctx); err != nil {
		// Roll the delta back so a user retry starts from committed state.
		_ = s.apply(userID, day, func(cur ledgerdomain.DayTotals) ledgerdomain.DayTotals {
			return cur.Sub(delta)
		})
		s.log.Error("ledger write failed, delta rolled back",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("day", string(day)),
		)
		return ledgerdomain.DayTotals{}, fmt.Errorf("%w: %v", ledgerdomain.ErrPersistFailed, err)
	}

	return updated, nil
}

func (s *Service) Totals(ctx context.Context, userID string, day ledgerdomain.Day) (ledgerdomain.DayTotals, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[userID][day], nil
}

func (s *Service) ResetDay(ctx context.Context, userID string, day ledgerdomain.Day) error {
	if strings.TrimSpace(userID) == "" {
		return ledgerdomain.ErrInvalidUser
	}

	s.mu.Lock()
	prev, hadEntry := s.totals[userID][day]
	if s.totals[userID] == nil {
		s.totals[userID] = make(map[ledgerdomain.Day]ledgerdomain.DayTotals)
	}
	s.totals[userID][day] = ledgerdomain.DayTotals{}
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		s.mu.Lock()
		if hadEntry {
			s.totals[userID][day] = prev
		} else {
			delete(s.totals[userID], day)
		}
		s.mu.Unlock()
		return fmt.Errorf("%w: %v", ledgerdomain.ErrPersistFailed, err)
	}
	return nil
}

func (s *Service) WeeklyAverage(ctx context.Context, userID string, end ledgerdomain.Day, windowDays int) (ledgerdomain.WeekSummary, error) {
	_ = ctx

	if windowDays <= 0 {
		return ledgerdomain.WeekSummary{}, ledgerdomain.ErrInvalidWindow
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	days := s.totals[userID]
	var sum ledgerdomain.DayTotals
	populated := 0
	for i := 0; i < windowDays; i++ {
		d := end.AddDays(-i)
		t, ok := days[d]
		if !ok {
			continue
		}
		sum = sum.Add(t)
		populated++
	}

	if populated == 0 {
		return ledgerdomain.WeekSummary{}, nil
	}
	return ledgerdomain.WeekSummary{
		Average:      sum.Scale(1 / float64(populated)),
		DaysWithData: populated,
	}, nil
}

// apply mutates one (user, day) entry under the map lock and returns the new
// totals.
func (s *Service) apply(userID string, day ledgerdomain.Day, fn func(ledgerdomain.DayTotals) ledgerdomain.DayTotals) ledgerdomain.DayTotals {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totals[userID] == nil {
		s.totals[userID] = make(map[ledgerdomain.Day]ledgerdomain.DayTotals)
	}
	updated := fn(s.totals[userID][day])
	s.totals[userID][day] = updated
	return updated
}

// persist snapshots current totals and writes them out. The clone is taken
// while holding writeMu so a save can never carry state older than the save
// before it; out-of-order clones would let a stale snapshot overwrite a newer
// file.
func (s *Service) persist(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	snap := s.totals.Clone()
	s.mu.RUnlock()

	return s.repo.Save(snap)
}
