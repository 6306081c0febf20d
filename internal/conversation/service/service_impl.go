package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/clock"
	"github.com/nutrilog/nutrilog/internal/config"
	conversationdomain "github.com/nutrilog/nutrilog/internal/conversation/domain"
	ledgerdomain "github.com/nutrilog/nutrilog/internal/ledger/domain"
	"github.com/nutrilog/nutrilog/internal/observability/metrics"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	sessiondomain "github.com/nutrilog/nutrilog/internal/session/domain"
	"github.com/nutrilog/nutrilog/internal/session/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const summaryWindowDays = 7

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Clock    clock.Clock
	Sessions *store.Store
	Gateway  recognitiondomain.Gateway
	Ledger   ledgerdomain.Service
}

type Service struct {
	log      *zap.Logger
	metrics  *metrics.Metrics
	clock    clock.Clock
	sessions *store.Store
	gateway  recognitiondomain.Gateway
	ledger   ledgerdomain.Service
	target   config.Target
	idleTTL  time.Duration
}

func New(p Params) conversationdomain.Service {
	return &Service{
		log:      p.Log.Named("conversation.service"),
		metrics:  p.Metrics,
		clock:    p.Clock,
		sessions: p.Sessions,
		gateway:  p.Gateway,
		ledger:   p.Ledger,
		target:   p.Cfg.Target,
		idleTTL:  p.Cfg.SessionIdleTTL,
	}
}

func (s *Service) Handle(ctx context.Context, ev conversationdomain.Event) conversationdomain.Reply {
	s.metrics.EventsTotal.WithLabelValues(string(ev.Type)).Inc()

	var text string
	s.sessions.Update(ev.UserID, func(sess *sessiondomain.Session) {
		now := s.clock.Now()
		if sess.IdleSince(now, s.idleTTL) && sess.State != sessiondomain.StateIdle {
			s.log.Info("expiring stale session",
				zap.String("user_id", ev.UserID),
				zap.String("state", string(sess.State)),
			)
			sess.Reset()
		}

		text = s.transition(ctx, ev, sess)
		sess.UpdatedAt = now
	})

	return conversationdomain.Reply{UserID: ev.UserID, Text: text}
}

func (s *Service) transition(ctx context.Context, ev conversationdomain.Event, sess *sessiondomain.Session) string {
	switch ev.Type {
	case conversationdomain.EventReset:
		return s.handleReset(ctx, ev.UserID, sess)
	case conversationdomain.EventSummary:
		return s.handleSummary(ctx, ev.UserID)
	case conversationdomain.EventPhoto:
		return s.handlePhoto(ev.Photo, sess)
	case conversationdomain.EventText:
		return s.handleText(ctx, ev, sess)
	default:
		return "I did not understand that. Send a meal photo or description."
	}
}

// handleReset zeroes today's totals and clears any pending session data so a
// stale confirmation can never apply after the reset.
func (s *Service) handleReset(ctx context.Context, userID string, sess *sessiondomain.Session) string {
	today := ledgerdomain.DayOf(s.clock.Now())
	if err := s.ledger.ResetDay(ctx, userID, today); err != nil {
		s.metrics.LedgerWriteErrors.Inc()
		s.log.Error("day reset failed", zap.Error(err), zap.String("user_id", userID))
		return "⚠️ Could not save, try again."
	}
	sess.Reset()
	return "🔄 Day reset"
}

func (s *Service) handleSummary(ctx context.Context, userID string) string {
	end := ledgerdomain.DayOf(s.clock.Now())
	week, err := s.ledger.WeeklyAverage(ctx, userID, end, summaryWindowDays)
	if err != nil {
		s.log.Error("weekly average failed", zap.Error(err), zap.String("user_id", userID))
		return "⚠️ Could not read your history, try again."
	}
	if week.DaysWithData == 0 {
		return "No data yet 🙂"
	}
	return fmt.Sprintf(
		"📊 Last %d days (%d with entries)\n🔥 %.0f kcal\n🥩 %.0f g\n🥑 %.0f g\n🍞 %.0f g",
		summaryWindowDays,
		week.DaysWithData,
		week.Average.Calories,
		week.Average.Protein,
		week.Average.Fat,
		week.Average.Carbs,
	)
}

// handlePhoto stores the photo and asks for a description. A new photo always
// wins over any pending exchange; there is no queue of photos per user.
func (s *Service) handlePhoto(photo []byte, sess *sessiondomain.Session) string {
	sess.Reset()
	sess.PendingPhoto = photo
	sess.State = sessiondomain.StateAwaitingDescription
	return "📸 Photo received! Now describe what's in it."
}

func (s *Service) handleText(ctx context.Context, ev conversationdomain.Event, sess *sessiondomain.Session) string {
	switch sess.State {
	case sessiondomain.StateAwaitingDescription:
		return s.handleDescription(ctx, ev, sess)
	case sessiondomain.StateAwaitingQuantity:
		return s.handleQuantity(ctx, ev, sess)
	default:
		return s.handleDirectText(ctx, ev)
	}
}

// handleDirectText is the photo-less path: identify from text and apply the
// calorie estimate to today's totals immediately.
func (s *Service) handleDirectText(ctx context.Context, ev conversationdomain.Event) string {
	est, err := s.gateway.Identify(ctx, ev.Text, nil)
	if err != nil {
		return "🤔 I couldn't recognize that — try rephrasing."
	}

	delta := s.quantityDelta(est, nil, est.Grams)

	totals, err := s.applyDelta(ctx, ev.UserID, delta)
	if err != nil {
		return "⚠️ Could not save, try again."
	}
	return fmt.Sprintf("🍽️ %s: +%.0f kcal\n%s", est.Name, delta.Calories, s.formatTotals(totals))
}

// handleDescription pairs the pending photo with the user's description. On
// recognition failure the photo is preserved so a garbled description never
// costs the user their upload.
func (s *Service) handleDescription(ctx context.Context, ev conversationdomain.Event, sess *sessiondomain.Session) string {
	est, err := s.gateway.Identify(ctx, ev.Text, sess.PendingPhoto)
	if err != nil {
		return "🤔 I couldn't recognize that — describe the meal again."
	}

	comp, err := s.gateway.LookupComposition(ctx, est.Name)
	if err != nil {
		if est.Calories <= 0 {
			// No composition and no calorie figure: nothing to apply later,
			// keep the photo and let the user retry.
			return "🤔 I couldn't look that food up — describe the meal again."
		}
		comp = nil
	}

	sess.PendingPhoto = nil
	sess.PendingEstimate = est
	sess.PendingComposition = comp
	sess.State = sessiondomain.StateAwaitingQuantity

	if est.Grams > 0 {
		return fmt.Sprintf("🍽️ %s\n📏 Estimated: %.0fg\nType the real amount in grams, or 'ok'", est.Name, est.Grams)
	}
	return fmt.Sprintf("🍽️ %s\nType the amount in grams, or 'ok' to log it as is", est.Name)
}

func (s *Service) handleQuantity(ctx context.Context, ev conversationdomain.Event, sess *sessiondomain.Session) string {
	text := strings.TrimSpace(ev.Text)
	est := sess.PendingEstimate
	if est == nil {
		sess.Reset()
		return "Send a meal photo or description to get started."
	}

	var grams float64
	switch {
	case text == "" || strings.EqualFold(text, "ok"):
		grams = est.Grams
	default:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(text), "g"), 64)
		if err != nil || parsed <= 0 {
			return "Please send the amount as a number of grams, or 'ok'."
		}
		grams = parsed
	}

	delta := s.quantityDelta(est, sess.PendingComposition, grams)

	totals, err := s.applyDelta(ctx, ev.UserID, delta)
	if err != nil {
		// Session kept so the user can re-confirm once saving works again.
		return "⚠️ Could not save, try again."
	}

	name := est.Name
	sess.Reset()
	return fmt.Sprintf("🍽️ %s: +%.0f kcal\n%s", name, delta.Calories, s.formatTotals(totals))
}

// quantityDelta scales the per-100g profile by grams/100, preferring the
// composition lookup, then provider-supplied macros, then the calorie-only
// estimate when no profile is available at all. Provider macro profiles carry
// no energy figure, so portion calories fill the gap unscaled.
func (s *Service) quantityDelta(est *recognitiondomain.FoodEstimate, comp *recognitiondomain.MacroProfile, grams float64) ledgerdomain.DayTotals {
	profile := comp
	if profile == nil {
		profile = est.PerHundred
	}
	if profile == nil || grams <= 0 {
		return ledgerdomain.DayTotals{Calories: est.Calories}
	}

	delta := profileTotals(*profile).Scale(grams / 100)
	if delta.Calories == 0 {
		delta.Calories = est.Calories
	}
	return delta
}

func (s *Service) applyDelta(ctx context.Context, userID string, delta ledgerdomain.DayTotals) (ledgerdomain.DayTotals, error) {
	today := ledgerdomain.DayOf(s.clock.Now())
	totals, err := s.ledger.Add(ctx, userID, today, delta)
	if err != nil {
		s.metrics.LedgerWriteErrors.Inc()
		s.log.Error("ledger add failed", zap.Error(err), zap.String("user_id", userID))
		if !errors.Is(err, ledgerdomain.ErrPersistFailed) {
			s.log.Warn("unexpected ledger error class", zap.Error(err))
		}
		return ledgerdomain.DayTotals{}, err
	}
	return totals, nil
}

func (s *Service) formatTotals(t ledgerdomain.DayTotals) string {
	return fmt.Sprintf(
		"🔥 %.0f/%.0f kcal\n🥩 %.0f/%.0f g\n🥑 %.0f/%.0f g\n🍞 %.0f/%.0f g",
		t.Calories, s.target.Calories,
		t.Protein, s.target.Protein,
		t.Fat, s.target.Fat,
		t.Carbs, s.target.Carbs,
	)
}

func profileTotals(p recognitiondomain.MacroProfile) ledgerdomain.DayTotals {
	return ledgerdomain.DayTotals{
		Calories: p.Calories,
		Protein:  p.Protein,
		Fat:      p.Fat,
		Carbs:    p.Carbs,
	}
}
