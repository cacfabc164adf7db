// Package billing реализует имитацию оплаты: оформление тарифа и докупку звонков.
// Реальные платежи не проводятся.
package billing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/accountable/internal/models"
)

// MaxTopUpCalls — максимальное число звонков в одной докупке.
const MaxTopUpCalls = 500

// Repository изменяет тариф и баланс звонков.
type Repository interface {
	SetTier(ctx context.Context, id string, tier models.Tier, calls int) (models.Profile, error)
	AddCalls(ctx context.Context, id string, calls int) (models.Profile, error)
}

// Receipt — результат имитированной оплаты.
type Receipt struct {
	Profile     models.Profile `json:"profile"`
	AmountCents int            `json:"amount_cents"`
}

// Service проводит имитированные оплаты.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Subscribe переводит пользователя на тариф и начисляет звонки тарифа.
func (s *Service) Subscribe(ctx context.Context, userID string, tier models.Tier) (Receipt, error) {
	const op = "billing.Subscribe"
	plan, ok := models.PlanFor(tier)
	if !ok {
		return Receipt{}, fmt.Errorf("%s: %w: unknown tier %q", op, models.ErrValidation, tier)
	}
	p, err := s.repo.SetTier(ctx, userID, plan.Tier, plan.Calls)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("simulated subscription",
		slog.String("user_id", userID),
		slog.String("tier", string(plan.Tier)),
		slog.Int("calls", plan.Calls),
	)
	return Receipt{Profile: p, AmountCents: plan.PriceMonthly * 100}, nil
}

// TopUp докупает звонки по TopUpPriceCents за звонок.
func (s *Service) TopUp(ctx context.Context, userID string, calls int) (Receipt, error) {
	const op = "billing.TopUp"
	if calls < 1 || calls > MaxTopUpCalls {
		return Receipt{}, fmt.Errorf("%s: %w: calls must be between 1 and %d", op, models.ErrValidation, MaxTopUpCalls)
	}
	p, err := s.repo.AddCalls(ctx, userID, calls)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("simulated top-up", slog.String("user_id", userID), slog.Int("calls", calls))
	return Receipt{Profile: p, AmountCents: calls * models.TopUpPriceCents}, nil
}
