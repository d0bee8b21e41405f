package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/events"
	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// Reasons reported by ValidateCoupon. They match the messages of the errors UseCoupon returns.
const (
	ReasonNotFound         = "Coupon not found"
	ReasonNotActive        = "Coupon already used or expired"
	ReasonOutsideWindow    = "Coupon not valid at this time"
	ReasonMerchantNotFound = "Merchant not found"
	ReasonWrongCategory    = "Coupon not valid for this merchant category"
	ReasonNotParticipating = "Merchant not participating in this event"
)

// CouponService provides business logic for coupon lookup and redemption.
type CouponService struct {
	coupons   CouponRepositoryInterface
	merchants MerchantRepositoryInterface
	users     UserRepositoryInterface
	publisher Publisher
	now       func() time.Time
}

// NewCouponService creates a new CouponService with the given repositories.
func NewCouponService(repos Repositories, publisher Publisher) *CouponService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &CouponService{
		coupons:   repos.Coupons,
		merchants: repos.Merchants,
		users:     repos.Users,
		publisher: publisher,
		now:       time.Now,
	}
}

// check runs the redemption rules in order and returns the first one broken, or nil.
// The error return is reserved for infrastructure failures.
func (s *CouponService) check(ctx context.Context, merchantID string, coupon *model.Coupon, now time.Time) (*Error, error) {
	if coupon == nil {
		return ErrCouponNotFound, nil
	}
	if coupon.Status != model.CouponStatusActive {
		return ErrCouponNotActive, nil
	}
	if !coupon.ValidAt(now) {
		return ErrCouponOutsideWindow, nil
	}

	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("get merchant: %w", err)
	}
	if merchant == nil {
		return ErrMerchantNotFound, nil
	}
	if merchant.Category != coupon.Category {
		return ErrWrongCategory, nil
	}

	ok, err := s.merchants.IsParticipating(ctx, merchantID, coupon.EventID)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if !ok {
		return ErrNotParticipating, nil
	}
	return nil, nil
}

// ValidateCoupon is the merchant precheck before redemption. Rule failures are reported
// in the result, not as errors; only infrastructure failures return an error.
// A valid result carries the coupon summary with the customer's name masked.
func (s *CouponService) ValidateCoupon(ctx context.Context, merchantID, code string) (*model.CouponValidation, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get coupon by code: %w", err)
	}

	failure, err := s.check(ctx, merchantID, coupon, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return &model.CouponValidation{Valid: false, Reason: reasonFor(failure)}, nil
	}

	name, err := s.users.GetName(ctx, coupon.UserID)
	if err != nil {
		return nil, fmt.Errorf("get customer name: %w", err)
	}

	return &model.CouponValidation{
		Valid: true,
		Coupon: &model.CouponSummary{
			ID:             coupon.ID,
			Name:           coupon.TemplateName,
			Category:       coupon.Category,
			Kind:           coupon.Kind,
			DiscountAmount: coupon.DiscountAmount,
			CustomerName:   MaskName(name),
			ValidUntil:     coupon.ValidUntil,
		},
	}, nil
}

func reasonFor(e *Error) string {
	switch e {
	case ErrCouponNotFound:
		return ReasonNotFound
	case ErrCouponNotActive:
		return ReasonNotActive
	case ErrCouponOutsideWindow:
		return ReasonOutsideWindow
	case ErrMerchantNotFound:
		return ReasonMerchantNotFound
	case ErrWrongCategory:
		return ReasonWrongCategory
	case ErrNotParticipating:
		return ReasonNotParticipating
	}
	return e.Msg
}

// UseCoupon redeems a coupon at a merchant. The status change is a conditional update,
// so of any number of concurrent attempts exactly one succeeds.
// Returns:
//   - ErrCouponNotFound if the coupon doesn't exist
//   - ErrCouponNotActive if the coupon is already used or expired, or another redemption won
//   - ErrCouponOutsideWindow if now is outside the coupon's validity window
//   - ErrMerchantNotFound if the merchant doesn't exist
//   - ErrWrongCategory if the merchant's category differs from the coupon's
//   - ErrNotParticipating if the merchant is not actively linked to the coupon's event
func (s *CouponService) UseCoupon(ctx context.Context, merchantID, couponID string) (*model.CouponUsage, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}

	now := s.now().UTC()
	failure, err := s.check(ctx, merchantID, coupon, now)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, failure
	}

	if err := s.coupons.MarkUsed(ctx, coupon.ID, merchantID, now); err != nil {
		if errors.Is(err, ErrCouponNotActive) {
			return nil, ErrCouponNotActive
		}
		return nil, fmt.Errorf("mark coupon used: %w", err)
	}

	publish(ctx, s.publisher, events.New(events.TypeCouponUsed, coupon.ID, coupon.UserID, coupon.EventID, now, map[string]any{
		"merchant_id":     merchantID,
		"category":        coupon.Category,
		"discount_amount": coupon.DiscountAmount,
	}))

	return &model.CouponUsage{
		CouponID:       coupon.ID,
		UsedAt:         now,
		DiscountAmount: coupon.DiscountAmount,
	}, nil
}

// ListCoupons returns a user's coupons, newest first.
func (s *CouponService) ListCoupons(ctx context.Context, userID string, filter model.CouponFilter) ([]model.Coupon, error) {
	coupons, err := s.coupons.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	return coupons, nil
}

// GetCoupon returns one of the user's coupons together with the merchants that accept it.
// Returns ErrCouponNotFound if the coupon doesn't exist and ErrCouponNotOwned if it
// belongs to another user.
func (s *CouponService) GetCoupon(ctx context.Context, userID, couponID string) (*model.CouponDetail, error) {
	coupon, err := s.coupons.GetByID(ctx, couponID)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if coupon.UserID != userID {
		return nil, ErrCouponNotOwned
	}

	merchants, err := s.merchants.ListAvailable(ctx, coupon.EventID, coupon.Category)
	if err != nil {
		return nil, fmt.Errorf("list available merchants: %w", err)
	}
	return &model.CouponDetail{Coupon: coupon, AvailableMerchants: merchants}, nil
}

// UsageHistory lists the coupons a merchant has redeemed, most recent first, with
// customer names masked. An empty eventID covers every event.
func (s *CouponService) UsageHistory(ctx context.Context, merchantID, eventID string) ([]model.CouponUsageRecord, error) {
	records, err := s.coupons.ListUsedByMerchant(ctx, merchantID, eventID)
	if err != nil {
		return nil, fmt.Errorf("list coupon usage: %w", err)
	}
	for i := range records {
		records[i].CustomerName = MaskName(records[i].CustomerName)
	}
	return records, nil
}

// ExpireCoupons moves every ACTIVE coupon whose window has closed to EXPIRED.
// Running it again is harmless.
func (s *CouponService) ExpireCoupons(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	n, err := s.coupons.ExpireBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expire coupons: %w", err)
	}
	if n > 0 {
		log.Info().Int64("expired", n).Msg("expired coupons")
		publish(ctx, s.publisher, events.New(events.TypeCouponsExpired, "", "", "", now, map[string]any{
			"count": n,
		}))
	}
	return n, nil
}
