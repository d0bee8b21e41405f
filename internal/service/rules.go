package service

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// DefaultCouponEndTime is the daily cutoff used when an event does not configure one.
const DefaultCouponEndTime = "23:59"

// defaultCustomerName stands in for users without a display name.
const defaultCustomerName = "고객"

// ValidityWindow computes the coupon window for an issuance at now.
// from is the start of now's calendar day in loc. until is the calendar day of the event's
// end date in loc, at its daily cutoff clock time. Both are returned in UTC.
// Returns ErrCouponPeriodEnded when the cutoff is already behind the start of today.
func ValidityWindow(now time.Time, loc *time.Location, event *model.Event) (from, until time.Time, err error) {
	local := now.In(loc)
	from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	cutoff := event.CouponEndTime
	if cutoff == "" {
		cutoff = DefaultCouponEndTime
	}
	clock, err := time.Parse("15:04", cutoff)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse coupon end time %q: %w", cutoff, err)
	}

	y, m, d := event.EndDate.In(loc).Date()
	until = time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc)
	if until.Before(from) {
		return time.Time{}, time.Time{}, ErrCouponPeriodEnded
	}

	return from.UTC(), until.UTC(), nil
}

// MaskName hides all but the edges of a customer's name for display to merchants.
func MaskName(name string) string {
	if name == "" {
		name = defaultCustomerName
	}
	n := utf8.RuneCountInString(name)
	if n == 1 {
		return name + "***"
	}
	first, _ := utf8.DecodeRuneInString(name)
	masked := string(first) + "***"
	if n > 2 {
		last, _ := utf8.DecodeLastRuneInString(name)
		masked += string(last)
	}
	return masked
}

// claimable returns the active templates with stock whose threshold is met and whose
// tier has not been claimed, ordered by required stamps.
func claimable(templates []model.RewardTemplate, stamps int, claimed []model.RewardTier) []model.RewardTemplate {
	done := make(map[model.RewardTier]bool, len(claimed))
	for _, t := range claimed {
		done[t] = true
	}

	out := []model.RewardTemplate{}
	for _, t := range templates {
		if !t.IsActive || t.RemainingQuantity <= 0 || done[t.Tier] {
			continue
		}
		if stamps >= t.RequiredStamps {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RequiredStamps < out[j].RequiredStamps })
	return out
}

// nextReward returns the lowest active tier the user has not reached yet, or nil.
func nextReward(templates []model.RewardTemplate, stamps int) *model.NextReward {
	var next *model.RewardTemplate
	for i := range templates {
		t := &templates[i]
		if !t.IsActive || t.RequiredStamps <= stamps {
			continue
		}
		if next == nil || t.RequiredStamps < next.RequiredStamps {
			next = t
		}
	}
	if next == nil {
		return nil
	}
	return &model.NextReward{
		Tier:           next.Tier,
		Name:           next.Name,
		RequiredStamps: next.RequiredStamps,
		Remaining:      next.RequiredStamps - stamps,
	}
}
