package model

import "time"

// CouponKind describes what a coupon grants.
type CouponKind string

const (
	CouponKindDiscount5000  CouponKind = "DISCOUNT_5000"
	CouponKindDiscount10000 CouponKind = "DISCOUNT_10000"
	CouponKindFreeDrink     CouponKind = "FREE_DRINK"
	CouponKindPercent50     CouponKind = "PERCENT_50"
	CouponKindCustom        CouponKind = "CUSTOM"
)

// CouponStatus only moves forward: ACTIVE -> USED or ACTIVE -> EXPIRED.
type CouponStatus string

const (
	CouponStatusActive  CouponStatus = "ACTIVE"
	CouponStatusUsed    CouponStatus = "USED"
	CouponStatusExpired CouponStatus = "EXPIRED"
)

// CouponTemplate is the admin-defined pool coupons are drawn from.
// A nil MaxIssueCount means the pool is unlimited.
type CouponTemplate struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category"`
	Kind           CouponKind `json:"kind"`
	DiscountAmount int        `json:"discount_amount"`
	MaxIssueCount  *int       `json:"max_issue_count"`
	IssuedCount    int        `json:"issued_count"`
	IsActive       bool       `json:"is_active"`
}

// HasStock reports whether another coupon may be drawn from the template.
func (t *CouponTemplate) HasStock() bool {
	return t.MaxIssueCount == nil || t.IssuedCount < *t.MaxIssueCount
}

// Coupon is a single-use credential. Category, Kind and DiscountAmount are copied from
// the template at issuance and never follow later template edits.
type Coupon struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	EventID        string       `json:"event_id"`
	TemplateID     string       `json:"template_id"`
	TemplateName   string       `json:"name,omitempty"`
	Category       Category     `json:"category"`
	Kind           CouponKind   `json:"kind"`
	DiscountAmount int          `json:"discount_amount"`
	Code           string       `json:"code"`
	Status         CouponStatus `json:"status"`
	ValidFrom      time.Time    `json:"valid_from"`
	ValidUntil     time.Time    `json:"valid_until"`
	MerchantID     *string      `json:"merchant_id,omitempty"`
	UsedAt         *time.Time   `json:"used_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ValidAt reports whether t falls inside [ValidFrom, ValidUntil].
func (c *Coupon) ValidAt(t time.Time) bool {
	return !t.Before(c.ValidFrom) && !t.After(c.ValidUntil)
}

// IssuedCoupon is the response for a freshly issued coupon.
type IssuedCoupon struct {
	Coupon             *Coupon           `json:"coupon"`
	AvailableMerchants []MerchantSummary `json:"available_merchants"`
}

// CouponDetail is a coupon together with the merchants that can redeem it.
type CouponDetail struct {
	*Coupon
	AvailableMerchants []MerchantSummary `json:"available_merchants"`
}

// CouponSummary is what a merchant sees when validating a coupon.
type CouponSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category"`
	Kind           CouponKind `json:"kind"`
	DiscountAmount int        `json:"discount_amount"`
	CustomerName   string     `json:"customer_name"`
	ValidUntil     time.Time  `json:"valid_until"`
}

// CouponValidation is the soft result of a merchant precheck.
type CouponValidation struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
	Coupon *CouponSummary `json:"coupon,omitempty"`
}

// CouponUsage is returned after a coupon has been redeemed.
type CouponUsage struct {
	CouponID       string    `json:"coupon_id"`
	UsedAt         time.Time `json:"used_at"`
	DiscountAmount int       `json:"discount_amount"`
}

// CouponUsageRecord is one line of a merchant's redemption history.
type CouponUsageRecord struct {
	CouponID       string     `json:"coupon_id"`
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	Kind           CouponKind `json:"kind"`
	DiscountAmount int        `json:"discount_amount"`
	CustomerName   string     `json:"customer_name"`
	UsedAt         time.Time  `json:"used_at"`
}

// CouponFilter narrows a user's coupon listing.
type CouponFilter struct {
	EventID  string       `query:"event_id" validate:"omitempty,uuid"`
	Status   CouponStatus `query:"status" validate:"omitempty,couponstatus"`
	Category Category     `query:"category" validate:"omitempty,category"`
}

// ValidateCouponRequest is the DTO for POST /api/merchant/coupons/validate.
type ValidateCouponRequest struct {
	Code string `json:"code" validate:"required,notblank,max=64"`
}
