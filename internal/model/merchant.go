package model

// Category is the kind of business a merchant runs. Coupons are bound to one category.
type Category string

const (
	CategoryRestaurant    Category = "RESTAURANT"
	CategoryCafe          Category = "CAFE"
	CategoryPerformance   Category = "PERFORMANCE"
	CategoryAccommodation Category = "ACCOMMODATION"
	CategoryOther         Category = "OTHER"
)

// Categories lists every merchant category.
var Categories = []Category{CategoryRestaurant, CategoryCafe, CategoryPerformance, CategoryAccommodation, CategoryOther}

// MerchantStatus tracks the approval workflow of a merchant.
type MerchantStatus string

const (
	MerchantStatusPending   MerchantStatus = "PENDING"
	MerchantStatusApproved  MerchantStatus = "APPROVED"
	MerchantStatusRejected  MerchantStatus = "REJECTED"
	MerchantStatusSuspended MerchantStatus = "SUSPENDED"
)

// Merchant is a business that redeems coupons.
type Merchant struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Category Category       `json:"category"`
	Status   MerchantStatus `json:"status"`
	Address  string         `json:"address"`
	Phone    string         `json:"phone,omitempty"`
}

// MerchantSummary is the subset of merchant data shown next to a coupon.
type MerchantSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}
