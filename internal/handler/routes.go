package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/middleware"
)

// Handlers groups every HTTP handler of the API.
type Handlers struct {
	Health   *HealthHandler
	Event    *EventHandler
	Visit    *VisitHandler
	Game     *GameHandler
	Coupon   *CouponHandler
	Merchant *MerchantHandler
	Reward   *RewardHandler
}

// Register mounts the API routes. auth authenticates every /api route and scanLimit
// guards QR scans; a nil scanLimit mounts scans unthrottled.
func Register(app fiber.Router, h Handlers, auth fiber.Handler, scanLimit fiber.Handler) {
	app.Get("/health", h.Health.Check)

	api := app.Group("/api", auth)

	user := middleware.RequireRole(middleware.RoleUser, middleware.RoleAdmin)
	api.Post("/events/:id/join", user, h.Event.JoinEvent)
	api.Get("/events/:id/my-status", user, h.Event.MyStatus)
	api.Post("/events/:id/finish", user, h.Event.VerifyFinish)
	api.Get("/events/:id/posts", user, h.Event.ListPosts)
	if scanLimit != nil {
		api.Post("/posts/:id/visit", user, scanLimit, h.Visit.RecordVisit)
	} else {
		api.Post("/posts/:id/visit", user, h.Visit.RecordVisit)
	}
	api.Post("/games/:id/play", user, h.Game.Play)
	api.Post("/games/:id/select-category", user, h.Game.SelectCategory)
	api.Get("/coupons", user, h.Coupon.ListCoupons)
	api.Get("/coupons/:id", user, h.Coupon.GetCoupon)
	api.Get("/events/:id/stamps", user, h.Reward.StampStatus)
	api.Get("/events/:id/rewards/claimable", user, h.Reward.Claimable)
	api.Get("/events/:id/rewards", user, h.Reward.ListRewards)
	api.Post("/rewards/templates/:id/claim", user, h.Reward.ClaimReward)
	api.Post("/rewards/:id/redeem", user, h.Reward.RedeemReward)

	merchants := api.Group("/merchant", middleware.RequireRole(middleware.RoleMerchant))
	merchants.Post("/coupons/validate", h.Merchant.ValidateCoupon)
	merchants.Post("/coupons/:id/use", h.Merchant.UseCoupon)
	merchants.Get("/coupons", h.Merchant.UsageHistory)
}
