package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

func TestNew(t *testing.T) {
	require.NotNil(t, New())
}

func TestNotblank_ScanAndRedeemCodes(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		input   any
		wantErr bool
	}{
		{name: "qr code", input: model.VisitRequest{QRCode: "QR-GATE-A"}},
		{name: "qr code padded", input: model.VisitRequest{QRCode: "  QR-GATE-A  "}},
		{name: "qr code spaces only", input: model.VisitRequest{QRCode: "   "}, wantErr: true},
		{name: "qr code tabs and newlines", input: model.VisitRequest{QRCode: " \t\n "}, wantErr: true},
		{name: "coupon code", input: model.ValidateCouponRequest{Code: "ER-7K2M9Q"}},
		{name: "coupon code blank", input: model.ValidateCouponRequest{Code: "\t"}, wantErr: true},
		{name: "coupon code empty", input: model.ValidateCouponRequest{Code: ""}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))
			assert.Contains(t, []string{"required", "notblank"}, ve[0].Tag())
		})
	}
}

func TestEnumValidators(t *testing.T) {
	v := New()

	type request struct {
		Category model.Category     `json:"category" validate:"required,category"`
		GameType model.GameType     `json:"game_type" validate:"omitempty,gametype"`
		Status   model.CouponStatus `query:"status" validate:"omitempty,couponstatus"`
	}

	tests := []struct {
		name      string
		input     request
		wantField string
		wantTag   string
	}{
		{name: "all valid", input: request{Category: model.CategoryCafe, GameType: model.GameTypeSlot, Status: model.CouponStatusUsed}},
		{name: "optional fields empty", input: request{Category: model.CategoryOther}},
		{name: "unknown category", input: request{Category: "BAR"}, wantField: "category", wantTag: "category"},
		{name: "lowercase category", input: request{Category: "cafe"}, wantField: "category", wantTag: "category"},
		{name: "missing category", input: request{}, wantField: "category", wantTag: "required"},
		{name: "unknown game", input: request{Category: model.CategoryCafe, GameType: "DICE"}, wantField: "game_type", wantTag: "gametype"},
		{name: "unknown status", input: request{Category: model.CategoryCafe, Status: "PENDING"}, wantField: "status", wantTag: "couponstatus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var ve validator.ValidationErrors
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve, 1)
			assert.Equal(t, tt.wantField, ve[0].Field(), "fields are reported by wire name")
			assert.Equal(t, tt.wantTag, ve[0].Tag())
		})
	}
}

func TestModelRequests(t *testing.T) {
	v := New()
	lat := 37.5
	badLng := 200.0

	assert.NoError(t, v.Struct(model.VisitRequest{QRCode: "QR-1", Latitude: &lat}))
	assert.Error(t, v.Struct(model.VisitRequest{QRCode: "  "}))
	assert.Error(t, v.Struct(model.VisitRequest{QRCode: "QR-1", Longitude: &badLng}))

	assert.NoError(t, v.Struct(model.PlayGameRequest{GameType: model.GameTypeCard}))
	assert.Error(t, v.Struct(model.PlayGameRequest{GameType: "PINBALL"}))

	assert.NoError(t, v.Struct(model.SelectCategoryRequest{Category: model.CategoryRestaurant}))
	assert.Error(t, v.Struct(model.SelectCategoryRequest{Category: model.CategoryRestaurant, GameType: "PINBALL"}))

	assert.NoError(t, v.Struct(model.CouponFilter{Status: model.CouponStatusExpired}))
	assert.Error(t, v.Struct(model.CouponFilter{EventID: "not-a-uuid"}))

	assert.Error(t, v.Struct(model.RedeemRewardRequest{PostID: "p-1"}))
	assert.Error(t, v.Struct(model.ValidateCouponRequest{Code: ""}))

	assert.NoError(t, v.Struct(model.JoinEventRequest{UserType: model.UserTypeRunner}))
	assert.Error(t, v.Struct(model.JoinEventRequest{UserType: "runner"}))
	assert.Error(t, v.Struct(model.JoinEventRequest{}))

	assert.NoError(t, v.Struct(model.FinishRequest{FinishCode: "FIN-2025"}))
	assert.Error(t, v.Struct(model.FinishRequest{FinishCode: " "}))
	assert.Error(t, v.Struct(model.PostFilter{Category: "BAR"}))
}
