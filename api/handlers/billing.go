package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healx-platform/healx-api/api"
	"github.com/healx-platform/healx-api/config"
	"github.com/healx-platform/healx-api/databases"
)

// Billing exported for testing purposes
type Billing struct {
	DB      databases.EmergencyDatabase
	BaseURL string
}

// CheckoutHandler creates a stripe checkout session for an emergency's cost.
// The emergency must be priced before checkout.
func (b Billing) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	emergency, err := b.DB.FindOne(ctx, bson.M{"_id": eID})
	if err != nil {
		config.ErrorStatus("failed to get emergency by ID", http.StatusNotFound, w, err)
		return
	}
	if emergency.Cost <= 0 {
		config.ErrorStatus("emergency has no cost to bill", http.StatusBadRequest, w,
			errors.New("cost not set"))
		return
	}

	// stripe amounts are in the smallest currency unit
	amount := int64(emergency.Cost * 100)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Emergency service " + emergency.EmergencyID),
						Description: stripe.String(fmt.Sprintf("Ambulance dispatch and care, %s emergency", emergency.EmergencyType)),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(b.BaseURL + "/billing/success?emergency=" + emergency.ID.Hex()),
		CancelURL:  stripe.String(b.BaseURL + "/billing/cancel?emergency=" + emergency.ID.Hex()),
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	resp, err := json.Marshal(map[string]string{
		"sessionId":   s.ID,
		"checkoutUrl": s.URL,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(resp)
}

type setCostRequest struct {
	Cost          float64 `json:"cost"`
	InsuranceInfo string  `json:"insuranceInfo"`
}

// SetCostHandler prices an emergency ahead of checkout
func (b Billing) SetCostHandler(w http.ResponseWriter, r *http.Request) {
	emergencyID := mux.Vars(r)["emergency_id"]

	eID, err := primitive.ObjectIDFromHex(emergencyID)
	if err != nil {
		config.ErrorStatus("emergency id is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	var body setCostRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if body.Cost <= 0 {
		config.ErrorStatus("cost must be positive", http.StatusBadRequest, w,
			fmt.Errorf("got cost %v", body.Cost))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	set := bson.M{"cost": body.Cost}
	if body.InsuranceInfo != "" {
		set["insuranceInfo"] = body.InsuranceInfo
	}

	emergency, err := b.DB.UpdateOne(ctx, bson.M{"_id": eID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to set emergency cost", http.StatusNotFound, w, err)
		return
	}

	resp, err := json.Marshal(emergency)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(resp)
}
