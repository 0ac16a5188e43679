package service

import (
	"context"
	"course_platform/internal/config"
	"course_platform/internal/model"
	"course_platform/internal/util"
	"encoding/json"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const EventCheckoutSessionCompleted = "checkout.session.completed"

// CheckoutRequest 创建支付会话所需的单个商品信息
type CheckoutRequest struct {
	ProductName string
	ImageURL    string
	UnitAmount  float64
	SuccessURL  string
	CancelURL   string
	UserID      uint
	CourseID    uint
}

// PaymentProvider is the payment collaborator. ParseWebhookEvent verifies the
// signature and returns the parsed event.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*model.CheckoutSession, error)
	ParseWebhookEvent(payload []byte, signature string) (*model.PaymentEvent, error)
}

type StripeProvider struct {
	API           *client.API
	Currency      string
	WebhookSecret string
}

func NewStripeProvider(cfg *config.PaymentConfig) *StripeProvider {
	sc := &client.API{}
	sc.Init(cfg.StripeSecretKey, nil)

	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	return &StripeProvider{
		API:           sc,
		Currency:      currency,
		WebhookSecret: cfg.WebhookSecret,
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*model.CheckoutSession, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(req.ProductName),
	}
	if req.ImageURL != "" {
		productData.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(p.Currency),
					ProductData: productData,
					UnitAmount:  stripe.Int64(toMinorUnits(req.UnitAmount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("userId", strconv.FormatUint(uint64(req.UserID), 10))
	params.AddMetadata("courseId", strconv.FormatUint(uint64(req.CourseID), 10))

	session, err := p.API.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	if session == nil || session.URL == "" {
		return nil, util.NewUpstreamError("Error creating checkout session", nil)
	}

	return &model.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}

func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, util.NewValidationError("Webhook error: " + err.Error())
	}

	result := &model.PaymentEvent{Type: string(event.Type)}
	if result.Type != EventCheckoutSessionCompleted {
		return result, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, util.NewValidationError("Webhook error: malformed checkout session")
	}

	userID, err := strconv.ParseUint(session.Metadata["userId"], 10, 64)
	if err != nil {
		return nil, util.NewValidationError("Webhook error: missing userId metadata")
	}
	courseID, err := strconv.ParseUint(session.Metadata["courseId"], 10, 64)
	if err != nil {
		return nil, util.NewValidationError("Webhook error: missing courseId metadata")
	}

	result.SessionID = session.ID
	result.UserID = uint(userID)
	result.CourseID = uint(courseID)
	result.AmountTotal = fromMinorUnits(session.AmountTotal)
	return result, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
