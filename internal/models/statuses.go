package models

type SubscriptionStatus string
type PaymentStatus string
type PaymentProvider string
type PlanInterval string
type Gender string
type AiGenerationStatus string

const (
	SubscriptionStatusTrial      SubscriptionStatus = "trial"
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusCancelled  SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired    SubscriptionStatus = "expired"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid     SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderPaypal PaymentProvider = "paypal"

	PlanIntervalMonthly  PlanInterval = "monthly"
	PlanIntervalAnnually PlanInterval = "annually"

	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"

	AiGenerationStatusNone       AiGenerationStatus = "none"
	AiGenerationStatusInProgress AiGenerationStatus = "in_progress"
	AiGenerationStatusCompleted  AiGenerationStatus = "completed"
	AiGenerationStatusFailed     AiGenerationStatus = "failed"
)
