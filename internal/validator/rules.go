package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"nutriplan_backend/internal/models"
)

// registerCustomRules wires the domain enum checks into the validator.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-gender", validateGender)
	mustRegister("is-plan-interval", validatePlanInterval)
	mustRegister("is-subscription-status", validateSubscriptionStatus)
}

func validateGender(fl validator.FieldLevel) bool {
	switch models.Gender(fl.Field().String()) {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
		return true
	}
	return false
}

func validatePlanInterval(fl validator.FieldLevel) bool {
	switch models.PlanInterval(fl.Field().String()) {
	case models.PlanIntervalMonthly, models.PlanIntervalAnnually:
		return true
	}
	return false
}

func validateSubscriptionStatus(fl validator.FieldLevel) bool {
	switch models.SubscriptionStatus(fl.Field().String()) {
	case models.SubscriptionStatusTrial,
		models.SubscriptionStatusActive,
		models.SubscriptionStatusCancelled,
		models.SubscriptionStatusExpired,
		models.SubscriptionStatusPastDue,
		models.SubscriptionStatusUnpaid,
		models.SubscriptionStatusIncomplete:
		return true
	}
	return false
}
