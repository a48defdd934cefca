package scoring

type Choice string

const (
	ChoiceOrder  Choice = "order"
	ChoiceCook   Choice = "cook"
	ChoiceEither Choice = "either"
)

const (
	fastETAMinutes      = 25
	orderPremiumFactor  = 1.6
	cookDiscountFactor  = 0.7
	recommendOrderText  = "Order it if you value speed; cost premium is reasonable."
	recommendCookText   = "Cook it - cheaper and likely healthier."
	recommendEitherText = "Either works; choose based on time vs. cost."
)

// Decide applies the rules in order: fast and not much pricier means order, much cheaper to cook
// means cook, anything else is a toss-up.
func Decide(orderCost float64, orderETA int, cookCost float64) Choice {
	switch {
	case orderETA <= fastETAMinutes && orderCost <= cookCost*orderPremiumFactor:
		return ChoiceOrder
	case cookCost <= orderCost*cookDiscountFactor:
		return ChoiceCook
	default:
		return ChoiceEither
	}
}

// Text is the human readable recommendation for c.
func (c Choice) Text() string {
	switch c {
	case ChoiceOrder:
		return recommendOrderText
	case ChoiceCook:
		return recommendCookText
	default:
		return recommendEitherText
	}
}
