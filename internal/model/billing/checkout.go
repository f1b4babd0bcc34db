package billing

// Session is the hosted checkout session returned to the browser.
type Session struct {
	URL string `json:"url"`
}

// Plan describes the single subscription line item offered at checkout.
type Plan struct {
	ProductName string
	Currency    string
	UnitAmount  int64 // minor units
	Interval    string
	Quantity    int64
}

// MonthlyPlan is the fixed $20.00/month subscription.
func MonthlyPlan() Plan {
	return Plan{
		ProductName: "AI Content Generation Subscription",
		Currency:    "usd",
		UnitAmount:  2000,
		Interval:    "month",
		Quantity:    1,
	}
}
