package projection

import (
	"math"
	"testing"
)

func TestCreditUtilization(t *testing.T) {
	report := CreditUtilization([]CreditCard{
		{Name: "Amex Gold", Issuer: "Amex", Available: 7000, Owing: 3000, Limit: 10000},
		{Name: "Amex Plat", Issuer: "Amex", Available: 4000, Owing: 6000, Limit: 10000},
		{Name: "Chase Ink", Issuer: "Chase", Available: 500, Owing: 1500, Limit: 2000},
	})

	if len(report.Issuers) != 2 {
		t.Fatalf("expected 2 issuers, got %d", len(report.Issuers))
	}

	amex := report.Issuers[0]
	if amex.Issuer != "Amex" || amex.Owing != 9000 || amex.Limit != 20000 {
		t.Errorf("amex aggregate = %+v", amex)
	}
	if amex.Utilization == nil || math.Abs(*amex.Utilization-45) > 1e-9 {
		t.Errorf("amex utilization = %v, expected 45%%", amex.Utilization)
	}

	if report.Overall.Owing != 10500 || report.Overall.Limit != 22000 {
		t.Errorf("overall = %+v", report.Overall)
	}
	if report.Overall.Utilization == nil {
		t.Fatal("overall utilization should be defined")
	}
}

func TestCreditUtilizationZeroLimitUndefined(t *testing.T) {
	report := CreditUtilization([]CreditCard{
		{Name: "Charge card", Issuer: "Amex", Owing: 3000, Limit: 0},
	})

	if report.Issuers[0].Utilization != nil {
		t.Errorf("zero limit utilization = %v, expected undefined", *report.Issuers[0].Utilization)
	}
	if report.Overall.Utilization != nil {
		t.Errorf("overall utilization with zero total limit should be undefined")
	}
}

func TestCreditUtilizationUnknownIssuerBucket(t *testing.T) {
	report := CreditUtilization([]CreditCard{
		{Name: "Mystery card", Issuer: "", Owing: 100, Limit: 1000},
	})

	if report.Issuers[0].Issuer != "Unknown" {
		t.Errorf("blank issuer bucketed as %q, expected Unknown", report.Issuers[0].Issuer)
	}
}
