package projection

import (
	"sort"

	"github.com/buyerboard/finance-engine/pkg/constants"
	"github.com/buyerboard/finance-engine/pkg/normalize"
)

// IssuerCredit aggregates one issuer's cards. Utilization is owing over
// limit as a percentage; nil when the limit sums to zero, since the ratio is
// undefined and must render as a placeholder rather than 0% or an error.
type IssuerCredit struct {
	Issuer      string   `json:"issuer"`
	Available   float64  `json:"available"`
	Owing       float64  `json:"owing"`
	Limit       float64  `json:"limit"`
	Utilization *float64 `json:"utilization,omitempty"`
}

// CreditReport is the credit-line view: per-issuer aggregates plus the
// overall position.
type CreditReport struct {
	Issuers []IssuerCredit `json:"issuers"`
	Overall IssuerCredit   `json:"overall"`
}

// CreditUtilization aggregates credit cards per issuer, sorted by issuer
// name. Cards with a blank issuer aggregate under the Unknown bucket.
func CreditUtilization(cards []CreditCard) CreditReport {
	byIssuer := make(map[string]*IssuerCredit)
	overall := IssuerCredit{Issuer: "Overall"}

	for _, card := range cards {
		issuer := normalize.Entity(card.Issuer, constants.UnknownEntity)
		agg, ok := byIssuer[issuer]
		if !ok {
			agg = &IssuerCredit{Issuer: issuer}
			byIssuer[issuer] = agg
		}
		agg.Available += card.Available
		agg.Owing += card.Owing
		agg.Limit += card.Limit

		overall.Available += card.Available
		overall.Owing += card.Owing
		overall.Limit += card.Limit
	}

	names := make([]string, 0, len(byIssuer))
	for name := range byIssuer {
		names = append(names, name)
	}
	sort.Strings(names)

	issuers := make([]IssuerCredit, 0, len(names))
	for _, name := range names {
		agg := *byIssuer[name]
		agg.Utilization = utilization(agg.Owing, agg.Limit)
		issuers = append(issuers, agg)
	}
	overall.Utilization = utilization(overall.Owing, overall.Limit)

	return CreditReport{Issuers: issuers, Overall: overall}
}

func utilization(owing, limit float64) *float64 {
	if limit == 0 {
		return nil
	}
	pct := owing / limit * constants.PercentageMultiplier
	return &pct
}
