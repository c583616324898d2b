package sec

import (
	"strings"
)

// Concept is a reported metric and the XBRL tags it is read from, in priority order
type Concept struct {
	Name string
	Unit string
	Tags []string
}

// Concepts are the metrics extracted from companyfacts
var Concepts = []Concept{
	{Name: "revenue", Unit: "USD", Tags: []string{"Revenues", "RevenueFromContractWithCustomerExcludingAssessedTax"}},
	{Name: "net_income", Unit: "USD", Tags: []string{"NetIncomeLoss", "ProfitLoss"}},
	{Name: "total_assets", Unit: "USD", Tags: []string{"Assets"}},
	{Name: "total_liabilities", Unit: "USD", Tags: []string{"Liabilities"}},
	{Name: "stockholders_equity", Unit: "USD", Tags: []string{"StockholdersEquity"}},
	{Name: "eps_basic", Unit: "USD/shares", Tags: []string{"EarningsPerShareBasic"}},
}

// CompanyFacts is the subset of the companyfacts document the agent reads
type CompanyFacts struct {
	CIK        int64  `json:"cik"`
	EntityName string `json:"entityName"`
	Facts      struct {
		USGAAP map[string]struct {
			Label string                `json:"label"`
			Units map[string][]FactUnit `json:"units"`
		} `json:"us-gaap"`
	} `json:"facts"`
}

// FactUnit is a single reported value
type FactUnit struct {
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}

// Fact is the latest value of a Concept
type Fact struct {
	Tag   string  `json:"tag" msgpack:"tag"`
	Unit  string  `json:"unit" msgpack:"unit"`
	Value float64 `json:"value" msgpack:"value"`
	End   string  `json:"end" msgpack:"end"`
	FY    int     `json:"fy,omitempty" msgpack:"fy"`
	FP    string  `json:"fp,omitempty" msgpack:"fp"`
	Form  string  `json:"form" msgpack:"form"`
	Filed string  `json:"filed" msgpack:"filed"`
}

// Summary is the decoded and cached view of a company
type Summary struct {
	CIK        string          `json:"cik" msgpack:"cik"`
	EntityName string          `json:"entity_name" msgpack:"entity_name"`
	Facts      map[string]Fact `json:"facts" msgpack:"facts"`
}

// Summarize extracts the latest 10-K or 10-Q value of every Concept.
// When several tags carry a Concept the most recent period wins, earlier tags win ties.
func Summarize(cik string, doc *CompanyFacts) *Summary {
	ret := &Summary{
		CIK:        cik,
		EntityName: doc.EntityName,
		Facts:      make(map[string]Fact),
	}
	for _, concept := range Concepts {
		for _, tag := range concept.Tags {
			entry, ok := doc.Facts.USGAAP[tag]
			if !ok {
				continue
			}
			fact, ok := latest(entry.Units[concept.Unit])
			if !ok {
				continue
			}
			if cur, ok := ret.Facts[concept.Name]; ok && cur.End >= fact.End {
				continue
			}
			fact.Tag = tag
			fact.Unit = concept.Unit
			ret.Facts[concept.Name] = fact
		}
	}
	return ret
}

func periodicForm(form string) bool {
	form = strings.TrimSuffix(strings.ToUpper(form), "/A")
	return form == "10-K" || form == "10-Q"
}

// latest picks the most recent period, the latest filing wins for equal periods
func latest(units []FactUnit) (Fact, bool) {
	var (
		best  FactUnit
		found bool
	)
	for _, u := range units {
		if !periodicForm(u.Form) {
			continue
		}
		if !found || u.End > best.End || (u.End == best.End && u.Filed > best.Filed) {
			best = u
			found = true
		}
	}
	if !found {
		return Fact{}, false
	}
	return Fact{
		Value: best.Val,
		End:   best.End,
		FY:    best.FY,
		FP:    best.FP,
		Form:  best.Form,
		Filed: best.Filed,
	}, true
}
