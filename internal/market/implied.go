package market

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/yourusername/rugby-predictor/internal/models"
)

// Quote is one bookmaker's decimal odds for a fixture. Draw is optional.
type Quote struct {
	Bookmaker string           `json:"bookmaker"`
	Home      decimal.Decimal  `json:"home"`
	Away      decimal.Decimal  `json:"away"`
	Draw      *decimal.Decimal `json:"draw,omitempty"`
}

var one = decimal.NewFromInt(1)

// FromDecimalOdds converts a single set of decimal odds into a signal. The
// bookmaker margin is removed by normalising the implied probabilities and any
// draw mass is split evenly between the sides.
func FromDecimalOdds(home, away decimal.Decimal, draw *decimal.Decimal) (Signal, error) {
	p, err := impliedHome(home, away, draw)
	if err != nil {
		return Signal{}, err
	}
	prob, _ := p.Float64()
	return Signal{
		HomeProb:   prob,
		Confidence: models.Confidence(prob),
		SampleSize: 1,
		Source:     "odds",
	}, nil
}

// Consensus averages the implied home probability across quotes. Quotes with
// unusable prices are skipped.
func Consensus(quotes []Quote, source string) (Signal, error) {
	sum := decimal.Zero
	n := 0
	for _, q := range quotes {
		p, err := impliedHome(q.Home, q.Away, q.Draw)
		if err != nil {
			continue
		}
		sum = sum.Add(p)
		n++
	}
	if n == 0 {
		return Signal{}, &models.ValidationError{Field: "odds", Reason: "no usable quotes"}
	}

	prob, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()
	return Signal{
		HomeProb:   prob,
		Confidence: models.Confidence(prob),
		SampleSize: n,
		Source:     source,
	}, nil
}

func impliedHome(home, away decimal.Decimal, draw *decimal.Decimal) (decimal.Decimal, error) {
	if home.LessThanOrEqual(one) || away.LessThanOrEqual(one) {
		return decimal.Zero, &models.ValidationError{Field: "odds", Reason: fmt.Sprintf("decimal odds must exceed 1, got %s/%s", home, away)}
	}

	ih := one.Div(home)
	ia := one.Div(away)
	total := ih.Add(ia)
	if draw != nil {
		if draw.LessThanOrEqual(one) {
			return decimal.Zero, &models.ValidationError{Field: "odds", Reason: fmt.Sprintf("draw odds must exceed 1, got %s", draw)}
		}
		id := one.Div(*draw)
		total = total.Add(id)
		ih = ih.Add(id.Div(decimal.NewFromInt(2)))
	}
	return ih.Div(total), nil
}
