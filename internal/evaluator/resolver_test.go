package evaluator

import (
	"testing"

	"github.com/shopspring/decimal"

	"sigtrack/internal/marketdata"
	"sigtrack/internal/models"
)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func barHL(high, low float64) marketdata.Bar {
	return marketdata.Bar{High: dec(high), Low: dec(low)}
}

func TestResolveTouch_Long(t *testing.T) {
	tp, sl := dec(110), dec(90)
	cases := []struct {
		name string
		bar  marketdata.Bar
		want Outcome
	}{
		{"tp only", barHL(115, 95), OutcomeTP},
		{"sl only", barHL(105, 85), OutcomeSL},
		{"both ambiguous", barHL(115, 85), OutcomeAmb},
		{"neither", barHL(105, 95), OutcomeNone},
		{"tp exact touch", barHL(110, 95), OutcomeTP},
		{"sl exact touch", barHL(105, 90), OutcomeSL},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTouch(tc.bar, models.SideLong, tp, sl)
			if got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestResolveTouch_Short(t *testing.T) {
	tp, sl := dec(90), dec(110)
	cases := []struct {
		name string
		bar  marketdata.Bar
		want Outcome
	}{
		{"both ambiguous", barHL(115, 85), OutcomeAmb},
		{"tp only", barHL(105, 85), OutcomeTP},
		{"sl only", barHL(115, 95), OutcomeSL},
		{"neither", barHL(105, 95), OutcomeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveTouch(tc.bar, models.SideShort, tp, sl)
			if got != tc.want {
				t.Fatalf("got=%q want=%q", got, tc.want)
			}
		})
	}
}

func TestResolveTouch_UnknownSide(t *testing.T) {
	if got := ResolveTouch(barHL(115, 85), "SIDEWAYS", dec(110), dec(90)); got != OutcomeNone {
		t.Fatalf("got=%q want none", got)
	}
}
