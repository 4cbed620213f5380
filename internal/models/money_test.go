package models

import "testing"

func TestMoneyApplyRatePercent(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		rate   string
		want   string
	}{
		{"two percent", "10000", "2", "200.00"},
		{"half percent", "50000", "0.5", "250.00"},
		{"rounds to cents", "333.33", "3", "10.00"},
		{"zero rate", "10000", "0", "0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := NewMoneyFromString(tc.amount)
			if err != nil {
				t.Fatalf("parse amount failed: %v", err)
			}
			rate, err := NewMoneyFromString(tc.rate)
			if err != nil {
				t.Fatalf("parse rate failed: %v", err)
			}
			if got := amount.ApplyRatePercent(rate).String(); got != tc.want {
				t.Fatalf("want %s got %s", tc.want, got)
			}
		})
	}
}

func TestMoneyAdd(t *testing.T) {
	a, _ := NewMoneyFromString("100.10")
	b, _ := NewMoneyFromString("0.905")
	if got := a.Add(b).String(); got != "101.01" {
		t.Fatalf("want 101.01 got %s", got)
	}
}
