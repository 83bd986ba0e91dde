package parser

import (
	"testing"

	"SigPull/internal/domain/models"
)

func TestIsPotentialSignal(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"eurusd long 1.0850 sl 1.0790", true},
		{"Stops moved to 1.36636", true},
		{"how was your day", false},
		{"long term I like this market", false}, // keyword, no number
		{"the number is 42", false},             // number, no keyword
	}
	for _, c := range cases {
		if got := IsPotentialSignal(c.text); got != c.want {
			t.Fatalf("%q: got %v, want %v", c.text, got, c.want)
		}
	}
}

func TestShouldExclude(t *testing.T) {
	excluded := []string{
		"dxy looking strong today",
		"NQ short 15000 sl 15100",
		"ES futures are open",
	}
	for _, text := range excluded {
		if !ShouldExclude(text) {
			t.Fatalf("%q should be excluded", text)
		}
	}
	if ShouldExclude("eurusd long 1.0850 sl 1.0790") {
		t.Fatalf("forex signal wrongly excluded")
	}
	// substring of another word does not trigger
	if ShouldExclude("nested estimates 1.10 sl 1.09") {
		t.Fatalf("token match must be exact")
	}
}

func validSignal() *models.ParsedSignal {
	return &models.ParsedSignal{
		Instrument:  "EURUSD",
		Direction:   models.DirectionLong,
		Limits:      []float64{1.0850, 1.0790},
		StopLoss:    1.0700,
		ExpiryType:  models.ExpiryDayEnd,
		RawText:     "eurusd long 1.0850 1.0790 sl 1.0700",
		ParseMethod: "forex",
	}
}

func TestValidateSignalOK(t *testing.T) {
	if err := ValidateSignal(validSignal()); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestValidateSignalStopSide(t *testing.T) {
	s := validSignal()
	s.StopLoss = 1.0820 // inside the ladder
	if ValidateSignal(s) == nil {
		t.Fatalf("long stop above min limit must fail")
	}

	s = validSignal()
	s.Direction = models.DirectionShort
	s.StopLoss = 1.0800 // below max limit
	if ValidateSignal(s) == nil {
		t.Fatalf("short stop below max limit must fail")
	}
	s.StopLoss = 1.0900
	if err := ValidateSignal(s); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestValidateSignalStructural(t *testing.T) {
	s := validSignal()
	s.Limits = nil
	if ValidateSignal(s) == nil {
		t.Fatalf("empty limits must fail")
	}

	s = validSignal()
	s.Direction = "sideways"
	if ValidateSignal(s) == nil {
		t.Fatalf("bad direction must fail")
	}

	if ValidateSignal(nil) == nil {
		t.Fatalf("nil signal must fail")
	}
}
