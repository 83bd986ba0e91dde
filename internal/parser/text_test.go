package parser

import (
	"reflect"
	"testing"

	"SigPull/internal/domain/models"
)

func TestTokenizeHyphenRuns(t *testing.T) {
	got := tokenize("1.36917-----1.36869 vth---hot")
	want := []string{"1.36917", "1.36869", "vth", "hot"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens %v, want %v", got, want)
	}
}

func TestTokenizeSingleHyphen(t *testing.T) {
	got := tokenize("semi-swing 64570-64520")
	want := []string{"semi-swing", "64570", "64520"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens %v, want %v", got, want)
	}
}

func TestParseCoreLadder(t *testing.T) {
	ex := parseCore("usdcad short 1.36917-----1.36869-----1.36795 Stops 1.36636 vth")
	if !ex.dirOK || ex.dir != models.DirectionShort {
		t.Fatalf("direction %v ok=%v", ex.dir, ex.dirOK)
	}
	if len(ex.limits) != 3 {
		t.Fatalf("limits %v", ex.limits)
	}
	if ex.stop == nil || ex.stop.value != 1.36636 {
		t.Fatalf("stop %v", ex.stop)
	}
	if ex.expiry != models.ExpiryWeekEnd {
		t.Fatalf("expiry %v", ex.expiry)
	}
}

func TestParseCoreNoStopMarker(t *testing.T) {
	ex := parseCore("eurusd long 1.0850 1.0790")
	if ex.stop != nil {
		t.Fatalf("expected nil stop, got %v", ex.stop)
	}
	if len(ex.limits) != 2 {
		t.Fatalf("limits %v", ex.limits)
	}
}

func TestDetectDirectionConflict(t *testing.T) {
	if _, ok := detectDirection(tokenize("buy then sell 1.10")); ok {
		t.Fatalf("conflicting direction should not resolve")
	}
	if _, ok := detectDirection(tokenize("1.10 1.09")); ok {
		t.Fatalf("absent direction should not resolve")
	}
}

func TestExpiryCodes(t *testing.T) {
	cases := map[string]models.ExpiryType{
		"sl 1 vth":   models.ExpiryWeekEnd,
		"sl 1 vtwe":  models.ExpiryWeekEnd,
		"sl 1 vtai":  models.ExpiryNone,
		"sl 1 alien": models.ExpiryNone,
		"sl 1 vtd":   models.ExpiryDayEnd,
		"sl 1 vtme":  models.ExpiryMonthEnd,
	}
	for text, want := range cases {
		if got := detectExpiry(tokenize(text)); got != want {
			t.Fatalf("%q: expiry %v, want %v", text, got, want)
		}
	}
}

func TestExtractKeywordsSemiSwing(t *testing.T) {
	got := extractKeywords("gold long semi-swing hot sl 2300")
	want := []string{"semi-swing", "hot"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keywords %v, want %v", got, want)
	}
}
