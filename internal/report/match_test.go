package report

import (
	"reflect"
	"testing"
	"time"

	"dailyreport/internal/domain"
)

func named(names ...string) []domain.Sample {
	out := make([]domain.Sample, len(names))
	base := time.Date(2025, 12, 25, 1, 0, 0, 0, time.UTC)
	for i, n := range names {
		out[i] = domain.Sample{Time: base.Add(time.Duration(i) * time.Minute), Name: n, Value: float64(i)}
	}
	return out
}

func matchedNames(samples []domain.Sample) []string {
	var out []string
	for _, s := range samples {
		out = append(out, s.Name)
	}
	return out
}

func TestMatchSamplesExactWins(t *testing.T) {
	samples := named("Boiler Temp", "Boiler Temp B", "boiler temp")

	got := MatchSamples(samples, "Boiler Temp")
	if want := []string{"Boiler Temp"}; !reflect.DeepEqual(matchedNames(got), want) {
		t.Errorf("exact stage should win: got %v, want %v", matchedNames(got), want)
	}
}

func TestMatchSamplesContains(t *testing.T) {
	samples := named("Unit1 Boiler Temp B", "Feed Flow")

	got := MatchSamples(samples, "boiler temp")
	if want := []string{"Unit1 Boiler Temp B"}; !reflect.DeepEqual(matchedNames(got), want) {
		t.Errorf("contains stage: got %v, want %v", matchedNames(got), want)
	}
}

func TestMatchSamplesKeywordAND(t *testing.T) {
	samples := named("Temp of Unit1 Boiler", "Boiler Pressure", "Unit2 Temp")

	// No exact or whole-substring match; both keywords must appear.
	got := MatchSamples(samples, "boiler temp")
	if want := []string{"Temp of Unit1 Boiler"}; !reflect.DeepEqual(matchedNames(got), want) {
		t.Errorf("keyword stage: got %v, want %v", matchedNames(got), want)
	}
}

func TestMatchSamplesNoMatch(t *testing.T) {
	samples := named("Feed Flow")
	if got := MatchSamples(samples, "boiler temp"); len(got) != 0 {
		t.Errorf("expected no match, got %v", matchedNames(got))
	}
	if got := MatchSamples(samples, "  "); len(got) != 0 {
		t.Errorf("blank source name should match nothing, got %v", matchedNames(got))
	}
	if got := MatchSamples(nil, "boiler"); len(got) != 0 {
		t.Errorf("empty sample set should match nothing")
	}
}

func TestMissCandidatesRanking(t *testing.T) {
	samples := named(
		"Unit1 Boiler Inlet Temp", // 2 keywords
		"Boiler Pressure",         // 1 keyword
		"Ambient Temp",            // 1 keyword
		"Feed Flow",               // 0 keywords
	)

	got := MissCandidates(samples, "Boiler Temp", 5)
	want := []string{"Unit1 Boiler Inlet Temp", "Ambient Temp", "Boiler Pressure"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissCandidates = %v, want %v", got, want)
	}
}

func TestMissCandidatesTopK(t *testing.T) {
	samples := named("Boiler A", "Boiler B", "Boiler C")

	got := MissCandidates(samples, "Boiler", 2)
	if len(got) != 2 {
		t.Fatalf("topK not applied: got %v", got)
	}
	// Ties break alphabetically.
	if got[0] != "Boiler A" || got[1] != "Boiler B" {
		t.Errorf("tie break order wrong: %v", got)
	}
}

func TestMissCandidatesDisabled(t *testing.T) {
	samples := named("Boiler A")
	if got := MissCandidates(samples, "Boiler", 0); got != nil {
		t.Errorf("topK=0 should disable candidates, got %v", got)
	}
}
