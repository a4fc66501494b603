package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"donorops_backend/internal/leads/domain"
)

func TestScoreKnownScenario(t *testing.T) {
	scorer := New(DefaultWeights())

	// 50 base + 20 quantity + 10 source + 12 immediate = 92.
	lead := domain.Lead{
		EstimatedQuantity: 200,
		Source:            "Reddit (r/sysadmin)",
		Timeline:          "Immediate",
	}
	if got := scorer.Score(lead); got != 92 {
		t.Errorf("Score() = %d, want 92", got)
	}
}

func TestScoreComponents(t *testing.T) {
	scorer := New(DefaultWeights())

	tests := []struct {
		name string
		lead domain.Lead
		want int
	}{
		{"empty lead gets base plus default source", domain.Lead{}, 52},
		{"quantity bonus rounds", domain.Lead{EstimatedQuantity: 46}, 57},
		{"quantity bonus caps at 25", domain.Lead{EstimatedQuantity: 10000}, 77},
		{"referral is the strongest source", domain.Lead{Source: "Professional Referral"}, 65},
		{"unknown source uses the default", domain.Lead{Source: "Carrier Pigeon"}, 52},
		{"urgent bonus", domain.Lead{Timeline: "fairly URGENT"}, 60},
		{"urgent and immediate stack", domain.Lead{Timeline: "urgent, immediate pickup"}, 72},
		{
			"everything maxed clamps to 100",
			domain.Lead{EstimatedQuantity: 1000, Source: "Professional Referral", Timeline: "urgent immediate"},
			100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scorer.Score(tt.lead); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreStaysInBounds(t *testing.T) {
	scorer := New(DefaultWeights())
	for qty := 0; qty <= 500; qty += 37 {
		for _, source := range []string{"", "Professional Referral", "Reddit (r/sysadmin)", "Unknown Channel"} {
			for _, timeline := range []string{"", "urgent", "immediate", "urgent immediate", "whenever"} {
				lead := domain.Lead{EstimatedQuantity: qty, Source: source, Timeline: timeline}
				got := scorer.Score(lead)
				if got < 10 || got > 100 {
					t.Fatalf("Score(qty=%d source=%q timeline=%q) = %d, out of [10,100]", qty, source, timeline, got)
				}
			}
		}
	}
}

func TestClampManual(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := ClampManual(tt.in); got != tt.want {
			t.Errorf("ClampManual(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLoadWeightsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	contents := "sourceWeights:\n  Carrier Pigeon: 20\nurgentBonus: 3\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	weights, err := LoadWeights(path)
	if err != nil {
		t.Fatalf("LoadWeights returned error: %v", err)
	}
	if weights.SourceWeights["Carrier Pigeon"] != 20 {
		t.Errorf("override source weight = %d, want 20", weights.SourceWeights["Carrier Pigeon"])
	}
	if weights.UrgentBonus != 3 {
		t.Errorf("urgentBonus = %d, want 3", weights.UrgentBonus)
	}
	// Untouched fields keep their defaults.
	if weights.ImmediateBonus != 12 {
		t.Errorf("immediateBonus = %d, want 12", weights.ImmediateBonus)
	}
}

func TestLoadWeightsEmptyPathIsDefault(t *testing.T) {
	weights, err := LoadWeights("")
	if err != nil {
		t.Fatalf("LoadWeights returned error: %v", err)
	}
	if weights.SourceWeights["Professional Referral"] != 15 {
		t.Errorf("default referral weight = %d, want 15", weights.SourceWeights["Professional Referral"])
	}
}
