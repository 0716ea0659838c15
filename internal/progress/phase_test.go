package progress

import "testing"

func TestAdvances(t *testing.T) {
	tests := []struct {
		name       string
		update     Update
		curPhase   Phase
		curPercent int
		want       bool
	}{
		{
			name:       "higher percent advances",
			update:     Update{PhaseTextChunking, 20},
			curPhase:   PhaseTextExtraction,
			curPercent: 15,
			want:       true,
		},
		{
			name:       "duplicate update ignored",
			update:     Update{PhaseTextChunking, 20},
			curPhase:   PhaseTextChunking,
			curPercent: 20,
			want:       false,
		},
		{
			name:       "lower percent never regresses",
			update:     Update{PhaseEntityExtraction, 30},
			curPhase:   PhaseGraphClustering,
			curPercent: 60,
			want:       false,
		},
		{
			name:       "equal percent lower rank ignored",
			update:     Update{PhaseTextChunking, 40},
			curPhase:   PhaseEntityExtraction,
			curPercent: 40,
			want:       false,
		},
		{
			name:       "equal percent higher rank advances",
			update:     Update{PhaseCommunityReports, 75},
			curPhase:   PhaseEntityMerging,
			curPercent: 75,
			want:       true,
		},
		{
			name:       "unlabeled update above floor advances",
			update:     Update{"", 50},
			curPhase:   PhaseEntityExtraction,
			curPercent: 40,
			want:       true,
		},
		{
			name:       "unlabeled update at floor ignored",
			update:     Update{"", 50},
			curPhase:   PhaseEntityExtraction,
			curPercent: 50,
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.update.Advances(tt.curPhase, tt.curPercent)
			if got != tt.want {
				t.Errorf("Advances(%v, %d) = %v, want %v", tt.curPhase, tt.curPercent, got, tt.want)
			}
		})
	}
}

func TestAdvancesEqualPercentLowerRank(t *testing.T) {
	u := Update{PhaseTextChunking, 60}
	if u.Advances(PhaseGraphClustering, 60) {
		t.Error("equal percent with lower phase rank must not advance")
	}
}

func TestPhaseRankOrdering(t *testing.T) {
	ordered := []Phase{
		PhaseTextExtraction,
		PhaseTextChunking,
		PhaseEntityExtraction,
		PhaseGraphClustering,
		PhaseEntityMerging,
		PhaseCommunityReports,
		PhaseClusteringFinalization,
		PhaseFinalizing,
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("expected %s to rank above %s", ordered[i], ordered[i-1])
		}
	}
	if Phase("").Rank() >= PhaseTextExtraction.Rank() {
		t.Error("empty phase must rank below every named phase")
	}
}
