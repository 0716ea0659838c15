package progress

import "testing"

func TestMatchLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantOK      bool
		wantPhase   Phase
		wantPercent int
	}{
		{
			name:        "new docs marker",
			line:        "INFO: [New Docs] inserting 1 docs",
			wantOK:      true,
			wantPhase:   PhaseTextChunking,
			wantPercent: 20,
		},
		{
			name:        "new chunks marker",
			line:        "INFO: [New Chunks] inserting 42 chunks",
			wantOK:      true,
			wantPhase:   PhaseEntityExtraction,
			wantPercent: 30,
		},
		{
			name:        "entity extraction marker",
			line:        "INFO: [Entity Extraction]...",
			wantOK:      true,
			wantPhase:   PhaseEntityExtraction,
			wantPercent: 40,
		},
		{
			name:        "genkg processing needs both substrings",
			line:        "Processing 3 documents with GenKG",
			wantOK:      true,
			wantPhase:   "",
			wantPercent: 50,
		},
		{
			name:   "genkg processing with one substring does not match",
			line:   "Processing 3 documents",
			wantOK: false,
		},
		{
			name:        "graph connectivity marker",
			line:        "Ensuring graph connectivity across components",
			wantOK:      true,
			wantPhase:   PhaseGraphClustering,
			wantPercent: 60,
		},
		{
			name:        "merge marker",
			line:        "About to merge 120 node types",
			wantOK:      true,
			wantPhase:   PhaseEntityMerging,
			wantPercent: 70,
		},
		{
			name:        "genkg extracted marker",
			line:        "GenKG successfully extracted 85 entities",
			wantOK:      true,
			wantPhase:   PhaseCommunityReports,
			wantPercent: 75,
		},
		{
			name:        "community report marker",
			line:        "INFO: [Community Report]...",
			wantOK:      true,
			wantPhase:   PhaseCommunityReports,
			wantPercent: 80,
		},
		{
			name:        "clustering components marker",
			line:        "Processing 4 connected components for clustering",
			wantOK:      true,
			wantPhase:   PhaseClusteringFinalization,
			wantPercent: 85,
		},
		{
			name:        "generating by levels marker",
			line:        "Generating by levels: [0, 1]",
			wantOK:      true,
			wantPhase:   PhaseClusteringFinalization,
			wantPercent: 90,
		},
		{
			name:        "writing graph marker",
			line:        "Writing graph with 85 nodes, 102 edges",
			wantOK:      true,
			wantPhase:   PhaseFinalizing,
			wantPercent: 95,
		},
		{
			name:   "unrecognized line",
			line:   "some unrelated engine chatter",
			wantOK: false,
		},
		{
			name:   "empty line",
			line:   "",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("MatchLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Phase != tt.wantPhase || got.Percent != tt.wantPercent {
				t.Errorf("MatchLine(%q) = (%s, %d), want (%s, %d)", tt.line, got.Phase, got.Percent, tt.wantPhase, tt.wantPercent)
			}
		})
	}
}
