package progress

import "strings"

// marker ties recognized engine log text to a progress step. Matching is
// plain substring containment against free-text lines; there is no
// structured contract with the engine, so every pattern lives in this one
// table where it can be updated without touching the job runner.
type marker struct {
	substrings []string
	update     Update
}

var markers = []marker{
	{[]string{"[New Docs]"}, Update{PhaseTextChunking, 20}},
	{[]string{"[New Chunks]"}, Update{PhaseEntityExtraction, 30}},
	{[]string{"[Entity Extraction]"}, Update{PhaseEntityExtraction, 40}},
	{[]string{"Processing", "documents with GenKG"}, Update{"", 50}},
	{[]string{"Ensuring graph connectivity"}, Update{PhaseGraphClustering, 60}},
	{[]string{"About to merge", "node types"}, Update{PhaseEntityMerging, 70}},
	{[]string{"GenKG successfully extracted"}, Update{PhaseCommunityReports, 75}},
	{[]string{"[Community Report]"}, Update{PhaseCommunityReports, 80}},
	{[]string{"Processing", "connected components for clustering"}, Update{PhaseClusteringFinalization, 85}},
	{[]string{"Generating by levels"}, Update{PhaseClusteringFinalization, 90}},
	{[]string{"Writing graph with"}, Update{PhaseFinalizing, 95}},
}

// MatchLine maps an engine log line to a progress update. Lines matching no
// known marker return ok=false and are ignored by callers.
func MatchLine(line string) (Update, bool) {
	for _, m := range markers {
		matched := true
		for _, sub := range m.substrings {
			if !strings.Contains(line, sub) {
				matched = false
				break
			}
		}
		if matched {
			return m.update, true
		}
	}
	return Update{}, false
}
