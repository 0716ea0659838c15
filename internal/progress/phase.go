package progress

// Phase is the processing milestone recorded on a document while its
// ingestion job runs. The vocabulary is fixed; percent floors for each phase
// live in the marker table (markers.go) and in the runner's own milestones.
type Phase string

const (
	PhaseTextExtraction          Phase = "text_extraction"
	PhaseTextChunking            Phase = "text_chunking"
	PhaseEntityExtraction        Phase = "entity_extraction"
	PhaseGraphClustering         Phase = "graph_clustering"
	PhaseEntityMerging           Phase = "entity_merging"
	PhaseCommunityReports        Phase = "community_reports"
	PhaseClusteringFinalization  Phase = "clustering_finalization"
	PhaseFinalizing              Phase = "finalizing"
)

var phaseRank = map[Phase]int{
	PhaseTextExtraction:         1,
	PhaseTextChunking:           2,
	PhaseEntityExtraction:       3,
	PhaseGraphClustering:        4,
	PhaseEntityMerging:          5,
	PhaseCommunityReports:       6,
	PhaseClusteringFinalization: 7,
	PhaseFinalizing:             8,
}

// Rank orders phases; the empty phase (engine-internal, unlabeled work)
// ranks below every named phase.
func (p Phase) Rank() int { return phaseRank[p] }

// Update is one proposed (phase, percent) step. Phase may be empty when a
// marker only carries a percent.
type Update struct {
	Phase   Phase
	Percent int
}

// Advances reports whether applying the update moves progress forward from
// the current state. Duplicate or out-of-order updates do not advance and
// must be ignored, never reverted: the engine's log stream may repeat or
// reorder lines and the user-facing percent has to stay monotonic.
func (u Update) Advances(curPhase Phase, curPercent int) bool {
	if u.Percent > curPercent {
		return true
	}
	if u.Percent == curPercent && u.Phase.Rank() > curPhase.Rank() {
		return true
	}
	return false
}
