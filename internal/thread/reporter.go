package thread

// Anomaly kinds passed to Reporter.Anomaly.
const (
	AnomalyDuplicateID      = "duplicate_id"
	AnomalySelfReference    = "self_reference"
	AnomalyUnreached        = "unreached"
	AnomalyUnresolvedParent = "unresolved_parent"
)

// Reporter receives progress and data-quality events from the pipeline
// stages.
type Reporter interface {
	// Stage is called once a stage has produced its output.
	Stage(name string, rows int)
	// Anomaly reports a recovered data-quality problem in a thread.
	// linkID is empty for table-wide counts.
	Anomaly(kind, linkID string, count int)
	// Ambiguous reports a node reached from several roots at different depths.
	Ambiguous(a Ambiguity)
}

// NopReporter discards every event.
type NopReporter struct{}

func (NopReporter) Stage(string, int) {}
func (NopReporter) Anomaly(string, string, int) {}
func (NopReporter) Ambiguous(Ambiguity) {}

func reporterOrNop(r Reporter) Reporter {
	if r == nil {
		return NopReporter{}
	}
	return r
}
