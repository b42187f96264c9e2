package cluster

// Events receives progress and diagnostics from long-running clustering
// operations. An implementation is passed into the engine per call site
// (the CLI renders progress bars from it); there is no process-global
// listener registry.
type Events interface {
	// Progress reports completion of done out of total units for a stage.
	Progress(stage string, done, total int)

	// FaceSkipped reports a face excluded from a run, with the reason
	// (typically a malformed embedding). Skipped faces are never silently
	// dropped from diagnostics.
	FaceSkipped(faceID int64, reason string)

	// FaceAssigned reports a face matched to an existing person.
	FaceAssigned(faceID, personID int64, similarity float64)

	// PersonCreated reports a newly minted identity and its member count.
	PersonCreated(personID int64, name string, faceCount int)

	// PersonsMerged reports a label-collision merge.
	PersonsMerged(srcID, dstID int64, facesMoved int)
}

// NopEvents discards all events; the engine default.
type NopEvents struct{}

func (NopEvents) Progress(string, int, int)           {}
func (NopEvents) FaceSkipped(int64, string)           {}
func (NopEvents) FaceAssigned(int64, int64, float64)  {}
func (NopEvents) PersonCreated(int64, string, int)    {}
func (NopEvents) PersonsMerged(int64, int64, int)     {}
