package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
)

// cliEvents renders engine events for the terminal: a progress bar per
// stage, warnings for skipped faces and summary lines for new or merged
// identities.
type cliEvents struct {
	verbose bool
	stage   string
	bar     *progressbar.ProgressBar
}

func (e *cliEvents) Progress(stage string, done, total int) {
	if e.bar == nil || e.stage != stage {
		e.stage = stage
		e.bar = progressbar.NewOptions(total,
			progressbar.OptionSetDescription(stage),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("faces"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}
	_ = e.bar.Set(done)
}

func (e *cliEvents) FaceSkipped(faceID int64, reason string) {
	fmt.Printf("\nWarning: face %d skipped: %s\n", faceID, reason)
}

func (e *cliEvents) FaceAssigned(faceID, personID int64, similarity float64) {
	if e.verbose {
		fmt.Printf("\nface %d -> person %d (similarity %.3f)\n", faceID, personID, similarity)
	}
}

func (e *cliEvents) PersonCreated(personID int64, name string, faceCount int) {
	fmt.Printf("\nCreated %s (id %d) with %d faces\n", name, personID, faceCount)
}

func (e *cliEvents) PersonsMerged(srcID, dstID int64, facesMoved int) {
	fmt.Printf("Merged person %d into person %d (%d faces moved)\n", srcID, dstID, facesMoved)
}
