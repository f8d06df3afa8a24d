package scoring

import "github.com/fitscore/fitscore/pkg/lcia"

// DefaultWorkers is the default per-recipe item concurrency.
const DefaultWorkers = 8

// DefaultStages returns the stages scored by default: agriculture,
// processing, transport and retail. Packaging and consumption are left out.
func DefaultStages() []lcia.LCStageID {
	return []lcia.LCStageID{
		lcia.StageAgriculture,
		lcia.StageProcessing,
		lcia.StageTransport,
		lcia.StageRetail,
	}
}
