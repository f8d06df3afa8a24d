package scoring

import "github.com/fitscore/fitscore/pkg/lcia"

// Options controls how an Engine selects dimensions and fans out work.
type Options struct {
	// Stages are the life cycle stages aggregated for every category except
	// biodiversity, which is always taken at agriculture.
	Stages []lcia.LCStageID

	// Workers bounds the number of items assessed concurrently.
	Workers int

	// WeightByAmount multiplies raw recipe values by each item's mass.
	// Scaled values and grades are unaffected.
	WeightByAmount bool
}

// Defaults returns the default engine options.
func Defaults() Options {
	return Options{
		Stages:  DefaultStages(),
		Workers: DefaultWorkers,
	}
}
