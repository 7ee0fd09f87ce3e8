package compute

import (
	"fmt"
	"math"

	"aemcore/pkg/elements"
	"aemcore/pkg/solver/script"
)

// RoundExtent snaps the extent outward to whole multiples of the cellsize,
// so the head grid covers the full domain with square cells.
func RoundExtent(ext elements.Extent, cellsize float64) (elements.Extent, error) {
	if cellsize <= 0 {
		return elements.Extent{}, fmt.Errorf("cellsize must be positive, got %g", cellsize)
	}
	return elements.Extent{
		XMin: math.Floor(ext.XMin/cellsize) * cellsize,
		XMax: math.Ceil(ext.XMax/cellsize) * cellsize,
		YMin: math.Floor(ext.YMin/cellsize) * cellsize,
		YMax: math.Ceil(ext.YMax/cellsize) * cellsize,
	}, nil
}

// GridFor builds the head-grid stanza for a domain extent.
func GridFor(ext elements.Extent, cellsize float64) (*script.GridSpec, error) {
	rounded, err := RoundExtent(ext, cellsize)
	if err != nil {
		return nil, err
	}
	return &script.GridSpec{
		XMin:     rounded.XMin,
		XMax:     rounded.XMax,
		YMin:     rounded.YMin,
		YMax:     rounded.YMax,
		Cellsize: cellsize,
	}, nil
}
