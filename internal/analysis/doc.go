// Package analysis inspects the per-tick series a run records.
//
// A healthy background recycles particles in waves: the whole population
// starts at the left margin, so the mean X position climbs and drops back
// with a period close to (width+2*margin) divided by the mean horizontal
// speed. [DominantPeriod] recovers that period from a series:
//
//	period := analysis.DominantPeriod(meanX)
//
// [PowerSpectrum] exposes the full spectrum for plotting.
package analysis
