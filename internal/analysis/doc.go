// Package analysis provides time-series tools for magnetization signals.
//
//   - [PowerSpectrum]: one-sided power spectrum of a real series
//   - [Peak]: strongest non-DC bin of a spectrum
//   - [Autocorrelation]: normalised autocorrelation up to a maximum lag
//   - [CorrelationTime]: first lag at which the autocorrelation drops below 1/e
//   - [Summarize]: mean, standard deviation and range
//
// # Dominant Frequency
//
// Runs are sampled once per tick, so frequencies are in cycles per tick
// unless a sample rate is supplied:
//
//	ps := analysis.PowerSpectrum(magnetization)
//	bin, _ := analysis.Peak(ps)
//	f := analysis.BinFrequency(bin, len(magnetization), 60)
package analysis
