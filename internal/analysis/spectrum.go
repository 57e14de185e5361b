package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|²/n for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	centered := make([]float64, n)
	copy(centered, data)
	floats.AddConst(-stat.Mean(data, nil), centered)

	spec := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(spec[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// Peak returns the bin with the most power, ignoring DC. It returns 0, 0 for
// spectra with fewer than two bins.
func Peak(ps []float64) (bin int, power float64) {
	if len(ps) < 2 {
		return 0, 0
	}
	bin = 1 + floats.MaxIdx(ps[1:])
	return bin, ps[bin]
}

// BinFrequency converts a spectrum bin of an n-sample series to a frequency.
func BinFrequency(bin, n int, sampleRate float64) float64 {
	if n == 0 {
		return 0
	}
	return float64(bin) * sampleRate / float64(n)
}
