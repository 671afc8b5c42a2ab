package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/spectro/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the result of STFT analysis
type STFTResult struct {
	Magnitude  [][]float64 `json:"magnitude"`   // Time x Frequency magnitude matrix
	TimeFrames int         `json:"time_frames"` // Number of time frames
	FreqBins   int         `json:"freq_bins"`   // Number of frequency bins (NFFT/2 + 1)
	NFFT       int         `json:"nfft"`        // FFT length
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator
func NewSTFT(logger logging.Logger) *STFT {
	return &STFT{
		fft: NewFFT(),
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// ComputeFrames computes the magnitude of the one-sided nfft-point spectrum of
// every frame, applying window first when it is not nil. nfft <= 0 uses the
// frame length. Frames are processed by a pool of workers.
func (s *STFT) ComputeFrames(frames [][]float64, nfft int, window Window) (*STFTResult, error) {
	numFrames := len(frames)
	if numFrames == 0 {
		return nil, fmt.Errorf("no frames to transform")
	}

	frameLen := len(frames[0])
	if frameLen == 0 {
		return nil, fmt.Errorf("empty frames")
	}
	if nfft <= 0 {
		nfft = frameLen
	}

	// Calculate frequency bins (positive frequencies only)
	freqBins := nfft/2 + 1

	magnitude := make([][]float64, numFrames)
	for i := range numFrames {
		magnitude[i] = make([]float64, freqBins)
	}

	numWorkers := s.getOptimalWorkerCount(numFrames)

	jobs := make(chan int, numFrames)
	errs := make(chan error, numWorkers)

	var wg sync.WaitGroup

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, frameLen)

			for frameIdx := range jobs {
				if len(frames[frameIdx]) != frameLen {
					errs <- fmt.Errorf("frame %d has %d samples, want %d", frameIdx, len(frames[frameIdx]), frameLen)
					return
				}
				copy(frameBuffer, frames[frameIdx])

				if window != nil {
					if err := window.ApplyInPlace(frameBuffer); err != nil {
						errs <- fmt.Errorf("frame %d: %w", frameIdx, err)
						return
					}
				}

				fftResult := s.fft.ComputeN(frameBuffer, nfft)
				for i := range freqBins {
					magnitude[frameIdx][i] = cmplx.Abs(fftResult[i])
				}
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		s.logger.Error(err, "STFT failed", logging.Fields{"frames": numFrames, "nfft": nfft})
		return nil, err
	}

	return &STFTResult{
		Magnitude:  magnitude,
		TimeFrames: numFrames,
		FreqBins:   freqBins,
		NFFT:       nfft,
	}, nil
}

// getOptimalWorkerCount determines the optimal number of workers based on workload
func (s *STFT) getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	// For medium workloads, use most CPUs
	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
