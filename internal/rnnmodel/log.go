package rnnmodel

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	diagOnce   sync.Once
	diagLogger *log.Logger
)

func diag() *log.Logger {
	diagOnce.Do(func() {
		diagLogger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "rnnmodel",
		})
	})
	return diagLogger
}

// logLoad emits a single diagnostic line describing a model that was just
// constructed or loaded, useful for confirming which weight source a
// process ended up with. It is the only logging this package performs;
// nothing fires on the per-frame hot path.
func logLoad(source string, m *Model) {
	diag().Info("rnn model ready",
		"source", source,
		"input_dense", m.InputDense.NbNeurons,
		"vad_gru", m.VadGRU.NbNeurons,
		"noise_gru", m.NoiseGRU.NbNeurons,
		"denoise_gru", m.DenoiseGRU.NbNeurons,
	)
}
