package rnnmodel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"

	"github.com/klauspost/compress/zstd"
)

// defaultWeightSeed seeds the deterministic generator used to fill the
// compiled-in default model. It is not a trained network: no trained
// weight table ships with this package. Callers who need a trained model
// load one with Load, typically produced upstream by SaveCompressed from
// a training pipeline's export step.
const defaultWeightSeed = 0x524e4e6f697365 // "RNNoise" in hex-ish, just a fixed constant

func randomWeights(rng *rand.Rand, n int) []int8 {
	w := make([]int8, n)
	for i := range w {
		w[i] = int8(rng.Intn(256) - 128)
	}
	return w
}

func newDenseLayer(rng *rand.Rand, nbInputs, nbNeurons int, sigmoid bool) DenseLayer {
	return DenseLayer{
		Bias:         randomWeights(rng, nbNeurons),
		InputWeights: randomWeights(rng, nbInputs*nbNeurons),
		NbInputs:     nbInputs,
		NbNeurons:    nbNeurons,
		Sigmoid:      sigmoid,
	}
}

func newGRULayer(rng *rand.Rand, nbInputs, nbNeurons int) GRULayer {
	return GRULayer{
		Bias:             randomWeights(rng, 3*nbNeurons),
		InputWeights:     randomWeights(rng, nbInputs*3*nbNeurons),
		RecurrentWeights: randomWeights(rng, nbNeurons*3*nbNeurons),
		NbInputs:         nbInputs,
		NbNeurons:        nbNeurons,
	}
}

// DefaultModel builds the compiled-in model used by NewDenoiseState. Its
// weights come from a fixed-seed deterministic generator rather than a
// trained export, so two processes always construct byte-identical
// models; it exists to give the evaluator contract something concrete to
// run against when no trained weight file is supplied.
func DefaultModel() *Model {
	rng := rand.New(rand.NewSource(defaultWeightSeed))
	m := &Model{
		InputDense:    newDenseLayer(rng, NbFeatures, InputDenseSize, false),
		VadGRU:        newGRULayer(rng, InputDenseSize, VadGRUSize),
		NoiseGRU:      newGRULayer(rng, InputDenseSize+VadGRUSize+NbFeatures, NoiseGRUSize),
		DenoiseGRU:    newGRULayer(rng, VadGRUSize+NoiseGRUSize+NbFeatures, DenoiseGRUSize),
		DenoiseOutput: newDenseLayer(rng, DenoiseGRUSize, NbBands, true),
		VadOutput:     newDenseLayer(rng, VadGRUSize, 1, true),
	}
	logLoad("default(generated)", m)
	return m
}

const weightFileMagic uint32 = 0x524e4e31 // "RNN1"

// Load reads a trained model from a zstd-compressed weight file written by
// SaveCompressed. The file stores no layer dimensions: each layer is read
// at this package's fixed topology sizes, and a stream too short to fill
// them is an error. Bytes left over after the last layer are not checked.
func Load(r io.Reader) (*Model, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("rnnmodel: opening weight stream: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("rnnmodel: decompressing weights: %w", err)
	}

	br := bytes.NewReader(raw)
	var magic uint32
	if err := binary.Read(br, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("rnnmodel: reading weight header: %w", err)
	}
	if magic != weightFileMagic {
		return nil, fmt.Errorf("rnnmodel: bad weight file magic %08x", magic)
	}

	m := &Model{}
	readDense := func(nbInputs, nbNeurons int, sigmoid bool) (DenseLayer, error) {
		l := DenseLayer{NbInputs: nbInputs, NbNeurons: nbNeurons, Sigmoid: sigmoid}
		l.Bias = make([]int8, nbNeurons)
		l.InputWeights = make([]int8, nbInputs*nbNeurons)
		if err := readInt8s(br, l.Bias); err != nil {
			return l, err
		}
		if err := readInt8s(br, l.InputWeights); err != nil {
			return l, err
		}
		return l, nil
	}
	readGRU := func(nbInputs, nbNeurons int) (GRULayer, error) {
		l := GRULayer{NbInputs: nbInputs, NbNeurons: nbNeurons}
		l.Bias = make([]int8, 3*nbNeurons)
		l.InputWeights = make([]int8, nbInputs*3*nbNeurons)
		l.RecurrentWeights = make([]int8, nbNeurons*3*nbNeurons)
		if err := readInt8s(br, l.Bias); err != nil {
			return l, err
		}
		if err := readInt8s(br, l.InputWeights); err != nil {
			return l, err
		}
		if err := readInt8s(br, l.RecurrentWeights); err != nil {
			return l, err
		}
		return l, nil
	}

	var err2 error
	if m.InputDense, err2 = readDense(NbFeatures, InputDenseSize, false); err2 != nil {
		return nil, err2
	}
	if m.VadGRU, err2 = readGRU(InputDenseSize, VadGRUSize); err2 != nil {
		return nil, err2
	}
	if m.NoiseGRU, err2 = readGRU(InputDenseSize+VadGRUSize+NbFeatures, NoiseGRUSize); err2 != nil {
		return nil, err2
	}
	if m.DenoiseGRU, err2 = readGRU(VadGRUSize+NoiseGRUSize+NbFeatures, DenoiseGRUSize); err2 != nil {
		return nil, err2
	}
	if m.DenoiseOutput, err2 = readDense(DenoiseGRUSize, NbBands, true); err2 != nil {
		return nil, err2
	}
	if m.VadOutput, err2 = readDense(VadGRUSize, 1, true); err2 != nil {
		return nil, err2
	}
	logLoad("loaded", m)
	return m, nil
}

func readInt8s(r io.Reader, dst []int8) error {
	buf := make([]byte, len(dst))
	if _, err := io.ReadFull(r, buf); err != nil {
		return err
	}
	for i, b := range buf {
		dst[i] = int8(b)
	}
	return nil
}

// SaveCompressed serializes m in the format Load expects and zstd-compresses
// it, for persisting a trained model produced by an external training
// pipeline.
func SaveCompressed(w io.Writer, m *Model) error {
	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.LittleEndian, weightFileMagic); err != nil {
		return err
	}
	writeLayer := func(bias, weights []int8) error {
		if err := writeInt8s(&raw, bias); err != nil {
			return err
		}
		return writeInt8s(&raw, weights)
	}
	if err := writeLayer(m.InputDense.Bias, m.InputDense.InputWeights); err != nil {
		return err
	}
	if err := writeGRU(&raw, &m.VadGRU); err != nil {
		return err
	}
	if err := writeGRU(&raw, &m.NoiseGRU); err != nil {
		return err
	}
	if err := writeGRU(&raw, &m.DenoiseGRU); err != nil {
		return err
	}
	if err := writeLayer(m.DenoiseOutput.Bias, m.DenoiseOutput.InputWeights); err != nil {
		return err
	}
	if err := writeLayer(m.VadOutput.Bias, m.VadOutput.InputWeights); err != nil {
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("rnnmodel: opening weight compressor: %w", err)
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("rnnmodel: compressing weights: %w", err)
	}
	return zw.Close()
}

func writeGRU(w io.Writer, l *GRULayer) error {
	if err := writeInt8s(w, l.Bias); err != nil {
		return err
	}
	if err := writeInt8s(w, l.InputWeights); err != nil {
		return err
	}
	return writeInt8s(w, l.RecurrentWeights)
}

func writeInt8s(w io.Writer, src []int8) error {
	buf := make([]byte, len(src))
	for i, v := range src {
		buf[i] = byte(v)
	}
	_, err := w.Write(buf)
	return err
}
