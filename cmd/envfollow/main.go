// Command envfollow converts a WAV file into a rate-limited control-value
// stream, printing one line per emitted control event.
//
// Usage:
//
//	envfollow [flags] input.wav
//
// Examples:
//
//	envfollow drums.wav
//	envfollow -gain 6 -recovery 0.25 drums.wav
//	envfollow -min 100 -max 20 -highpass 80 bass.wav
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-envfollow/dsp/core"
	"github.com/cwbudde/algo-envfollow/dsp/follower"
	"github.com/cwbudde/algo-envfollow/midi"
)

// CLI defines the command-line interface.
type CLI struct {
	Input      string  `arg:"" type:"existingfile" help:"Input WAV file (PCM)."`
	Gain       float64 `default:"0" help:"Input gain in dB."`
	Min        float64 `default:"0" help:"Output range lower knob (may exceed max for inverted mapping)."`
	Max        float64 `default:"127" help:"Output range upper knob."`
	Lowpass    float64 `default:"20000" help:"Lowpass cutoff in Hz."`
	Highpass   float64 `default:"0" help:"Highpass cutoff in Hz."`
	Recovery   float64 `default:"0.1" help:"Envelope half-life in seconds."`
	Rate       float64 `default:"10" help:"Control events per second."`
	Channel    int     `default:"1" help:"MIDI channel (1-16)."`
	Controller int     `default:"14" help:"MIDI controller number (0-127)."`
	BufferSize int     `name:"buffer" default:"512" help:"Processing block size in samples."`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("envfollow"),
		kong.Description("Audio envelope to control-value converter"),
		kong.UsageOnError(),
	)

	ctx.FatalIfErrorf(run(cli))
}

//nolint:funlen
func run(cli *CLI) error {
	channels, sampleRate, err := readWAV(cli.Input)
	if err != nil {
		return err
	}

	f := follower.New()

	if err := f.SetGain(core.DBToLinear(cli.Gain)); err != nil {
		return err
	}

	if err := f.SetOutputRange(cli.Min, cli.Max); err != nil {
		return err
	}

	if err := f.SetLowpassCutoff(cli.Lowpass); err != nil {
		return err
	}

	if err := f.SetHighpassCutoff(cli.Highpass); err != nil {
		return err
	}

	if err := f.SetRecoveryTime(cli.Recovery); err != nil {
		return err
	}

	if err := f.SetEventRate(cli.Rate); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "time\tvalue\tmessage")

	emitter, err := midi.NewControlEmitter(midi.SenderFunc(func(m midi.Message) error {
		return nil // encoded for display only; no device attached
	}))
	if err != nil {
		return err
	}

	if err := emitter.SetChannel(cli.Channel); err != nil {
		return err
	}

	if err := emitter.SetController(cli.Controller); err != nil {
		return err
	}

	// Emissions land on a fixed grid, so the event index gives the exact time.
	samplesPerEvent := float64(int(sampleRate / cli.Rate))
	events := 0

	f.SetEmitter(follower.EmitterFunc(func(value int) {
		events++
		emitter.Emit(value)

		msg, encErr := midi.ControllerEvent(emitter.Channel(), emitter.Controller(), emitter.LastValue())
		if encErr != nil {
			return
		}

		fmt.Fprintf(w, "%.3f\t%d\t%02X %02X %02X\n",
			float64(events)*samplesPerEvent/sampleRate, value, msg[0], msg[1], msg[2])
	}))

	if err := f.Prepare(sampleRate, cli.BufferSize); err != nil {
		return err
	}

	total := len(channels[0])
	block := make([][]float64, len(channels))

	for start := 0; start < total; start += cli.BufferSize {
		end := start + cli.BufferSize
		if end > total {
			end = total
		}

		for ch := range channels {
			block[ch] = channels[ch][start:end]
		}

		if err := f.ProcessBuffer(block); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "final\t%d\t%s\n", f.CurrentValue(), emitter.Status())

	return nil
}

// readWAV decodes a PCM WAV file into planar float64 channels normalized to
// [-1, 1], plus its sample rate.
func readWAV(path string) ([][]float64, float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("envfollow: %w", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("envfollow: %s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("envfollow: decoding %s: %w", path, err)
	}

	if buf.Format == nil || buf.Format.NumChannels <= 0 || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("envfollow: %s contains no audio", path)
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}

	return planarFloats(buf, bitDepth), float64(buf.Format.SampleRate), nil
}

// planarFloats deinterleaves an integer PCM buffer into per-channel float64
// slices normalized to [-1, 1].
func planarFloats(buf *audio.IntBuffer, bitDepth int) [][]float64 {
	numChannels := buf.Format.NumChannels
	scale := 1.0 / float64(int(1)<<(bitDepth-1))
	frames := len(buf.Data) / numChannels

	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float64(buf.Data[i*numChannels+ch]) * scale
		}
	}

	return channels
}
