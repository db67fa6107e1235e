package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto likewise permits one context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

func sharedOtoContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		otoRate = sampleRate
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = err
			return
		}
		<-ready
		otoCtx = ctx
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("oto context already initialized at %d Hz (requested %d Hz)", otoRate, sampleRate)
	}
	return otoCtx, nil
}

type otoPlayer struct {
	player *oto.Player
	reader *streamReader
}

// NewOtoPlayer attaches source to a direct oto/v3 output stream, for hosts
// that don't want the ebiten runtime in the loop.
func NewOtoPlayer(sampleRate int, source SampleSource) (Player, error) {
	ctx, err := sharedOtoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newStreamReader(source)
	pl := ctx.NewPlayer(reader)
	return &otoPlayer{player: pl, reader: reader}, nil
}

func (p *otoPlayer) Play()  { p.player.Play() }
func (p *otoPlayer) Pause() { p.player.Pause() }

func (p *otoPlayer) Close() error {
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
