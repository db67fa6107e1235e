package audio

import (
	"fmt"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// ebiten allows a single audio context per process at a fixed sample rate;
// later players must match the first rate.
var (
	ebitenOnce sync.Once
	ebitenCtx  *ebitaudio.Context
	ebitenRate int
)

func sharedEbitenContext(sampleRate int) (*ebitaudio.Context, error) {
	ebitenOnce.Do(func() {
		ebitenRate = sampleRate
		ebitenCtx = ebitaudio.NewContext(sampleRate)
	})
	if ebitenRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", ebitenRate, sampleRate)
	}
	return ebitenCtx, nil
}

type ebitenPlayer struct {
	player *ebitaudio.Player
	reader *streamReader
}

// NewEbitenPlayer attaches source to the process-wide ebiten audio context.
func NewEbitenPlayer(sampleRate int, source SampleSource) (Player, error) {
	ctx, err := sharedEbitenContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &ebitenPlayer{player: pl, reader: reader}, nil
}

func (p *ebitenPlayer) Play()  { p.player.Play() }
func (p *ebitenPlayer) Pause() { p.player.Pause() }

func (p *ebitenPlayer) Close() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return err
	}
	return p.reader.Close()
}
