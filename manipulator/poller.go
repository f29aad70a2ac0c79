package manipulator

import (
	"log"
	"time"
)

// PositionUpdate is one sample of the poller.
type PositionUpdate struct {
	Time      time.Time `json:"time"`
	Axes      []int     `json:"axes"`
	Positions []float32 `json:"positions"`
}

// Poller periodically reads a set of axes and publishes the samples on
// a channel. Slow consumers skip samples rather than stall the poll
// loop.
type Poller struct {
	m        *Manipulator
	axes     []int
	interval time.Duration

	updates chan PositionUpdate
	done    chan struct{}
}

// NewPoller starts polling the given axes every interval.
func NewPoller(m *Manipulator, axes []int, interval time.Duration) *Poller {
	p := &Poller{
		m:        m,
		axes:     append([]int(nil), axes...),
		interval: interval,
		updates:  make(chan PositionUpdate, 1),
		done:     make(chan struct{}),
	}
	go p.loop()
	return p
}

// Updates returns the sample channel. It is closed when the poller
// stops.
func (p *Poller) Updates() <-chan PositionUpdate {
	return p.updates
}

// Close stops the poll loop.
func (p *Poller) Close() error {
	close(p.done)
	return nil
}

func (p *Poller) loop() {
	defer close(p.updates)
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-t.C:
		}
		pos, err := p.m.ReadPositions(p.axes)
		if err != nil {
			log.Printf("ERROR: position poll: %v", err)
			continue
		}
		u := PositionUpdate{Time: time.Now(), Axes: p.axes, Positions: pos}
		select {
		case p.updates <- u:
		default:
			// Consumer is behind, drop the stale sample first.
			select {
			case <-p.updates:
			default:
			}
			select {
			case p.updates <- u:
			default:
			}
		}
	}
}
