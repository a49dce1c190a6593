package generator

import (
	"github.com/kb9vor/cwgen/internal/cwerr"
	"github.com/kb9vor/cwgen/internal/morsecode"
	"github.com/kb9vor/cwgen/internal/timing"
	"github.com/kb9vor/cwgen/internal/tonequeue"
)

// EnqueueCharacter translates c into tone-queue entries and enqueues
// them. Whitespace becomes an end-of-word space (two silence tones,
// so a low-water notification can fire between them for a
// single-character word). A character with no Morse mapping fails
// with cwerr NotFound. partial suppresses the trailing end-of-
// character space, for building up a representation across multiple
// calls (send_character_partial).
//
// Before enqueueing anything, the queue length must be below its
// high-water mark; otherwise the call fails with cwerr Again and
// nothing is enqueued.
func (g *Generator) EnqueueCharacter(c rune, partial bool) error {
	d, err := g.sync()
	if err != nil {
		return err
	}

	if morsecode.IsWhitespace(c) {
		return g.enqueueWordSpace(d)
	}

	rep, err := morsecode.Lookup(c)
	if err != nil {
		return err
	}
	return g.EnqueueRepresentation(rep, partial)
}

func (g *Generator) enqueueWordSpace(d timing.Durations) error {
	if g.queue.IsFull() {
		return cwerr.New(cwerr.Again, "queue at high-water mark")
	}
	if err := g.queue.Enqueue(tonequeue.Tone{DurationUS: d.EOWSpaceLenUS}); err != nil {
		return err
	}
	return g.queue.Enqueue(tonequeue.Tone{DurationUS: d.AdjustmentSpaceUS})
}

// EnqueueRepresentation enqueues the dot/dash pattern rep (validated
// against morsecode.Validate) as marks and inter-mark spaces, with a
// trailing end-of-character space unless partial is true.
func (g *Generator) EnqueueRepresentation(rep string, partial bool) error {
	if err := morsecode.Validate(rep); err != nil {
		return err
	}

	d, err := g.sync()
	if err != nil {
		return err
	}

	if g.queue.IsFull() {
		return cwerr.New(cwerr.Again, "queue at high-water mark")
	}

	g.mu.Lock()
	freq := g.frequency
	g.mu.Unlock()

	for _, sym := range rep {
		var markLen int64
		if sym == '.' {
			markLen = d.DotLenUS
		} else {
			markLen = d.DashLenUS
		}
		if err := g.queue.Enqueue(tonequeue.Tone{FrequencyHz: freq, DurationUS: markLen, Slope: tonequeue.StandardBoth}); err != nil {
			return err
		}
		if err := g.queue.Enqueue(tonequeue.Tone{DurationUS: d.EOMSpaceLenUS}); err != nil {
			return err
		}
	}

	if !partial {
		if err := g.queue.Enqueue(tonequeue.Tone{DurationUS: d.EOCSpaceLenUS + d.AdditionalSpaceUS}); err != nil {
			return err
		}
	}
	return nil
}

// EnqueueString enqueues each rune of s in order via EnqueueCharacter.
// It stops at the first error, which may leave a prefix of s already
// enqueued.
func (g *Generator) EnqueueString(s string) error {
	for _, c := range s {
		if err := g.EnqueueCharacter(c, false); err != nil {
			return err
		}
	}
	return nil
}
