package idle

import "github.com/rs/zerolog"

// Output is one live display: its bound device handle and, while the
// display is transitioning to idle, its fade surface.
type Output struct {
	name uint32
	dev  OutputDevice
	fade *FadeSurface
}

// outputRegistry tracks the dynamic set of displays keyed by the
// registry-assigned global name.
type outputRegistry struct {
	outputs map[uint32]*Output
	log     zerolog.Logger
}

func newOutputRegistry(log zerolog.Logger) *outputRegistry {
	return &outputRegistry{
		outputs: make(map[uint32]*Output),
		log:     log,
	}
}

func (r *outputRegistry) get(name uint32) (*Output, bool) {
	out, ok := r.outputs[name]
	return out, ok
}

func (r *outputRegistry) add(name uint32, dev OutputDevice) {
	r.outputs[name] = &Output{name: name, dev: dev}
	r.log.Debug().Uint32("output", name).Msg("output: added")
}

// remove tears down the output's fade surface, if any, before releasing
// the output itself. No per-output state outlives the output.
func (r *outputRegistry) remove(name uint32) {
	out, ok := r.outputs[name]
	if !ok {
		return
	}
	if out.fade != nil {
		if err := out.fade.destroy(); err != nil {
			r.log.Warn().Err(err).Uint32("output", name).Msg("output: fade teardown failed")
		}
		out.fade = nil
	}
	if err := out.dev.Release(); err != nil {
		r.log.Warn().Err(err).Uint32("output", name).Msg("output: release failed")
	}
	delete(r.outputs, name)
	r.log.Debug().Uint32("output", name).Msg("output: removed")
}

// liveFades counts outputs with an active fade surface.
func (r *outputRegistry) liveFades() int {
	n := 0
	for _, out := range r.outputs {
		if out.fade != nil {
			n++
		}
	}
	return n
}
