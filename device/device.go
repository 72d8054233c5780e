// Package device selects the execution context the numerical stages run in.
//
// Libraries are registered in one of two tiers. A primary library controls a
// GPU directly and is trusted to provide one. A secondary library has to be
// probed by opening a GPU context; failure of the probe means CPU. With no
// library registered at all there is nothing to run on and selection fails.
package device

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var (
	// ErrUnavailable is returned by Select when no library is registered.
	ErrUnavailable = errors.New("device: no acceleration library available")
	// ErrNoGPU is returned by libraries that cannot open a GPU context.
	ErrNoGPU = errors.New("device: no GPU device")
)

type Kind int

const (
	CPU Kind = iota
	GPU
)

func (k Kind) String() string {
	switch k {
	case GPU:
		return "gpu"
	default:
		return "cpu"
	}
}

// Context is an acquired execution mode. Numerical work done between Open and
// Close is routed to the context's device.
type Context interface {
	Kind() Kind
	Close() error
}

// Library opens execution contexts.
type Library interface {
	Name() string
	Open(kind Kind) (Context, error)
}

type Tier int

const (
	// Primary libraries control a GPU and are not probed.
	Primary Tier = iota
	// Secondary libraries are probed before a GPU context is trusted.
	Secondary
)

type State int

const (
	StateUnavailable State = iota
	StateGPUPreferred
	StateGPUProbed
)

func (s State) String() string {
	switch s {
	case StateGPUPreferred:
		return "gpu-preferred"
	case StateGPUProbed:
		return "gpu-probed"
	default:
		return "unavailable"
	}
}

// Decision is the outcome of Select.
type Decision struct {
	State   State
	Library Library
	Kind    Kind
}

type Registry struct {
	primary   []Library
	secondary []Library
}

func (r *Registry) Register(tier Tier, lib Library) {
	if tier == Primary {
		r.primary = append(r.primary, lib)
		return
	}
	r.secondary = append(r.secondary, lib)
}

// Select decides once which library and device kind to use.
func (r *Registry) Select() (Decision, error) {
	if len(r.primary) > 0 {
		lib := r.primary[0]
		log.Debug().Str("library", lib.Name()).Msg("gpu control library found")
		return Decision{State: StateGPUPreferred, Library: lib, Kind: GPU}, nil
	}
	if len(r.secondary) > 0 {
		lib := r.secondary[0]
		kind := CPU
		if err := probe(lib); err != nil {
			log.Debug().Str("library", lib.Name()).Err(err).Msg("gpu probe failed, using cpu")
		} else {
			kind = GPU
		}
		return Decision{State: StateGPUProbed, Library: lib, Kind: kind}, nil
	}
	return Decision{State: StateUnavailable}, ErrUnavailable
}

func probe(lib Library) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("probe panicked: %v", p)
		}
	}()
	ctx, err := lib.Open(GPU)
	if err != nil {
		return err
	}
	return ctx.Close()
}

// Run opens the decided context, calls fn inside it and closes the context
// before returning, also when fn fails or panics. A close error is reported
// only if fn succeeded.
func Run(d Decision, fn func(Context) error) (err error) {
	if d.Library == nil {
		return ErrUnavailable
	}
	ctx, err := d.Library.Open(d.Kind)
	if err != nil {
		return fmt.Errorf("open %s context on %s: %w", d.Kind, d.Library.Name(), err)
	}
	defer func() {
		if cerr := ctx.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s context: %w", d.Kind, cerr)
		}
	}()
	return fn(ctx)
}
