package device

import (
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/cpu"
)

// Native is the pure Go gonum backend. It has no GPU and always runs on the
// host CPU, using whatever SIMD paths gonum's assembly kernels support.
type Native struct{}

func (Native) Name() string { return "gonum" }

func (Native) Open(kind Kind) (Context, error) {
	if kind == GPU {
		return nil, ErrNoGPU
	}
	ctx := &cpuContext{features: CPUFeatures()}
	log.Debug().Str("features", strings.Join(ctx.features, ",")).Msg("cpu context opened")
	return ctx, nil
}

type cpuContext struct {
	features []string
}

func (c *cpuContext) Kind() Kind   { return CPU }
func (c *cpuContext) Close() error { return nil }

// CPUFeatures lists the vector extensions of the host CPU that matter for
// dense linear algebra.
func CPUFeatures() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	add(cpu.X86.HasSSE2, "sse2")
	add(cpu.X86.HasAVX, "avx")
	add(cpu.X86.HasAVX2, "avx2")
	add(cpu.X86.HasFMA, "fma")
	add(cpu.X86.HasAVX512F, "avx512f")
	add(cpu.ARM64.HasASIMD, "asimd")
	add(cpu.ARM64.HasSVE, "sve")
	return out
}

// Default returns a registry holding the Native library as a secondary
// library, so selection probes for a GPU and falls back to the CPU.
func Default() *Registry {
	r := &Registry{}
	r.Register(Secondary, Native{})
	return r
}
