package shader

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gui"
)

// CompileFunc compiles a WGSL module to SPIR-V words. The default uses
// naga; tests substitute stubs.
type CompileFunc func(wgsl string) ([]uint32, error)

// Registry deduplicates and compiles shader passes. Each distinct
// PassSpec is assembled into a full WGSL module and compiled exactly
// once; repeated registrations of the same spec return the same ID (or
// the same memoized failure) without touching the compiler again, so a
// shader registered every frame costs one map lookup.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	compile  CompileFunc
	device   hal.Device
	next     ShaderID
	ids      map[PassSpec]ShaderID
	modules  map[ShaderID]hal.ShaderModule
	failures map[PassSpec]*CompileError
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDevice makes the registry create a hal shader module for every
// compiled pass. Without a device the registry only validates and
// caches, which is what software targets and tests want.
func WithDevice(device hal.Device) RegistryOption {
	return func(r *Registry) { r.device = device }
}

// WithCompileFunc replaces the WGSL compiler.
func WithCompileFunc(fn CompileFunc) RegistryOption {
	return func(r *Registry) { r.compile = fn }
}

// NewRegistry creates a Registry compiling through naga.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		compile:  compileWGSL,
		ids:      make(map[PassSpec]ShaderID),
		modules:  make(map[ShaderID]hal.ShaderModule),
		failures: make(map[PassSpec]*CompileError),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register compiles the pass if it has not been seen, and returns its ID
// or the memoized compile error. The compiler diagnostic for a failing
// pass is logged exactly once, on first registration.
func (r *Registry) Register(spec PassSpec) (ShaderID, *CompileError) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[spec]; ok {
		return id, nil
	}
	if cerr, ok := r.failures[spec]; ok {
		return 0, cerr
	}

	source := AssembleWGSL(spec)
	code, err := r.compile(source)
	if err != nil {
		cerr := &CompileError{Message: err.Error()}
		r.failures[spec] = cerr
		gui.Logger().Error("shader compilation failed", "error", err.Error())
		gui.Logger().Debug("failing shader source", "wgsl", source)
		return 0, cerr
	}

	r.next++
	id := r.next
	if r.device != nil {
		module, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  fmt.Sprintf("custom-shader-%d", id),
			Source: hal.ShaderSource{SPIRV: code},
		})
		if err != nil {
			cerr := &CompileError{Message: err.Error()}
			r.failures[spec] = cerr
			gui.Logger().Error("shader module creation failed", "error", err.Error())
			return 0, cerr
		}
		r.modules[id] = module
	}
	r.ids[spec] = id
	return id, nil
}

// Module returns the hal shader module for a registered pass, or nil
// when the registry has no device.
func (r *Registry) Module(id ShaderID) hal.ShaderModule {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.modules[id]
}

// Destroy releases all device shader modules.
func (r *Registry) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.device != nil {
		for _, m := range r.modules {
			r.device.DestroyShaderModule(m)
		}
	}
	r.modules = make(map[ShaderID]hal.ShaderModule)
	r.ids = make(map[PassSpec]ShaderID)
	r.failures = make(map[PassSpec]*CompileError)
}

// AssembleWGSL builds the full WGSL module for a pass: the shared
// uniforms, the pass's data uniform, the backdrop bindings when read
// access is declared, the extra items, and the user body wrapped in the
// fragment entry point. Assembly is deterministic, so equal specs
// produce byte-identical sources.
func AssembleWGSL(spec PassSpec) string {
	var b strings.Builder

	b.WriteString(`struct Globals {
    viewport_size: vec2<f32>,
    scale_factor: f32,
    time: f32,
}
@group(0) @binding(0) var<uniform> globals: Globals;

struct ShaderBounds {
    origin: vec2<f32>,
    size: vec2<f32>,
    read_origin: vec2<f32>,
    read_size: vec2<f32>,
}
@group(0) @binding(1) var<uniform> bounds: ShaderBounds;
`)

	if spec.DataName != "" {
		if spec.DataDefinition != "" {
			b.WriteString("\n")
			b.WriteString(spec.DataDefinition)
		}
		fmt.Fprintf(&b, "\n@group(0) @binding(2) var<uniform> data: %s;\n", spec.DataName)
	}

	if spec.ReadAccess {
		b.WriteString(`
@group(1) @binding(0) var backdrop: texture_2d<f32>;
@group(1) @binding(1) var backdrop_sampler: sampler;
`)
	}

	if spec.Items != "" {
		b.WriteString("\n")
		b.WriteString(spec.Items)
		b.WriteString("\n")
	}

	b.WriteString("\nfn fs_user(position: vec4<f32>) -> vec4<f32> {\n")
	b.WriteString(spec.Body)
	b.WriteString("\n}\n")

	b.WriteString(`
@fragment
fn fs_main(@builtin(position) position: vec4<f32>) -> @location(0) vec4<f32> {
    return fs_user(position);
}
`)
	return b.String()
}

// compileWGSL compiles WGSL through naga and repacks the byte stream
// into little-endian SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	code := make([]uint32, len(spirv)/4)
	for i := range code {
		code[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return code, nil
}
