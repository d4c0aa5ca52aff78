// Package shader implements custom fragment-shader elements: authors
// supply a WGSL fragment body plus optional typed uniform data, chain
// multiple passes, and optionally read the pixels already rendered
// beneath the element.
//
// Uniform data crosses the CPU/GPU boundary through the sealed Uniform
// interface. The built-in scalar and vector types cover the common
// cases; StructType builds validated struct uniforms with WGSL memory
// layout computed on the CPU side, so a mismatched layout is a
// constructor error instead of garbage on screen.
//
// Shader sources are assembled and compiled once per distinct pass
// through a Registry. A pass that fails to compile paints a magenta and
// black checkerboard in its place and reports the compiler diagnostic
// once, keeping one broken shader from spamming the log every frame.
package shader
