// Package gui provides the shared value types for a GPU-accelerated GUI
// toolkit: 2D geometry, colors, and the package logger.
//
// The heavier subsystems live in the subpackages:
//
//   - text: font resolution, text shaping, the per-frame layout cache,
//     and the shaped-text query surface
//   - shader: custom fragment-shader elements with typed uniform data
//   - render: the GPU-facing paint surface and render targets
//
// All types in this package are plain values; they are safe to copy and
// safe for concurrent use.
package gui
