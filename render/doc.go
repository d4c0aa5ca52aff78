// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render records frames of draw operations and delivers them to
// render targets. Frame implements the painter interfaces of the text
// and shader packages, so a UI paints shaped text, decorations, and
// custom shader passes into one ordered list; Flush composites the list
// onto a CPU pixmap, while GPU backends consume Ops directly.
package render
