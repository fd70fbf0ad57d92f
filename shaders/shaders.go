// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shaders ships the default WGSL programs for the Life pipelines.
//
// Sources are addressed by path-like identifiers, the same identifiers a
// remote resource server would use:
//
//	shader/fragment/logic.frag    transition rule (B3/S23)
//	shader/vertex/logic.vert      full-screen quad, transition pass
//	shader/fragment/display.frag  cell visualization
//	shader/vertex/display.vert    full-screen quad with texture coordinates
//
// Each file holds one WGSL module with a single entry point: vs_main for
// vertex stages and fs_main for fragment stages.
package shaders

import (
	"embed"
	"io/fs"
)

// Default resource identifiers.
const (
	LogicFragment   = "shader/fragment/logic.frag"
	LogicVertex     = "shader/vertex/logic.vert"
	DisplayFragment = "shader/fragment/display.frag"
	DisplayVertex   = "shader/vertex/display.vert"
)

//go:embed shader
var files embed.FS

// FS returns the embedded shader tree rooted so that the default
// identifiers resolve directly.
func FS() fs.FS {
	return files
}
