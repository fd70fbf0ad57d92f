// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"testing"

	"github.com/gogpu/gglife/backend/software"
)

func TestLayoutUniforms(t *testing.T) {
	slots, size := layoutUniforms(simulationUniforms)
	if size != 16 {
		t.Errorf("block size = %d, want 16", size)
	}
	want := map[string]uint64{uniformSize: 0, uniformState: 8, uniformEdges: 12}
	for name, off := range want {
		if got := slots[name].offset; got != off {
			t.Errorf("%s offset = %d, want %d", name, got, off)
		}
	}

	// A u32 before a vec2 is padded to the vec2 alignment.
	slots, size = layoutUniforms([]uniformField{{"a", typeU32}, {"b", typeVec2F32}})
	if slots["b"].offset != 8 || size != 16 {
		t.Errorf("b offset = %d, size = %d, want 8 and 16", slots["b"].offset, size)
	}

	if _, size = layoutUniforms(nil); size != 0 {
		t.Errorf("empty block size = %d, want 0", size)
	}
}

func TestProgramResolvesHandles(t *testing.T) {
	dev := software.New(software.Options{SurfaceWidth: 4, SurfaceHeight: 4})
	defer dev.Destroy()

	ids := DefaultShaderIDs()
	src, err := loadSources(DefaultLoader(), ids)
	if err != nil {
		t.Fatal(err)
	}
	p, err := compileProgram(dev, simulationLayout(ids), src.logic)
	if err != nil {
		t.Fatalf("compileProgram: %v", err)
	}
	defer p.release()

	if loc, ok := p.Attribute(attrPosition); !ok || loc != 0 {
		t.Errorf("Attribute(a_position) = %d, %v", loc, ok)
	}
	if off, ok := p.Uniform(uniformState); !ok || off != 8 {
		t.Errorf("Uniform(u_state) = %d, %v", off, ok)
	}
	if b, ok := p.Uniform(uniformTex); !ok || b != 1 {
		t.Errorf("Uniform(u_texture) = %d, %v", b, ok)
	}
	if _, ok := p.Uniform("u_missing"); ok {
		t.Error("Uniform resolved an undeclared name")
	}

	p.release()
	if st := dev.Stats(); st.Programs != 0 || st.Shaders != 0 {
		t.Errorf("release left %+v", st)
	}
}
