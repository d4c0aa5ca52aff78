package shader

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestBuiltinUniformAlignments(t *testing.T) {
	tests := []struct {
		u     Uniform
		name  string
		align int
		size  int
	}{
		{Float(1), "f32", 4, 4},
		{Int(-1), "i32", 4, 4},
		{Uint(1), "u32", 4, 4},
		{Vec2{1, 2}, "vec2<f32>", 8, 8},
		{Vec3{1, 2, 3}, "vec3<f32>", 16, 12},
		{Vec4{1, 2, 3, 4}, "vec4<f32>", 16, 16},
		{IVec2{1, -2}, "vec2<i32>", 8, 8},
		{IVec3{1, -2, 3}, "vec3<i32>", 16, 12},
		{IVec4{1, -2, 3, -4}, "vec4<i32>", 16, 16},
		{UVec2{1, 2}, "vec2<u32>", 8, 8},
		{UVec3{1, 2, 3}, "vec3<u32>", 16, 12},
		{UVec4{1, 2, 3, 4}, "vec4<u32>", 16, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.UniformName(); got != tt.name {
				t.Errorf("UniformName() = %q", got)
			}
			if got := tt.u.UniformAlign(); got != tt.align {
				t.Errorf("UniformAlign() = %d, want %d", got, tt.align)
			}
			if got := len(tt.u.AppendUniform(nil)); got != tt.size {
				t.Errorf("encoded size = %d, want %d", got, tt.size)
			}
			if tt.u.UniformDefinition() != "" {
				t.Error("built-in type should need no definition")
			}
		})
	}
}

func TestFloatEncodingLittleEndian(t *testing.T) {
	got := Float(1.5).AppendUniform(nil)
	want := binary.LittleEndian.AppendUint32(nil, math.Float32bits(1.5))
	if !bytes.Equal(got, want) {
		t.Errorf("encoded = %x, want %x", got, want)
	}
}

func TestNoDataEncodesNothing(t *testing.T) {
	var n NoData
	if n.UniformName() != "" || len(n.AppendUniform(nil)) != 0 {
		t.Error("NoData must contribute no binding and no bytes")
	}
}

func TestStructTypeLayout(t *testing.T) {
	st, err := NewStructType("Params",
		StructField{Name: "intensity", Type: "f32"},
		StructField{Name: "tint", Type: "vec3<f32>"},
		StructField{Name: "mode", Type: "u32"},
	)
	if err != nil {
		t.Fatalf("NewStructType: %v", err)
	}

	// f32 at 0; vec3 aligns to 16; u32 packs after the vec3's 12 bytes;
	// struct size rounds to the 16-byte struct alignment.
	wantOffsets := []int{0, 16, 28}
	for i, want := range wantOffsets {
		if st.offsets[i] != want {
			t.Errorf("field %d offset = %d, want %d", i, st.offsets[i], want)
		}
	}
	if st.Size() != 32 {
		t.Errorf("Size() = %d, want 32", st.Size())
	}

	def := st.Definition()
	for _, want := range []string{"struct Params {", "intensity: f32,", "tint: vec3<f32>,", "mode: u32,"} {
		if !strings.Contains(def, want) {
			t.Errorf("Definition() missing %q:\n%s", want, def)
		}
	}
}

func TestStructTypeRejectsBadDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		sname  string
		fields []StructField
	}{
		{"empty name", "", []StructField{{Name: "a", Type: "f32"}}},
		{"no fields", "Empty", nil},
		{"unnamed field", "S", []StructField{{Type: "f32"}}},
		{"duplicate field", "S", []StructField{{Name: "a", Type: "f32"}, {Name: "a", Type: "u32"}}},
		{"unsupported type", "S", []StructField{{Name: "a", Type: "mat4x4<f32>"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStructType(tt.sname, tt.fields...); err == nil {
				t.Error("want error")
			}
		})
	}
}

func TestStructValueEncoding(t *testing.T) {
	st, err := NewStructType("Params",
		StructField{Name: "a", Type: "f32"},
		StructField{Name: "b", Type: "vec2<f32>"},
	)
	if err != nil {
		t.Fatalf("NewStructType: %v", err)
	}
	v, err := st.Value(float32(2), [2]float32{3, 4})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	data := v.AppendUniform(nil)
	if len(data) != st.Size() {
		t.Fatalf("encoded %d bytes, want %d", len(data), st.Size())
	}
	readF32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	if readF32(0) != 2 {
		t.Errorf("field a = %v", readF32(0))
	}
	// vec2 aligns to 8.
	if readF32(8) != 3 || readF32(12) != 4 {
		t.Errorf("field b = %v, %v", readF32(8), readF32(12))
	}
}

func TestStructValueRejectsMismatches(t *testing.T) {
	st, err := NewStructType("P", StructField{Name: "a", Type: "f32"})
	if err != nil {
		t.Fatalf("NewStructType: %v", err)
	}
	if _, err := st.Value(); err == nil {
		t.Error("want error for missing values")
	}
	if _, err := st.Value(float64(1)); err == nil {
		t.Error("want error for float64 into f32 field")
	}
	if _, err := st.Value(float32(1), float32(2)); err == nil {
		t.Error("want error for extra value")
	}
}
