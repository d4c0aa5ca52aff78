package shader

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Uniform is a value that can cross the CPU/GPU boundary as shader
// uniform data. The built-in scalar and vector types implement it, as
// does StructValue for user-defined structs. The interface is sealed:
// arbitrary types cannot claim to be GPU-safe.
type Uniform interface {
	// UniformName is the WGSL type name, e.g. "f32" or "vec4<f32>".
	// Empty for NoData.
	UniformName() string

	// UniformDefinition is extra WGSL needed to declare the type (a
	// struct definition). Empty for built-in types.
	UniformDefinition() string

	// UniformAlign is the WGSL alignment of the type in bytes.
	UniformAlign() int

	// AppendUniform appends the value's WGSL memory representation.
	AppendUniform(dst []byte) []byte

	// uniform seals the interface.
	uniform()
}

// NoData is the uniform of a shader pass that takes no data.
type NoData struct{}

func (NoData) UniformName() string             { return "" }
func (NoData) UniformDefinition() string       { return "" }
func (NoData) UniformAlign() int               { return 4 }
func (NoData) AppendUniform(dst []byte) []byte { return dst }
func (NoData) uniform()                        {}

// Float is a WGSL f32 uniform.
type Float float32

func (Float) UniformName() string       { return "f32" }
func (Float) UniformDefinition() string { return "" }
func (Float) UniformAlign() int         { return 4 }
func (v Float) AppendUniform(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(v)))
}
func (Float) uniform() {}

// Int is a WGSL i32 uniform.
type Int int32

func (Int) UniformName() string       { return "i32" }
func (Int) UniformDefinition() string { return "" }
func (Int) UniformAlign() int         { return 4 }
func (v Int) AppendUniform(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}
func (Int) uniform() {}

// Uint is a WGSL u32 uniform.
type Uint uint32

func (Uint) UniformName() string       { return "u32" }
func (Uint) UniformDefinition() string { return "" }
func (Uint) UniformAlign() int         { return 4 }
func (v Uint) AppendUniform(dst []byte) []byte {
	return binary.LittleEndian.AppendUint32(dst, uint32(v))
}
func (Uint) uniform() {}

// Vec2 is a WGSL vec2<f32> uniform.
type Vec2 [2]float32

func (Vec2) UniformName() string       { return "vec2<f32>" }
func (Vec2) UniformDefinition() string { return "" }
func (Vec2) UniformAlign() int         { return 8 }
func (v Vec2) AppendUniform(dst []byte) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
func (Vec2) uniform() {}

// Vec3 is a WGSL vec3<f32> uniform. Its alignment is 16 bytes; its size
// on the wire is 12, so struct layouts pad after it.
type Vec3 [3]float32

func (Vec3) UniformName() string       { return "vec3<f32>" }
func (Vec3) UniformDefinition() string { return "" }
func (Vec3) UniformAlign() int         { return 16 }
func (v Vec3) AppendUniform(dst []byte) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
func (Vec3) uniform() {}

// Vec4 is a WGSL vec4<f32> uniform.
type Vec4 [4]float32

func (Vec4) UniformName() string       { return "vec4<f32>" }
func (Vec4) UniformDefinition() string { return "" }
func (Vec4) UniformAlign() int         { return 16 }
func (v Vec4) AppendUniform(dst []byte) []byte {
	for _, f := range v {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
	}
	return dst
}
func (Vec4) uniform() {}

// IVec2 is a WGSL vec2<i32> uniform.
type IVec2 [2]int32

func (IVec2) UniformName() string       { return "vec2<i32>" }
func (IVec2) UniformDefinition() string { return "" }
func (IVec2) UniformAlign() int         { return 8 }
func (v IVec2) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	}
	return dst
}
func (IVec2) uniform() {}

// IVec3 is a WGSL vec3<i32> uniform. Like Vec3 it aligns to 16 bytes
// and occupies 12 on the wire.
type IVec3 [3]int32

func (IVec3) UniformName() string       { return "vec3<i32>" }
func (IVec3) UniformDefinition() string { return "" }
func (IVec3) UniformAlign() int         { return 16 }
func (v IVec3) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	}
	return dst
}
func (IVec3) uniform() {}

// IVec4 is a WGSL vec4<i32> uniform.
type IVec4 [4]int32

func (IVec4) UniformName() string       { return "vec4<i32>" }
func (IVec4) UniformDefinition() string { return "" }
func (IVec4) UniformAlign() int         { return 16 }
func (v IVec4) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(n))
	}
	return dst
}
func (IVec4) uniform() {}

// UVec2 is a WGSL vec2<u32> uniform.
type UVec2 [2]uint32

func (UVec2) UniformName() string       { return "vec2<u32>" }
func (UVec2) UniformDefinition() string { return "" }
func (UVec2) UniformAlign() int         { return 8 }
func (v UVec2) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, n)
	}
	return dst
}
func (UVec2) uniform() {}

// UVec3 is a WGSL vec3<u32> uniform. Like Vec3 it aligns to 16 bytes
// and occupies 12 on the wire.
type UVec3 [3]uint32

func (UVec3) UniformName() string       { return "vec3<u32>" }
func (UVec3) UniformDefinition() string { return "" }
func (UVec3) UniformAlign() int         { return 16 }
func (v UVec3) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, n)
	}
	return dst
}
func (UVec3) uniform() {}

// UVec4 is a WGSL vec4<u32> uniform.
type UVec4 [4]uint32

func (UVec4) UniformName() string       { return "vec4<u32>" }
func (UVec4) UniformDefinition() string { return "" }
func (UVec4) UniformAlign() int         { return 16 }
func (v UVec4) AppendUniform(dst []byte) []byte {
	for _, n := range v {
		dst = binary.LittleEndian.AppendUint32(dst, n)
	}
	return dst
}
func (UVec4) uniform() {}

// fieldKind describes one WGSL type usable as a struct field.
type fieldKind struct {
	size  int
	align int
}

var fieldKinds = map[string]fieldKind{
	"f32":       {size: 4, align: 4},
	"i32":       {size: 4, align: 4},
	"u32":       {size: 4, align: 4},
	"vec2<f32>": {size: 8, align: 8},
	"vec3<f32>": {size: 12, align: 16},
	"vec4<f32>": {size: 16, align: 16},
}

// StructField declares one field of a struct uniform. Type must be one
// of the scalar or vector WGSL type names.
type StructField struct {
	Name string
	Type string
}

// StructType is a validated WGSL struct layout. Build one with
// NewStructType, then produce values with Value. The layout (field
// offsets, struct alignment and size) follows WGSL uniform address
// space rules, computed here so that the bytes sent to the GPU always
// match what the shader declares.
type StructType struct {
	name    string
	fields  []StructField
	offsets []int
	size    int
	align   int
}

// NewStructType validates the field list and computes the WGSL layout.
// It fails on an empty name or field list, a duplicate field name, or a
// field type that is not a supported scalar or vector.
func NewStructType(name string, fields ...StructField) (*StructType, error) {
	if name == "" {
		return nil, fmt.Errorf("shader: struct uniform needs a name")
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("shader: struct uniform %q has no fields", name)
	}
	t := &StructType{
		name:    name,
		fields:  fields,
		offsets: make([]int, len(fields)),
		align:   16, // uniform address space minimum
	}
	seen := make(map[string]bool, len(fields))
	offset := 0
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("shader: struct %q: field %d has no name", name, i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("shader: struct %q: duplicate field %q", name, f.Name)
		}
		seen[f.Name] = true
		kind, ok := fieldKinds[f.Type]
		if !ok {
			return nil, fmt.Errorf("shader: struct %q: field %q has unsupported type %q", name, f.Name, f.Type)
		}
		offset = roundUp(offset, kind.align)
		t.offsets[i] = offset
		offset += kind.size
		if kind.align > t.align {
			t.align = kind.align
		}
	}
	t.size = roundUp(offset, t.align)
	return t, nil
}

// Name returns the WGSL struct name.
func (t *StructType) Name() string { return t.name }

// Size returns the struct's WGSL size in bytes, padding included.
func (t *StructType) Size() int { return t.size }

// Definition returns the WGSL struct declaration.
func (t *StructType) Definition() string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", t.name)
	for _, f := range t.fields {
		fmt.Fprintf(&b, "    %s: %s,\n", f.Name, f.Type)
	}
	b.WriteString("}\n")
	return b.String()
}

// Value encodes field values into a StructValue. Values are given in
// field order and must match the declared types: f32 takes float32,
// i32 int32, u32 uint32, and vectors take their array forms.
func (t *StructType) Value(values ...any) (StructValue, error) {
	if len(values) != len(t.fields) {
		return StructValue{}, fmt.Errorf("shader: struct %q wants %d values, got %d",
			t.name, len(t.fields), len(values))
	}
	data := make([]byte, t.size)
	for i, v := range values {
		if err := encodeField(data[t.offsets[i]:], t.fields[i].Type, v); err != nil {
			return StructValue{}, fmt.Errorf("shader: struct %q field %q: %w",
				t.name, t.fields[i].Name, err)
		}
	}
	return StructValue{typ: t, data: data}, nil
}

func encodeField(dst []byte, wgslType string, v any) error {
	putF32 := func(off int, f float32) {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
	}
	switch wgslType {
	case "f32":
		f, ok := v.(float32)
		if !ok {
			return fmt.Errorf("want float32, got %T", v)
		}
		putF32(0, f)
	case "i32":
		n, ok := v.(int32)
		if !ok {
			return fmt.Errorf("want int32, got %T", v)
		}
		binary.LittleEndian.PutUint32(dst, uint32(n))
	case "u32":
		n, ok := v.(uint32)
		if !ok {
			return fmt.Errorf("want uint32, got %T", v)
		}
		binary.LittleEndian.PutUint32(dst, n)
	case "vec2<f32>":
		a, ok := v.([2]float32)
		if !ok {
			return fmt.Errorf("want [2]float32, got %T", v)
		}
		for i, f := range a {
			putF32(i*4, f)
		}
	case "vec3<f32>":
		a, ok := v.([3]float32)
		if !ok {
			return fmt.Errorf("want [3]float32, got %T", v)
		}
		for i, f := range a {
			putF32(i*4, f)
		}
	case "vec4<f32>":
		a, ok := v.([4]float32)
		if !ok {
			return fmt.Errorf("want [4]float32, got %T", v)
		}
		for i, f := range a {
			putF32(i*4, f)
		}
	default:
		return fmt.Errorf("unsupported type %q", wgslType)
	}
	return nil
}

// StructValue is an encoded struct uniform, produced by StructType.Value.
type StructValue struct {
	typ  *StructType
	data []byte
}

func (v StructValue) UniformName() string {
	if v.typ == nil {
		return ""
	}
	return v.typ.name
}

func (v StructValue) UniformDefinition() string {
	if v.typ == nil {
		return ""
	}
	return v.typ.Definition()
}

func (v StructValue) UniformAlign() int {
	if v.typ == nil {
		return 4
	}
	return v.typ.align
}

func (v StructValue) AppendUniform(dst []byte) []byte {
	return append(dst, v.data...)
}

func (StructValue) uniform() {}

func roundUp(v, align int) int {
	return (v + align - 1) / align * align
}
