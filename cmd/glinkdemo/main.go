// Command glinkdemo runs the glink shader front-end over a WGSL module
// and prints what a linker would see: the module's resource
// declarations, the binding slots a signature built from them would
// assign, and the GLSL each stage translates to.
//
// No GPU is touched; everything happens in the WGSL front-end.
//
// Usage:
//
//	glinkdemo [-shader file.wgsl] [-glsl 430] [-spirv]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gogpu/naga/glsl"

	"github.com/gogpu/glink"
	"github.com/gogpu/glink/driver"
	"github.com/gogpu/glink/shader"
)

// demoWGSL is a small textured-lighting module used when no shader
// file is given.
const demoWGSL = `
struct Camera {
    mvp0: vec4<f32>,
    mvp1: vec4<f32>,
    mvp2: vec4<f32>,
    mvp3: vec4<f32>,
    tint: vec4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;
@group(0) @binding(1) var base_color: texture_2d<f32>;
@group(0) @binding(2) var base_sampler: sampler;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) uv: vec2<f32>,
    @location(1) shade: f32,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    let p = vec4<f32>(in.position.x, in.position.y, in.position.z, 1.0);
    var out: VertexOutput;
    out.clip_position = vec4<f32>(
        dot(camera.mvp0, p),
        dot(camera.mvp1, p),
        dot(camera.mvp2, p),
        dot(camera.mvp3, p),
    );
    out.uv = in.uv;
    out.shade = max(dot(in.normal, vec3<f32>(0.0, 1.0, 0.0)), 0.2);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let texel = textureSample(base_color, base_sampler, in.uv);
    let lit = vec4<f32>(texel.x * in.shade, texel.y * in.shade, texel.z * in.shade, 1.0);
    return lit * camera.tint;
}
`

func main() {
	var (
		shaderPath = flag.String("shader", "", "WGSL file to inspect (builtin demo shader when empty)")
		glslVer    = flag.Int("glsl", 430, "GLSL version to generate (330, 430 or 460)")
		spirv      = flag.Bool("spirv", false, "also assemble SPIR-V and report its size")
	)
	flag.Parse()

	source := demoWGSL
	name := "builtin demo shader"
	if *shaderPath != "" {
		data, err := os.ReadFile(*shaderPath)
		if err != nil {
			log.Fatalf("Failed to read shader: %v", err)
		}
		source = string(data)
		name = *shaderPath
	}

	version, ok := versionFor(*glslVer)
	if !ok {
		log.Fatalf("Unsupported GLSL version %d (use 330, 430 or 460)", *glslVer)
	}

	fmt.Printf("Module: %s\n\n", name)

	decls, err := shader.Stage{Kind: driver.StageVertex, Source: source}.Declarations()
	if err != nil {
		log.Fatalf("Failed to parse module: %v", err)
	}
	printDeclarations(decls)
	printSignature(decls)

	translated := 0
	for _, kind := range []driver.StageKind{driver.StageVertex, driver.StageFragment, driver.StageCompute} {
		stage := shader.Stage{Kind: kind, Source: source}
		tr, err := shader.TranslateGLSL(stage, shader.GLSLOptions{Version: version})
		if errors.Is(err, shader.ErrNoEntryPoint) {
			continue
		}
		if err != nil {
			log.Fatalf("Failed to translate %s stage: %v", kind, err)
		}
		translated++

		fmt.Printf("%s stage (GLSL %s, entry %q)\n", kind, tr.RequiredVersion, tr.EntryPoint)
		for _, pair := range tr.CombinedSamplers {
			fmt.Printf("  combined sampler: %s\n", pair)
		}
		if *spirv {
			bin, err := stage.CompileSPIRV()
			if err != nil {
				log.Fatalf("Failed to assemble %s stage SPIR-V: %v", kind, err)
			}
			fmt.Printf("  SPIR-V: %d words\n", len(bin)/4)
		}
		fmt.Println()
		fmt.Println(tr.Source)
	}
	if translated == 0 {
		log.Fatal("No vertex, fragment or compute entry points found")
	}
}

func printDeclarations(decls []shader.Declaration) {
	fmt.Println("Declarations:")
	if len(decls) == 0 {
		fmt.Println("  (none)")
	}
	for _, d := range decls {
		fmt.Printf("  @group(%d) @binding(%d)  %-15s %s", d.Group, d.Binding, d.Kind, d.Name)
		if d.ArraySize > 1 {
			fmt.Printf("[%d]", d.ArraySize)
		}
		fmt.Println()
	}
	fmt.Println()
}

func printSignature(decls []shader.Declaration) {
	sig, err := glink.NewSignature("module", shader.SignatureEntries(decls))
	if err != nil {
		log.Fatalf("Failed to build signature: %v", err)
	}
	fmt.Println("Signature slots:")
	for _, d := range decls {
		if slot, ok := sig.SlotOf(d.Name); ok {
			fmt.Printf("  %-20s -> %s slot %d\n", d.Name, d.Kind, slot)
		}
	}
	fmt.Println()
}

func versionFor(v int) (glsl.Version, bool) {
	switch v {
	case 330:
		return glsl.Version330, true
	case 430:
		return glsl.Version430, true
	case 460:
		return glsl.Version460, true
	}
	return glsl.Version{}, false
}
