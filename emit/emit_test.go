package emit

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/wippyai/fmodgen/decl"
	fmoderrors "github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/header"
	"github.com/wippyai/fmodgen/linker"
)

const commonHeader = `typedef struct FMOD_SYSTEM FMOD_SYSTEM;
typedef int FMOD_BOOL;
typedef unsigned int FMOD_INITFLAGS;
#define FMOD_INIT_NORMAL 0x00000000
#define FMOD_INIT_STREAM_FROM_UPDATE 0x00000001
#define FMOD_INIT_MIX_FROM_UPDATE (FMOD_INIT_STREAM_FROM_UPDATE << 1)
typedef enum FMOD_RESULT
{
    FMOD_OK,
    FMOD_ERR_BADCOMMAND,
    FMOD_RESULT_FORCEINT = 65536
} FMOD_RESULT;
#define FMOD_MAX_CHANNEL_WIDTH 32
typedef struct FMOD_VECTOR
{
    float x;
    float y;
    float z;
} FMOD_VECTOR;
typedef struct FMOD_CHANNEL_LEVELS
{
    int count;
    float levels[FMOD_MAX_CHANNEL_WIDTH];
    void *userdata;
    const char *name;
} FMOD_CHANNEL_LEVELS;
typedef FMOD_RESULT (F_CALL *FMOD_DEBUG_CALLBACK) (FMOD_INITFLAGS flags, const char *file, int line);
#define FMOD_PRESET_OFF { 1000, 7, 11, -80.0f }
#define FMOD_ALIGN(x) (((x) + 3) & ~3)
`

const coreHeader = `FMOD_RESULT F_API FMOD_System_Create(FMOD_SYSTEM **system, unsigned int headerversion);
FMOD_RESULT F_API FMOD_System_Release(FMOD_SYSTEM *system);
FMOD_BOOL F_API FMOD_System_IsValid(FMOD_SYSTEM *system);
void F_API FMOD_System_Touch(FMOD_SYSTEM *system, void *userdata, int type);
float F_API FMOD_Vector_Length(FMOD_VECTOR v);
`

const errorsHeader = `#include "fmod.h"
static const char *FMOD_ErrorString(FMOD_RESULT errcode) __attribute__((unused));
static const char *FMOD_ErrorString(FMOD_RESULT errcode)
{
    switch (errcode)
    {
        case FMOD_OK:             return "No errors.";
        case FMOD_ERR_BADCOMMAND: return "Tried to call a function on a data type that does not allow this type of functionality (ie calling \"lock\" on a stream).";
        default :                 return "Unknown error.";
    };
}
`

type source struct {
	dialect decl.Dialect
	path    string
	text    string
}

func link(t *testing.T, sources ...source) *linker.Model {
	t.Helper()
	var files []*decl.File
	for _, s := range sources {
		f, err := header.Translate(s.dialect, s.path, s.text)
		if err != nil {
			t.Fatalf("Translate(%s) failed: %v", s.path, err)
		}
		files = append(files, f)
	}
	m, err := linker.Link(files)
	if err != nil {
		t.Fatalf("Link failed: %v", err)
	}
	return m
}

func corpus(t *testing.T) (*linker.Model, []Group) {
	t.Helper()
	m := link(t,
		source{decl.CoreCommon, "fmod_common.h", commonHeader},
		source{decl.Core, "fmod.h", coreHeader},
		source{decl.ErrorTable, "fmod_errors.h", errorsHeader},
	)
	groups := []Group{
		{Name: "core", Library: "fmod", Files: []string{"fmod_common.h", "fmod.h"}},
		{Name: "errors", Files: []string{"fmod_errors.h"}},
	}
	return m, groups
}

func emitAll(t *testing.T, m *linker.Model, groups []Group, cfg Config) map[string]string {
	t.Helper()
	outs, err := New(m, cfg).Emit(groups)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	files := make(map[string]string, len(outs))
	for _, o := range outs {
		if _, err := parser.ParseFile(token.NewFileSet(), o.Name, o.Source, parser.AllErrors); err != nil {
			t.Fatalf("%s does not parse: %v\n%s", o.Name, err, o.Source)
		}
		files[o.Name] = string(o.Source)
	}
	return files
}

func match(t *testing.T, src, pattern string) {
	t.Helper()
	if !regexp.MustCompile(pattern).MatchString(src) {
		t.Errorf("output does not match %q:\n%s", pattern, src)
	}
}

func inOrder(t *testing.T, src string, parts ...string) {
	t.Helper()
	last := -1
	for _, p := range parts {
		i := strings.Index(src, p)
		if i < 0 {
			t.Errorf("missing %q", p)
			return
		}
		if i < last {
			t.Errorf("%q is out of order", p)
		}
		last = i
	}
}

func TestEmit_Outputs(t *testing.T) {
	m, groups := corpus(t)
	files := emitAll(t, m, groups, DefaultConfig())

	for _, name := range []string{"core.go", "errors.go", "loader.go"} {
		src, ok := files[name]
		if !ok {
			t.Fatalf("missing output %s", name)
		}
		if !strings.HasPrefix(src, "// Code generated by fmodgen") || !strings.Contains(src, "DO NOT EDIT.") {
			t.Errorf("%s lacks the generated-code header", name)
		}
		if !strings.Contains(src, "\npackage fmod\n") {
			t.Errorf("%s has the wrong package clause", name)
		}
	}
	if len(files) != 3 {
		t.Errorf("got %d outputs, want 3", len(files))
	}
}

func TestEmit_Sections(t *testing.T) {
	m, groups := corpus(t)
	core := emitAll(t, m, groups, DefaultConfig())["core.go"]

	inOrder(t, core,
		"type FMOD_SYSTEM struct{ _ [0]byte }",
		"type FMOD_BOOL = int32",
		"type FMOD_INITFLAGS uint32",
		"type FMOD_RESULT int32",
		"const FMOD_MAX_CHANNEL_WIDTH = 32",
		"var FMOD_PRESET_OFF",
		"// #define FMOD_ALIGN(x) (((x) + 3) & ~3)",
		"type FMOD_VECTOR struct",
		"type FMOD_CHANNEL_LEVELS struct",
		"type FMOD_DEBUG_CALLBACK uintptr",
		"func FMOD_System_Create(",
		"func FMOD_Vector_Length(",
		"func loadCore(dir string) error",
	)
}

func TestEmit_FieldOrder(t *testing.T) {
	m, groups := corpus(t)
	core := emitAll(t, m, groups, DefaultConfig())["core.go"]

	start := strings.Index(core, "type FMOD_CHANNEL_LEVELS struct")
	if start < 0 {
		t.Fatal("FMOD_CHANNEL_LEVELS not emitted")
	}
	body := core[start : start+strings.Index(core[start:], "}")]
	inOrder(t, body, "\tCount ", "\tLevels ", "\tUserdata ", "\tName ")
	match(t, body, `Count\s+int32`)
	match(t, body, `Levels\s+\[FMOD_MAX_CHANNEL_WIDTH\]float32`)
	match(t, body, `Userdata\s+unsafe\.Pointer`)
	match(t, body, `Name\s+\*byte`)

	vector := core[strings.Index(core, "type FMOD_VECTOR struct"):]
	inOrder(t, vector[:strings.Index(vector, "}")], "\tX ", "\tY ", "\tZ ")
}

func TestEmit_Values(t *testing.T) {
	m, groups := corpus(t)
	core := emitAll(t, m, groups, DefaultConfig())["core.go"]

	match(t, core, `FMOD_INIT_NORMAL\s+FMOD_INITFLAGS = 0x00000000`)
	match(t, core, `FMOD_INIT_MIX_FROM_UPDATE\s+FMOD_INITFLAGS = \(FMOD_INIT_STREAM_FROM_UPDATE << 1\)`)
	match(t, core, `FMOD_OK\s+FMOD_RESULT = 0`)
	match(t, core, `FMOD_ERR_BADCOMMAND\s+FMOD_RESULT = 1`)
	match(t, core, `FMOD_RESULT_FORCEINT\s+FMOD_RESULT = 65536`)
	match(t, core, `var FMOD_PRESET_OFF = \[4\]float32\{1000, 7, 11, -80\.0\}`)
}

func TestEmit_Functions(t *testing.T) {
	m, groups := corpus(t)
	files := emitAll(t, m, groups, DefaultConfig())
	core := files["core.go"]

	match(t, core, `func FMOD_System_Create\(system \*\*FMOD_SYSTEM, headerversion uint32\) FMOD_RESULT \{
\s+var ret ffi\.Arg
\s+fmodSystemCreate\.Call\(unsafe\.Pointer\(&ret\), unsafe\.Pointer\(&system\), unsafe\.Pointer\(&headerversion\)\)
\s+return FMOD_RESULT\(ret\)`)
	match(t, core, `func FMOD_System_IsValid\(system \*FMOD_SYSTEM\) FMOD_BOOL \{`)
	match(t, core, `func FMOD_System_Touch\(system \*FMOD_SYSTEM, userdata unsafe\.Pointer, type_ int32\) \{
\s+fmodSystemTouch\.Call\(nil, `)
	match(t, core, `var ret float32`)
	match(t, core, `//\s+FMOD_RESULT F_API FMOD_System_Create\(FMOD_SYSTEM \*\*system, unsigned int headerversion\)`)

	match(t, core, `lib, err := openLibrary\(dir, "fmod"\)`)
	match(t, core, `if fmodSystemCreate, err = lib\.Prep\("FMOD_System_Create", &ffi\.TypeSint32, &ffi\.TypePointer, &ffi\.TypeUint32\); err != nil`)
	match(t, core, `lib\.Prep\("FMOD_System_Touch", &ffi\.TypeVoid, &ffi\.TypePointer, &ffi\.TypePointer, &ffi\.TypeSint32\)`)
	match(t, core, `lib\.Prep\("FMOD_Vector_Length", &ffi\.TypeFloat, &ffiTypeFMOD_VECTOR\)`)
	match(t, core, `var ffiTypeFMOD_VECTOR = ffi\.NewType\(&ffi\.TypeFloat, &ffi\.TypeFloat, &ffi\.TypeFloat\)`)
	if strings.Contains(core, "ffiTypeFMOD_CHANNEL_LEVELS") {
		t.Error("descriptor emitted for a structure never passed by value")
	}

	loader := files["loader.go"]
	match(t, loader, `if err := loadCore\(dir\); err != nil`)
	match(t, loader, `case "windows":\s+return name \+ ".dll"`)
	match(t, loader, `return ffi\.Lib\{\}, fmt\.Errorf\("load %s: %w", name, err\)`)
	if strings.Contains(loader, "loadErrors") {
		t.Error("loader calls a group without functions")
	}
}

func TestEmit_ErrorMapping(t *testing.T) {
	m, groups := corpus(t)
	errs := emitAll(t, m, groups, DefaultConfig())["errors.go"]

	match(t, errs, `func FMOD_ErrorString\(errcode FMOD_RESULT\) string \{`)
	match(t, errs, `case FMOD_OK:\s+return "No errors\."`)
	match(t, errs, `calling \\"lock\\" on a stream`)
	match(t, errs, `default:\s+return "Unknown error\."`)
	if strings.Contains(errs, "import") {
		t.Error("error lookup should need no imports")
	}
}

func TestEmit_ErrorMappingWithoutCases(t *testing.T) {
	m := link(t,
		source{decl.CoreCommon, "fmod_common.h", "typedef enum FMOD_RESULT { FMOD_OK } FMOD_RESULT;\n"},
		source{decl.ErrorTable, "fmod_errors.h", `static const char *FMOD_ErrorString(FMOD_RESULT errcode)
{
    switch (errcode)
    {
    };
}
`},
	)
	files := emitAll(t, m, []Group{{Name: "all", Files: []string{"fmod_common.h", "fmod_errors.h"}}}, DefaultConfig())
	match(t, files["all.go"], `switch errcode \{\s+default:\s+return "Unknown error\."`)
	if _, ok := files["loader.go"]; ok {
		t.Error("loader emitted for a corpus without functions")
	}
}

func TestEmit_Idempotent(t *testing.T) {
	m, groups := corpus(t)
	first, err := New(m, DefaultConfig()).Emit(groups)
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := New(m, DefaultConfig()).Emit(groups)
		if err != nil {
			t.Fatalf("Emit failed: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d files, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j].Name != first[j].Name || !bytes.Equal(again[j].Source, first[j].Source) {
				t.Errorf("run %d: %s differs", i, first[j].Name)
			}
		}
	}
}

func TestEmit_Union(t *testing.T) {
	m := link(t, source{decl.CoreDSP, "fmod_dsp.h", `typedef struct FMOD_DSP_PARAMETER_DESC
{
    int type;
    char name[16];
    union
    {
        float floatdesc;
        long long intdesc;
        void *datadesc;
    };
} FMOD_DSP_PARAMETER_DESC;
`})
	src := emitAll(t, m, []Group{{Name: "dsp", Files: []string{"fmod_dsp.h"}}}, DefaultConfig())["dsp.go"]

	match(t, src, `Type\s+int32`)
	match(t, src, `Name\s+\[16\]byte`)
	match(t, src, `Union\s+FMOD_DSP_PARAMETER_DESC_UNION`)
	match(t, src, `type FMOD_DSP_PARAMETER_DESC_UNION struct \{\s+_\s+\[0\]float32\s+_\s+\[0\]int64\s+_\s+\[0\]unsafe\.Pointer`)
	match(t, src, `data\s+\[max\(unsafe\.Sizeof\(\[1\]float32\{\}\), unsafe\.Sizeof\(\[1\]int64\{\}\), unsafe\.Sizeof\(\[1\]unsafe\.Pointer\{\}\)\)\]byte`)
	match(t, src, `func \(u \*FMOD_DSP_PARAMETER_DESC_UNION\) Intdesc\(\) \*int64 \{ return \(\*int64\)\(unsafe\.Pointer\(&u\.data\)\) \}`)
}

func TestEmit_Unsupported(t *testing.T) {
	tests := []struct {
		name    string
		sources []source
		cfg     func(*Config)
		what    string
	}{
		{
			name: "variadic_callback_rejected",
			sources: []source{{decl.CoreCommon, "a.h",
				"typedef void (F_CALL *FMOD_LOG_CALLBACK) (const char *format, ...);\n"}},
			cfg:  func(c *Config) { c.Variadic = VariadicReject },
			what: "FMOD_LOG_CALLBACK",
		},
		{
			name: "flag_out_of_range",
			sources: []source{{decl.CoreCommon, "a.h",
				"typedef unsigned char FMOD_SMALLFLAGS;\n#define FMOD_SMALL_LOW 0x01\n#define FMOD_SMALL_HIGH 0x100\n"}},
			what: "FMOD_SMALLFLAGS.FMOD_SMALL_HIGH",
		},
		{
			name: "negative_unsigned_flag",
			sources: []source{{decl.CoreCommon, "a.h",
				"typedef unsigned int FMOD_MODE;\n#define FMOD_MODE_BAD (-1)\n"}},
			what: "FMOD_MODE.FMOD_MODE_BAD",
		},
		{
			name: "union_by_value",
			sources: []source{
				{decl.CoreCommon, "a.h", "typedef int FMOD_RESULT;\ntypedef struct U { int a; union { int b; float c; }; } U;\n"},
				{decl.Core, "b.h", "FMOD_RESULT F_API FMOD_Take(U u);\n"},
			},
			what: "U",
		},
		{
			name: "undeclared_array_length",
			sources: []source{{decl.CoreCommon, "a.h",
				"typedef struct S { float v[FMOD_UNDECLARED]; } S;\n"}},
			what: "S.v",
		},
		{
			name: "opaque_by_value",
			sources: []source{
				{decl.CoreCommon, "a.h", "typedef int FMOD_RESULT;\ntypedef struct FMOD_SOUND FMOD_SOUND;\n"},
				{decl.Core, "b.h", "FMOD_RESULT F_API FMOD_Take(FMOD_SOUND sound);\n"},
			},
			what: "FMOD_Take.sound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := link(t, tt.sources...)
			var paths []string
			for _, s := range tt.sources {
				paths = append(paths, s.path)
			}
			cfg := DefaultConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			_, err := New(m, cfg).Emit([]Group{{Name: "all", Library: "fmod", Files: paths}})
			var ue *fmoderrors.UnsupportedConstructError
			if !errors.As(err, &ue) {
				t.Fatalf("error = %v, want UnsupportedConstructError", err)
			}
			if ue.Declaration != tt.what {
				t.Errorf("declaration = %s, want %s", ue.Declaration, tt.what)
			}
		})
	}
}

func TestEmit_VariadicMarker(t *testing.T) {
	m := link(t, source{decl.CoreCommon, "a.h", "typedef void (F_CALL *FMOD_LOG_CALLBACK) (const char *format, ...);\n"})
	src := emitAll(t, m, []Group{{Name: "all", Files: []string{"a.h"}}}, DefaultConfig())["all.go"]
	match(t, src, `//\s+void F_CALL FMOD_LOG_CALLBACK\(const char \*format, \.\.\.\)`)
	match(t, src, `type FMOD_LOG_CALLBACK uintptr`)
	match(t, src, `//\s+func\(format \*byte\)\ntype FMOD_LOG_CALLBACK`)
}

func TestEmit_CallbackDoc(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "named_arguments",
			header: commonHeader,
			want:   `//\s+FMOD_RESULT F_CALL FMOD_DEBUG_CALLBACK\(FMOD_INITFLAGS flags, const char \*file, int line\)\n//\n// with Go arguments:\n//\n//\s+func\(flags FMOD_INITFLAGS, file \*byte, line int32\) FMOD_RESULT\ntype FMOD_DEBUG_CALLBACK uintptr`,
		},
		{
			name:   "void_result",
			header: "typedef void (F_CALL *FMOD_DONE_CALLBACK) (void *userdata, int type);\n",
			want:   `//\s+func\(userdata unsafe\.Pointer, type_ int32\)\ntype FMOD_DONE_CALLBACK uintptr`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := link(t, source{decl.CoreCommon, "fmod_common.h", tt.header})
			src := emitAll(t, m, []Group{{Name: "all", Files: []string{"fmod_common.h"}}}, DefaultConfig())["all.go"]
			match(t, src, tt.want)
		})
	}
}

func TestEmit_Macros(t *testing.T) {
	m := link(t, source{decl.CoreCommon, "a.h", "#define FMOD_ALIGN(x) (((x) + 3) & ~3)\n#define FMOD_ONE 1\n"})
	groups := []Group{{Name: "all", Files: []string{"a.h"}}}

	src := emitAll(t, m, groups, DefaultConfig())["all.go"]
	if !strings.Contains(src, "// #define FMOD_ALIGN(x) (((x) + 3) & ~3)") {
		t.Errorf("macro comment missing:\n%s", src)
	}

	cfg := DefaultConfig()
	cfg.Macros = MacroOmit
	src = emitAll(t, m, groups, cfg)["all.go"]
	if strings.Contains(src, "FMOD_ALIGN") {
		t.Errorf("macro not omitted:\n%s", src)
	}
}

func TestEmit_OpaqueOnce(t *testing.T) {
	m := link(t,
		source{decl.CoreCommon, "a.h", "typedef struct FMOD_SOUND FMOD_SOUND;\ntypedef struct FMOD_TAG FMOD_ALIAS;\n"},
		source{decl.CoreCodec, "b.h", "typedef struct FMOD_SOUND FMOD_SOUND;\n"},
	)
	src := emitAll(t, m, []Group{{Name: "all", Files: []string{"a.h", "b.h"}}}, DefaultConfig())["all.go"]
	if n := strings.Count(src, "type FMOD_SOUND struct"); n != 1 {
		t.Errorf("FMOD_SOUND emitted %d times", n)
	}
	match(t, src, `type FMOD_ALIAS = FMOD_TAG`)
}

func TestEmit_Groups(t *testing.T) {
	m, _ := corpus(t)
	tests := []struct {
		name   string
		groups []Group
		want   *fmoderrors.Error
	}{
		{"unknown_header", []Group{{Name: "core", Library: "fmod", Files: []string{"missing.h"}}},
			&fmoderrors.Error{Phase: fmoderrors.PhaseEmit, Kind: fmoderrors.KindNotFound}},
		{"functions_without_library", []Group{{Name: "core", Files: []string{"fmod_common.h", "fmod.h"}}},
			&fmoderrors.Error{Phase: fmoderrors.PhaseEmit, Kind: fmoderrors.KindInvalidInput}},
		{"reserved_name", []Group{{Name: "loader", Files: []string{"fmod_common.h"}}},
			&fmoderrors.Error{Phase: fmoderrors.PhaseEmit, Kind: fmoderrors.KindInvalidInput}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outs, err := New(m, DefaultConfig()).Emit(tt.groups)
			if outs != nil {
				t.Error("failed emission returned outputs")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s/%s", err, tt.want.Phase, tt.want.Kind)
			}
		})
	}
}
