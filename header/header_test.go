package header

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wippyai/fmodgen/decl"
	fmoderrors "github.com/wippyai/fmodgen/errors"
)

const commonExcerpt = `/* ======================================================================================== */
/* FMOD Core API - Common C/C++ header file.                                                */
/* ======================================================================================== */
#ifndef _FMOD_COMMON_H
#define _FMOD_COMMON_H

#if defined(_WIN32) || defined(__CYGWIN__)
    #define F_CALL __stdcall
#else
    #define F_CALL
#endif

#define F_CALLBACK F_CALL

#define FMOD_VERSION    0x00020222                     /* 0xaaaabbcc -> aaaa = product version, bb = major version, cc = minor version.*/

typedef int                        FMOD_BOOL;
typedef struct FMOD_SYSTEM         FMOD_SYSTEM;
typedef struct FMOD_SOUND          FMOD_SOUND;

#define FMOD_MAX_LISTENERS           8

typedef unsigned int FMOD_DEBUG_FLAGS;
#define FMOD_DEBUG_LEVEL_NONE                       0x00000000
#define FMOD_DEBUG_LEVEL_ERROR                      0x00000001

typedef enum FMOD_RESULT
{
    FMOD_OK,
    FMOD_ERR_BADCOMMAND,
    FMOD_RESULT_FORCEINT = 65536
} FMOD_RESULT;

typedef FMOD_RESULT (F_CALL *FMOD_DEBUG_CALLBACK) (FMOD_DEBUG_FLAGS flags, const char *file, int line, const char* func, const char* message);

typedef struct FMOD_VECTOR
{
    float x;
    float y;
    float z;
} FMOD_VECTOR;

#define FMOD_PRESET_OFF { 1000, 7, 11, -80.0f }

#endif
`

func TestTranslate(t *testing.T) {
	f, err := Translate(decl.CoreCommon, "fmod_common.h", commonExcerpt)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}

	var got []string
	for _, d := range f.Decls {
		got = append(got, string(d.Kind())+":"+d.DeclName())
	}
	want := []string{
		"type_alias:FMOD_BOOL",
		"opaque:FMOD_SYSTEM",
		"opaque:FMOD_SOUND",
		"constant:FMOD_MAX_LISTENERS",
		"flags:FMOD_DEBUG_FLAGS",
		"enumeration:FMOD_RESULT",
		"callback:FMOD_DEBUG_CALLBACK",
		"structure:FMOD_VECTOR",
		"preset:FMOD_PRESET_OFF",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("declarations =\n%v\nwant\n%v", got, want)
	}

	for _, d := range f.Decls {
		if d.DeclName() == "FMOD_VERSION" {
			t.Error("FMOD_VERSION must not be captured in the common dialect")
		}
		if d.Source().Pos.File != "fmod_common.h" || d.Source().Dialect != decl.CoreCommon {
			t.Errorf("%s origin = %+v", d.DeclName(), d.Source())
		}
	}
}

func TestTranslate_Examples(t *testing.T) {
	t.Run("example_1", func(t *testing.T) {
		f, err := Translate(decl.CoreCommon, "a.h", "typedef struct FMOD_SOUND FMOD_SOUND;")
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		o, ok := f.Decls[0].(*decl.OpaqueType)
		if len(f.Decls) != 1 || !ok || o.Alias != "FMOD_SOUND" || o.Tag != "FMOD_SOUND" {
			t.Errorf("got %+v", f.Decls)
		}
	})

	t.Run("example_3", func(t *testing.T) {
		f, err := Translate(decl.CoreCommon, "a.h", `typedef unsigned int FMOD_INITFLAGS;
#define FMOD_INIT_NORMAL 0x00000000
#define FMOD_INIT_STREAM_FROM_UPDATE 0x00000001`)
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		fl := f.Decls[0].(*decl.Flags)
		want := []decl.RawExpr{"0x00000000", "0x00000001"}
		for i, e := range fl.Entries {
			if e.Value != want[i] {
				t.Errorf("entry %d = %q, want %q", i, e.Value, want[i])
			}
		}
	})

	t.Run("example_4", func(t *testing.T) {
		f, err := Translate(decl.ErrorTable, "fmod_errors.h", `static const char *FMOD_ErrorString(FMOD_RESULT errcode)
{
    switch (errcode)
    {
        case FMOD_OK:                return "No errors.";
        case FMOD_ERR_BADCOMMAND:    return "Tried to call a function on a data type that does not allow this type of functionality.";
        case FMOD_ERR_CHANNEL_ALLOC: return "Error trying to allocate a channel.";
        default :                    return "Unknown error.";
    };
}`)
		if err != nil {
			t.Fatalf("Translate failed: %v", err)
		}
		m := f.Decls[0].(*decl.ErrorMapping)
		codes := []string{"FMOD_OK", "FMOD_ERR_BADCOMMAND", "FMOD_ERR_CHANNEL_ALLOC"}
		if len(m.Entries) != len(codes) {
			t.Fatalf("entries = %+v", m.Entries)
		}
		for i, c := range codes {
			if m.Entries[i].Code != c {
				t.Errorf("entry %d = %s, want %s", i, m.Entries[i].Code, c)
			}
		}
	})
}

func TestTranslate_Totality(t *testing.T) {
	inputs := []struct {
		dialect decl.Dialect
		src     string
	}{
		{decl.CoreCommon, commonExcerpt + "\ntypedef struct BROKEN {"},
		{decl.Studio, commonExcerpt},
		{decl.CoreDSP, "typedef enum { A, B } ;"},
		{decl.ErrorTable, "static const char *F(FMOD_RESULT e) { switch (e) { case X: return 1; } }"},
		{decl.Core, "FMOD_RESULT F_API FMOD_System_Create(FMOD_SYSTEM **system unsigned int headerversion);"},
	}
	for _, in := range inputs {
		f, err := Translate(in.dialect, "broken.h", in.src)
		if err == nil {
			t.Errorf("%s: Translate should fail", in.dialect)
			continue
		}
		if f != nil {
			t.Errorf("%s: failed translation returned %d declarations", in.dialect, len(f.Decls))
		}
		var pe *fmoderrors.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: error %T is not a ParseError", in.dialect, err)
			continue
		}
		if pe.File != "broken.h" || pe.Line == 0 || pe.Column == 0 || len(pe.Expected) == 0 {
			t.Errorf("%s: poorly located error %+v", in.dialect, pe)
		}
	}
}

func TestTranslate_UnknownDialect(t *testing.T) {
	_, err := Translate("core-vr", "a.h", "")
	if !errors.Is(err, &fmoderrors.Error{Phase: fmoderrors.PhaseParse, Kind: fmoderrors.KindInvalidInput}) {
		t.Errorf("error = %v, want [parse] invalid_input", err)
	}
}

func TestTranslate_Empty(t *testing.T) {
	f, err := Translate(decl.Core, "empty.h", "/* nothing */\n")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(f.Decls) != 0 {
		t.Errorf("got %d declarations, want 0", len(f.Decls))
	}
}

func TestProductions(t *testing.T) {
	got, err := Productions(decl.Studio)
	if err != nil {
		t.Fatalf("Productions failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Linkage", "Function", "Directive"}) {
		t.Errorf("Productions = %v", got)
	}
}
