package mox

import (
	"reflect"
	"testing"

	"github.com/mogaika/landscape_browser/utils"
)

func TestGenericProjectionIdempotent(t *testing.T) {
	source := &GenericParameters{A: 1, B: 2, C: 3, Color: utils.NewColorFloatFromARGB(0x80FF4000)}

	for k := KindNoParameters; k <= KindSoundEmitter; k++ {
		p := NewParameters(k)
		p.FromGeneric(source)
		g := p.ToGeneric()

		p2 := NewParameters(k)
		p2.FromGeneric(g)
		if g2 := p2.ToGeneric(); !reflect.DeepEqual(g2, g) {
			t.Errorf("%v: ToGeneric(FromGeneric(g))=%+v; expected %+v", k, g2, g)
		}
	}
}

func TestParametersEncodedSize(t *testing.T) {
	for k := KindNoParameters; k <= KindSoundEmitter; k++ {
		w := utils.NewBufWriter()
		EncodeParameters(w, NewParameters(k))
		if w.Len() != k.Size() {
			t.Errorf("%v: encoded %d bytes; expected %d", k, w.Len(), k.Size())
		}

		decoded, err := DecodeParameters(utils.NewBufStack("params", w.Bytes()), k)
		if err != nil {
			t.Errorf("%v: %v", k, err)
			continue
		}
		if !reflect.DeepEqual(decoded, NewParameters(k)) {
			t.Errorf("%v: decoded %+v; expected defaults", k, decoded)
		}
	}
}

func TestDecodeParametersShort(t *testing.T) {
	if _, err := DecodeParameters(utils.NewBufStack("params", make([]byte, 7)), KindNitro); err == nil {
		t.Errorf("DecodeParameters of 7 bytes as nitro succeeded")
	}
}

func TestConvertParameters(t *testing.T) {
	light := &GenericLightParameters{Color: utils.ColorFloat{0, 1, 0, 1}, Size: 4, Intensity: 5, Direction: 6}

	for _, test := range []struct {
		kind     ParamKind
		expected Parameters
	}{
		{KindGenericLight, light},
		{KindNitro, &NitroParameters{SizeXY: 4, SizeZ: 5}},
		{KindReversingLight, &ReversingLightParameters{Color: utils.ColorFloat{0, 1, 0, 1}, Size: 4}},
		{KindBlinkingLight, &BlinkingLightParameters{Color: utils.ColorFloat{0, 1, 0, 1}, Size: 4, TimeOffset: 5, DisplayTime: 6}},
		{KindMuzzleFlash, &MuzzleFlashParameters{Offset: 4}},
		{KindSoundEmitter, NewSoundEmitterParameters()},
		{KindNoParameters, &NoParameters{}},
	} {
		if got := ConvertParameters(light, test.kind); !reflect.DeepEqual(got, test.expected) {
			t.Errorf("ConvertParameters(light, %v)=%+v; expected %+v", test.kind, got, test.expected)
		}
	}

	sound := &SoundEmitterParameters{NameOffset: 12, Reserved1: 1}
	if g := sound.ToGeneric(); !reflect.DeepEqual(g, NewGenericParameters()) {
		t.Errorf("SoundEmitter.ToGeneric()=%+v; expected default", g)
	}
}

func TestMarkerTypeKind(t *testing.T) {
	for _, test := range []struct {
		t        MarkerType
		expected ParamKind
	}{
		{MarkerNitro, KindNitro},
		{MarkerIndicatorLeft, KindBlinkingLight},
		{MarkerIndicatorRight, KindBlinkingLight},
		{MarkerOldParticles, KindParticleEmitter},
		{MarkerWheelHook, KindNoParameters},
		{MarkerType(99), KindNoParameters},
	} {
		if got := test.t.Kind(); got != test.expected {
			t.Errorf("%v.Kind()=%v; expected %v", test.t, got, test.expected)
		}
	}
}

func TestParseMarkerType(t *testing.T) {
	for _, test := range []struct {
		s        string
		expected MarkerType
	}{
		{"Nitro", MarkerNitro},
		{"soundemitter", MarkerSoundEmitter},
		{"36", MarkerSoundEmitter},
		{"MarkerType(99)", MarkerType(99)},
		{"0x10", MarkerMotor},
	} {
		got, err := ParseMarkerType(test.s)
		if err != nil || got != test.expected {
			t.Errorf("ParseMarkerType(%q)=%v,%v; expected %v", test.s, got, err, test.expected)
		}
	}
	if _, err := ParseMarkerType("Rocket"); err == nil {
		t.Errorf("ParseMarkerType(Rocket) succeeded")
	}
}
