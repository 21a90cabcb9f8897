package mox

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/landscape_browser/utils"
)

type MarkerType uint32

const (
	MarkerUnknown            MarkerType = 0
	MarkerNitro              MarkerType = 1
	MarkerHeadlight          MarkerType = 2
	MarkerRearAndBrakeLight  MarkerType = 3
	MarkerReversingLight     MarkerType = 4
	MarkerIndicatorLeft      MarkerType = 5
	MarkerIndicatorRight     MarkerType = 6
	MarkerGenericLight       MarkerType = 7
	MarkerBlinkingLight      MarkerType = 8
	MarkerRotatingLight      MarkerType = 9
	MarkerTunnelLight        MarkerType = 10
	MarkerMotor              MarkerType = 16
	MarkerDroneHook          MarkerType = 17
	MarkerWheelHook          MarkerType = 20
	MarkerTrailerHook        MarkerType = 24
	MarkerStreetHook         MarkerType = 28
	MarkerOldParticles       MarkerType = 32
	MarkerMuzzleFlash        MarkerType = 33
	MarkerOldParticlesNoWind MarkerType = 34
	MarkerParticleEmitter    MarkerType = 35
	MarkerSoundEmitter       MarkerType = 36
	MarkerInvalid            MarkerType = 255
)

// ParamKind names one of the closed set of parameter layouts.
type ParamKind int

const (
	KindNoParameters ParamKind = iota
	KindGeneric
	KindGenericLight
	KindNitro
	KindHeadlight
	KindRearAndBrakeLight
	KindReversingLight
	KindBlinkingLight
	KindRotatingLight
	KindTunnelLight
	KindParticleEmitter
	KindMuzzleFlash
	KindSoundEmitter
)

type markerTypeInfo struct {
	name string
	kind ParamKind
}

var markerTypes = map[MarkerType]markerTypeInfo{
	MarkerUnknown:            {"Unknown", KindNoParameters},
	MarkerNitro:              {"Nitro", KindNitro},
	MarkerHeadlight:          {"Headlight", KindHeadlight},
	MarkerRearAndBrakeLight:  {"RearAndBrakeLight", KindRearAndBrakeLight},
	MarkerReversingLight:     {"ReversingLight", KindReversingLight},
	MarkerIndicatorLeft:      {"IndicatorLeft", KindBlinkingLight},
	MarkerIndicatorRight:     {"IndicatorRight", KindBlinkingLight},
	MarkerGenericLight:       {"GenericLight", KindGenericLight},
	MarkerBlinkingLight:      {"BlinkingLight", KindBlinkingLight},
	MarkerRotatingLight:      {"RotatingLight", KindRotatingLight},
	MarkerTunnelLight:        {"TunnelLight", KindTunnelLight},
	MarkerMotor:              {"Motor", KindNoParameters},
	MarkerDroneHook:          {"DroneHook", KindNoParameters},
	MarkerWheelHook:          {"WheelHook", KindNoParameters},
	MarkerTrailerHook:        {"TrailerHook", KindNoParameters},
	MarkerStreetHook:         {"StreetHook", KindNoParameters},
	MarkerOldParticles:       {"OldParticles", KindParticleEmitter},
	MarkerMuzzleFlash:        {"MuzzleFlash", KindMuzzleFlash},
	MarkerOldParticlesNoWind: {"OldParticlesNoWind", KindParticleEmitter},
	MarkerParticleEmitter:    {"ParticleEmitter", KindParticleEmitter},
	MarkerSoundEmitter:       {"SoundEmitter", KindSoundEmitter},
	MarkerInvalid:            {"Invalid", KindNoParameters},
}

func (t MarkerType) Known() bool {
	_, ok := markerTypes[t]
	return ok
}

// Kind of the parameters stored for markers of this type.
// Unrecognized tags carry no parameters.
func (t MarkerType) Kind() ParamKind {
	if info, ok := markerTypes[t]; ok {
		return info.kind
	}
	return KindNoParameters
}

func (t MarkerType) String() string {
	if info, ok := markerTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("MarkerType(%d)", uint32(t))
}

func (t MarkerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *MarkerType) UnmarshalText(text []byte) error {
	mt, err := ParseMarkerType(string(text))
	if err != nil {
		return err
	}
	*t = mt
	return nil
}

// ParseMarkerType accepts a type name or a plain number.
func ParseMarkerType(s string) (MarkerType, error) {
	for t, info := range markerTypes {
		if strings.EqualFold(info.name, s) {
			return t, nil
		}
	}
	if strings.HasPrefix(s, "MarkerType(") && strings.HasSuffix(s, ")") {
		s = s[len("MarkerType(") : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return MarkerUnknown, errors.Errorf("Unknown marker type %q", s)
	}
	return MarkerType(v), nil
}

// Parameters is the typed payload of a marker.
// The set of implementations is closed, see paramKinds.
type Parameters interface {
	Kind() ParamKind
	// ToGeneric projects the fields carried by the generic record, the rest is dropped.
	ToGeneric() *GenericParameters
	// FromGeneric overwrites the carried fields and leaves the others untouched.
	FromGeneric(g *GenericParameters)

	marshal(w *utils.BufWriter)
	unmarshal(bs *utils.BufStack)
}

type paramKindInfo struct {
	name string
	size int
	new  func() Parameters
}

var paramKinds = [...]paramKindInfo{
	KindNoParameters:      {"NoParameters", 0, func() Parameters { return &NoParameters{} }},
	KindGeneric:           {"Generic", 16, func() Parameters { return NewGenericParameters() }},
	KindGenericLight:      {"GenericLight", 16, func() Parameters { return &GenericLightParameters{Color: utils.ColorWhite} }},
	KindNitro:             {"Nitro", 8, func() Parameters { return &NitroParameters{} }},
	KindHeadlight:         {"Headlight", 16, func() Parameters { return &HeadlightParameters{Color: utils.ColorWhite} }},
	KindRearAndBrakeLight: {"RearAndBrakeLight", 12, func() Parameters { return &RearAndBrakeLightParameters{Color: utils.ColorWhite} }},
	KindReversingLight:    {"ReversingLight", 8, func() Parameters { return &ReversingLightParameters{Color: utils.ColorWhite} }},
	KindBlinkingLight:     {"BlinkingLight", 20, func() Parameters { return &BlinkingLightParameters{Color: utils.ColorWhite} }},
	KindRotatingLight:     {"RotatingLight", 16, func() Parameters { return &RotatingLightParameters{Color: utils.ColorWhite} }},
	KindTunnelLight:       {"TunnelLight", 4, func() Parameters { return &TunnelLightParameters{Color: utils.ColorWhite} }},
	KindParticleEmitter:   {"ParticleEmitter", 8, func() Parameters { return &ParticleEmitterParameters{Color: utils.ColorWhite} }},
	KindMuzzleFlash:       {"MuzzleFlash", 4, func() Parameters { return &MuzzleFlashParameters{} }},
	KindSoundEmitter:      {"SoundEmitter", 16, func() Parameters { return NewSoundEmitterParameters() }},
}

func (k ParamKind) valid() bool {
	return k >= 0 && int(k) < len(paramKinds)
}

func (k ParamKind) String() string {
	if k.valid() {
		return paramKinds[k].name
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Size of the encoded record in bytes.
func (k ParamKind) Size() int {
	if k.valid() {
		return paramKinds[k].size
	}
	return 0
}

// NewParameters returns default parameters of the given kind.
func NewParameters(k ParamKind) Parameters {
	if !k.valid() {
		k = KindNoParameters
	}
	return paramKinds[k].new()
}

// ConvertParameters changes the kind of p through the generic projection.
func ConvertParameters(p Parameters, k ParamKind) Parameters {
	if p != nil && p.Kind() == k {
		return p
	}
	result := NewParameters(k)
	if p != nil {
		result.FromGeneric(p.ToGeneric())
	}
	return result
}

// DecodeParameters reads the record of kind k at the cursor.
func DecodeParameters(bs *utils.BufStack, k ParamKind) (Parameters, error) {
	p := NewParameters(k)
	p.unmarshal(bs)
	if err := bs.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read %v parameters", k)
	}
	return p, nil
}

func EncodeParameters(w *utils.BufWriter, p Parameters) {
	p.marshal(w)
}

// GenericParameters is the interchange shape shared by every kind.
type GenericParameters struct {
	A     float32          `json:"a" yaml:"a"`
	B     float32          `json:"b" yaml:"b"`
	C     float32          `json:"c" yaml:"c"`
	Color utils.ColorFloat `json:"color" yaml:"color,flow"`
}

func NewGenericParameters() *GenericParameters {
	return &GenericParameters{Color: utils.ColorWhite}
}

func (p *GenericParameters) Kind() ParamKind { return KindGeneric }

func (p *GenericParameters) ToGeneric() *GenericParameters {
	g := *p
	return &g
}

func (p *GenericParameters) FromGeneric(g *GenericParameters) {
	*p = *g
}

func (p *GenericParameters) marshal(w *utils.BufWriter) {
	w.WriteLFs(p.A, p.B, p.C)
	w.WriteLU32(p.Color.ARGB())
}

func (p *GenericParameters) unmarshal(bs *utils.BufStack) {
	p.A = bs.ReadLF()
	p.B = bs.ReadLF()
	p.C = bs.ReadLF()
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
}

// NoParameters is used by hooks, the motor and unrecognized types.
type NoParameters struct{}

func (p *NoParameters) Kind() ParamKind { return KindNoParameters }
func (p *NoParameters) ToGeneric() *GenericParameters { return NewGenericParameters() }
func (p *NoParameters) FromGeneric(g *GenericParameters) {}
func (p *NoParameters) marshal(w *utils.BufWriter) {}
func (p *NoParameters) unmarshal(bs *utils.BufStack) {}

type GenericLightParameters struct {
	Color     utils.ColorFloat `json:"color" yaml:"color,flow"`
	Size      float32          `json:"size" yaml:"size"`
	Intensity float32          `json:"intensity" yaml:"intensity"`
	Direction float32          `json:"direction" yaml:"direction"`
}

func (p *GenericLightParameters) Kind() ParamKind { return KindGenericLight }

func (p *GenericLightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.Size, B: p.Intensity, C: p.Direction, Color: p.Color}
}

func (p *GenericLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.Size = g.A
	p.Intensity = g.B
	p.Direction = g.C
}

func (p *GenericLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLFs(p.Size, p.Intensity, p.Direction)
}

func (p *GenericLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.Size = bs.ReadLF()
	p.Intensity = bs.ReadLF()
	p.Direction = bs.ReadLF()
}

type NitroParameters struct {
	SizeXY float32 `json:"size_xy" yaml:"size_xy"`
	SizeZ  float32 `json:"size_z" yaml:"size_z"`
}

func (p *NitroParameters) Kind() ParamKind { return KindNitro }

func (p *NitroParameters) ToGeneric() *GenericParameters {
	g := NewGenericParameters()
	g.A = p.SizeXY
	g.B = p.SizeZ
	return g
}

func (p *NitroParameters) FromGeneric(g *GenericParameters) {
	p.SizeXY = g.A
	p.SizeZ = g.B
}

func (p *NitroParameters) marshal(w *utils.BufWriter) {
	w.WriteLFs(p.SizeXY, p.SizeZ)
}

func (p *NitroParameters) unmarshal(bs *utils.BufStack) {
	p.SizeXY = bs.ReadLF()
	p.SizeZ = bs.ReadLF()
}

type HeadlightParameters struct {
	Color      utils.ColorFloat `json:"color" yaml:"color,flow"`
	SizeNormal float32          `json:"size_normal" yaml:"size_normal"`
	SizeFlash  float32          `json:"size_flash" yaml:"size_flash"`
	SizeAtDay  float32          `json:"size_at_day" yaml:"size_at_day"`
}

func (p *HeadlightParameters) Kind() ParamKind { return KindHeadlight }

func (p *HeadlightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.SizeNormal, B: p.SizeFlash, C: p.SizeAtDay, Color: p.Color}
}

func (p *HeadlightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.SizeNormal = g.A
	p.SizeFlash = g.B
	p.SizeAtDay = g.C
}

func (p *HeadlightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLFs(p.SizeNormal, p.SizeFlash, p.SizeAtDay)
}

func (p *HeadlightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.SizeNormal = bs.ReadLF()
	p.SizeFlash = bs.ReadLF()
	p.SizeAtDay = bs.ReadLF()
}

type RearAndBrakeLightParameters struct {
	Color       utils.ColorFloat `json:"color" yaml:"color,flow"`
	SizeNormal  float32          `json:"size_normal" yaml:"size_normal"`
	SizeBraking float32          `json:"size_braking" yaml:"size_braking"`
}

func (p *RearAndBrakeLightParameters) Kind() ParamKind { return KindRearAndBrakeLight }

func (p *RearAndBrakeLightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.SizeNormal, B: p.SizeBraking, Color: p.Color}
}

func (p *RearAndBrakeLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.SizeNormal = g.A
	p.SizeBraking = g.B
}

func (p *RearAndBrakeLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLFs(p.SizeNormal, p.SizeBraking)
}

func (p *RearAndBrakeLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.SizeNormal = bs.ReadLF()
	p.SizeBraking = bs.ReadLF()
}

type ReversingLightParameters struct {
	Color utils.ColorFloat `json:"color" yaml:"color,flow"`
	Size  float32          `json:"size" yaml:"size"`
}

func (p *ReversingLightParameters) Kind() ParamKind { return KindReversingLight }

func (p *ReversingLightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.Size, Color: p.Color}
}

func (p *ReversingLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.Size = g.A
}

func (p *ReversingLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLF(p.Size)
}

func (p *ReversingLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.Size = bs.ReadLF()
}

// BlinkingLightParameters is shared by indicators and blinking lights.
// CycleLength has no place in the generic record.
type BlinkingLightParameters struct {
	Color       utils.ColorFloat `json:"color" yaml:"color,flow"`
	Size        float32          `json:"size" yaml:"size"`
	TimeOffset  float32          `json:"time_offset" yaml:"time_offset"`
	DisplayTime float32          `json:"display_time" yaml:"display_time"`
	CycleLength float32          `json:"cycle_length" yaml:"cycle_length"`
}

func (p *BlinkingLightParameters) Kind() ParamKind { return KindBlinkingLight }

func (p *BlinkingLightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.Size, B: p.TimeOffset, C: p.DisplayTime, Color: p.Color}
}

func (p *BlinkingLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.Size = g.A
	p.TimeOffset = g.B
	p.DisplayTime = g.C
}

func (p *BlinkingLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLFs(p.Size, p.TimeOffset, p.DisplayTime, p.CycleLength)
}

func (p *BlinkingLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.Size = bs.ReadLF()
	p.TimeOffset = bs.ReadLF()
	p.DisplayTime = bs.ReadLF()
	p.CycleLength = bs.ReadLF()
}

type RotatingLightParameters struct {
	Color       utils.ColorFloat `json:"color" yaml:"color,flow"`
	Size        float32          `json:"size" yaml:"size"`
	AngleOffset float32          `json:"angle_offset" yaml:"angle_offset"`
	CycleLength float32          `json:"cycle_length" yaml:"cycle_length"`
}

func (p *RotatingLightParameters) Kind() ParamKind { return KindRotatingLight }

func (p *RotatingLightParameters) ToGeneric() *GenericParameters {
	return &GenericParameters{A: p.Size, B: p.AngleOffset, C: p.CycleLength, Color: p.Color}
}

func (p *RotatingLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
	p.Size = g.A
	p.AngleOffset = g.B
	p.CycleLength = g.C
}

func (p *RotatingLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
	w.WriteLFs(p.Size, p.AngleOffset, p.CycleLength)
}

func (p *RotatingLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
	p.Size = bs.ReadLF()
	p.AngleOffset = bs.ReadLF()
	p.CycleLength = bs.ReadLF()
}

type TunnelLightParameters struct {
	Color utils.ColorFloat `json:"color" yaml:"color,flow"`
}

func (p *TunnelLightParameters) Kind() ParamKind { return KindTunnelLight }

func (p *TunnelLightParameters) ToGeneric() *GenericParameters {
	g := NewGenericParameters()
	g.Color = p.Color
	return g
}

func (p *TunnelLightParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
}

func (p *TunnelLightParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.Color.ARGB())
}

func (p *TunnelLightParameters) unmarshal(bs *utils.BufStack) {
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
}

type ParticleEmitterParameters struct {
	TypeAndOptions uint32           `json:"type_and_options" yaml:"type_and_options"`
	Color          utils.ColorFloat `json:"color" yaml:"color,flow"`
}

func (p *ParticleEmitterParameters) Kind() ParamKind { return KindParticleEmitter }

func (p *ParticleEmitterParameters) ToGeneric() *GenericParameters {
	g := NewGenericParameters()
	g.Color = p.Color
	return g
}

func (p *ParticleEmitterParameters) FromGeneric(g *GenericParameters) {
	p.Color = g.Color
}

func (p *ParticleEmitterParameters) marshal(w *utils.BufWriter) {
	w.WriteLU32(p.TypeAndOptions)
	w.WriteLU32(p.Color.ARGB())
}

func (p *ParticleEmitterParameters) unmarshal(bs *utils.BufStack) {
	p.TypeAndOptions = bs.ReadLU32()
	p.Color = utils.NewColorFloatFromARGB(bs.ReadLU32())
}

type MuzzleFlashParameters struct {
	Offset float32 `json:"offset" yaml:"offset"`
}

func (p *MuzzleFlashParameters) Kind() ParamKind { return KindMuzzleFlash }

func (p *MuzzleFlashParameters) ToGeneric() *GenericParameters {
	g := NewGenericParameters()
	g.A = p.Offset
	return g
}

func (p *MuzzleFlashParameters) FromGeneric(g *GenericParameters) {
	p.Offset = g.A
}

func (p *MuzzleFlashParameters) marshal(w *utils.BufWriter) {
	w.WriteLF(p.Offset)
}

func (p *MuzzleFlashParameters) unmarshal(bs *utils.BufStack) {
	p.Offset = bs.ReadLF()
}

// SoundEmitterParameters has no generic projection. Converting to generic
// yields a default generic record and converting from generic resets the
// emitter to its defaults.
type SoundEmitterParameters struct {
	NameOffset int32  `json:"name_offset" yaml:"name_offset"`
	Reserved1  uint32 `json:"reserved_1" yaml:"reserved_1"`
	Reserved2  uint32 `json:"reserved_2" yaml:"reserved_2"`
	Reserved3  uint32 `json:"reserved_3" yaml:"reserved_3"`
}

func NewSoundEmitterParameters() *SoundEmitterParameters {
	return &SoundEmitterParameters{NameOffset: -1}
}

func (p *SoundEmitterParameters) Kind() ParamKind { return KindSoundEmitter }

func (p *SoundEmitterParameters) ToGeneric() *GenericParameters {
	return NewGenericParameters()
}

func (p *SoundEmitterParameters) FromGeneric(g *GenericParameters) {
	*p = *NewSoundEmitterParameters()
}

func (p *SoundEmitterParameters) marshal(w *utils.BufWriter) {
	w.WriteLI32(p.NameOffset)
	w.WriteLU32(p.Reserved1)
	w.WriteLU32(p.Reserved2)
	w.WriteLU32(p.Reserved3)
}

func (p *SoundEmitterParameters) unmarshal(bs *utils.BufStack) {
	p.NameOffset = bs.ReadLI32()
	p.Reserved1 = bs.ReadLU32()
	p.Reserved2 = bs.ReadLU32()
	p.Reserved3 = bs.ReadLU32()
}
