package mtl

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mogaika/landscape_browser/pack"
)

const (
	TOKEN_ID = iota
	TOKEN_STRING
	TOKEN_WORD
	TOKEN_NEWLINE
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`#[^\n]*`), getToken(TOKEN_ID))
	lexer.Add([]byte(`"[^"\n]*"`), getToken(TOKEN_STRING))
	lexer.Add([]byte(`[^ \t\r\n"]+`), getToken(TOKEN_WORD))
	lexer.Add([]byte(`\r?\n`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`[ \t\r]+`), skip)

	pack.SetHandler(".MTL", func(src *pack.Source) (interface{}, error) {
		return Parse(src.Data)
	})
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// Definition is one block of the material table.
type Definition struct {
	Id uint32

	Diffuse   []uint32 `json:",omitempty"`
	Ambient   []uint32 `json:",omitempty"`
	Specular  []uint32 `json:",omitempty"`
	Reflect2  []uint32 `json:",omitempty"`
	Specular2 []uint32 `json:",omitempty"`
	XDiffuse  []uint32 `json:",omitempty"`
	XSpecular []uint32 `json:",omitempty"`

	TexFlags  []uint32 `json:",omitempty"`
	SpecProps []uint32 `json:",omitempty"`
	Fresnel   []uint32 `json:",omitempty"`
	FallOff   []uint32 `json:",omitempty"`

	TexOffset []float32 `json:",omitempty"`
	TexScale  []float32 `json:",omitempty"`
	TexAngle  []float32 `json:",omitempty"`

	Alpha    int
	HasAlpha bool

	Tex1Name string
	Tex2Name string
	Tex3Name string

	// keys without a known type, values joined with spaces
	Other map[string]string `json:",omitempty"`
}

// Textures returns the non empty texture names in slot order.
func (d *Definition) Textures() []string {
	result := make([]string, 0, 3)
	for _, name := range []string{d.Tex1Name, d.Tex2Name, d.Tex3Name} {
		if name != "" {
			result = append(result, name)
		}
	}
	return result
}

// Library is a parsed material definition file.
type Library struct {
	ColorSets   []string
	Definitions []*Definition
	byId        map[uint32]*Definition
}

func (l *Library) Lookup(id uint32) (*Definition, bool) {
	if l == nil {
		return nil, false
	}
	d, ok := l.byId[id]
	return d, ok
}

type line struct {
	number int
	tokens []*lexmachine.Token
}

// Parse reads the line oriented table: a header line with the color sets,
// then blocks separated by blank lines, each block starting with "# 0xID".
func Parse(text []byte) (*Library, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	var blocks [][]line
	var block []line
	var current line
	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)

		if tok.Type != TOKEN_NEWLINE {
			if len(current.tokens) == 0 {
				current.number = tok.StartLine
			}
			current.tokens = append(current.tokens, tok)
			continue
		}
		if len(current.tokens) != 0 {
			block = append(block, current)
			current = line{}
		} else if len(block) != 0 {
			blocks = append(blocks, block)
			block = nil
		}
	}
	if len(current.tokens) != 0 {
		block = append(block, current)
	}
	if len(block) != 0 {
		blocks = append(blocks, block)
	}

	lib := &Library{byId: make(map[uint32]*Definition)}
	if len(blocks) == 0 {
		return lib, nil
	}

	// header block is optional
	if blocks[0][0].tokens[0].Type != TOKEN_ID {
		for _, tok := range blocks[0][0].tokens[1:] {
			lib.ColorSets = append(lib.ColorSets, unquote(tok))
		}
		blocks = blocks[1:]
	}

	for _, b := range blocks {
		def, err := parseBlock(b)
		if err != nil {
			return nil, err
		}
		lib.Definitions = append(lib.Definitions, def)
		if _, exists := lib.byId[def.Id]; !exists {
			lib.byId[def.Id] = def
		}
	}
	return lib, nil
}

func unquote(tok *lexmachine.Token) string {
	return strings.Trim(string(tok.Lexeme), `"`)
}

func parseBlock(b []line) (*Definition, error) {
	def := &Definition{}

	lines := b
	if first := b[0].tokens[0]; first.Type == TOKEN_ID {
		fields := strings.Fields(strings.TrimPrefix(string(first.Lexeme), "#"))
		if len(fields) == 0 {
			return nil, errors.Errorf("Missed material id on line %v", b[0].number)
		}
		id, err := parseHex(fields[0])
		if err != nil {
			return nil, errors.Errorf("Bad material id on line %v (%q)", b[0].number, fields[0])
		}
		def.Id = id
		lines = b[1:]
	}

	for _, l := range lines {
		key := string(l.tokens[0].Lexeme)
		values := l.tokens[1:]
		if len(values) == 0 {
			continue
		}

		var err error
		switch key {
		case "Diffuse":
			def.Diffuse, err = parseHexList(values)
		case "Ambient":
			def.Ambient, err = parseHexList(values)
		case "Specular":
			def.Specular, err = parseHexList(values)
		case "Reflect2":
			def.Reflect2, err = parseHexList(values)
		case "Specular2":
			def.Specular2, err = parseHexList(values)
		case "XDiffuse":
			def.XDiffuse, err = parseHexList(values)
		case "XSpecular":
			def.XSpecular, err = parseHexList(values)
		case "TexFlags":
			def.TexFlags, err = parseHexList(values)
		case "SpecProps":
			def.SpecProps, err = parseHexList(values)
		case "Fresnel":
			def.Fresnel, err = parseHexList(values)
		case "FallOff":
			def.FallOff, err = parseHexList(values)
		case "TexOffset":
			def.TexOffset, err = parseFloatList(values)
		case "TexScale":
			def.TexScale, err = parseFloatList(values)
		case "TexAngle":
			def.TexAngle, err = parseFloatList(values)
		case "Alpha":
			def.Alpha, err = strconv.Atoi(string(values[0].Lexeme))
			def.HasAlpha = err == nil
		case "Tex1Name":
			def.Tex1Name = joinValues(values)
		case "Tex2Name":
			def.Tex2Name = joinValues(values)
		case "Tex3Name":
			def.Tex3Name = joinValues(values)
		default:
			if def.Other == nil {
				def.Other = make(map[string]string)
			}
			def.Other[key] = joinValues(values)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "Bad value of %q on line %v of material 0x%x", key, l.number, def.Id)
		}
	}
	return def, nil
}

func joinValues(values []*lexmachine.Token) string {
	parts := make([]string, len(values))
	for i, tok := range values {
		parts[i] = unquote(tok)
	}
	return strings.Join(parts, " ")
}

// parseHex reads ids and colors, always hex with an optional 0x prefix
func parseHex(s string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 32)
	return uint32(v), err
}

func parseHexList(values []*lexmachine.Token) ([]uint32, error) {
	result := make([]uint32, len(values))
	for i, tok := range values {
		v, err := parseHex(unquote(tok))
		if err != nil {
			return nil, err
		}
		result[i] = v
	}
	return result, nil
}

func parseFloatList(values []*lexmachine.Token) ([]float32, error) {
	result := make([]float32, len(values))
	for i, tok := range values {
		v, err := strconv.ParseFloat(unquote(tok), 32)
		if err != nil {
			return nil, err
		}
		result[i] = float32(v)
	}
	return result, nil
}

// Ids lists the defined material ids in ascending order.
func (l *Library) Ids() []uint32 {
	ids := make([]uint32, 0, len(l.byId))
	for id := range l.byId {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
