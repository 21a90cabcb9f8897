package config

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Code page of the fixed size name fields in every format.
var currentCharMap = charmap.ISO8859_1

// short names accepted by SetEncoding besides the charmap names
var encodingAliases = map[string]*charmap.Charmap{
	"latin1": charmap.ISO8859_1,
	"cp1250": charmap.Windows1250,
	"cp1251": charmap.Windows1251,
	"cp1252": charmap.Windows1252,
	"cp437":  charmap.CodePage437,
	"cp866":  charmap.CodePage866,
}

func findCharmap(name string) *charmap.Charmap {
	if cm, ok := encodingAliases[strings.ToLower(name)]; ok {
		return cm
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && strings.EqualFold(cm.String(), name) {
			return cm
		}
	}
	return nil
}

func SetEncoding(name string) error {
	cm := findCharmap(name)
	if cm == nil {
		return errors.Errorf("Failed to find encoding %q", name)
	}
	currentCharMap = cm
	return nil
}

func ListEncodings() []string {
	list := make([]string, 0, len(encodingAliases))
	for alias := range encodingAliases {
		list = append(list, alias)
	}
	sort.Strings(list)
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}

func EncodingName() string {
	return currentCharMap.String()
}
