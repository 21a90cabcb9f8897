package gltfutils

import "github.com/qmuntal/gltf"

// GLTFCacher keeps one document and remembers what was already exported
// into it, so shared textures and materials are written once.
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[interface{}]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   NewDocument(),
		cache: make(map[interface{}]interface{}),
	}
}

func (gc *GLTFCacher) AddCache(key interface{}, value interface{}) {
	gc.cache[key] = value
}

func (gc *GLTFCacher) GetCached(key interface{}) (interface{}, bool) {
	v, ok := gc.cache[key]
	return v, ok
}
