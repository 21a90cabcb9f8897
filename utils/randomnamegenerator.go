package utils

import (
	"math/rand"
	"sync"

	"github.com/Pallinder/go-randomdata"
)

// randomdata keeps its generator in a package variable
var randomdataLock sync.Mutex

// NodeNames fills in names of unnamed nodes on export. Random names never
// collide with known ones and repeat between runs. Every instance has its
// own generator, so concurrent exports do not affect each other.
type NodeNames struct {
	taken map[string]struct{}
	rnd   *rand.Rand
}

func NewNodeNames(reserved ...string) *NodeNames {
	nn := &NodeNames{
		taken: make(map[string]struct{}, len(reserved)),
		rnd:   rand.New(rand.NewSource(0)),
	}
	for _, name := range reserved {
		nn.taken[name] = struct{}{}
	}
	return nn
}

func (nn *NodeNames) sillyName() string {
	randomdataLock.Lock()
	defer randomdataLock.Unlock()
	randomdata.CustomRand(nn.rnd)
	return randomdata.SillyName()
}

func (nn *NodeNames) random() string {
	for {
		name := nn.sillyName()
		if _, exists := nn.taken[name]; !exists {
			return name
		}
	}
}

// Name returns preferred unless it is empty, otherwise a random unused name.
func (nn *NodeNames) Name(preferred string) string {
	if preferred == "" {
		preferred = nn.random()
	}
	nn.taken[preferred] = struct{}{}
	return preferred
}
