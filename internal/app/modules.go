package app

import (
	"github.com/vk/textweave/internal/producers"
	"github.com/vk/textweave/modules/cachedsource"
	"github.com/vk/textweave/modules/contextjoin"
	"github.com/vk/textweave/modules/statictext"
)

// coreProducers registers the built-in content producers.
var coreProducers = []func(*producers.Registry){
	statictext.Register,
	contextjoin.Register,
	cachedsource.Register,
}
