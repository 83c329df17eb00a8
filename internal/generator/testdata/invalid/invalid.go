package invalid

import "github.com/toyz/smog/pkg/core"

type Widget struct {
	Size int
}

//smog::matcher -target=Widget
type WidgetMatcher interface {
	core.TypedMatcher[Widget]
	HasSize(size int) WidgetMatcher
	Frobnicate(size int) WidgetMatcher
}

//smog::matcher -target=Gadget
type GadgetMatcher interface {
	core.TypedMatcher[Widget]
	HasSize(size int) GadgetMatcher
}
