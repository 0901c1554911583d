package strategy

import (
	"github.com/newthinker/aurum/internal/core"
	"github.com/newthinker/aurum/internal/indicator"
)

// Strategy maps the indicator state at one bar to a trading action.
// Implementations must be stateless so one instance can serve concurrent runs.
type Strategy interface {
	Name() string
	Description() string
	Evaluate(snap indicator.Snapshot) core.Action
}
