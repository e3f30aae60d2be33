package scenario

import (
	"bytes"
	_ "embed"
)

//go:embed builtin/demo.json
var demoJSON []byte

// DemoName is the name used to ask for the built-in scenario.
const DemoName = "demo"

// Demo returns the built-in five-server, six-drone scenario.
func (l *Loader) Demo() (*Scenario, error) {
	return l.Read(bytes.NewReader(demoJSON), "json")
}

// Resolve loads path, or the built-in scenario when path is empty or "demo".
func (l *Loader) Resolve(path string) (*Fleet, error) {
	if path == "" || path == DemoName {
		sc, err := l.Demo()
		if err != nil {
			return nil, err
		}
		return l.Build(sc)
	}
	return l.LoadFleet(path)
}
