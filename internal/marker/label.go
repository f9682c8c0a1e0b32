package marker

import "fmt"

// LoopIndicator is appended to the header of a looping session's label.
const LoopIndicator = "[∞]"

// Label is the now-playing text shown on a session's markers.
type Label struct {
	Name    string
	Author  string
	Looping bool
}

func (l Label) String() string {
	loop := ""
	if l.Looping {
		loop = " " + LoopIndicator
	}
	return fmt.Sprintf("♫ Now Playing%s ♫\n%s\nby %s", loop, l.Name, l.Author)
}
