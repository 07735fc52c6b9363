package operations

import (
	"fmt"
	"strings"
)

// Mermaid renders the step sequence as a Mermaid flowchart. It only reads
// step identities, never run state.
func Mermaid(steps []Step) string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString("    __start__([start])\n")
	for _, s := range steps {
		fmt.Fprintf(&b, "    %s[%s]\n", s.ID(), s.Name())
	}
	b.WriteString("    __end__([end])\n")

	prev := "__start__"
	for _, s := range steps {
		fmt.Fprintf(&b, "    %s --> %s\n", prev, s.ID())
		prev = s.ID()
	}
	fmt.Fprintf(&b, "    %s --> __end__\n", prev)
	return b.String()
}
