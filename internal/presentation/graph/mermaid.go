package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lay/pkg/domain"
	"github.com/aretw0/lay/pkg/program"
)

// Overlay contains the outcome of a run to visualize on the graph.
type Overlay struct {
	// Bits is the measured bit string, indexed by linear slot.
	Bits string
}

// GenerateMermaid produces a Mermaid flowchart of a program. Every step is a
// node and every edge follows one qubit from the step that last touched it.
// Node shapes:
// - initialize: ((Circle))
// - cx: [[Subroutine]]
// - measure: [/Parallelogram/]
// - other gates: [Rectangle]
// Measurement nodes are styled with the measured value when an overlay is given.
func GenerateMermaid(p *program.Program, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	last := make(map[int]string)
	var initID string

	for i, step := range p.Steps {
		id := fmt.Sprintf("s%d", i)

		opener, closer := "[", "]"
		switch step.Code {
		case domain.OpInit:
			opener, closer = "((", "))"
		case domain.OpCX:
			opener, closer = "[[", "]]"
		case domain.OpMeas:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, label(step), closer)

		if step.Code == domain.OpInit {
			// Initialize touches every qubit.
			clear(last)
			initID = id
			continue
		}
		for _, q := range touched(step) {
			idx := p.Index(q)
			from, ok := last[idx]
			if !ok {
				from = initID
			}
			if from != "" {
				fmt.Fprintf(&sb, "    %s -- \"q%s\" --> %s\n", from, q, id)
			}
			last[idx] = id
		}
	}

	if overlay != nil {
		writeOverlay(&sb, p, overlay)
	}
	return sb.String()
}

func writeOverlay(sb *strings.Builder, p *program.Program, overlay *Overlay) {
	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps contrast on both light and dark themes.
	sb.WriteString("    classDef one fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef zero fill:#f5f5f5,stroke:#616161,stroke-width:1px,color:#000;\n")

	for i, step := range p.Steps {
		if step.Code != domain.OpMeas {
			continue
		}
		slot := p.Index(step.Slot)
		if slot >= len(overlay.Bits) {
			continue
		}
		class := "zero"
		if overlay.Bits[slot] == '1' {
			class = "one"
		}
		fmt.Fprintf(sb, "    class s%d %s;\n", i, class)
	}
}

func touched(s program.Step) []program.Address {
	switch payload, _ := domain.PayloadOf(s.Code); payload {
	case domain.PayloadQ, domain.PayloadQS:
		return []program.Address{s.Qubit}
	case domain.PayloadQQ:
		return []program.Address{s.Qubit, s.Target}
	}
	return nil
}

func label(s program.Step) string {
	switch payload, _ := domain.PayloadOf(s.Code); payload {
	case domain.PayloadQ:
		return fmt.Sprintf("%s %s", s.Code, s.Qubit)
	case domain.PayloadQQ:
		return fmt.Sprintf("%s %s → %s", s.Code, s.Qubit, s.Target)
	case domain.PayloadQS:
		return fmt.Sprintf("%s %s → c%s", s.Code, s.Qubit, s.Slot)
	}
	return s.Code.String()
}
