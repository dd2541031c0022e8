package ports_test

import (
	"errors"
	"testing"

	"github.com/aretw0/lay/pkg/ports"
	"github.com/stretchr/testify/assert"
)

type halves struct {
	calls []string
	sent  []int
}

func (h *halves) Send(ops []int) error {
	h.calls = append(h.calls, "send")
	h.sent = ops
	return errors.New("ignored")
}

func (h *halves) Receive(buf map[int]bool) int {
	h.calls = append(h.calls, "receive")
	for _, v := range h.sent {
		buf[v] = true
	}
	return len(h.sent)
}

func TestSendThenReceive(t *testing.T) {
	h := &halves{}
	buf := map[int]bool{}

	n := ports.SendThenReceive[int, map[int]bool, error, int](h, []int{2, 5}, buf)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"send", "receive"}, h.calls)
	assert.Equal(t, map[int]bool{2: true, 5: true}, buf)
}

func TestConverterFuncs(t *testing.T) {
	var conv ports.Converter[string, int, rune, int] = ports.ConverterFuncs[string, int, rune, int]{
		QubitFunc: func(q string) int { return len(q) },
		SlotFunc:  func(s rune) int { return int(s - 'a') },
	}

	assert.Equal(t, 3, conv.Qubit("abc"))
	assert.Equal(t, 2, conv.Slot('c'))
}
